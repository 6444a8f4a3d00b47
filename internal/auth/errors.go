package auth

import "errors"

// Account errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrNoPassword means the account exists but is OAuth-only. Callers must
	// present it to clients as ErrInvalidCredentials; the distinction exists
	// for diagnostics only.
	ErrNoPassword         = errors.New("account has no password")
	ErrPasswordMismatch   = errors.New("password mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// OAuth errors.
var (
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrStateNotFound   = errors.New("oauth state not found or expired")
	ErrInvalidCode     = errors.New("invalid oauth code")
	ErrNoPrimaryEmail  = errors.New("no primary email from provider")
	ErrUnverifiedEmail = errors.New("email not verified by provider")
	// ErrLinkExists signals a lost create race on (provider, provider user
	// id); the linker recovers by re-reading.
	ErrLinkExists    = errors.New("oauth link already exists")
	ErrLinkingFailed = errors.New("account linking failed")
)
