package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage defines the persistence operations the authentication services
// require. All writes must be atomic at the row level; uniqueness of
// User.Email and of (Provider, ProviderUserID) is enforced by the store.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Password operations. GetPasswordHash returns ErrUserNotFound when no
	// such user exists and ErrNoPassword when the account is OAuth-only.
	StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// OAuth link operations. StoreOAuthLink returns ErrLinkExists when the
	// (provider, provider user id) pair is already linked.
	StoreOAuthLink(ctx context.Context, link *OAuthLink) error
	GetUserByOAuth(ctx context.Context, provider, providerUserID string) (*User, error)
}

// StateStore holds single-use CSRF state tokens for the OAuth authorization
// flow.
type StateStore interface {
	StoreState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeState atomically checks that the state exists and removes it,
	// returning ErrStateNotFound otherwise. Atomicity is required so
	// concurrent callbacks cannot both succeed with the same state.
	ConsumeState(ctx context.Context, state string) error
}

// ProviderAdapter isolates provider-specific OAuth mechanics (endpoint URLs,
// payload field names) behind a normalized profile.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state string) string
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}
