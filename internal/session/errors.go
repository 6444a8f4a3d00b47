package session

import "errors"

var (
	ErrMissingSecret = errors.New("session: missing signing secret")
	ErrInvalidToken  = errors.New("session: invalid token")
	ErrTokenExpired  = errors.New("session: token expired")
	ErrNoSession     = errors.New("session: no session on request")
)
