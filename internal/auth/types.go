package auth

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifiers. The password provider is implicit: it has no OAuthLink
// row, the password hash on the user record itself serves that role.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// User represents a durable account identity. A user may exist without a
// password hash (OAuth-only account); the hash is held store-side and never
// appears on this struct.
type User struct {
	ID        uuid.UUID
	Name      string // display name, optional
	Email     string // unique, stored normalized
	Provider  string // provider of the most recent authentication
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OAuthLink attaches one external provider identity to a user. The pair
// (Provider, ProviderUserID) is unique across all users.
type OAuthLink struct {
	UserID         uuid.UUID
	Provider       string
	ProviderUserID string
	AccessToken    string // opaque provider token material, not interpreted
	RefreshToken   string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// ProviderProfile is the normalized identity a provider adapter resolves from
// an authorization code.
type ProviderProfile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
}
