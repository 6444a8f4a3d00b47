// Package session issues and verifies the stateless signed tokens that act
// as the application's session credential. Tokens are minted only after a
// successful authentication, carried in an HTTP-only cookie, and verified by
// pure local computation: no store access per request.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultMaxAge is the fixed session lifetime. There is no sliding renewal;
// expiry is the only termination mechanism.
const DefaultMaxAge = 30 * 24 * time.Hour

// Config holds session token settings.
type Config struct {
	Secret       string        `env:"SESSION_SECRET,required"`
	MaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"vv_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

// Claims is the server-side representation of a verified session token
// exposed to request handlers.
type Claims struct {
	UserID   uuid.UUID
	Provider string
	IssuedAt time.Time
}

type tokenClaims struct {
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies session tokens with HMAC-SHA256.
type Issuer struct {
	secret []byte
	maxAge time.Duration
}

// NewIssuer creates a token issuer. The secret should be at least 32 bytes.
func NewIssuer(secret string, maxAge time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Issuer{
		secret: []byte(secret),
		maxAge: maxAge,
	}, nil
}

// Mint produces a signed token embedding the subject user id and the
// provider that authenticated this session.
func (i *Issuer) Mint(userID uuid.UUID, provider string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature, algorithm and expiry, returning the
// claims it carries. Any verification failure maps to ErrInvalidToken or
// ErrTokenExpired; callers treat both as unauthenticated.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		UserID:   userID,
		Provider: claims.Provider,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// MaxAge returns the configured token lifetime.
func (i *Issuer) MaxAge() time.Duration {
	return i.maxAge
}
