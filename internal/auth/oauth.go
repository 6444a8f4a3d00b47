package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"venturevet/internal/validate"
)

// OAuthService drives the authorization-code flow for one provider adapter
// and hands verified profiles to the identity linker.
type OAuthService struct {
	states       StateStore
	adapter      ProviderAdapter
	linker       *Linker
	stateTTL     time.Duration
	verifiedOnly bool
	logger       *slog.Logger
}

// OAuthOption configures an OAuthService during construction.
type OAuthOption func(*OAuthService)

// WithOAuthLogger sets a custom logger for the service.
func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(s *OAuthService) {
		s.logger = l
	}
}

// WithStateTTL sets the lifetime of CSRF state tokens.
func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(s *OAuthService) {
		s.stateTTL = ttl
	}
}

// WithVerifiedOnly controls whether unverified provider emails are rejected.
func WithVerifiedOnly(verifiedOnly bool) OAuthOption {
	return func(s *OAuthService) {
		s.verifiedOnly = verifiedOnly
	}
}

// NewOAuthService constructs a provider-agnostic OAuth service.
// Defaults: stateTTL 10 minutes, verifiedOnly true.
func NewOAuthService(states StateStore, adapter ProviderAdapter, linker *Linker, opts ...OAuthOption) *OAuthService {
	s := &OAuthService{
		states:       states,
		adapter:      adapter,
		linker:       linker,
		stateTTL:     10 * time.Minute,
		verifiedOnly: true,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the adapter's provider identifier.
func (s *OAuthService) Provider() string {
	return s.adapter.ProviderID()
}

// AuthURL generates an authorization URL carrying a fresh single-use state
// token for CSRF protection.
func (s *OAuthService) AuthURL(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	if err := s.states.StoreState(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	return s.adapter.AuthURL(state), nil
}

// HandleCallback validates the state, exchanges the authorization code for a
// profile, and reconciles the identity into an account via the linker.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (*LinkResult, error) {
	// State tokens are single-use so a replayed callback cannot succeed.
	if err := s.states.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("failed to validate state: %w", err)
	}

	profile, err := s.adapter.ResolveProfile(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to resolve provider profile: %w", err)
	}

	if profile.ProviderUserID == "" {
		return nil, fmt.Errorf("invalid profile: missing provider user id")
	}
	if profile.Email == "" {
		return nil, ErrNoPrimaryEmail
	}
	profile.Email = validate.NormalizeEmail(profile.Email)

	if s.verifiedOnly && !profile.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	return s.linker.Reconcile(ctx, s.adapter.ProviderID(), profile)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
