package auth

import (
	"context"
	"fmt"
)

// Attempt is a closed set of authentication attempt variants. Provider
// specific logic stays behind ProviderAdapter; everything else dispatches
// through Service.Authenticate.
type Attempt interface {
	attempt()
}

// CredentialsAttempt is an email/password sign-in.
type CredentialsAttempt struct {
	Email    string
	Password string
}

func (CredentialsAttempt) attempt() {}

// OAuthAttempt is an authorization-code callback from the named provider.
type OAuthAttempt struct {
	Provider string
	Code     string
	State    string
}

func (OAuthAttempt) attempt() {}

// Result is a successful authentication: the resolved user, the provider
// that authenticated it, and whether an account-linking event occurred.
type Result struct {
	User     *User
	Provider string
	Linked   bool
}

// Service is the single entry point for every authentication event. It is
// constructed once and passed by dependency injection into handlers and the
// route guard; there are no ambient singletons.
type Service struct {
	passwords *PasswordService
	oauth     map[string]*OAuthService
}

// NewService assembles the authentication facade from the password service
// and any number of provider-specific OAuth services.
func NewService(passwords *PasswordService, oauthServices ...*OAuthService) *Service {
	oauth := make(map[string]*OAuthService, len(oauthServices))
	for _, svc := range oauthServices {
		oauth[svc.Provider()] = svc
	}
	return &Service{
		passwords: passwords,
		oauth:     oauth,
	}
}

// Register creates a password account.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	return s.passwords.Register(ctx, name, email, password)
}

// AuthURL starts the OAuth flow for the named provider.
func (s *Service) AuthURL(ctx context.Context, provider string) (string, error) {
	svc, ok := s.oauth[provider]
	if !ok {
		return "", fmt.Errorf("unknown oauth provider %q", provider)
	}
	return svc.AuthURL(ctx)
}

// Authenticate dispatches an attempt to the matching provider path. Tokens
// are only ever minted from a successful Result; there is no path from
// unauthenticated input to a session.
func (s *Service) Authenticate(ctx context.Context, attempt Attempt) (*Result, error) {
	switch a := attempt.(type) {
	case CredentialsAttempt:
		user, err := s.passwords.Authenticate(ctx, a.Email, a.Password)
		if err != nil {
			return nil, err
		}
		return &Result{User: user, Provider: ProviderCredentials}, nil

	case OAuthAttempt:
		svc, ok := s.oauth[a.Provider]
		if !ok {
			return nil, fmt.Errorf("unknown oauth provider %q", a.Provider)
		}
		res, err := svc.HandleCallback(ctx, a.Code, a.State)
		if err != nil {
			return nil, err
		}
		return &Result{User: res.User, Provider: a.Provider, Linked: res.Linked}, nil

	default:
		return nil, fmt.Errorf("unsupported attempt type %T", attempt)
	}
}
