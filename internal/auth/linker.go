package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"venturevet/internal/logger"
)

// LinkResult is the outcome of reconciling a provider identity with the
// account store.
type LinkResult struct {
	User *User
	// Linked is true when this authentication attached the provider identity
	// to a pre-existing account. The transport layer surfaces it so the user
	// can be notified that who may sign in as them has broadened.
	Linked bool
}

// Linker reconciles an authenticated OAuth identity with an existing account
// reached by email, creating a link rather than a duplicate account.
type Linker struct {
	storage      Storage
	storeTimeout time.Duration
	logger       *slog.Logger
}

// LinkerOption configures a Linker during construction.
type LinkerOption func(*Linker)

// WithLinkerLogger sets a custom logger for the linker.
func WithLinkerLogger(l *slog.Logger) LinkerOption {
	return func(k *Linker) {
		k.logger = l
	}
}

// WithLinkerStoreTimeout bounds every storage call made by the linker.
func WithLinkerStoreTimeout(d time.Duration) LinkerOption {
	return func(k *Linker) {
		k.storeTimeout = d
	}
}

// NewLinker creates a new identity linker.
func NewLinker(storage Storage, opts ...LinkerOption) *Linker {
	k := &Linker{
		storage:      storage,
		storeTimeout: 5 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Reconcile returns the user a session should be attached to after the named
// provider verified the profile. It is idempotent under concurrent retries:
// a lost create race downgrades to the corresponding read.
//
// The operation never overwrites the user's password hash or other links;
// linking onto an existing account is strictly additive. Returns
// ErrLinkingFailed only when the store is unreachable; a failed link write
// after the user is resolved is logged and swallowed because the provider
// already verified the identity.
func (k *Linker) Reconcile(ctx context.Context, provider string, profile ProviderProfile) (*LinkResult, error) {
	ctx, cancel := context.WithTimeout(ctx, k.storeTimeout)
	defer cancel()

	// Fast path: this provider identity has signed in before.
	user, err := k.storage.GetUserByOAuth(ctx, provider, profile.ProviderUserID)
	if err == nil {
		return &LinkResult{User: user}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrLinkingFailed, err)
	}

	user, err = k.storage.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Account-linking event: attach this provider identity to the
		// existing account, whatever providers it already has.
		if err := k.storeLink(ctx, provider, user.ID, profile); err != nil {
			if resolved, ok := k.recoverLostRace(ctx, provider, profile); ok {
				return resolved, nil
			}
			// Sign-in still proceeds: the provider verified the identity,
			// only the durable link is missing and will be retried on the
			// next OAuth sign-in.
			k.logger.Warn("failed to link provider identity, proceeding with sign-in",
				logger.UserID(user.ID.String()),
				logger.Provider(provider),
				logger.Error(err),
				logger.Component("linker"),
			)
			return &LinkResult{User: user}, nil
		}
		k.logger.Info("linked provider identity to existing account",
			logger.UserID(user.ID.String()),
			logger.Provider(provider),
			logger.Component("linker"),
		)
		return &LinkResult{User: user, Linked: true}, nil

	case errors.Is(err, ErrUserNotFound):
		return k.createUser(ctx, provider, profile)

	default:
		return nil, errors.Join(ErrLinkingFailed, err)
	}
}

func (k *Linker) createUser(ctx context.Context, provider string, profile ProviderProfile) (*LinkResult, error) {
	now := time.Now()
	user := &User{
		ID:        uuid.New(),
		Name:      profile.Name,
		Email:     profile.Email,
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := k.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			// Concurrent first-time sign-in created the account between our
			// reads. Re-read and link onto it.
			existing, readErr := k.storage.GetUserByEmail(ctx, profile.Email)
			if readErr != nil {
				return nil, errors.Join(ErrLinkingFailed, readErr)
			}
			if linkErr := k.storeLink(ctx, provider, existing.ID, profile); linkErr != nil && !errors.Is(linkErr, ErrLinkExists) {
				k.logger.Warn("failed to link provider identity after create race",
					logger.UserID(existing.ID.String()),
					logger.Provider(provider),
					logger.Error(linkErr),
					logger.Component("linker"),
				)
			}
			return &LinkResult{User: existing}, nil
		}
		return nil, errors.Join(ErrLinkingFailed, err)
	}

	if err := k.storeLink(ctx, provider, user.ID, profile); err != nil {
		if resolved, ok := k.recoverLostRace(ctx, provider, profile); ok {
			// Another request won the link; drop our orphan user.
			if deleteErr := k.storage.DeleteUser(ctx, user.ID); deleteErr != nil {
				k.logger.Error("failed to cleanup user after losing link race",
					logger.UserID(user.ID.String()),
					logger.Error(deleteErr),
					logger.Component("linker"),
				)
			}
			return resolved, nil
		}
		k.logger.Warn("failed to store provider link for new account, proceeding with sign-in",
			logger.UserID(user.ID.String()),
			logger.Provider(provider),
			logger.Error(err),
			logger.Component("linker"),
		)
	}

	return &LinkResult{User: user}, nil
}

func (k *Linker) storeLink(ctx context.Context, provider string, userID uuid.UUID, profile ProviderProfile) error {
	return k.storage.StoreOAuthLink(ctx, &OAuthLink{
		UserID:         userID,
		Provider:       provider,
		ProviderUserID: profile.ProviderUserID,
		AccessToken:    profile.AccessToken,
		RefreshToken:   profile.RefreshToken,
		ExpiresAt:      profile.TokenExpiresAt,
		CreatedAt:      time.Now(),
	})
}

// recoverLostRace re-reads by (provider, provider user id) after a link write
// failed, treating a concurrent duplicate insert as the fast path.
func (k *Linker) recoverLostRace(ctx context.Context, provider string, profile ProviderProfile) (*LinkResult, bool) {
	user, err := k.storage.GetUserByOAuth(ctx, provider, profile.ProviderUserID)
	if err != nil {
		return nil, false
	}
	return &LinkResult{User: user}, true
}
