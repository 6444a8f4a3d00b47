package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"venturevet/internal/logger"
	"venturevet/internal/validate"
)

// PasswordService handles registration and credential verification for the
// password provider.
type PasswordService struct {
	storage      Storage
	bcryptCost   int
	storeTimeout time.Duration
	logger       *slog.Logger
}

// PasswordOption configures a PasswordService during construction.
type PasswordOption func(*PasswordService)

// WithPasswordLogger sets a custom logger for the service.
func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(s *PasswordService) {
		s.logger = l
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) PasswordOption {
	return func(s *PasswordService) {
		s.bcryptCost = cost
	}
}

// WithPasswordStoreTimeout bounds every storage call made by the service.
func WithPasswordStoreTimeout(d time.Duration) PasswordOption {
	return func(s *PasswordService) {
		s.storeTimeout = d
	}
}

// NewPasswordService creates a new password authentication service.
func NewPasswordService(storage Storage, opts ...PasswordOption) *PasswordService {
	s := &PasswordService{
		storage:      storage,
		bcryptCost:   bcrypt.DefaultCost,
		storeTimeout: 5 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with a password hash. Returns
// ErrEmailAlreadyExists when the email is taken, including by an OAuth-only
// account: registering a password on top of an existing OAuth account is
// rejected rather than merged.
func (s *PasswordService) Register(ctx context.Context, name, email, password string) (*User, error) {
	email = validate.NormalizeEmail(email)

	if err := validate.Apply(
		validate.Required("name", name),
		validate.ValidEmail("email", email),
		validate.MinLen("password", password, 8),
		validate.MaxLen("password", password, 72),
	); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Provider:  ProviderCredentials,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// CreateUser is the arbiter under concurrent duplicate registrations:
	// the unique constraint on email lets exactly one writer through.
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.storage.StorePasswordHash(ctx, user.ID, hash); err != nil {
		// Roll the user back so a half-created account cannot block the email.
		if deleteErr := s.storage.DeleteUser(ctx, user.ID); deleteErr != nil {
			s.logger.Error("failed to cleanup user after password save failure",
				logger.UserID(user.ID.String()),
				logger.Error(deleteErr),
				logger.Component("password"),
			)
		}
		return nil, fmt.Errorf("failed to save password: %w", err)
	}

	return user, nil
}

// Authenticate verifies an email and password pair. Any failure collapses to
// ErrInvalidCredentials so callers cannot distinguish a missing account from
// a wrong password; the precise reason is logged for diagnostics.
func (s *PasswordService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = validate.NormalizeEmail(email)

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, reason := s.verify(ctx, email, password)
	if reason != nil {
		s.logger.Info("credential verification failed",
			logger.Error(reason),
			logger.Component("password"),
		)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *PasswordService) verify(ctx context.Context, email, password string) (*User, error) {
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.storage.GetPasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrNoPassword) {
			// OAuth-only account.
			return nil, ErrNoPassword
		}
		return nil, fmt.Errorf("failed to load password hash: %w", err)
	}

	// bcrypt comparison is constant-time.
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrPasswordMismatch
	}

	return user, nil
}
