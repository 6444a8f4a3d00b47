package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"venturevet/internal/auth"
)

const uniqueViolation = "23505"

// AuthRepository implements auth.Storage on a pgx pool.
type AuthRepository struct {
	pool *pgxpool.Pool
}

// NewAuthRepository creates the auth storage backed by the given pool.
func NewAuthRepository(pool *pgxpool.Pool) *AuthRepository {
	return &AuthRepository{pool: pool}
}

// CreateUser inserts a user row. The unique constraint on email is the
// arbiter for concurrent duplicate registrations.
func (r *AuthRepository) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, provider, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.Provider, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return auth.ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByID loads a user by primary key.
func (r *AuthRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT id, name, email, provider, created_at, updated_at FROM users WHERE id = $1`, id))
}

// GetUserByEmail loads a user by normalized email.
func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT id, name, email, provider, created_at, updated_at FROM users WHERE email = $1`, email))
}

// DeleteUser removes a user row; linked identities cascade.
func (r *AuthRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// StorePasswordHash sets the password hash on an existing user.
func (r *AuthRepository) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, hash)
	if err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// GetPasswordHash returns the stored hash, distinguishing a missing account
// from an OAuth-only one.
func (r *AuthRepository) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := r.pool.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get password hash: %w", err)
	}
	if len(hash) == 0 {
		return nil, auth.ErrNoPassword
	}
	return hash, nil
}

// StoreOAuthLink inserts a linked identity. A duplicate (provider,
// provider_user_id) surfaces as auth.ErrLinkExists so the linker can treat a
// lost race as the fast path.
func (r *AuthRepository) StoreOAuthLink(ctx context.Context, link *auth.OAuthLink) error {
	var expiresAt any
	if !link.ExpiresAt.IsZero() {
		expiresAt = link.ExpiresAt
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_links (provider, provider_user_id, user_id, access_token, refresh_token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		link.Provider, link.ProviderUserID, link.UserID, link.AccessToken, link.RefreshToken, expiresAt, link.CreatedAt,
	)
	if isUniqueViolation(err) {
		return auth.ErrLinkExists
	}
	if err != nil {
		return fmt.Errorf("insert oauth link: %w", err)
	}
	return nil
}

// GetUserByOAuth resolves the owning user of a provider identity.
func (r *AuthRepository) GetUserByOAuth(ctx context.Context, provider, providerUserID string) (*auth.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT u.id, u.name, u.email, u.provider, u.created_at, u.updated_at
		 FROM users u
		 JOIN oauth_links l ON l.user_id = u.id
		 WHERE l.provider = $1 AND l.provider_user_id = $2`,
		provider, providerUserID))
}

func (r *AuthRepository) scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Provider, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ auth.Storage = (*AuthRepository)(nil)
