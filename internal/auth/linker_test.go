package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func googleProfile() ProviderProfile {
	return ProviderProfile{
		ProviderUserID: "g-12345",
		Email:          "alice@x.com",
		EmailVerified:  true,
		Name:           "Alice",
		AccessToken:    "at",
		RefreshToken:   "rt",
	}
}

func TestLinker_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("fast path returns linked user without writes", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		user := &User{ID: uuid.New(), Email: "alice@x.com"}
		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(user, nil)

		res, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, user.ID, res.User.ID)
		assert.False(t, res.Linked)
		storage.AssertNotCalled(t, "StoreOAuthLink", mock.Anything, mock.Anything)
		storage.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("links additively onto existing account by email", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		existing := &User{ID: uuid.New(), Email: "alice@x.com", Provider: ProviderCredentials}
		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, ErrUserNotFound)
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(existing, nil)
		storage.On("StoreOAuthLink", mock.Anything, mock.MatchedBy(func(l *OAuthLink) bool {
			return l.UserID == existing.ID && l.Provider == ProviderGoogle && l.ProviderUserID == "g-12345"
		})).Return(nil)

		res, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, existing.ID, res.User.ID)
		assert.True(t, res.Linked)

		// Linking must never touch the password hash or other identities.
		storage.AssertNotCalled(t, "StorePasswordHash", mock.Anything, mock.Anything, mock.Anything)
		storage.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("creates user and link for first-time sign-in", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, ErrUserNotFound)
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.Email == "alice@x.com" && u.Provider == ProviderGoogle
		})).Return(nil)
		storage.On("StoreOAuthLink", mock.Anything, mock.Anything).Return(nil)

		res, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", res.User.Email)
		assert.False(t, res.Linked)
		storage.AssertExpectations(t)
	})

	t.Run("is idempotent for the same provider identity", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		existing := &User{ID: uuid.New(), Email: "alice@x.com"}
		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, ErrUserNotFound).Once()
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(existing, nil).Once()
		storage.On("StoreOAuthLink", mock.Anything, mock.Anything).Return(nil).Once()
		// Second call takes the fast path, no further writes.
		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(existing, nil)

		first, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		second, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, second.User.ID)
		storage.AssertExpectations(t)
	})

	t.Run("recovers lost link race by re-reading", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		existing := &User{ID: uuid.New(), Email: "alice@x.com"}
		winner := &User{ID: existing.ID, Email: "alice@x.com"}

		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, ErrUserNotFound).Once()
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(existing, nil)
		storage.On("StoreOAuthLink", mock.Anything, mock.Anything).Return(ErrLinkExists)
		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(winner, nil)

		res, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, winner.ID, res.User.ID)
	})

	t.Run("lost create race links onto the winner's account", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		winner := &User{ID: uuid.New(), Email: "alice@x.com"}

		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, ErrUserNotFound)
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, ErrUserNotFound).Once()
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(ErrEmailAlreadyExists)
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(winner, nil)
		storage.On("StoreOAuthLink", mock.Anything, mock.Anything).Return(nil)

		res, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, winner.ID, res.User.ID)
	})

	t.Run("swallows link write failure after provider verified identity", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		existing := &User{ID: uuid.New(), Email: "alice@x.com"}
		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, ErrUserNotFound)
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(existing, nil)
		storage.On("StoreOAuthLink", mock.Anything, mock.Anything).Return(errors.New("write failed"))

		// Sign-in proceeds; only the durable link is missing.
		res, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, existing.ID, res.User.ID)
		assert.False(t, res.Linked)
	})

	t.Run("fails when the store is unreachable", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		linker := NewLinker(storage)

		storage.On("GetUserByOAuth", mock.Anything, ProviderGoogle, "g-12345").Return(nil, errors.New("connection refused"))

		_, err := linker.Reconcile(context.Background(), ProviderGoogle, googleProfile())
		assert.ErrorIs(t, err, ErrLinkingFailed)
	})
}
