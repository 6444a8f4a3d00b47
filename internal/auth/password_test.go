package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"venturevet/internal/validate"
)

func TestPasswordService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates user with hashed password", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage, WithBcryptCost(bcrypt.MinCost))

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)
		storage.On("StorePasswordHash", mock.Anything, mock.Anything, mock.AnythingOfType("[]uint8")).Return(nil)

		user, err := svc.Register(context.Background(), "Alice", "alice@x.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", user.Email)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, ProviderCredentials, user.Provider)
		assert.NotEqual(t, "", user.ID.String())

		// The stored hash must verify against the original password.
		hashArg := storage.Calls[2].Arguments.Get(2).([]byte)
		assert.NoError(t, bcrypt.CompareHashAndPassword(hashArg, []byte("pw123456")))

		storage.AssertExpectations(t)
	})

	t.Run("normalizes email before storing", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage, WithBcryptCost(bcrypt.MinCost))

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)
		storage.On("StorePasswordHash", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		user, err := svc.Register(context.Background(), "Alice", "  ALICE@X.COM ", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", user.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		existing := &User{Email: "alice@x.com"}
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(existing, nil)

		_, err := svc.Register(context.Background(), "Alice", "alice@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		storage.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("rejects duplicate email for oauth-only account", func(t *testing.T) {
		t.Parallel()

		// An account created via OAuth holds the email too; registering a
		// password on top is rejected, not merged.
		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		existing := &User{Email: "alice@x.com", Provider: ProviderGoogle}
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(existing, nil)

		_, err := svc.Register(context.Background(), "Alice", "alice@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("loses create race to concurrent registration", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage, WithBcryptCost(bcrypt.MinCost))

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(ErrEmailAlreadyExists)

		_, err := svc.Register(context.Background(), "Alice", "alice@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		storage.AssertNotCalled(t, "StorePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns field errors for invalid input", func(t *testing.T) {
		t.Parallel()

		svc := NewPasswordService(&MockStorage{})

		_, err := svc.Register(context.Background(), "", "not-an-email", "short")
		require.Error(t, err)

		var verrs validate.Errors
		require.ErrorAs(t, err, &verrs)
		fields := verrs.Fields()
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
	})

	t.Run("cleans up user when hash storage fails", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage, WithBcryptCost(bcrypt.MinCost))

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
		storage.On("StorePasswordHash", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
		storage.On("DeleteUser", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Register(context.Background(), "Alice", "alice@x.com", "pw123456")
		require.Error(t, err)
		storage.AssertCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}

func TestPasswordService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &User{Email: "alice@x.com", Provider: ProviderCredentials}

	t.Run("succeeds with correct password", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(user, nil)
		storage.On("GetPasswordHash", mock.Anything, user.ID).Return(hash, nil)

		got, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("returns same user on repeated verification", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(user, nil)
		storage.On("GetPasswordHash", mock.Anything, user.ID).Return(hash, nil)

		first, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123456")
		require.NoError(t, err)
		second, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("collapses unknown user to invalid credentials", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		storage.On("GetUserByEmail", mock.Anything, "nobody@x.com").Return(nil, ErrUserNotFound)

		_, err := svc.Authenticate(context.Background(), "nobody@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("collapses oauth-only account to invalid credentials", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(user, nil)
		storage.On("GetPasswordHash", mock.Anything, user.ID).Return(nil, ErrNoPassword)

		_, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("collapses wrong password to invalid credentials", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(user, nil)
		storage.On("GetPasswordHash", mock.Anything, user.ID).Return(hash, nil)

		_, err := svc.Authenticate(context.Background(), "alice@x.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("collapses store failure to invalid credentials", func(t *testing.T) {
		t.Parallel()

		// A store timeout fails closed: it must never silently succeed.
		storage := &MockStorage{}
		svc := NewPasswordService(storage)

		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, errors.New("connection refused"))

		_, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
