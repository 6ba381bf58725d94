package service

import (
	"context"
	"io"
	"testing"

	"zapis/internal/database"
	"zapis/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(store *mockStore) *UserService {
	logger := zerolog.New(io.Discard)
	return NewUserService(store, &logger)
}

func TestUserServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("trims contact fields", func(t *testing.T) {
		store := new(mockStore)
		svc := newUserService(store)

		store.On("UpsertUserByPhone", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Name == "Мария" && u.Phone == "+79990001122" && u.Email == "m@example.com"
		})).Return(nil).Once()

		_, err := svc.Register(ctx, "  Мария ", " +79990001122 ", " m@example.com ")
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("phone required", func(t *testing.T) {
		svc := newUserService(new(mockStore))

		_, err := svc.Register(ctx, "Мария", "  ", "")
		assert.Error(t, err)
	})

	t.Run("name required", func(t *testing.T) {
		svc := newUserService(new(mockStore))

		_, err := svc.Register(ctx, " ", "+79990001122", "")
		assert.Error(t, err)
	})
}

func TestUserServiceUpdateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("updates and re-reads", func(t *testing.T) {
		store := new(mockStore)
		svc := newUserService(store)

		store.On("UpdateUserContact", ctx, int64(7), "Мария", "new@example.com").Return(nil).Once()
		store.On("GetUser", ctx, int64(7)).Return(&models.User{ID: 7, Name: "Мария", Email: "new@example.com"}, nil).Once()

		user, err := svc.UpdateContact(ctx, 7, "Мария", "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		store := new(mockStore)
		svc := newUserService(store)

		store.On("UpdateUserContact", ctx, int64(99), "Мария", "").Return(database.ErrNotFound).Once()

		_, err := svc.UpdateContact(ctx, 99, "Мария", "")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}
