package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"receiptbox/internal/errors"
	"receiptbox/internal/model"
)

func TestUserService_GetUser(t *testing.T) {
	t.Run("returns the stored profile", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Email: "a@b.c"}, nil)

		svc := NewUserService(repo, nil)
		user, err := svc.GetUser(context.Background(), 5)

		assert.NoError(t, err)
		assert.Equal(t, "a@b.c", user.Email)
	})

	t.Run("maps missing rows to not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(repo, nil)
		_, err := svc.GetUser(context.Background(), 5)

		assert.ErrorIs(t, err, errors.ErrUserNotFound)
	})
}
