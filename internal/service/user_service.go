package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"receiptbox/internal/cache"
	"receiptbox/internal/errors"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
)

const userCacheTTL = 5 * time.Minute

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// UserService exposes the caller's own profile.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, userCacheKey(id), user, userCacheTTL)
	return user, nil
}
