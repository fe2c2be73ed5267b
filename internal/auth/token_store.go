package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"receiptbox/internal/cache"
	"receiptbox/internal/model"
)

const refreshTokenKeyPrefix = "refresh_token:"

// refreshTokenData is the payload stored per refresh token.
type refreshTokenData struct {
	UserID uint       `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, identity Identity, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (Identity, error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
}

// TokenStore handles storage and retrieval of refresh tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, identity Identity, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   identity.Role,
	})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}

	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, payload, ttl)
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (Identity, error) {
	key := refreshTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return Identity{}, fmt.Errorf("refresh token not found")
	}

	var tokenData refreshTokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return Identity{}, fmt.Errorf("unmarshal token data: %w", err)
	}

	return Identity{
		UserID: tokenData.UserID,
		Email:  tokenData.Email,
		Role:   tokenData.Role,
	}, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Delete(ctx, key)
}
