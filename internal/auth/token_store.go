package auth

import (
	"context"
	"time"

	"authdesk/internal/cache"
)

const accessTokenKeyPrefix = "blacklist:access_token:"

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked access token IDs in Redis until the tokens expire.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// BlacklistAccessToken marks a token ID as revoked for ttl.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
// An unreachable Redis reads as not blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, _ := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	return data != nil, nil
}
