package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// TokenDenylistRepository records revoked token ids in Redis until they would have expired.
// A nil client disables revocation.
type TokenDenylistRepository struct {
	client *redis.Client
}

// NewTokenDenylistRepository constructs the repository.
func NewTokenDenylistRepository(client *redis.Client) *TokenDenylistRepository {
	return &TokenDenylistRepository{client: client}
}

// Enabled reports whether revocations are persisted.
func (r *TokenDenylistRepository) Enabled() bool {
	return r != nil && r.client != nil
}

// Revoke marks jti as revoked for ttl.
func (r *TokenDenylistRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !r.Enabled() || jti == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, denylistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *TokenDenylistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !r.Enabled() || jti == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revoked token: %w", err)
	}
	return n > 0, nil
}
