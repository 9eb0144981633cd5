package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/todolist/todolist/internal/model"
)

// principalCachePrefix is the Redis key prefix for resolved principals.
const principalCachePrefix = "auth:principal:"

// cachedPrincipal is the JSON form of a principal stored in Redis.
type cachedPrincipal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func principalKey(userID string) string {
	return principalCachePrefix + userID
}

// GetPrincipal returns the cached principal for a user.
// Returns nil, nil on a cache miss or a corrupted entry.
func (c *Cache) GetPrincipal(ctx context.Context, userID string) (*model.Principal, error) {
	data, err := c.client.Get(ctx, principalKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get principal: %w", err)
	}

	var cached cachedPrincipal
	if err := json.Unmarshal(data, &cached); err != nil || cached.UserID != userID {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Principal{
		UserID:   cached.UserID,
		Username: cached.Username,
		Email:    cached.Email,
	}, nil
}

// SetPrincipal caches a principal.
func (c *Cache) SetPrincipal(ctx context.Context, p *model.Principal) error {
	data, err := json.Marshal(cachedPrincipal{
		UserID:   p.UserID,
		Username: p.Username,
		Email:    p.Email,
	})
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}

	return c.client.Set(ctx, principalKey(p.UserID), data, c.principalTTL).Err()
}

// DeletePrincipal drops a cached principal.
// Called when a profile is updated or an account is deleted.
func (c *Cache) DeletePrincipal(ctx context.Context, userID string) error {
	return c.client.Del(ctx, principalKey(userID)).Err()
}
