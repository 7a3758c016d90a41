package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/repository"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - user:profile:{user_id} - directory record, UserTTL

const userCacheKeyPrefix = "user:profile:"

type CacheConfig struct {
	UserTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{UserTTL: 5 * time.Minute}
}

// CachedUsers is a read-through cache in front of the user directory.
// Every authenticated request resolves its caller, so lookups dominate.
// Interpreter listings bypass the cache to see accounts deactivated
// moments ago.
type CachedUsers struct {
	repository.UserRepository
	client *goredis.Client
	config CacheConfig
}

func NewCachedUsers(client *goredis.Client, next repository.UserRepository, config CacheConfig) *CachedUsers {
	if config.UserTTL <= 0 {
		config = DefaultCacheConfig()
	}
	return &CachedUsers{UserRepository: next, client: client, config: config}
}

func userCacheKey(id uuid.UUID) string {
	return userCacheKeyPrefix + id.String()
}

func (c *CachedUsers) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	if u, ok := c.get(ctx, id); ok {
		return u, nil
	}
	u, err := c.UserRepository.GetUserByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	c.set(ctx, u)
	return u, nil
}

// Upsert writes through and drops the cached copy.
func (c *CachedUsers) Upsert(ctx context.Context, u *user.User) error {
	if err := c.UserRepository.Upsert(ctx, u); err != nil {
		return err
	}
	return c.Invalidate(ctx, u.ID)
}

func (c *CachedUsers) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, userCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate user %s: %w", id, err)
	}
	return nil
}

// get treats every cache failure as a miss.
func (c *CachedUsers) get(ctx context.Context, id uuid.UUID) (user.User, bool) {
	data, err := c.client.Get(ctx, userCacheKey(id)).Bytes()
	if err != nil {
		return user.User{}, false
	}
	var u user.User
	if err := json.Unmarshal(data, &u); err != nil {
		return user.User{}, false
	}
	return u, true
}

func (c *CachedUsers) set(ctx context.Context, u user.User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, userCacheKey(u.ID), data, c.config.UserTTL).Err()
}
