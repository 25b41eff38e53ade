// Package redis provides a Redis read-through cache for user lookups.
// The worker performs two point lookups per delivery; caching profiles keeps
// the hot path off PostgreSQL without changing the repository contract.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"olymatch/internal/config"
	"olymatch/internal/domain"
	"olymatch/internal/store"
)

// prefixUser namespaces cached profiles.
const prefixUser = "user:tg:"

// UserCache implements store.UserRepository by delegating to an inner
// repository and caching successful lookups with a TTL. Only hits are
// cached: a missing user must stay observable the moment it registers.
// Writes go to the inner repository first, then refresh or drop the key.
type UserCache struct {
	inner  store.UserRepository
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache creates a Redis-backed cache in front of the given repository.
func NewUserCache(cfg *config.RedisConfig, inner store.UserRepository) (*UserCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &UserCache{
		inner:  inner,
		client: client,
		ttl:    cfg.UserTTL,
	}, nil
}

// userKey generates the Redis key for a profile.
func userKey(tgID domain.TelegramID) string {
	return prefixUser + tgID.String()
}

// GetByTelegramID retrieves a profile, serving from cache when fresh.
// Cache failures degrade to the inner repository rather than failing the
// lookup.
func (c *UserCache) GetByTelegramID(ctx context.Context, tgID domain.TelegramID) (*domain.User, error) {
	key := userKey(tgID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var user domain.User
		if unmarshalErr := json.Unmarshal(data, &user); unmarshalErr == nil {
			return &user, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		_ = c.client.Del(ctx, key).Err()
	}

	// A miss and a cache failure both degrade to a store read.
	user, err := c.inner.GetByTelegramID(ctx, tgID)
	if err != nil {
		return nil, err
	}

	c.put(ctx, user)
	return user, nil
}

// Create stores the profile and seeds the cache.
func (c *UserCache) Create(ctx context.Context, user *domain.User) error {
	if err := c.inner.Create(ctx, user); err != nil {
		return err
	}
	c.put(ctx, user)
	return nil
}

// Update modifies the profile and refreshes the cache.
func (c *UserCache) Update(ctx context.Context, user *domain.User) error {
	if err := c.inner.Update(ctx, user); err != nil {
		return err
	}
	c.put(ctx, user)
	return nil
}

// Delete removes the profile and evicts the cache entry.
func (c *UserCache) Delete(ctx context.Context, tgID domain.TelegramID) error {
	if err := c.inner.Delete(ctx, tgID); err != nil {
		return err
	}
	_ = c.client.Del(ctx, userKey(tgID)).Err()
	return nil
}

// List always reads through to the inner repository.
func (c *UserCache) List(ctx context.Context) ([]*domain.User, error) {
	return c.inner.List(ctx)
}

// put caches a profile, best effort.
func (c *UserCache) put(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, userKey(user.TelegramID), data, c.ttl).Err()
}

// Close releases the Redis client.
func (c *UserCache) Close() error {
	return c.client.Close()
}
