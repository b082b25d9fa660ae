package auth

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers signed-out sessions until their tokens expire,
// so a locally verified token cannot be reused after sign-out
type TokenBlacklist interface {
	// AddToBlacklist revokes a session or token id for ttl
	AddToBlacklist(ctx context.Context, key string, ttl time.Duration) error

	// IsBlacklisted reports whether the id was revoked
	IsBlacklisted(ctx context.Context, key string) (bool, error)
}

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisTokenBlacklist creates a token blacklist with an existing Redis client
func NewRedisTokenBlacklist(client redis.Cmdable) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: "invoicer:auth:revoked:",
	}
}

// AddToBlacklist stores the id with a TTL
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.keyPrefix+key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks whether the id is stored
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, key string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revoked ids in process memory.
// Revocations are not shared between instances.
type InMemoryTokenBlacklist struct {
	entries *gocache.Cache
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{entries: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// AddToBlacklist adds an id to the in-memory blacklist
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.entries.Set(key, struct{}{}, ttl)
	return nil
}

// IsBlacklisted checks if an id is blacklisted and not yet expired
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, key string) (bool, error) {
	_, found := b.entries.Get(key)
	return found, nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
