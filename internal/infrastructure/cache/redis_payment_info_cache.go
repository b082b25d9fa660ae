package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/redis/go-redis/v9"
)

const paymentInfoKeyPrefix = "invoicer:payment_info:"

type cachedPaymentInfo struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// RedisPaymentInfoCache stores payment info as JSON under a per-user key
type RedisPaymentInfoCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisPaymentInfoCache creates a cache on an existing client
func NewRedisPaymentInfoCache(client redis.Cmdable, ttl time.Duration) *RedisPaymentInfoCache {
	return &RedisPaymentInfoCache{client: client, ttl: ttl}
}

func paymentInfoKey(userID uuid.UUID) string {
	return paymentInfoKeyPrefix + userID.String()
}

// Get returns nil, nil on a miss
func (c *RedisPaymentInfoCache) Get(ctx context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	raw, err := c.client.Get(ctx, paymentInfoKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payment info cache: %w", err)
	}

	var cached cachedPaymentInfo
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached payment info: %w", err)
	}
	return &invoice.PaymentInfo{
		AccountName:   cached.AccountName,
		AccountNumber: cached.AccountNumber,
		IFSC:          cached.IFSC,
	}, nil
}

// Set stores the payment info with the configured TTL
func (c *RedisPaymentInfoCache) Set(ctx context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	raw, err := json.Marshal(cachedPaymentInfo{
		AccountName:   info.AccountName,
		AccountNumber: info.AccountNumber,
		IFSC:          info.IFSC,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payment info: %w", err)
	}
	if err := c.client.Set(ctx, paymentInfoKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write payment info cache: %w", err)
	}
	return nil
}

// Delete removes the user's entry
func (c *RedisPaymentInfoCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, paymentInfoKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate payment info cache: %w", err)
	}
	return nil
}

var _ invoice.PaymentInfoCache = (*RedisPaymentInfoCache)(nil)
