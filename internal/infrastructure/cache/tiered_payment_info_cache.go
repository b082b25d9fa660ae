package cache

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"go.uber.org/zap"
)

// TieredPaymentInfoCache implements a two-tier caching strategy
// L1: Local in-memory cache (fast, but local to instance)
// L2: Redis cache (slower, but shared across instances)
// L2 failures are logged and treated as misses. With an invalidator, Delete
// also evicts the L1 entry on every other instance.
type TieredPaymentInfoCache struct {
	l1          invoice.PaymentInfoCache
	l2          invoice.PaymentInfoCache
	invalidator PaymentInfoInvalidator
	logger      *zap.Logger

	l1Hits   int64
	l2Hits   int64
	misses   int64
	l2Errors int64
}

// CacheStats are hit counters for monitoring
type CacheStats struct {
	L1Hits   int64
	L2Hits   int64
	Misses   int64
	L2Errors int64
}

// TieredOption configures a TieredPaymentInfoCache
type TieredOption func(*TieredPaymentInfoCache)

// WithInvalidator broadcasts deletes to other instances
func WithInvalidator(invalidator PaymentInfoInvalidator) TieredOption {
	return func(c *TieredPaymentInfoCache) {
		c.invalidator = invalidator
	}
}

// NewTieredPaymentInfoCache creates a tiered cache
func NewTieredPaymentInfoCache(l1, l2 invoice.PaymentInfoCache, logger *zap.Logger, opts ...TieredOption) *TieredPaymentInfoCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &TieredPaymentInfoCache{l1: l1, l2: l2, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartInvalidationSubscription evicts L1 entries announced by other
// instances. It blocks until ctx is cancelled.
func (c *TieredPaymentInfoCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, c.handleInvalidation)
}

func (c *TieredPaymentInfoCache) handleInvalidation(userID uuid.UUID) {
	if err := c.l1.Delete(context.Background(), userID); err != nil {
		c.logger.Error("Failed to evict L1 payment info",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}
	c.logger.Debug("Evicted L1 payment info", zap.String("user_id", userID.String()))
}

// Get reads L1 then L2, promoting L2 hits into L1
func (c *TieredPaymentInfoCache) Get(ctx context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	if info, _ := c.l1.Get(ctx, userID); info != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		return info, nil
	}

	info, err := c.l2.Get(ctx, userID)
	if err != nil {
		atomic.AddInt64(&c.l2Errors, 1)
		c.logger.Warn("L2 payment info cache read failed", zap.Error(err))
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	if info == nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&c.l2Hits, 1)
	_ = c.l1.Set(ctx, userID, *info)
	return info, nil
}

// Set writes both tiers; an L2 error is returned after L1 is written
func (c *TieredPaymentInfoCache) Set(ctx context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	_ = c.l1.Set(ctx, userID, info)
	if err := c.l2.Set(ctx, userID, info); err != nil {
		atomic.AddInt64(&c.l2Errors, 1)
		return err
	}
	return nil
}

// Delete invalidates both tiers and tells other instances to drop their L1
// entry. The broadcast is sent even when the L2 delete fails.
func (c *TieredPaymentInfoCache) Delete(ctx context.Context, userID uuid.UUID) error {
	_ = c.l1.Delete(ctx, userID)

	var l2Err error
	if err := c.l2.Delete(ctx, userID); err != nil {
		atomic.AddInt64(&c.l2Errors, 1)
		l2Err = err
	}

	if c.invalidator != nil {
		if err := c.invalidator.Publish(ctx, userID); err != nil {
			c.logger.Warn("Failed to publish payment info invalidation",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			if l2Err == nil {
				return err
			}
		}
	}
	return l2Err
}

// Stats returns the current counters
func (c *TieredPaymentInfoCache) Stats() CacheStats {
	return CacheStats{
		L1Hits:   atomic.LoadInt64(&c.l1Hits),
		L2Hits:   atomic.LoadInt64(&c.l2Hits),
		Misses:   atomic.LoadInt64(&c.misses),
		L2Errors: atomic.LoadInt64(&c.l2Errors),
	}
}

var _ invoice.PaymentInfoCache = (*TieredPaymentInfoCache)(nil)
