package cache

import (
	"context"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PaymentInfoCacheFactory creates the payment info cache based on configuration
type PaymentInfoCacheFactory struct {
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*PaymentInfoCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *PaymentInfoCacheFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewPaymentInfoCacheFactory creates a new factory
func NewPaymentInfoCacheFactory(cfg config.RedisConfig, opts ...FactoryOption) *PaymentInfoCacheFactory {
	f := &PaymentInfoCacheFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a tiered Redis cache when Redis is enabled and
// reachable, and an in-memory cache otherwise. The tiered cache only evicts
// other instances once StartInvalidationSubscription is running. The Redis client is returned
// for sharing with other components; it is nil for the in-memory cache.
func (f *PaymentInfoCacheFactory) CreateCache(ctx context.Context) (invoice.PaymentInfoCache, *redis.Client) {
	local := NewInMemoryPaymentInfoCache(f.redisConfig.CacheTTL)
	if !f.redisConfig.Enabled {
		f.logger.Info("Using in-memory payment info cache")
		return local, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		f.logger.Warn("Redis unavailable, falling back to in-memory payment info cache. "+
			"Cached payment info is not shared between instances.",
			zap.Error(err))
		return local, nil
	}

	f.logger.Info("Using Redis payment info cache")
	remote := NewRedisPaymentInfoCache(client, f.redisConfig.CacheTTL)
	return NewTieredPaymentInfoCache(local, remote, f.logger,
		WithInvalidator(NewRedisPaymentInfoInvalidator(client, f.logger)),
	), client
}
