package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// PaymentInfoInvalidationChannel carries evictions between instances
	PaymentInfoInvalidationChannel = "invoicer:payment_info:invalidate"

	defaultCloseTimeout = 5 * time.Second
)

// PaymentInfoInvalidator tells every instance to drop its local copy of a
// user's payment info
type PaymentInfoInvalidator interface {
	Publish(ctx context.Context, userID uuid.UUID) error
	// Subscribe blocks, calling evict for each received user id until ctx
	// is cancelled
	Subscribe(ctx context.Context, evict func(userID uuid.UUID)) error
}

type invalidationMessage struct {
	UserID    uuid.UUID `json:"user_id"`
	Timestamp int64     `json:"timestamp"`
}

func encodeInvalidation(userID uuid.UUID, now time.Time) ([]byte, error) {
	return json.Marshal(invalidationMessage{UserID: userID, Timestamp: now.UnixNano()})
}

func decodeInvalidation(payload string) (uuid.UUID, error) {
	var msg invalidationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode invalidation message: %w", err)
	}
	if msg.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalidation message has no user id")
	}
	return msg.UserID, nil
}

// RedisPaymentInfoInvalidator implements PaymentInfoInvalidator with Redis
// Pub/Sub. The client is shared and not closed here.
type RedisPaymentInfoInvalidator struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
}

// NewRedisPaymentInfoInvalidator creates an invalidator on an existing client
func NewRedisPaymentInfoInvalidator(client *redis.Client, logger *zap.Logger) *RedisPaymentInfoInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPaymentInfoInvalidator{
		client:  client,
		channel: PaymentInfoInvalidationChannel,
		logger:  logger,
	}
}

// Publish announces that userID's payment info changed
func (i *RedisPaymentInfoInvalidator) Publish(ctx context.Context, userID uuid.UUID) error {
	data, err := encodeInvalidation(userID, time.Now())
	if err != nil {
		return err
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish payment info invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe listens on the invalidation channel until ctx is done
func (i *RedisPaymentInfoInvalidator) Subscribe(ctx context.Context, evict func(userID uuid.UUID)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.isRunning = true
	i.cancelFn = cancel
	i.doneCh = make(chan struct{})
	done := i.doneCh
	i.mu.Unlock()

	defer func() {
		cancel()
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		close(done)
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to payment info invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Payment info invalidation subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Payment info invalidation channel closed")
				return nil
			}
			userID, err := decodeInvalidation(msg.Payload)
			if err != nil {
				i.logger.Error("Dropping invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			evict(userID)
		}
	}
}

// Close stops a running subscription and waits for it to exit
func (i *RedisPaymentInfoInvalidator) Close() error {
	i.mu.Lock()
	cancelFn, done := i.cancelFn, i.doneCh
	i.mu.Unlock()

	if cancelFn == nil {
		return nil
	}
	cancelFn()
	select {
	case <-done:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("Timeout waiting for invalidation subscription to stop")
	}
	return nil
}

var _ PaymentInfoInvalidator = (*RedisPaymentInfoInvalidator)(nil)
