package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sampleInfo = invoice.PaymentInfo{AccountName: "Asha Traders", AccountNumber: "001122334455", IFSC: "HDFC0001234"}

type MockPaymentInfoCache struct {
	mock.Mock
}

func (m *MockPaymentInfoCache) Get(ctx context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.PaymentInfo), args.Error(1)
}

func (m *MockPaymentInfoCache) Set(ctx context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	return m.Called(ctx, userID, info).Error(0)
}

func (m *MockPaymentInfoCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func TestInMemoryPaymentInfoCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryPaymentInfoCache(time.Minute)
	userID := uuid.New()

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, userID, sampleInfo))
	got, err = c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, sampleInfo, *got)

	got.IFSC = "CHANGED"
	again, _ := c.Get(ctx, userID)
	assert.Equal(t, "HDFC0001234", again.IFSC)

	require.NoError(t, c.Delete(ctx, userID))
	got, _ = c.Get(ctx, userID)
	assert.Nil(t, got)
}

func TestInMemoryPaymentInfoCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryPaymentInfoCache(10 * time.Millisecond)
	userID := uuid.New()
	require.NoError(t, c.Set(ctx, userID, sampleInfo))

	time.Sleep(30 * time.Millisecond)

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTieredPaymentInfoCache(t *testing.T) {
	ctx := context.Background()

	t.Run("L2 hits are promoted to L1", func(t *testing.T) {
		userID := uuid.New()
		l1 := NewInMemoryPaymentInfoCache(time.Minute)
		l2 := new(MockPaymentInfoCache)
		l2.On("Get", mock.Anything, userID).Return(&sampleInfo, nil).Once()
		c := NewTieredPaymentInfoCache(l1, l2, nil)

		first, err := c.Get(ctx, userID)
		require.NoError(t, err)
		second, err := c.Get(ctx, userID)
		require.NoError(t, err)

		assert.Equal(t, sampleInfo, *first)
		assert.Equal(t, sampleInfo, *second)
		assert.Equal(t, CacheStats{L1Hits: 1, L2Hits: 1}, c.Stats())
		l2.AssertExpectations(t)
	})

	t.Run("L2 errors are misses", func(t *testing.T) {
		userID := uuid.New()
		l2 := new(MockPaymentInfoCache)
		l2.On("Get", mock.Anything, userID).Return(nil, errors.New("connection refused"))
		c := NewTieredPaymentInfoCache(NewInMemoryPaymentInfoCache(time.Minute), l2, nil)

		got, err := c.Get(ctx, userID)

		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, int64(1), c.Stats().L2Errors)
	})

	t.Run("delete clears both tiers", func(t *testing.T) {
		userID := uuid.New()
		l1 := NewInMemoryPaymentInfoCache(time.Minute)
		l2 := new(MockPaymentInfoCache)
		l2.On("Set", mock.Anything, userID, sampleInfo).Return(nil)
		l2.On("Delete", mock.Anything, userID).Return(nil)
		c := NewTieredPaymentInfoCache(l1, l2, nil)

		require.NoError(t, c.Set(ctx, userID, sampleInfo))
		require.NoError(t, c.Delete(ctx, userID))

		got, _ := l1.Get(ctx, userID)
		assert.Nil(t, got)
		l2.AssertExpectations(t)
	})
}

// localBus delivers invalidations to every subscriber in process
type localBus struct {
	mu          sync.Mutex
	subscribers []func(uuid.UUID)
	publishErr  error
}

func (b *localBus) Publish(_ context.Context, userID uuid.UUID) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.mu.Lock()
	subs := append([]func(uuid.UUID){}, b.subscribers...)
	b.mu.Unlock()
	for _, evict := range subs {
		evict(userID)
	}
	return nil
}

func (b *localBus) Subscribe(ctx context.Context, evict func(uuid.UUID)) error {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, evict)
	b.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (b *localBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func TestTieredPaymentInfoCache_CrossInstanceInvalidation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared := NewInMemoryPaymentInfoCache(time.Minute)
	bus := &localBus{}
	a := NewTieredPaymentInfoCache(NewInMemoryPaymentInfoCache(time.Minute), shared, nil, WithInvalidator(bus))
	b := NewTieredPaymentInfoCache(NewInMemoryPaymentInfoCache(time.Minute), shared, nil, WithInvalidator(bus))
	for _, c := range []*TieredPaymentInfoCache{a, b} {
		go func(c *TieredPaymentInfoCache) { _ = c.StartInvalidationSubscription(ctx) }(c)
	}
	require.Eventually(t, func() bool { return bus.count() == 2 }, time.Second, 5*time.Millisecond)

	userID := uuid.New()
	old := invoice.PaymentInfo{AccountName: "Old Account", AccountNumber: "111", IFSC: "SBIN0000001"}
	require.NoError(t, a.Set(ctx, userID, old))

	warmed, err := b.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, warmed)

	require.NoError(t, a.Delete(ctx, userID))

	got, err := b.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got, "instance b must not serve the entry deleted on instance a")
}

func TestTieredPaymentInfoCache_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("publish failure is returned", func(t *testing.T) {
		userID := uuid.New()
		l2 := new(MockPaymentInfoCache)
		l2.On("Delete", mock.Anything, userID).Return(nil)
		bus := &localBus{publishErr: errors.New("redis down")}
		c := NewTieredPaymentInfoCache(NewInMemoryPaymentInfoCache(time.Minute), l2, nil, WithInvalidator(bus))

		assert.EqualError(t, c.Delete(ctx, userID), "redis down")
	})

	t.Run("broadcast still sent when L2 delete fails", func(t *testing.T) {
		userID := uuid.New()
		l2 := new(MockPaymentInfoCache)
		l2.On("Delete", mock.Anything, userID).Return(errors.New("timeout"))
		var evicted []uuid.UUID
		bus := &localBus{subscribers: []func(uuid.UUID){func(id uuid.UUID) { evicted = append(evicted, id) }}}
		c := NewTieredPaymentInfoCache(NewInMemoryPaymentInfoCache(time.Minute), l2, nil, WithInvalidator(bus))

		assert.EqualError(t, c.Delete(ctx, userID), "timeout")
		assert.Equal(t, []uuid.UUID{userID}, evicted)
	})

	t.Run("no invalidator means no subscription", func(t *testing.T) {
		c := NewTieredPaymentInfoCache(NewInMemoryPaymentInfoCache(time.Minute), NewInMemoryPaymentInfoCache(time.Minute), nil)
		assert.NoError(t, c.StartInvalidationSubscription(ctx))
	})
}

func TestInvalidationMessage(t *testing.T) {
	userID := uuid.New()
	data, err := encodeInvalidation(userID, time.Unix(1700000000, 0))
	require.NoError(t, err)

	got, err := decodeInvalidation(string(data))
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "evict everything"},
		{"missing user", `{"timestamp":1}`},
		{"bad uuid", `{"user_id":"not-a-uuid"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeInvalidation(tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestRedisPaymentInfoInvalidator_CloseWithoutSubscription(t *testing.T) {
	assert.NoError(t, NewRedisPaymentInfoInvalidator(nil, nil).Close())
}

func TestPaymentInfoCacheFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled redis uses memory", func(t *testing.T) {
		c, client := NewPaymentInfoCacheFactory(config.RedisConfig{CacheTTL: time.Minute}).CreateCache(ctx)

		assert.IsType(t, &InMemoryPaymentInfoCache{}, c)
		assert.Nil(t, client)
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1, CacheTTL: time.Minute}

		c, client := NewPaymentInfoCacheFactory(cfg).CreateCache(ctx)

		assert.IsType(t, &InMemoryPaymentInfoCache{}, c)
		assert.Nil(t, client)
	})
}
