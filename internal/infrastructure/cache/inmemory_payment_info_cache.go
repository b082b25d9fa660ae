package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	gocache "github.com/patrickmn/go-cache"
)

// InMemoryPaymentInfoCache keeps payment info in process memory.
// Entries are local to the instance.
type InMemoryPaymentInfoCache struct {
	entries *gocache.Cache
}

// NewInMemoryPaymentInfoCache creates a cache whose entries live for ttl
func NewInMemoryPaymentInfoCache(ttl time.Duration) *InMemoryPaymentInfoCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryPaymentInfoCache{entries: gocache.New(ttl, 2*ttl)}
}

// Get returns nil, nil on a miss
func (c *InMemoryPaymentInfoCache) Get(_ context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	v, found := c.entries.Get(userID.String())
	if !found {
		return nil, nil
	}
	info := v.(invoice.PaymentInfo)
	return &info, nil
}

// Set stores a copy of the payment info
func (c *InMemoryPaymentInfoCache) Set(_ context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	c.entries.SetDefault(userID.String(), info)
	return nil
}

// Delete removes the user's entry
func (c *InMemoryPaymentInfoCache) Delete(_ context.Context, userID uuid.UUID) error {
	c.entries.Delete(userID.String())
	return nil
}

// ItemCount returns the number of cached users, including expired entries
// not yet cleaned up
func (c *InMemoryPaymentInfoCache) ItemCount() int {
	return c.entries.ItemCount()
}

var _ invoice.PaymentInfoCache = (*InMemoryPaymentInfoCache)(nil)
