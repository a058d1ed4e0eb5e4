package cache

import (
	"context"
	"sync"
	"time"

	"github.com/heoquay/backend/internal/domain/shipper"
)

// InMemoryShipperCache is a process-local ShipperCache
type InMemoryShipperCache struct {
	mu        sync.RWMutex
	list      []shipper.Shipper
	expiresAt time.Time
	filled    bool
	ttl       time.Duration
	now       func() time.Time
}

// InMemoryOption configures an InMemoryShipperCache
type InMemoryOption func(*InMemoryShipperCache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryShipperCache) {
		c.now = now
	}
}

// NewInMemoryShipperCache creates a cache whose entries live for ttl.
// A non-positive ttl keeps entries until invalidated.
func NewInMemoryShipperCache(ttl time.Duration, opts ...InMemoryOption) *InMemoryShipperCache {
	c := &InMemoryShipperCache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements ShipperCache
func (c *InMemoryShipperCache) Get(_ context.Context) ([]shipper.Shipper, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filled || (c.ttl > 0 && !c.now().Before(c.expiresAt)) {
		return nil, false, nil
	}
	out := make([]shipper.Shipper, len(c.list))
	copy(out, c.list)
	return out, true, nil
}

// Set implements ShipperCache
func (c *InMemoryShipperCache) Set(_ context.Context, list []shipper.Shipper) error {
	stored := make([]shipper.Shipper, len(list))
	copy(stored, list)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = stored
	c.filled = true
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate implements ShipperCache
func (c *InMemoryShipperCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	c.filled = false
	return nil
}
