package reference

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long cached reference data stays fresh.
const DefaultTTL = 10 * time.Minute

// Cached memoizes another Source for a fixed time. Failed loads are not cached.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	data    *Data
	fetched time.Time
}

// NewCached wraps src. A non-positive ttl uses DefaultTTL.
func NewCached(src Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{src: src, ttl: ttl, now: time.Now}
}

// Load implements Source.
func (c *Cached) Load(ctx context.Context) (*Data, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data != nil && c.now().Sub(c.fetched) < c.ttl {
		return c.data, nil
	}
	data, err := c.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.data, c.fetched = data, c.now()
	return data, nil
}

// Invalidate drops the cached data.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}
