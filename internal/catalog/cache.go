package catalog

import (
	"context"
	"sync"
	"time"

	"bks/internal"
)

// Source yields the current set of pricing components. The database, the
// price-list importer and the remote feed client all fit this signature.
type Source func(ctx context.Context) ([]internal.PricingComponent, error)

// FallbackSource prefers primary and defers to fallback when primary errors
// or yields no components. A nil fallback passes the primary result through.
func FallbackSource(primary, fallback Source) Source {
	return func(ctx context.Context) ([]internal.PricingComponent, error) {
		components, err := primary(ctx)
		if err == nil && len(components) > 0 {
			return components, nil
		}
		if fallback == nil {
			return components, err
		}
		return fallback(ctx)
	}
}

// Cache serves a catalog snapshot and refetches from its source once the
// snapshot is older than the TTL. It is owned by the caller and safe for
// concurrent use. A TTL of zero disables caching entirely.
type Cache struct {
	mu        sync.Mutex
	source    Source
	ttl       time.Duration
	snapshot  *Snapshot
	fetchedAt time.Time
}

func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{source: source, ttl: ttl}
}

// Get returns the cached snapshot, refreshing it when expired. A fetch
// failure with a still-populated cache returns the stale snapshot rather
// than an error; quoting from slightly old prices beats failing the lead.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.ttl > 0 && time.Since(c.fetchedAt) < c.ttl {
		return c.snapshot, nil
	}

	components, err := c.source(ctx)
	if err != nil {
		if c.snapshot != nil {
			return c.snapshot, nil
		}
		return nil, err
	}

	c.snapshot = NewSnapshot(components)
	c.fetchedAt = time.Now()
	return c.snapshot, nil
}

// Invalidate drops the cached snapshot so the next Get refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}
