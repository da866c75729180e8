// Package routing maps a predicted category to the institution that should
// handle it, using a short-lived in-process copy of the institution list.
package routing

import (
	"context"
	"sync"
	"time"

	"igire/backend/internal/models"
)

// Loader fetches the authoritative institution list.
type Loader interface {
	ListInstitutions(ctx context.Context) ([]models.Institution, error)
}

// Cache memoizes the institution list for a fixed TTL.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu          sync.Mutex
	items       []models.Institution
	lastRefresh time.Time
}

// NewCache creates a cache that reloads from loader once ttl has elapsed.
func NewCache(loader Loader, ttl time.Duration) *Cache {
	return &Cache{loader: loader, ttl: ttl, now: time.Now}
}

// Institutions returns the cached list, reloading it when stale.
// A failed reload keeps serving the previous list if there is one.
func (c *Cache) Institutions(ctx context.Context) ([]models.Institution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRefresh.IsZero() && c.now().Sub(c.lastRefresh) < c.ttl {
		return c.items, nil
	}

	items, err := c.loader.ListInstitutions(ctx)
	if err != nil {
		if c.items != nil {
			return c.items, nil
		}
		return nil, err
	}
	c.items = items
	c.lastRefresh = c.now()
	return c.items, nil
}

// Invalidate forces the next read to hit the loader.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.lastRefresh = time.Time{}
	c.mu.Unlock()
}
