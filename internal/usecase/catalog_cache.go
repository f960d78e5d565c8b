package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

const (
	// DefaultCatalogTTL bounds how stale a served snapshot can be.
	DefaultCatalogTTL = 300 * time.Second
	// catalogCacheCap skips caching snapshots whose JSON form exceeds
	// this size, mirroring the backing store's per-entry limit.
	catalogCacheCap = 100_000
)

// CatalogCache is a time-bounded read-through cache over the catalog
// build. It owns the single live snapshot; every catalog mutation must
// call Invalidate before returning so stale inherited attributes are
// never served. Reads are lock-free with respect to ledger commits and
// may race an invalidation; last write wins.
type CatalogCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	load    func(ctx context.Context) ([]domain.Product, error)
	snap    []domain.Product
	expires time.Time
}

func NewCatalogCache(load func(ctx context.Context) ([]domain.Product, error), ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{ttl: ttl, load: load}
}

// Get returns the cached snapshot when present, fresh and non-empty;
// otherwise it rebuilds, caches the result if it fits the size cap, and
// returns it either way.
func (c *CatalogCache) Get(ctx context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	if len(c.snap) > 0 && time.Now().Before(c.expires) {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(snap); err == nil {
		if len(raw) <= catalogCacheCap {
			c.mu.Lock()
			c.snap = snap
			c.expires = time.Now().Add(c.ttl)
			c.mu.Unlock()
			log.Debug().Int("products", len(snap)).Int("bytes", len(raw)).Msg("catalog cached")
		} else {
			log.Warn().Int("bytes", len(raw)).Msg("catalog too large to cache")
		}
	}

	return snap, nil
}

// Invalidate unconditionally drops the snapshot.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.expires = time.Time{}
	c.mu.Unlock()
}
