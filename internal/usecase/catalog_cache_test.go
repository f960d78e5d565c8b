package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

func TestCatalogCacheServesSnapshot(t *testing.T) {
	calls := 0
	cache := NewCatalogCache(func(ctx context.Context) ([]domain.Product, error) {
		calls++
		return []domain.Product{{SKU: "A", Name: "A"}}, nil
	}, time.Minute)

	ctx := context.Background()
	first, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, calls, "second read must come from the cache")
}

func TestCatalogCacheExpiry(t *testing.T) {
	calls := 0
	cache := NewCatalogCache(func(ctx context.Context) ([]domain.Product, error) {
		calls++
		return []domain.Product{{SKU: "A", Name: "A"}}, nil
	}, time.Millisecond)

	ctx := context.Background()
	_, _ = cache.Get(ctx)
	time.Sleep(5 * time.Millisecond)
	_, _ = cache.Get(ctx)
	assert.Equal(t, 2, calls)
}

func TestCatalogCacheInvalidate(t *testing.T) {
	calls := 0
	cache := NewCatalogCache(func(ctx context.Context) ([]domain.Product, error) {
		calls++
		return []domain.Product{{SKU: "A", Name: "A"}}, nil
	}, time.Minute)

	ctx := context.Background()
	_, _ = cache.Get(ctx)
	cache.Invalidate()
	_, _ = cache.Get(ctx)
	assert.Equal(t, 2, calls)
}

func TestCatalogCacheEmptySnapshotNotServed(t *testing.T) {
	calls := 0
	cache := NewCatalogCache(func(ctx context.Context) ([]domain.Product, error) {
		calls++
		return []domain.Product{}, nil
	}, time.Minute)

	ctx := context.Background()
	_, _ = cache.Get(ctx)
	_, _ = cache.Get(ctx)
	assert.Equal(t, 2, calls, "empty snapshots are rebuilt on every read")
}

func TestCatalogCacheOversizedSnapshotNotCached(t *testing.T) {
	calls := 0
	big := strings.Repeat("x", 2*catalogCacheCap)
	cache := NewCatalogCache(func(ctx context.Context) ([]domain.Product, error) {
		calls++
		return []domain.Product{{SKU: "A", Name: "A", Description: big}}, nil
	}, time.Minute)

	ctx := context.Background()
	first, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Len(t, first, 1, "oversized snapshots are still returned")

	_, _ = cache.Get(ctx)
	assert.Equal(t, 2, calls, "snapshots over the size cap never enter the cache")
}

func TestCatalogCacheLoadError(t *testing.T) {
	boom := errors.New("sheet gone")
	cache := NewCatalogCache(func(ctx context.Context) ([]domain.Product, error) {
		return nil, boom
	}, time.Minute)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, boom)
}
