package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediately(ctx context.Context, fn func(context.Context)) { fn(ctx) }

func newCachedProducts(t *testing.T) (*MemoryStore, ProductRepository) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run product cache tests")
	}

	rdb, err := ConnectRedis(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.FlushDB(context.Background()).Err())

	store := NewMemoryStore()
	cache := NewProductCache(rdb, time.Minute, metrics.NewNoop(), logger.NewNop())
	return store, cache.Wrap(store.Products(), immediately)
}

func TestProductCacheServesAndInvalidates(t *testing.T) {
	store, products := newCachedProducts(t)
	ctx := context.Background()

	cat := store.SeedCategory("Books", "")
	sub := store.SeedSubCategory(cat.ID, "Novels", "")
	p := &models.Product{ShopID: 1, CompanyID: 1, CategoryID: cat.ID, SubCategoryID: sub.ID, Name: "Dune", Price: decimal.NewFromInt(20)}
	require.NoError(t, products.Create(ctx, p))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)

	// changes made behind the cache stay invisible until invalidated
	raw := *p
	raw.Name = "Dune Messiah"
	require.NoError(t, store.Products().Update(ctx, &raw))
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)

	require.NoError(t, products.Update(ctx, &raw))
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Name)

	_, err = products.GetInShop(ctx, 2, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCacheRemembersMissingProducts(t *testing.T) {
	_, products := newCachedProducts(t)
	ctx := context.Background()

	_, err := products.GetByID(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = products.GetByID(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
}
