package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// ConnectRedis opens a redis client and verifies it with a ping.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// ProductCache is a cache-aside layer for single product lookups.
// Redis failures are logged and fall through to the underlying repository.
type ProductCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.AppMetrics
	log     *logger.Logger
}

func NewProductCache(rdb *redis.Client, ttl time.Duration, m *metrics.AppMetrics, log *logger.Logger) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl, metrics: m, log: log.With("component", "product_cache")}
}

// Wrap decorates repo. afterCommit schedules work once the caller's
// transaction, if any, has committed.
func (c *ProductCache) Wrap(repo ProductRepository, afterCommit func(context.Context, func(context.Context))) ProductRepository {
	return &cachedProducts{inner: repo, cache: c, afterCommit: afterCommit}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) hit(ctx context.Context, hit bool) {
	attr := attribute.String("cache.name", "product")
	if hit {
		c.metrics.Add(ctx, c.metrics.CacheHits, attr)
		return
	}
	c.metrics.Add(ctx, c.metrics.CacheMisses, attr)
}

func (c *ProductCache) invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.Warn("failed to delete product cache", "product_id", id, "error", err)
	}
}

type cachedProducts struct {
	inner       ProductRepository
	cache       *ProductCache
	afterCommit func(context.Context, func(context.Context))
}

func (r *cachedProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	key := productKey(id)
	data, err := r.cache.rdb.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			r.cache.hit(ctx, true)
			return nil, ErrNotFound
		}
		var p models.Product
		if err := json.Unmarshal(data, &p); err != nil {
			r.cache.log.Warn("failed to unmarshal cached product, continuing with DB", "product_id", id, "error", err)
			break
		}
		r.cache.hit(ctx, true)
		return &p, nil
	case errors.Is(err, redis.Nil):
	default:
		r.cache.log.Warn("redis error, continuing with DB", "error", err)
	}

	r.cache.hit(ctx, false)
	p, err := r.inner.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if setErr := r.cache.rdb.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
			r.cache.log.Warn("failed to cache notfound", "product_id", id, "error", setErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(p); err != nil {
		r.cache.log.Warn("failed to marshal product", "product_id", id, "error", err)
	} else if err := r.cache.rdb.Set(ctx, key, raw, r.cache.ttl).Err(); err != nil {
		r.cache.log.Warn("failed to cache product", "product_id", id, "error", err)
	}
	return p, nil
}

func (r *cachedProducts) GetInShop(ctx context.Context, shopID, productID int64) (*models.Product, error) {
	p, err := r.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.ShopID != shopID {
		return nil, ErrNotFound
	}
	return p, nil
}

// invalidate drops the entry now and once more after commit.
func (r *cachedProducts) invalidate(ctx context.Context, id int64) {
	r.cache.invalidate(ctx, id)
	r.afterCommit(ctx, func(ctx context.Context) { r.cache.invalidate(ctx, id) })
}

func (r *cachedProducts) Create(ctx context.Context, p *models.Product) error {
	if err := r.inner.Create(ctx, p); err != nil {
		return err
	}
	// clears a cached notfound marker for the new id
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *cachedProducts) List(ctx context.Context, q models.ProductQuery, page models.Page) ([]models.Product, int64, error) {
	return r.inner.List(ctx, q, page)
}

func (r *cachedProducts) Update(ctx context.Context, p *models.Product) error {
	r.invalidate(ctx, p.ID)
	return r.inner.Update(ctx, p)
}

func (r *cachedProducts) Delete(ctx context.Context, shopID, productID int64) error {
	r.invalidate(ctx, productID)
	return r.inner.Delete(ctx, shopID, productID)
}

func (r *cachedProducts) LockForUpdate(ctx context.Context, id int64) error {
	return r.inner.LockForUpdate(ctx, id)
}

func (r *cachedProducts) RefreshAverageRating(ctx context.Context, id int64) (decimal.Decimal, error) {
	r.invalidate(ctx, id)
	return r.inner.RefreshAverageRating(ctx, id)
}
