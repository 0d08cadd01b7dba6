package main

import (
	"context"
	"fmt"
	"os"

	"github.com/SigNoz/marketplace-go-app/internal/db"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/pkg/config"
	"go.opentelemetry.io/otel/metric"
)

// defaultCatalog seeds the in-memory store; schema.sql seeds the same rows in MySQL
var defaultCatalog = []struct {
	name, description string
	subs              [][2]string
}{
	{"Electronics", "Phones, computers and accessories", [][2]string{
		{"Phones", "Mobile phones"},
		{"Laptops", "Portable computers"},
	}},
	{"Fashion", "Clothing, shoes and jewellery", [][2]string{
		{"Men", "Men's clothing"},
		{"Women", "Women's clothing"},
	}},
	{"Home", "Kitchen, furniture and decor", [][2]string{
		{"Kitchen", "Cookware and appliances"},
		{"Furniture", "Tables, chairs and storage"},
	}},
}

// openStore builds the configured repository.Store. It returns an optional
// health check and a cleanup func that releases the store's connections.
func openStore(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, meter metric.Meter, log *logger.Logger) (repository.Store, func(context.Context) error, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		store := repository.NewMemoryStore()
		for _, c := range defaultCatalog {
			category := store.SeedCategory(c.name, c.description)
			for _, s := range c.subs {
				store.SeedSubCategory(category.ID, s[0], s[1])
			}
		}
		log.Warn("using in-memory store, data is lost on restart")
		return store, nil, func() {}, nil

	case "mysql":
		database, err := db.NewDB(cfg.GetDSN(), meter, cfg.OTELServiceName, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		schemaSQL, err := os.ReadFile(cfg.SchemaPath)
		if err != nil {
			log.Warn("could not read schema, assuming it already exists", "path", cfg.SchemaPath, "error", err)
		} else if err := database.InitSchema(ctx, string(schemaSQL)); err != nil {
			log.Warn("could not initialize schema, assuming it already exists", "error", err)
		}

		var opts []repository.Option
		closers := []func(){func() { _ = database.Close() }}
		if cfg.CacheEnabled() {
			rdb, err := repository.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				log.Warn("product cache disabled", "addr", cfg.RedisAddr, "error", err)
			} else {
				opts = append(opts, repository.WithProductCache(repository.NewProductCache(rdb, cfg.ProductCacheTTL, m, log)))
				closers = append(closers, func() { _ = rdb.Close() })
				log.Info("product cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ProductCacheTTL)
			}
		}

		health := func(ctx context.Context) error {
			database.RecordPoolStats(ctx)
			return database.PingContext(ctx)
		}
		cleanup := func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
		return repository.NewMySQLStore(database, m, log, opts...), health, cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
