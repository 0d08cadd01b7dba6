package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/api"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"github.com/SigNoz/marketplace-go-app/internal/services"
	"github.com/SigNoz/marketplace-go-app/pkg/config"
	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize OpenTelemetry metrics
	ctx := context.Background()
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize metrics", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down meter provider", "error", err)
		}
	}()

	store, healthCheck, cleanup, err := openStore(ctx, cfg, appMetrics, meterProvider.Meter(cfg.OTELServiceName), log)
	if err != nil {
		log.Fatal("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer cleanup()

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL)
	app := api.NewApp(cfg, appMetrics, log, api.Services{
		Accounts: services.NewAccountService(store, tokens, appMetrics, log),
		Shops:    services.NewShopService(store, scope.NewResolver(store, appMetrics), appMetrics, log),
		Catalog:  services.NewCatalogService(store, appMetrics, log),
		Ratings:  services.NewRatingService(store, appMetrics, log),
		Cart:     services.NewContainerService(models.KindCart, store, appMetrics, log),
		Wishlist: services.NewContainerService(models.KindWishlist, store, appMetrics, log),
		Orders:   services.NewContainerService(models.KindOrder, store, appMetrics, log),
	})
	if healthCheck != nil {
		app.SetHealthCheck(healthCheck)
	}

	router := mux.NewRouter()
	app.SetupRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			"port", cfg.AppPort,
			"store", cfg.StoreDriver,
			"otlp_endpoint", cfg.OTELExporterOTLPEndpoint,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server exited")
}
