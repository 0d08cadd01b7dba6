package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/middleware"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/response"
	"github.com/SigNoz/marketplace-go-app/internal/services"
	"github.com/SigNoz/marketplace-go-app/pkg/config"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Services bundles the domain services the handlers call
type Services struct {
	Accounts *services.AccountService
	Shops    *services.ShopService
	Catalog  *services.CatalogService
	Ratings  *services.RatingService
	Cart     *services.ContainerService
	Wishlist *services.ContainerService
	Orders   *services.ContainerService
}

// App holds application dependencies
type App struct {
	config  *config.Config
	metrics *metrics.AppMetrics
	log     *logger.Logger

	accounts *services.AccountService
	shops    *services.ShopService
	catalog  *services.CatalogService
	ratings  *services.RatingService
	cart     *services.ContainerService
	wishlist *services.ContainerService
	orders   *services.ContainerService

	healthCheck func(context.Context) error
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, m *metrics.AppMetrics, log *logger.Logger, svc Services) *App {
	return &App{
		config:   cfg,
		metrics:  m,
		log:      log.With("component", "api"),
		accounts: svc.Accounts,
		shops:    svc.Shops,
		catalog:  svc.Catalog,
		ratings:  svc.Ratings,
		cart:     svc.Cart,
		wishlist: svc.Wishlist,
		orders:   svc.Orders,
	}
}

// SetHealthCheck installs a check of backing stores run by the health endpoint
func (a *App) SetHealthCheck(check func(context.Context) error) {
	a.healthCheck = check
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.RecoveryMiddleware(a.log))
	r.Use(middleware.MetricsMiddleware(a.metrics, a.log))
	r.Use(middleware.AuthMiddleware(a.accounts, a.metrics, a.log))

	api := r.PathPrefix("/api/v1").Subrouter()

	a.accountRoutes(api)
	a.shopRoutes(api.PathPrefix("/shops").Subrouter())

	market := api.PathPrefix("/marketplace").Subrouter()
	a.marketplaceRoutes(market)
	a.containerRoutes(market.PathPrefix("/me/cart").Subrouter(), a.cart)
	a.containerRoutes(market.PathPrefix("/me/wish-list").Subrouter(), a.wishlist)
	a.containerRoutes(market.PathPrefix("/me/order").Subrouter(), a.orders)

	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if a.healthCheck != nil {
		if err := a.healthCheck(r.Context()); err != nil {
			a.log.Warn("health check failed", "error", err)
			response.Fail(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	response.JSON(w, http.StatusOK, "healthy", map[string]string{"status": "healthy"})
}

// auth wraps a handler that needs an authenticated caller
func (a *App) auth(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireAuth(a.log, h)
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, r, a.log.With("request_id", middleware.RequestIDFromContext(r.Context())), err)
}

func (a *App) paged(w http.ResponseWriter, r *http.Request, message string, data interface{}, total int64, page models.Page) {
	response.Paged(w, r, a.log, message, data, total, page)
}

// pathID reads a positive integer path variable
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// pathIDs reads several path variables in order
func pathIDs(r *http.Request, names ...string) ([]int64, error) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// pageOf reads the 1-based ?page parameter
func pageOf(r *http.Request, size int) (models.Page, error) {
	page := models.Page{Number: 1, Size: size}
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return page, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > page.MaxNumber() {
		return page, apperr.NotFound("invalid page")
	}
	page.Number = n
	return page, nil
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body too large")
		}
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}
