package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/internal/response"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"github.com/SigNoz/marketplace-go-app/internal/services"
	"github.com/SigNoz/marketplace-go-app/pkg/config"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	response.Envelope
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	t           *testing.T
	app         *App
	router      *mux.Router
	store       *repository.MemoryStore
	category    models.Category
	subCategory models.SubCategory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	m := metrics.NewNoop()
	log := logger.NewNop()

	app := NewApp(&config.Config{}, m, log, Services{
		Accounts: services.NewAccountService(store, auth.NewTokenIssuer("test-secret", time.Hour), m, log),
		Shops:    services.NewShopService(store, scope.NewResolver(store, m), m, log),
		Catalog:  services.NewCatalogService(store, m, log),
		Ratings:  services.NewRatingService(store, m, log),
		Cart:     services.NewContainerService(models.KindCart, store, m, log),
		Wishlist: services.NewContainerService(models.KindWishlist, store, m, log),
		Orders:   services.NewContainerService(models.KindOrder, store, m, log),
	})
	router := mux.NewRouter()
	app.SetupRoutes(router)

	s := &testServer{t: t, app: app, router: router, store: store}
	s.category = store.SeedCategory("Electronics", "devices")
	s.subCategory = store.SeedSubCategory(s.category.ID, "Phones", "mobile phones")
	return s
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(s.t, rec.Code, env.StatusCode)
	return rec.Code, env
}

func (s *testServer) data(env envelope, v interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(env.Data, v))
}

// signup registers a user and returns its access token, user id and company id
func (s *testServer) signup(email string) (string, int64, int64) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email":        email,
		"password":     "secret123",
		"user_profile": map[string]string{"first_name": "Abebe", "last_name": "Kebede"},
		"company":      map[string]string{"name": "Company of " + email},
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var reg models.RegistrationResult
	s.data(env, &reg)

	code, env = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusOK, code, env.Message)
	var login models.LoginResult
	s.data(env, &login)
	return login.AccessToken, reg.User.ID, reg.Company.ID
}

func (s *testServer) createProduct(token string, companyID int64, price, tax string) (int64, int64) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, fmt.Sprintf("/api/v1/shops/company/%d", companyID), token, map[string]string{"name": "Main street"})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var shop models.Shop
	s.data(env, &shop)

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/v1/shops/company/%d/shop/%d/products", companyID, shop.ID), token, map[string]interface{}{
		"name":         "Phone",
		"category":     s.category.ID,
		"sub_category": s.subCategory.ID,
		"price":        price,
		"tax":          tax,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var product models.Product
	s.data(env, &product)
	return shop.ID, product.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, response.StatusSuccess, env.Status)
}

func TestHealthCheckFailure(t *testing.T) {
	s := newTestServer(t)
	s.app.SetHealthCheck(func(context.Context) error { return errors.New("database is down") })

	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", env.Message)
}

func TestMarketplaceFlow(t *testing.T) {
	s := newTestServer(t)
	sellerToken, _, companyID := s.signup("seller@example.com")
	_, productID := s.createProduct(sellerToken, companyID, "100", "5")
	buyerToken, _, _ := s.signup("buyer@example.com")

	code, env := s.do(http.MethodPost, fmt.Sprintf("/api/v1/marketplace/me/cart/add-item/%d", productID), buyerToken, nil)
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/v1/marketplace/me/cart/add-item/%d", productID), buyerToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, response.StatusError, env.Status)

	code, env = s.do(http.MethodGet, "/api/v1/marketplace/me/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var cart struct {
		Summary map[string]interface{} `json:"summary"`
	}
	s.data(env, &cart)
	assert.Equal(t, "ETB", cart.Summary["currency"])
	assert.Equal(t, "100", cart.Summary["sub_total"])
	assert.Equal(t, "0", cart.Summary["total_discount"])
	assert.Equal(t, "5", cart.Summary["vat"])
	assert.Equal(t, "105", cart.Summary["total"])
	assert.EqualValues(t, 1, cart.Summary["count"])

	code, env = s.do(http.MethodPut, fmt.Sprintf("/api/v1/marketplace/products/%d/rating", productID), buyerToken, map[string]int{"rating": 4})
	require.Equal(t, http.StatusOK, code, env.Message)
	var rating models.RatingResult
	s.data(env, &rating)
	assert.Equal(t, "4.00", rating.AverageRating)

	code, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/marketplace/me/cart/update-quantity/%d", productID), buyerToken, map[string]string{"quantity": "0"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/marketplace/me/cart/dump", buyerToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestContainerEndpointsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/marketplace/me/cart", "/api/v1/marketplace/me/wish-list", "/api/v1/marketplace/me/order"} {
		code, env := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "authentication credentials were not provided", env.Message)
	}

	code, _ := s.do(http.MethodGet, "/api/v1/marketplace/me/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestShopScopeOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tokenA, _, companyA := s.signup("a@example.com")
	tokenC, _, companyC := s.signup("c@example.com")
	shopA, productA := s.createProduct(tokenA, companyA, "10", "1")
	shopC, _ := s.createProduct(tokenC, companyC, "10", "1")

	code, _ := s.do(http.MethodGet, fmt.Sprintf("/api/v1/shops/company/%d/shop/%d", companyA, shopC), "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/shops/company/%d/shop/%d/products/%d", companyA, shopA, productA), tokenC, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/shops/company/%d/shop/%d/products/%d", companyC, shopC, productA), tokenC, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/shops/company/%d/shop/%d/products/%d", companyA, shopA, productA), "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email":        "bad",
		"password":     "123",
		"user_profile": map[string]string{"first_name": "A", "last_name": "B"},
		"company":      map[string]string{"name": "Acme"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")

	code, _ = s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthorizeAndProfile(t *testing.T) {
	s := newTestServer(t)
	token, userID, companyID := s.signup("me@example.com")

	code, env := s.do(http.MethodPost, "/api/v1/auth/authorize", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User is authenticated", env.Message)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/profile", userID), token, nil)
	require.Equal(t, http.StatusOK, code)
	var info struct {
		Company models.CompanyRef `json:"company"`
	}
	s.data(env, &info)
	assert.Equal(t, companyID, info.Company.ID)

	code, env = s.do(http.MethodPost, "/api/v1/auth/check-email", "", map[string]string{"email": "me@example.com"})
	require.Equal(t, http.StatusOK, code)
	var check struct {
		Available bool `json:"available"`
	}
	s.data(env, &check)
	assert.False(t, check.Available)
}

func TestPaginationAndFilter(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/marketplace/products", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.PageInfo)
	assert.Zero(t, env.PageInfo.Count)

	code, _ = s.do(http.MethodGet, "/api/v1/marketplace/products?page=abc", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// a page number whose offset overflows is a bad page, not a server fault
	for _, page := range []string{"9223372036854775807", "1152921504606846976"} {
		code, env = s.do(http.MethodGet, "/api/v1/marketplace/products?page="+page, "", nil)
		assert.Equal(t, http.StatusNotFound, code, "page=%s", page)
		assert.Equal(t, "invalid page", env.Message, "page=%s", page)
	}

	code, env = s.do(http.MethodGet, "/api/v1/marketplace/products/product-filter?price_min=ten", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "price_min")

	code, _ = s.do(http.MethodGet, "/api/v1/marketplace/products/product-filter?category=electronics&has_discount=false", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/marketplace/products/recently-viewed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestFilterQuery(t *testing.T) {
	q, err := filterQuery(map[string][]string{
		"category":       {"Electronics"},
		"discount_price": {"50"},
		"has_discount":   {"true"},
		"rating":         {"3.5"},
		"price_min":      {"10"},
		"price_max":      {"1000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Electronics", q.CategoryName)
	assert.Equal(t, "50", q.DiscountBelow.Decimal.String())
	require.NotNil(t, q.HasDiscount)
	assert.True(t, *q.HasDiscount)
	assert.Equal(t, "3.5", q.RatingAbove.Decimal.String())
	assert.Equal(t, "10", q.PriceAbove.Decimal.String())
	assert.Equal(t, "1000", q.PriceBelow.Decimal.String())
	assert.Nil(t, q.SubCategoryID)
}
