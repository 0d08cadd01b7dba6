package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type env struct {
	t     *testing.T
	ctx   context.Context
	store *repository.MemoryStore

	accounts *AccountService
	shops    *ShopService
	catalog  *CatalogService
	ratings  *RatingService
	cart     *ContainerService
	wishlist *ContainerService
	orders   *ContainerService

	category    models.Category
	subCategory models.SubCategory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repository.NewMemoryStore()
	m := metrics.NewNoop()
	log := logger.NewNop()

	e := &env{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		accounts: NewAccountService(store, auth.NewTokenIssuer("test-secret", time.Hour), m, log),
		shops:    NewShopService(store, scope.NewResolver(store, m), m, log),
		catalog:  NewCatalogService(store, m, log),
		ratings:  NewRatingService(store, m, log),
		cart:     NewContainerService(models.KindCart, store, m, log),
		wishlist: NewContainerService(models.KindWishlist, store, m, log),
		orders:   NewContainerService(models.KindOrder, store, m, log),
	}
	e.category = store.SeedCategory("Electronics", "devices")
	e.subCategory = store.SeedSubCategory(e.category.ID, "Phones", "mobile phones")
	return e
}

func registration(email, company string) models.RegistrationRequest {
	return models.RegistrationRequest{
		Email:    email,
		Password: "secret123",
		Profile:  models.ProfileInput{FirstName: "Abebe", LastName: "Kebede", Role: models.RoleSeller},
		Company:  models.CompanyInput{Name: company},
	}
}

// seller registers a user with a company and returns the user's identity
func (e *env) seller(email string) (*auth.Identity, *models.Company) {
	e.t.Helper()
	res, err := e.accounts.Register(e.ctx, registration(email, "Company of "+email))
	require.NoError(e.t, err)
	return &auth.Identity{UserID: res.User.ID, Email: res.User.Email}, res.Company
}

func (e *env) shop(id *auth.Identity, company *models.Company) *models.Shop {
	e.t.Helper()
	name := "Main street"
	shop, err := e.shops.CreateShop(e.ctx, id, company.ID, models.ShopInput{Name: &name})
	require.NoError(e.t, err)
	return shop
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (e *env) productInput(name, price, tax string) models.ProductInput {
	return models.ProductInput{
		Name:          &name,
		CategoryID:    &e.category.ID,
		SubCategoryID: &e.subCategory.ID,
		Price:         dec(price),
		Tax:           dec(tax),
	}
}

func (e *env) product(id *auth.Identity, shop *models.Shop, price, tax string) *models.Product {
	e.t.Helper()
	p, err := e.shops.CreateProduct(e.ctx, id, shop.CompanyID, shop.ID, e.productInput(fmt.Sprintf("Product %s", price), price, tax))
	require.NoError(e.t, err)
	return p
}

func (e *env) buyer(email string) *auth.Identity {
	id, _ := e.seller(email)
	return id
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
