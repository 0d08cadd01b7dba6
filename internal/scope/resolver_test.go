package scope

import (
	"context"
	"testing"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	store    *repository.MemoryStore
	resolver *Resolver
	adminA   *models.User
	companyA *models.Company
	companyC *models.Company
	shopA    *models.Shop
	shopC    *models.Shop
	product  *models.Product
}

func newWorld(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	var w world
	newCompany := func(email string) (*models.User, *models.Company) {
		u := &models.User{Email: email, PasswordHash: "x", IsCompanyAdmin: true}
		require.NoError(t, store.Users().Create(ctx, u))
		c := &models.Company{AdminUserID: u.ID, Name: email}
		require.NoError(t, store.Companies().Create(ctx, c))
		return u, c
	}
	newShop := func(companyID int64) *models.Shop {
		s := &models.Shop{CompanyID: companyID, Name: "shop"}
		require.NoError(t, store.Shops().Create(ctx, s))
		return s
	}

	w.adminA, w.companyA = newCompany("a@example.com")
	_, w.companyC = newCompany("c@example.com")
	w.shopA = newShop(w.companyA.ID)
	w.shopC = newShop(w.companyC.ID)

	w.product = &models.Product{ShopID: w.shopA.ID, CompanyID: w.companyA.ID, Name: "Lamp", Price: decimal.NewFromInt(10)}
	require.NoError(t, store.Products().Create(ctx, w.product))

	w.store = store
	w.resolver = NewResolver(store, metrics.NewNoop())
	return w
}

func ptr(v int64) *int64 { return &v }

func TestResolveFullChain(t *testing.T) {
	w := newWorld(t)

	res, err := w.resolver.Resolve(context.Background(), Request{
		CompanyID: w.companyA.ID, ShopID: ptr(w.shopA.ID), ProductID: ptr(w.product.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, w.companyA.ID, res.Company.ID)
	assert.Equal(t, w.shopA.ID, res.Shop.ID)
	assert.Equal(t, w.product.ID, res.Product.ID)
}

func TestResolveFailsAtFirstBrokenLink(t *testing.T) {
	w := newWorld(t)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "unknown company", req: Request{CompanyID: 999, ShopID: ptr(w.shopA.ID)}, want: ErrCompanyNotFound},
		{name: "shop of another company", req: Request{CompanyID: w.companyA.ID, ShopID: ptr(w.shopC.ID)}, want: ErrShopNotFound},
		{name: "unknown shop", req: Request{CompanyID: w.companyA.ID, ShopID: ptr(999)}, want: ErrShopNotFound},
		{name: "product of another shop", req: Request{CompanyID: w.companyC.ID, ShopID: ptr(w.shopC.ID), ProductID: ptr(w.product.ID)}, want: ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := w.resolver.Resolve(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, apperr.IsNotFound(err))
		})
	}
}

func TestResolveForMutation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	req := Request{CompanyID: w.companyA.ID, ShopID: ptr(w.shopA.ID)}

	_, err := w.resolver.ResolveForMutation(ctx, req, nil)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = w.resolver.ResolveForMutation(ctx, req, &auth.Identity{UserID: w.companyC.AdminUserID})
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := w.resolver.ResolveForMutation(ctx, req, &auth.Identity{UserID: w.adminA.ID})
	require.NoError(t, err)
	assert.Equal(t, w.shopA.ID, res.Shop.ID)

	// the admin of A still cannot reach a shop of C through A
	_, err = w.resolver.ResolveForMutation(ctx, Request{CompanyID: w.companyA.ID, ShopID: ptr(w.shopC.ID)}, &auth.Identity{UserID: w.adminA.ID})
	assert.ErrorIs(t, err, ErrShopNotFound)
}

// countingStore counts company lookups made through it
type countingStore struct {
	repository.Store
	companyLookups int
}

func (s *countingStore) Companies() repository.CompanyRepository {
	return &countingCompanies{CompanyRepository: s.Store.Companies(), n: &s.companyLookups}
}

type countingCompanies struct {
	repository.CompanyRepository
	n *int
}

func (c *countingCompanies) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	*c.n++
	return c.CompanyRepository.GetByID(ctx, id)
}

func TestResolveForMutationLoadsCompanyOnce(t *testing.T) {
	w := newWorld(t)
	store := &countingStore{Store: w.store}
	resolver := NewResolver(store, metrics.NewNoop())

	req := Request{CompanyID: w.companyA.ID, ShopID: ptr(w.shopA.ID), ProductID: ptr(w.product.ID)}
	res, err := resolver.ResolveForMutation(context.Background(), req, &auth.Identity{UserID: w.adminA.ID})
	require.NoError(t, err)
	assert.Equal(t, w.companyA.ID, res.Company.ID)
	assert.Equal(t, w.product.ID, res.Product.ID)
	assert.Equal(t, 1, store.companyLookups)
}
