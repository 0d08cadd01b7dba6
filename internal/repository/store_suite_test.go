package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type catalogSeeder interface {
	SeedCategory(name, description string) models.Category
	SeedSubCategory(categoryID int64, name, description string) models.SubCategory
}

// StoreSuite checks the behaviour every Store implementation must share.
type StoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) (Store, catalogSeeder)

	ctx    context.Context
	store  Store
	seeder catalogSeeder
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.seeder = s.newStore(s.T())
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(*testing.T) (Store, catalogSeeder) {
		st := NewMemoryStore()
		return st, st
	}})
}

func (s *StoreSuite) user(email string) *models.User {
	u := &models.User{Email: email, PasswordHash: "x", IsActive: true, IsCompanyAdmin: true}
	require.NoError(s.T(), s.store.Users().Create(s.ctx, u))
	return u
}

func (s *StoreSuite) company(adminID int64) *models.Company {
	c := &models.Company{AdminUserID: adminID, Name: "Acme"}
	require.NoError(s.T(), s.store.Companies().Create(s.ctx, c))
	return c
}

func (s *StoreSuite) shop(companyID int64, name string) *models.Shop {
	sh := &models.Shop{CompanyID: companyID, Name: name, Description: "d"}
	require.NoError(s.T(), s.store.Shops().Create(s.ctx, sh))
	return sh
}

func (s *StoreSuite) product(shop *models.Shop, cat models.Category, sub models.SubCategory, name, price string) *models.Product {
	approved := models.AdminApproved
	p := &models.Product{
		ShopID:        shop.ID,
		CompanyID:     shop.CompanyID,
		CategoryID:    cat.ID,
		SubCategoryID: sub.ID,
		Name:          name,
		Description:   name + " description",
		Status:        models.StatusInStock,
		Price:         decimal.RequireFromString(price),
		Tax:           decimal.RequireFromString("1"),
		Currency:      "ETB",
		AdminStatus:   &approved,
	}
	require.NoError(s.T(), s.store.Products().Create(s.ctx, p))
	return p
}

type fixture struct {
	user    *models.User
	company *models.Company
	shop    *models.Shop
	cat     models.Category
	sub     models.SubCategory
}

func (s *StoreSuite) fixture() fixture {
	u := s.user("owner@example.com")
	c := s.company(u.ID)
	cat := s.seeder.SeedCategory("Electronics", "")
	return fixture{
		user:    u,
		company: c,
		shop:    s.shop(c.ID, "Main"),
		cat:     cat,
		sub:     s.seeder.SeedSubCategory(cat.ID, "Phones", ""),
	}
}

func (s *StoreSuite) TestDuplicateEmail() {
	s.user("a@example.com")
	err := s.store.Users().Create(s.ctx, &models.User{Email: "a@example.com", PasswordHash: "y"})
	require.ErrorIs(s.T(), err, ErrDuplicate)

	exists, err := s.store.Users().EmailExists(s.ctx, "a@example.com")
	require.NoError(s.T(), err)
	require.True(s.T(), exists)

	exists, err = s.store.Users().EmailExists(s.ctx, "b@example.com")
	require.NoError(s.T(), err)
	require.False(s.T(), exists)
}

func (s *StoreSuite) TestInTxRollsBack() {
	boom := errors.New("boom")
	err := s.store.InTx(s.ctx, func(tx Store) error {
		u := &models.User{Email: "tx@example.com", PasswordHash: "x"}
		if err := tx.Users().Create(s.ctx, u); err != nil {
			return err
		}
		if err := tx.Companies().Create(s.ctx, &models.Company{AdminUserID: u.ID, Name: "Tx"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(s.T(), err, boom)

	_, err = s.store.Users().GetByEmail(s.ctx, "tx@example.com")
	require.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *StoreSuite) TestInTxCommits() {
	err := s.store.InTx(s.ctx, func(tx Store) error {
		return tx.Users().Create(s.ctx, &models.User{Email: "commit@example.com", PasswordHash: "x"})
	})
	require.NoError(s.T(), err)

	_, err = s.store.Users().GetByEmail(s.ctx, "commit@example.com")
	require.NoError(s.T(), err)
}

func (s *StoreSuite) TestScopedLookups() {
	f := s.fixture()
	other := s.company(s.user("other@example.com").ID)
	otherShop := s.shop(other.ID, "Other")
	p := s.product(f.shop, f.cat, f.sub, "Phone", "100")

	_, err := s.store.Shops().GetInCompany(s.ctx, f.company.ID, otherShop.ID)
	require.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.store.Products().GetInShop(s.ctx, otherShop.ID, p.ID)
	require.ErrorIs(s.T(), err, ErrNotFound)

	got, err := s.store.Products().GetInShop(s.ctx, f.shop.ID, p.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Phone", got.Name)

	require.ErrorIs(s.T(), s.store.Shops().Delete(s.ctx, f.company.ID, otherShop.ID), ErrNotFound)
}

func (s *StoreSuite) TestContainerLifecycle() {
	f := s.fixture()
	p := s.product(f.shop, f.cat, f.sub, "Phone", "100")
	containers := s.store.Containers()

	_, err := containers.Get(s.ctx, models.KindCart, f.user.ID)
	require.ErrorIs(s.T(), err, ErrNotFound)

	cart, err := containers.Create(s.ctx, models.KindCart, f.user.ID)
	require.NoError(s.T(), err)
	_, err = containers.Create(s.ctx, models.KindCart, f.user.ID)
	require.ErrorIs(s.T(), err, ErrDuplicate)

	require.NoError(s.T(), containers.AddItem(s.ctx, models.KindCart, &models.LineItem{ContainerID: cart.ID, ProductID: p.ID, Quantity: 1}))
	err = containers.AddItem(s.ctx, models.KindCart, &models.LineItem{ContainerID: cart.ID, ProductID: p.ID, Quantity: 1})
	require.ErrorIs(s.T(), err, ErrDuplicate)

	require.NoError(s.T(), containers.UpdateItemQuantity(s.ctx, models.KindCart, cart.ID, p.ID, 3))
	item, err := containers.GetItem(s.ctx, models.KindCart, cart.ID, p.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3, item.Quantity)
	require.NotNil(s.T(), item.Product)
	require.True(s.T(), item.Product.Price.Equal(decimal.RequireFromString("100")))

	n, err := containers.CountItems(s.ctx, models.KindCart, cart.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), n)

	removed, err := containers.ClearItems(s.ctx, models.KindCart, cart.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), removed)

	require.ErrorIs(s.T(), containers.RemoveItem(s.ctx, models.KindCart, cart.ID, p.ID), ErrNotFound)
}

func (s *StoreSuite) TestOrderItemSnapshot() {
	f := s.fixture()
	p := s.product(f.shop, f.cat, f.sub, "Phone", "100")
	containers := s.store.Containers()

	order, err := containers.Create(s.ctx, models.KindOrder, f.user.ID)
	require.NoError(s.T(), err)

	snap := &models.PriceSnapshot{
		CustomerID:        f.user.ID,
		MerchantCompanyID: f.company.ID,
		OrderPrice:        decimal.RequireFromString("100"),
		OrderTax:          decimal.RequireFromString("5"),
		OrderDiscount:     decimal.Zero,
	}
	require.NoError(s.T(), containers.AddItem(s.ctx, models.KindOrder, &models.LineItem{ContainerID: order.ID, ProductID: p.ID, Quantity: 1, Snapshot: snap}))
	require.NoError(s.T(), containers.UpdateItemStatus(s.ctx, order.ID, p.ID, models.OrderItemShipped))

	items, total, err := containers.ListItems(s.ctx, models.KindOrder, order.ID, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), total)
	require.Len(s.T(), items, 1)
	require.NotNil(s.T(), items[0].Snapshot)
	require.True(s.T(), items[0].Snapshot.OrderTax.Equal(decimal.RequireFromString("5")))
	require.Equal(s.T(), models.OrderItemShipped, *items[0].Status)
}

func (s *StoreSuite) TestWishlistHasNoQuantity() {
	f := s.fixture()
	p := s.product(f.shop, f.cat, f.sub, "Phone", "100")
	wl, err := s.store.Containers().Create(s.ctx, models.KindWishlist, f.user.ID)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.store.Containers().AddItem(s.ctx, models.KindWishlist, &models.LineItem{ContainerID: wl.ID, ProductID: p.ID}))
	err = s.store.Containers().UpdateItemQuantity(s.ctx, models.KindWishlist, wl.ID, p.ID, 2)
	require.ErrorIs(s.T(), err, ErrUnsupported)
}

func (s *StoreSuite) TestRefreshAverageRating() {
	f := s.fixture()
	p := s.product(f.shop, f.cat, f.sub, "Phone", "100")
	u2 := s.user("second@example.com")

	require.NoError(s.T(), s.store.Ratings().Upsert(s.ctx, &models.Rating{ProductID: p.ID, UserID: f.user.ID, Rating: 3}))
	require.NoError(s.T(), s.store.Ratings().Upsert(s.ctx, &models.Rating{ProductID: p.ID, UserID: u2.ID, Rating: 5}))

	avg, err := s.store.Products().RefreshAverageRating(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), avg.Equal(decimal.RequireFromString("4.00")), avg.String())

	// re-rating replaces the score
	require.NoError(s.T(), s.store.Ratings().Upsert(s.ctx, &models.Rating{ProductID: p.ID, UserID: f.user.ID, Rating: 4}))
	avg, err = s.store.Products().RefreshAverageRating(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), avg.Equal(decimal.RequireFromString("4.5")), avg.String())

	require.NoError(s.T(), s.store.Ratings().Delete(s.ctx, p.ID, f.user.ID))
	require.NoError(s.T(), s.store.Ratings().Delete(s.ctx, p.ID, u2.ID))
	require.ErrorIs(s.T(), s.store.Ratings().Delete(s.ctx, p.ID, u2.ID), ErrNotFound)

	avg, err = s.store.Products().RefreshAverageRating(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), avg.IsZero())

	stored, err := s.store.Products().GetByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), stored.AverageRating.IsZero())
}

func (s *StoreSuite) TestProductListFilters() {
	f := s.fixture()
	cheap := s.product(f.shop, f.cat, f.sub, "Budget phone", "50")
	pricey := s.product(f.shop, f.cat, f.sub, "Flagship phone", "900")

	pricey.HasDiscount = true
	pricey.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("100"))
	require.NoError(s.T(), s.store.Products().Update(s.ctx, pricey))

	page := models.Page{Number: 1, Size: 10}

	got, total, err := s.store.Products().List(s.ctx, models.ProductQuery{Keywords: "flagship"}, page)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), total)
	require.Equal(s.T(), pricey.ID, got[0].ID)

	got, _, err = s.store.Products().List(s.ctx, models.ProductQuery{
		PriceBelow: decimal.NewNullDecimal(decimal.RequireFromString("100")),
	}, page)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	require.Equal(s.T(), cheap.ID, got[0].ID)

	got, _, err = s.store.Products().List(s.ctx, models.ProductQuery{OnlyDiscounted: true, Sort: models.SortDiscountAsc}, page)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	require.Equal(s.T(), pricey.ID, got[0].ID)

	got, _, err = s.store.Products().List(s.ctx, models.ProductQuery{CategoryName: "electronics", ExcludeID: &cheap.ID}, page)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)

	got, total, err = s.store.Products().List(s.ctx, models.ProductQuery{}, models.Page{Number: 2, Size: 1})
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(2), total)
	require.Len(s.T(), got, 1)
}

func (s *StoreSuite) TestInteractions() {
	f := s.fixture()
	p1 := s.product(f.shop, f.cat, f.sub, "One", "10")
	p2 := s.product(f.shop, f.cat, f.sub, "Two", "20")
	in := s.store.Interactions()
	page := models.Page{Number: 1, Size: 10}

	require.NoError(s.T(), in.Touch(s.ctx, f.user.ID, p1.ID, models.InteractionViewed))
	require.NoError(s.T(), in.Touch(s.ctx, f.user.ID, p2.ID, models.InteractionViewed))
	require.NoError(s.T(), in.Touch(s.ctx, f.user.ID, p1.ID, models.InteractionViewed))

	got, total, err := in.ListProducts(s.ctx, f.user.ID, models.InteractionViewed, page)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(2), total)
	require.Equal(s.T(), p1.ID, got[0].ID)

	n, err := in.Clear(s.ctx, f.user.ID, models.InteractionViewed)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(2), n)

	n, err = in.Clear(s.ctx, f.user.ID, models.InteractionViewed)
	require.NoError(s.T(), err)
	require.Zero(s.T(), n)
}
