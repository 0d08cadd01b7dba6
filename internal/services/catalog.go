package services

import (
	"context"
	"fmt"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	popularLimit = 20
	similarLimit = 4
)

var (
	ErrCategoryNotFound      = apperr.NotFound("category not found")
	ErrSubCategoryNotFound   = apperr.NotFound("sub category not found")
	ErrNothingRecentlyViewed = apperr.NotFound("no recently viewed products to delete")
)

// CatalogService serves the public marketplace listings
type CatalogService struct {
	store   repository.Store
	metrics *metrics.AppMetrics
	log     *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store repository.Store, m *metrics.AppMetrics, log *logger.Logger) *CatalogService {
	return &CatalogService{
		store:   store,
		metrics: m,
		log:     log.With("service", "CatalogService"),
	}
}

func (s *CatalogService) list(ctx context.Context, q models.ProductQuery, page models.Page) ([]models.Product, int64, error) {
	products, total, err := s.store.Products().List(ctx, q, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// ListProducts returns all products, newest first
func (s *CatalogService) ListProducts(ctx context.Context, page models.Page) ([]models.Product, int64, error) {
	return s.list(ctx, models.ProductQuery{}, page)
}

// ProductDetail returns a product and, for a signed-in caller, records the view
func (s *CatalogService) ProductDetail(ctx context.Context, id *auth.Identity, productID int64) (*models.Product, error) {
	p, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, scope.ErrProductNotFound, "get product")
	}

	s.metrics.Add(ctx, s.metrics.ProductsViewed, attribute.Int64("product.id", p.ID))
	if id != nil {
		if err := s.store.Interactions().Touch(ctx, id.UserID, p.ID, models.InteractionViewed); err != nil {
			s.log.Warn("failed to record product view", "product_id", p.ID, "user_id", id.UserID, "error", err)
		}
	}
	return p, nil
}

// LimitedOffers lists discounted products, smallest discount first
func (s *CatalogService) LimitedOffers(ctx context.Context, page models.Page) ([]models.Product, int64, error) {
	return s.list(ctx, models.ProductQuery{OnlyDiscounted: true, Sort: models.SortDiscountAsc}, page)
}

// Popular merges the best stocked and the most discounted listed products
func (s *CatalogService) Popular(ctx context.Context) ([]models.Product, error) {
	top := models.Page{Number: 1, Size: popularLimit}
	var byQuantity, byDiscount []models.Product

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byQuantity, _, err = s.list(gctx, models.ProductQuery{OnlyListed: true, Sort: models.SortQuantityDesc}, top)
		return err
	})
	g.Go(func() error {
		var err error
		byDiscount, _, err = s.list(gctx, models.ProductQuery{OnlyListed: true, Sort: models.SortDiscountDesc}, top)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, popularLimit)
	popular := make([]models.Product, 0, popularLimit)
	for _, p := range append(byQuantity, byDiscount...) {
		if len(popular) == popularLimit {
			break
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		popular = append(popular, p)
	}
	return popular, nil
}

// Similar returns up to four other products of the same sub category
func (s *CatalogService) Similar(ctx context.Context, productID int64) ([]models.Product, error) {
	p, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, scope.ErrProductNotFound, "get product")
	}

	products, _, err := s.list(ctx, models.ProductQuery{
		CategoryID:    &p.CategoryID,
		SubCategoryID: &p.SubCategoryID,
		ExcludeID:     &p.ID,
	}, models.Page{Number: 1, Size: similarLimit})
	return products, err
}

// Filter lists non-deleted products matching q
func (s *CatalogService) Filter(ctx context.Context, q models.ProductQuery, page models.Page) ([]models.Product, int64, error) {
	q.ExcludeDeleted = true
	return s.list(ctx, q, page)
}

// Search matches keywords against names, descriptions and category names
func (s *CatalogService) Search(ctx context.Context, keywords string, page models.Page) ([]models.Product, int64, error) {
	return s.list(ctx, models.ProductQuery{Keywords: keywords, ExcludeDeleted: true}, page)
}

// Categories returns every category
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// SubCategories returns the sub categories of a category
func (s *CatalogService) SubCategories(ctx context.Context, categoryID int64) ([]models.SubCategory, error) {
	if _, err := s.store.Categories().Get(ctx, categoryID); err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}
	subs, err := s.store.Categories().ListSubCategories(ctx, &categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub categories: %w", err)
	}
	return subs, nil
}

// CategoryProducts lists the products of a category
func (s *CatalogService) CategoryProducts(ctx context.Context, categoryID int64, page models.Page) ([]models.Product, int64, error) {
	if _, err := s.store.Categories().Get(ctx, categoryID); err != nil {
		return nil, 0, notFound(err, ErrCategoryNotFound, "get category")
	}
	return s.list(ctx, models.ProductQuery{CategoryID: &categoryID}, page)
}

// SubCategoryProducts lists the products of a sub category of a category
func (s *CatalogService) SubCategoryProducts(ctx context.Context, categoryID, subCategoryID int64, page models.Page) ([]models.Product, int64, error) {
	sub, err := s.store.Categories().GetSubCategory(ctx, subCategoryID)
	if err != nil {
		return nil, 0, notFound(err, ErrSubCategoryNotFound, "get sub category")
	}
	if sub.CategoryID != categoryID {
		return nil, 0, ErrSubCategoryNotFound
	}
	return s.list(ctx, models.ProductQuery{CategoryID: &categoryID, SubCategoryID: &subCategoryID}, page)
}

// ShopProducts lists the products of a shop
func (s *CatalogService) ShopProducts(ctx context.Context, shopID int64, page models.Page) ([]models.Product, int64, error) {
	if _, err := s.store.Shops().GetByID(ctx, shopID); err != nil {
		return nil, 0, notFound(err, scope.ErrShopNotFound, "get shop")
	}
	return s.list(ctx, models.ProductQuery{ShopID: &shopID}, page)
}

// RecentlyViewed lists the caller's viewed products, most recent first
func (s *CatalogService) RecentlyViewed(ctx context.Context, userID int64, page models.Page) ([]models.Product, int64, error) {
	products, total, err := s.store.Interactions().ListProducts(ctx, userID, models.InteractionViewed, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recently viewed products: %w", err)
	}
	return products, total, nil
}

// ClearRecentlyViewed forgets the caller's views
func (s *CatalogService) ClearRecentlyViewed(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.Interactions().Clear(ctx, userID, models.InteractionViewed)
	if err != nil {
		return 0, fmt.Errorf("failed to clear recently viewed products: %w", err)
	}
	if n == 0 {
		return 0, ErrNothingRecentlyViewed
	}
	return n, nil
}
