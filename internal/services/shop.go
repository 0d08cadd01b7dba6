package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/pricing"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"github.com/shopspring/decimal"
)

// Page sizes of the shop and product listings
const (
	ShopPageSize    = 15
	ProductPageSize = 8
)

var ErrCategoryMismatch = apperr.ValidationFields("invalid product", map[string]string{
	"sub_category": "sub category does not belong to the selected category",
})

// ShopService manages shops and their products under a company
type ShopService struct {
	store    repository.Store
	resolver *scope.Resolver
	metrics  *metrics.AppMetrics
	log      *logger.Logger
}

// NewShopService creates a new shop service
func NewShopService(store repository.Store, resolver *scope.Resolver, m *metrics.AppMetrics, log *logger.Logger) *ShopService {
	return &ShopService{
		store:    store,
		resolver: resolver,
		metrics:  m,
		log:      log.With("service", "ShopService"),
	}
}

// ListShops returns every shop, most recent first
func (s *ShopService) ListShops(ctx context.Context, page models.Page) ([]models.Shop, int64, error) {
	shops, total, err := s.store.Shops().List(ctx, nil, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, total, nil
}

// GetShop returns a shop by id regardless of company
func (s *ShopService) GetShop(ctx context.Context, shopID int64) (*models.Shop, error) {
	shop, err := s.store.Shops().GetByID(ctx, shopID)
	if err != nil {
		return nil, notFound(err, scope.ErrShopNotFound, "get shop")
	}
	return shop, nil
}

// ListCompanyShops returns the shops of a company
func (s *ShopService) ListCompanyShops(ctx context.Context, companyID int64, page models.Page) ([]models.Shop, int64, error) {
	res, err := s.resolver.Resolve(ctx, scope.Request{CompanyID: companyID})
	if err != nil {
		return nil, 0, err
	}
	shops, total, err := s.store.Shops().List(ctx, &res.Company.ID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list company shops: %w", err)
	}
	return shops, total, nil
}

// CreateShop adds a shop to a company administered by the caller
func (s *ShopService) CreateShop(ctx context.Context, id *auth.Identity, companyID int64, in models.ShopInput) (*models.Shop, error) {
	res, err := s.resolver.ResolveForMutation(ctx, scope.Request{CompanyID: companyID}, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.ValidationFields("invalid shop", map[string]string{"name": "this field is required"})
	}

	shop := &models.Shop{CompanyID: res.Company.ID, Name: strings.TrimSpace(*in.Name)}
	if in.Description != nil {
		shop.Description = *in.Description
	}
	if err := s.store.Shops().Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	s.log.Info("shop created", "shop_id", shop.ID, "company_id", shop.CompanyID)
	return shop, nil
}

// GetCompanyShop returns a shop only if it belongs to the company
func (s *ShopService) GetCompanyShop(ctx context.Context, companyID, shopID int64) (*models.Shop, error) {
	res, err := s.resolver.Resolve(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID})
	if err != nil {
		return nil, err
	}
	return res.Shop, nil
}

// UpdateShop applies the non-nil fields of in
func (s *ShopService) UpdateShop(ctx context.Context, id *auth.Identity, companyID, shopID int64, in models.ShopInput) (*models.Shop, error) {
	res, err := s.resolver.ResolveForMutation(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID}, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	shop := res.Shop
	if in.Name != nil {
		shop.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		shop.Description = *in.Description
	}
	if err := s.store.Shops().Update(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}
	return shop, nil
}

// DeleteShop removes a shop together with its products
func (s *ShopService) DeleteShop(ctx context.Context, id *auth.Identity, companyID, shopID int64) error {
	res, err := s.resolver.ResolveForMutation(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID}, id)
	if err != nil {
		return err
	}
	if err := s.store.Shops().Delete(ctx, res.Company.ID, res.Shop.ID); err != nil {
		return notFound(err, scope.ErrShopNotFound, "delete shop")
	}

	s.log.Info("shop deleted", "shop_id", shopID, "company_id", companyID)
	return nil
}

// ListShopProducts returns the products of a company's shop
func (s *ShopService) ListShopProducts(ctx context.Context, companyID, shopID int64, page models.Page) ([]models.Product, int64, error) {
	res, err := s.resolver.Resolve(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID})
	if err != nil {
		return nil, 0, err
	}
	products, total, err := s.store.Products().List(ctx, models.ProductQuery{ShopID: &res.Shop.ID}, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shop products: %w", err)
	}
	return products, total, nil
}

// GetShopProduct returns a product only if the whole chain matches
func (s *ShopService) GetShopProduct(ctx context.Context, companyID, shopID, productID int64) (*models.Product, error) {
	res, err := s.resolver.Resolve(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID, ProductID: &productID})
	if err != nil {
		return nil, err
	}
	return res.Product, nil
}

// CreateProduct adds a product to a shop. The product's company is always
// the shop's company.
func (s *ShopService) CreateProduct(ctx context.Context, id *auth.Identity, companyID, shopID int64, in models.ProductInput) (*models.Product, error) {
	res, err := s.resolver.ResolveForMutation(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID}, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	missing := map[string]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		missing["name"] = "this field is required"
	}
	if in.CategoryID == nil {
		missing["category"] = "this field is required"
	}
	if in.SubCategoryID == nil {
		missing["sub_category"] = "this field is required"
	}
	if in.Price == nil {
		missing["price"] = "this field is required"
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationFields("invalid product", missing)
	}

	p := &models.Product{
		ShopID:    res.Shop.ID,
		CompanyID: res.Shop.CompanyID,
		Status:    models.StatusInStock,
		Tax:       decimal.Zero,
		Currency:  pricing.Currency,
	}
	applyProductInput(p, in)
	if err := s.checkProduct(ctx, p); err != nil {
		return nil, err
	}

	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.log.Info("product created", "product_id", p.ID, "shop_id", p.ShopID)
	return p, nil
}

// UpdateProduct applies the non-nil fields of in
func (s *ShopService) UpdateProduct(ctx context.Context, id *auth.Identity, companyID, shopID, productID int64, in models.ProductInput) (*models.Product, error) {
	res, err := s.resolver.ResolveForMutation(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID, ProductID: &productID}, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	p := res.Product
	applyProductInput(p, in)
	p.CompanyID = res.Shop.CompanyID
	if err := s.checkProduct(ctx, p); err != nil {
		return nil, err
	}

	if err := s.store.Products().Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product from a shop
func (s *ShopService) DeleteProduct(ctx context.Context, id *auth.Identity, companyID, shopID, productID int64) error {
	res, err := s.resolver.ResolveForMutation(ctx, scope.Request{CompanyID: companyID, ShopID: &shopID, ProductID: &productID}, id)
	if err != nil {
		return err
	}
	if err := s.store.Products().Delete(ctx, res.Shop.ID, res.Product.ID); err != nil {
		return notFound(err, scope.ErrProductNotFound, "delete product")
	}

	s.log.Info("product deleted", "product_id", productID, "shop_id", shopID)
	return nil
}

func applyProductInput(p *models.Product, in models.ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.SubCategoryID != nil {
		p.SubCategoryID = *in.SubCategoryID
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Quantity != nil {
		q := *in.Quantity
		p.Quantity = &q
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Tax != nil {
		p.Tax = *in.Tax
	}
	if in.HasDiscount != nil {
		p.HasDiscount = *in.HasDiscount
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = *in.DiscountPrice
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
}

// maxAmount bounds money columns stored as DECIMAL(10,2)
var maxAmount = decimal.New(1, 8)

// checkAmount records a message for field when d has more than two
// decimal places or does not fit below maxAmount.
func checkAmount(fields map[string]string, field string, d decimal.Decimal) {
	if _, bad := fields[field]; bad {
		return
	}
	switch {
	case !d.Equal(d.Round(2)):
		fields[field] = "ensure that there are no more than 2 decimal places"
	case d.Abs().GreaterThanOrEqual(maxAmount):
		fields[field] = "ensure that there are no more than 8 digits before the decimal point"
	}
}

// checkProduct enforces the price invariants and the category linkage
func (s *ShopService) checkProduct(ctx context.Context, p *models.Product) error {
	fields := map[string]string{}
	if p.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if p.Tax.IsNegative() {
		fields["tax"] = "must not be negative"
	}
	if p.HasDiscount && !p.DiscountPrice.Valid {
		fields["discount_price"] = "required when has_discount is set"
	}
	if d := p.DiscountPrice; d.Valid && (d.Decimal.IsNegative() || d.Decimal.GreaterThan(p.Price)) {
		fields["discount_price"] = "must be between 0 and the price"
	}
	checkAmount(fields, "price", p.Price)
	checkAmount(fields, "tax", p.Tax)
	if p.DiscountPrice.Valid {
		checkAmount(fields, "discount_price", p.DiscountPrice.Decimal)
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid product", fields)
	}

	sub, err := s.store.Categories().GetSubCategory(ctx, p.SubCategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ValidationFields("invalid product", map[string]string{"sub_category": "sub category does not exist"})
	}
	if err != nil {
		return fmt.Errorf("failed to get sub category: %w", err)
	}
	if sub.CategoryID != p.CategoryID {
		return ErrCategoryMismatch
	}
	return nil
}
