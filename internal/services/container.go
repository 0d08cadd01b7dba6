package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/pricing"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"github.com/shopspring/decimal"
)

// ContainerPageSize is the page size of container item listings
const ContainerPageSize = 15

// ContainerService implements the line item operations of one container
// kind: a user's cart, wishlist or order.
type ContainerService struct {
	kind    models.ContainerKind
	store   repository.Store
	metrics *metrics.AppMetrics
	log     *logger.Logger
}

// NewContainerService creates a container service for kind
func NewContainerService(kind models.ContainerKind, store repository.Store, m *metrics.AppMetrics, log *logger.Logger) *ContainerService {
	return &ContainerService{
		kind:    kind,
		store:   store,
		metrics: m,
		log:     log.With("service", "ContainerService", "container", string(kind)),
	}
}

// Kind returns the container kind the service manages
func (s *ContainerService) Kind() models.ContainerKind {
	return s.kind
}

func (s *ContainerService) errAlreadyAdded() *apperr.Error {
	return apperr.Conflict(fmt.Sprintf("product already exists in your %s", s.kind))
}

func (s *ContainerService) errItemNotFound() *apperr.Error {
	return apperr.NotFound(fmt.Sprintf("product not found in your %s", s.kind))
}

// GetOrCreate returns the owner's container, creating it on first use. A
// concurrent first request that loses the insert race reads the winner's row.
func (s *ContainerService) GetOrCreate(ctx context.Context, ownerID int64) (*models.Container, bool, error) {
	containers := s.store.Containers()

	c, err := containers.Get(ctx, s.kind, ownerID)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}

	c, err = containers.Create(ctx, s.kind, ownerID)
	if errors.Is(err, repository.ErrDuplicate) {
		if c, err = containers.Get(ctx, s.kind, ownerID); err != nil {
			return nil, false, fmt.Errorf("failed to get %s after concurrent create: %w", s.kind, err)
		}
		return c, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create %s: %w", s.kind, err)
	}
	return c, true, nil
}

// existing returns the owner's container or an item not found error when
// the owner never created one.
func (s *ContainerService) existing(ctx context.Context, ownerID int64) (*models.Container, error) {
	c, err := s.store.Containers().Get(ctx, s.kind, ownerID)
	if err != nil {
		return nil, notFound(err, s.errItemNotFound(), "get "+string(s.kind))
	}
	return c, nil
}

// AddItem puts a product into the owner's container. Adding a product twice
// is a conflict. Order items freeze the product's current price, tax and
// discount.
func (s *ContainerService) AddItem(ctx context.Context, ownerID, productID int64) (*models.LineItem, error) {
	c, _, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, scope.ErrProductNotFound, "get product")
	}

	item := &models.LineItem{ContainerID: c.ID, ProductID: product.ID}
	switch s.kind {
	case models.KindCart:
		item.Quantity = 1
	case models.KindOrder:
		item.Quantity = 1
		discount := decimal.Zero
		if d := product.EffectiveDiscount(); d.Valid {
			discount = d.Decimal
		}
		item.Snapshot = &models.PriceSnapshot{
			CustomerID:        ownerID,
			MerchantCompanyID: product.CompanyID,
			OrderPrice:        product.Price,
			OrderTax:          product.Tax,
			OrderDiscount:     discount,
		}
	}

	if err := s.store.Containers().AddItem(ctx, s.kind, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.errAlreadyAdded()
		}
		return nil, fmt.Errorf("failed to add item to %s: %w", s.kind, err)
	}

	item.Product = details(product)
	s.recordSize(ctx, c.ID, true)
	s.log.Debug("item added", "owner_id", ownerID, "product_id", productID)
	return item, nil
}

// RemoveItem deletes a product from the owner's container
func (s *ContainerService) RemoveItem(ctx context.Context, ownerID, productID int64) error {
	c, err := s.existing(ctx, ownerID)
	if err != nil {
		return err
	}

	if err := s.store.Containers().RemoveItem(ctx, s.kind, c.ID, productID); err != nil {
		return notFound(err, s.errItemNotFound(), "remove item from "+string(s.kind))
	}
	s.recordSize(ctx, c.ID, false)
	return nil
}

// UpdateQuantity sets an item's quantity. raw may be a JSON number or a
// numeric string and must hold a positive integer.
func (s *ContainerService) UpdateQuantity(ctx context.Context, ownerID, productID int64, raw interface{}) (*models.LineItem, error) {
	if s.kind == models.KindWishlist {
		return nil, apperr.Validation("wishlist items have no quantity")
	}
	quantity, err := parseIntInRange("quantity", raw, 1, math.MaxInt32)
	if err != nil {
		return nil, err
	}

	c, err := s.existing(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	containers := s.store.Containers()
	if _, err := containers.GetItem(ctx, s.kind, c.ID, productID); err != nil {
		return nil, notFound(err, s.errItemNotFound(), "get "+string(s.kind)+" item")
	}
	if err := containers.UpdateItemQuantity(ctx, s.kind, c.ID, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update %s item quantity: %w", s.kind, err)
	}

	item, err := containers.GetItem(ctx, s.kind, c.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s item: %w", s.kind, err)
	}
	return item, nil
}

// Clear removes every item of the owner's container and reports how many
// were removed. Clearing an empty or missing container succeeds.
func (s *ContainerService) Clear(ctx context.Context, ownerID int64) (int64, error) {
	c, err := s.store.Containers().Get(ctx, s.kind, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}

	n, err := s.store.Containers().ClearItems(ctx, s.kind, c.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", s.kind, err)
	}
	s.recordSize(ctx, c.ID, false)
	return n, nil
}

// ListItems returns a page of the owner's items with product details
func (s *ContainerService) ListItems(ctx context.Context, ownerID int64, page models.Page) ([]models.LineItem, int64, error) {
	c, _, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.store.Containers().ListItems(ctx, s.kind, c.ID, &page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s items: %w", s.kind, err)
	}
	return items, total, nil
}

// Summary totals the owner's container. Carts price items at the live
// product price; orders use the price frozen when the item was added.
func (s *ContainerService) Summary(ctx context.Context, ownerID int64) (pricing.Summary, error) {
	_, summary, err := s.Container(ctx, ownerID)
	return summary, err
}

// Container returns the owner's container together with its summary
func (s *ContainerService) Container(ctx context.Context, ownerID int64) (*models.Container, pricing.Summary, error) {
	c, _, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, pricing.Summary{}, err
	}
	items, _, err := s.store.Containers().ListItems(ctx, s.kind, c.ID, nil)
	if err != nil {
		return nil, pricing.Summary{}, fmt.Errorf("failed to list %s items: %w", s.kind, err)
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, lineOf(it))
	}
	summary := pricing.Summarize(lines)
	summary.DeliveryAddress = c.DeliveryAddress
	return c, summary, nil
}

// UpdateDeliveryAddress sets the delivery address of the owner's cart
func (s *ContainerService) UpdateDeliveryAddress(ctx context.Context, ownerID int64, in models.DeliveryAddressInput) (*models.Container, error) {
	if s.kind != models.KindCart {
		return nil, apperr.Validation(fmt.Sprintf("a %s has no delivery address", s.kind))
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	c, _, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Containers().UpdateDeliveryAddress(ctx, c.ID, in.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("failed to update delivery address: %w", err)
	}
	c.DeliveryAddress = in.DeliveryAddress
	return c, nil
}

// UpdateItemStatus moves an order item to shipped, cancelled or delivered
func (s *ContainerService) UpdateItemStatus(ctx context.Context, ownerID, productID int64, in models.ItemStatusInput) (*models.LineItem, error) {
	if s.kind != models.KindOrder {
		return nil, apperr.Validation(fmt.Sprintf("%s items have no status", s.kind))
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	c, err := s.existing(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	containers := s.store.Containers()
	if _, err := containers.GetItem(ctx, s.kind, c.ID, productID); err != nil {
		return nil, notFound(err, s.errItemNotFound(), "get order item")
	}
	if err := containers.UpdateItemStatus(ctx, c.ID, productID, in.Status); err != nil {
		return nil, fmt.Errorf("failed to update order item status: %w", err)
	}

	item, err := containers.GetItem(ctx, s.kind, c.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order item: %w", err)
	}
	return item, nil
}

func (s *ContainerService) recordSize(ctx context.Context, containerID int64, added bool) {
	n, err := s.store.Containers().CountItems(ctx, s.kind, containerID)
	if err != nil {
		s.log.Warn("failed to count container items", "container_id", containerID, "error", err)
		return
	}
	s.metrics.RecordContainerItems(ctx, string(s.kind), added, n)
}

func lineOf(it models.LineItem) pricing.Line {
	quantity := it.Quantity
	if quantity == 0 {
		// wishlist items count once
		quantity = 1
	}

	if it.Snapshot != nil {
		line := pricing.Line{UnitPrice: it.Snapshot.OrderPrice, UnitTax: it.Snapshot.OrderTax, Quantity: quantity}
		if !it.Snapshot.OrderDiscount.IsZero() {
			line.Discount = decimal.NewNullDecimal(it.Snapshot.OrderDiscount)
		}
		return line
	}

	line := pricing.Line{Quantity: quantity}
	if p := it.Product; p != nil {
		line.UnitPrice, line.UnitTax = p.Price, p.Tax
		if p.HasDiscount && p.DiscountPrice.Valid {
			line.Discount = p.DiscountPrice
		}
	}
	return line
}

func details(p *models.Product) *models.ProductDetails {
	return &models.ProductDetails{
		Name:          p.Name,
		Description:   p.Description,
		Status:        p.Status,
		Price:         p.Price,
		Tax:           p.Tax,
		HasDiscount:   p.HasDiscount,
		DiscountPrice: p.DiscountPrice,
		Currency:      p.Currency,
	}
}
