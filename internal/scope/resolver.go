// Package scope resolves the Company -> Shop -> Product chain of nested
// management routes and gates mutations on the company admin.
//
// Read-only lookups are public. Only mutations require the caller to be
// the admin of the resolved company.
package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrCompanyNotFound = apperr.NotFound("company not found")
	ErrShopNotFound    = apperr.NotFound("shop not found")
	ErrProductNotFound = apperr.NotFound("product not found")
	ErrForbidden       = apperr.Forbidden("you do not have permission to perform this action")
)

// Request names the chain to resolve. ShopID and ProductID are optional;
// ProductID is ignored without a ShopID.
type Request struct {
	CompanyID int64
	ShopID    *int64
	ProductID *int64
}

// Resolved is a chain whose links are known to contain each other
type Resolved struct {
	Company *models.Company
	Shop    *models.Shop
	Product *models.Product
}

type Resolver struct {
	store   repository.Store
	metrics *metrics.AppMetrics
}

func NewResolver(store repository.Store, m *metrics.AppMetrics) *Resolver {
	return &Resolver{store: store, metrics: m}
}

// Resolve looks up each link scoped to its parent and stops at the first
// missing one. A shop of another company is reported as not found.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolved, error) {
	company, err := r.company(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	return r.resolveIn(ctx, company, req)
}

func (r *Resolver) company(ctx context.Context, companyID int64) (*models.Company, error) {
	company, err := r.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	return company, nil
}

// resolveIn resolves the shop and product links under an already loaded company
func (r *Resolver) resolveIn(ctx context.Context, company *models.Company, req Request) (*Resolved, error) {
	res := &Resolved{Company: company}
	if req.ShopID == nil {
		return res, nil
	}

	var err error
	if res.Shop, err = r.store.Shops().GetInCompany(ctx, company.ID, *req.ShopID); err != nil {
		return nil, notFound(err, ErrShopNotFound)
	}
	if req.ProductID == nil {
		return res, nil
	}

	if res.Product, err = r.store.Products().GetInShop(ctx, res.Shop.ID, *req.ProductID); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return res, nil
}

// Authorize allows id only if it is the admin of company
func (r *Resolver) Authorize(ctx context.Context, company *models.Company, id *auth.Identity) error {
	if id == nil || id.UserID != company.AdminUserID {
		r.metrics.Add(ctx, r.metrics.ScopeDenials, attribute.Int64("company.id", company.ID))
		return ErrForbidden
	}
	return nil
}

// ResolveForMutation authorizes the caller against the company before
// resolving the rest of the chain.
func (r *Resolver) ResolveForMutation(ctx context.Context, req Request, id *auth.Identity) (*Resolved, error) {
	if id == nil {
		return nil, apperr.Unauthorized("authentication credentials were not provided")
	}

	company, err := r.company(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := r.Authorize(ctx, company, id); err != nil {
		return nil, err
	}
	return r.resolveIn(ctx, company, req)
}

func notFound(err error, typed *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return typed
	}
	return fmt.Errorf("failed to resolve scope: %w", err)
}
