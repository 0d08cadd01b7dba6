package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/SigNoz/marketplace-go-app/internal/scope"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

var ErrRatingNotFound = apperr.NotFound("you have not rated this product")

// RatingService records product ratings and keeps each product's average
// rating in step with them.
type RatingService struct {
	store   repository.Store
	metrics *metrics.AppMetrics
	log     *logger.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(store repository.Store, m *metrics.AppMetrics, log *logger.Logger) *RatingService {
	return &RatingService{
		store:   store,
		metrics: m,
		log:     log.With("service", "RatingService"),
	}
}

// Rate creates or replaces the user's 1..5 rating of a product
func (s *RatingService) Rate(ctx context.Context, userID, productID int64, raw interface{}) (*models.RatingResult, error) {
	score, err := parseIntInRange("rating", raw, 1, 5)
	if err != nil {
		return nil, err
	}

	var avg decimal.Decimal
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		if err := tx.Ratings().Upsert(ctx, &models.Rating{ProductID: productID, UserID: userID, Rating: score}); err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}
		avg, err = recompute(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Add(ctx, s.metrics.RatingsSubmitted, attribute.Int("rating", score))
	s.log.Info("product rated", "product_id", productID, "user_id", userID, "ave_rating", avg.StringFixed(2))
	return &models.RatingResult{ProductID: productID, Rating: score, AverageRating: avg.StringFixed(2)}, nil
}

// DeleteRating removes the user's rating of a product
func (s *RatingService) DeleteRating(ctx context.Context, userID, productID int64) (*models.RatingResult, error) {
	var avg decimal.Decimal
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		if err := tx.Ratings().Delete(ctx, productID, userID); err != nil {
			return notFound(err, ErrRatingNotFound, "delete rating")
		}
		var err error
		avg, err = recompute(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.RatingResult{ProductID: productID, AverageRating: avg.StringFixed(2)}, nil
}

// RecomputeAverageRating re-derives a product's average from its ratings
func (s *RatingService) RecomputeAverageRating(ctx context.Context, productID int64) (decimal.Decimal, error) {
	var avg decimal.Decimal
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		var err error
		avg, err = recompute(ctx, tx, productID)
		return err
	})
	return avg, err
}

// lockProduct serializes rating writers of one product until commit
func lockProduct(ctx context.Context, tx repository.Store, productID int64) error {
	if err := tx.Products().LockForUpdate(ctx, productID); err != nil {
		return notFound(err, scope.ErrProductNotFound, "lock product")
	}
	return nil
}

func recompute(ctx context.Context, tx repository.Store, productID int64) (decimal.Decimal, error) {
	avg, err := tx.Products().RefreshAverageRating(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, scope.ErrProductNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recompute average rating: %w", err)
	}
	return avg, nil
}
