package repository

import (
	"context"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/models"
)

type mysqlRatings struct{ s *MySQLStore }

func (r *mysqlRatings) Upsert(ctx context.Context, rating *models.Rating) error {
	query := `INSERT INTO ratings (product_id, user_id, rating) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE rating = VALUES(rating)`
	if _, err := r.s.exec(ctx, "INSERT", "ratings", query, rating.ProductID, rating.UserID, rating.Rating); err != nil {
		return err
	}

	stored, err := r.Get(ctx, rating.ProductID, rating.UserID)
	if err != nil {
		return err
	}
	*rating = *stored
	return nil
}

func (r *mysqlRatings) Get(ctx context.Context, productID, userID int64) (*models.Rating, error) {
	query := "SELECT id, product_id, user_id, rating, created_at, updated_at FROM ratings WHERE product_id = ? AND user_id = ?"
	var rt models.Rating
	err := r.s.queryRow(ctx, "ratings", query, []any{productID, userID},
		&rt.ID, &rt.ProductID, &rt.UserID, &rt.Rating, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *mysqlRatings) Delete(ctx context.Context, productID, userID int64) error {
	n, err := r.s.execAffecting(ctx, "DELETE", "ratings", "DELETE FROM ratings WHERE product_id = ? AND user_id = ?", productID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type mysqlInteractions struct{ s *MySQLStore }

func (r *mysqlInteractions) Touch(ctx context.Context, userID, productID int64, interactionType string) error {
	query := `INSERT INTO product_interactions (user_id, product_id, interaction_type, updated_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE updated_at = VALUES(updated_at)`
	_, err := r.s.exec(ctx, "INSERT", "product_interactions", query, userID, productID, interactionType, time.Now().UTC())
	return err
}

func (r *mysqlInteractions) ListProducts(ctx context.Context, userID int64, interactionType string, page models.Page) ([]models.Product, int64, error) {
	total, err := r.s.count(ctx, "product_interactions",
		"SELECT COUNT(*) FROM product_interactions WHERE user_id = ? AND interaction_type = ?", userID, interactionType)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + productColumns + ` FROM product_interactions pi
		JOIN products p ON p.id = pi.product_id
		WHERE pi.user_id = ? AND pi.interaction_type = ?
		ORDER BY pi.updated_at DESC, pi.id DESC
		LIMIT ? OFFSET ?`
	products, err := r.s.scanProducts(ctx, query, userID, interactionType, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *mysqlInteractions) Clear(ctx context.Context, userID int64, interactionType string) (int64, error) {
	return r.s.execAffecting(ctx, "DELETE", "product_interactions",
		"DELETE FROM product_interactions WHERE user_id = ? AND interaction_type = ?", userID, interactionType)
}
