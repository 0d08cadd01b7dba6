package repository

import (
	"context"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/models"
)

type mysqlShops struct{ s *MySQLStore }

const shopColumns = "id, company_id, name, description, created_at, updated_at"

func (r *mysqlShops) Create(ctx context.Context, shop *models.Shop) error {
	query := "INSERT INTO shops (company_id, name, description) VALUES (?, ?, ?)"
	res, err := r.s.exec(ctx, "INSERT", "shops", query, shop.CompanyID, shop.Name, shop.Description)
	if err != nil {
		return err
	}
	if shop.ID, err = insertID(res); err != nil {
		return err
	}
	shop.CreatedAt = time.Now()
	shop.UpdatedAt = shop.CreatedAt
	return nil
}

func (r *mysqlShops) getOne(ctx context.Context, where string, args ...any) (*models.Shop, error) {
	query := "SELECT " + shopColumns + " FROM shops WHERE " + where
	var shop models.Shop
	err := r.s.queryRow(ctx, "shops", query, args,
		&shop.ID, &shop.CompanyID, &shop.Name, &shop.Description, &shop.CreatedAt, &shop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *mysqlShops) GetByID(ctx context.Context, id int64) (*models.Shop, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *mysqlShops) GetInCompany(ctx context.Context, companyID, shopID int64) (*models.Shop, error) {
	return r.getOne(ctx, "id = ? AND company_id = ?", shopID, companyID)
}

func (r *mysqlShops) List(ctx context.Context, companyID *int64, page models.Page) ([]models.Shop, int64, error) {
	where := "1 = 1"
	var args []any
	if companyID != nil {
		where = "company_id = ?"
		args = append(args, *companyID)
	}

	total, err := r.s.count(ctx, "shops", "SELECT COUNT(*) FROM shops WHERE "+where, args...)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + shopColumns + " FROM shops WHERE " + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.s.query(ctx, "shops", query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	shops := make([]models.Shop, 0)
	for rows.Next() {
		var shop models.Shop
		if err := rows.Scan(&shop.ID, &shop.CompanyID, &shop.Name, &shop.Description, &shop.CreatedAt, &shop.UpdatedAt); err != nil {
			return nil, 0, err
		}
		shops = append(shops, shop)
	}
	return shops, total, rows.Err()
}

func (r *mysqlShops) Update(ctx context.Context, shop *models.Shop) error {
	query := "UPDATE shops SET name = ?, description = ? WHERE id = ? AND company_id = ?"
	if _, err := r.s.exec(ctx, "UPDATE", "shops", query, shop.Name, shop.Description, shop.ID, shop.CompanyID); err != nil {
		return err
	}
	shop.UpdatedAt = time.Now()
	return nil
}

func (r *mysqlShops) Delete(ctx context.Context, companyID, shopID int64) error {
	n, err := r.s.execAffecting(ctx, "DELETE", "shops", "DELETE FROM shops WHERE id = ? AND company_id = ?", shopID, companyID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type mysqlCategories struct{ s *MySQLStore }

func (r *mysqlCategories) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.s.query(ctx, "categories", "SELECT id, name, description FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *mysqlCategories) Get(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := r.s.queryRow(ctx, "categories", "SELECT id, name, description FROM categories WHERE id = ?", []any{id},
		&c.ID, &c.Name, &c.Description,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mysqlCategories) ListSubCategories(ctx context.Context, categoryID *int64) ([]models.SubCategory, error) {
	query := "SELECT id, category_id, name, description FROM sub_categories"
	var args []any
	if categoryID != nil {
		query += " WHERE category_id = ?"
		args = append(args, *categoryID)
	}
	query += " ORDER BY name"

	rows, err := r.s.query(ctx, "sub_categories", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]models.SubCategory, 0)
	for rows.Next() {
		var sc models.SubCategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Description); err != nil {
			return nil, err
		}
		subs = append(subs, sc)
	}
	return subs, rows.Err()
}

func (r *mysqlCategories) GetSubCategory(ctx context.Context, id int64) (*models.SubCategory, error) {
	var sc models.SubCategory
	err := r.s.queryRow(ctx, "sub_categories", "SELECT id, category_id, name, description FROM sub_categories WHERE id = ?", []any{id},
		&sc.ID, &sc.CategoryID, &sc.Name, &sc.Description,
	)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}
