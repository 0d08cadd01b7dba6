package repository

import (
	"context"
	"strings"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/shopspring/decimal"
)

type mysqlProducts struct{ s *MySQLStore }

const productColumns = `p.id, p.shop_id, p.company_id, p.category_id, p.sub_category_id, p.name, p.description,
	p.status, p.quantity, p.price, p.tax, p.has_discount, p.discount_price, p.currency, p.admin_status,
	p.is_published, p.is_deleted, p.average_rating, p.created_at, p.updated_at`

const productFrom = ` FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN sub_categories sc ON sc.id = p.sub_category_id`

func productDest(p *models.Product) []any {
	return []any{
		&p.ID, &p.ShopID, &p.CompanyID, &p.CategoryID, &p.SubCategoryID, &p.Name, &p.Description,
		&p.Status, &p.Quantity, &p.Price, &p.Tax, &p.HasDiscount, &p.DiscountPrice, &p.Currency, &p.AdminStatus,
		&p.IsPublished, &p.IsDeleted, &p.AverageRating, &p.CreatedAt, &p.UpdatedAt,
	}
}

var productOrder = map[models.ProductSort]string{
	models.SortNewest:       "p.created_at DESC, p.id DESC",
	models.SortDiscountAsc:  "p.discount_price ASC, p.id ASC",
	models.SortQuantityDesc: "p.quantity DESC, p.id ASC",
	models.SortDiscountDesc: "p.discount_price DESC, p.id ASC",
}

func (r *mysqlProducts) Create(ctx context.Context, p *models.Product) error {
	query := `INSERT INTO products
		(shop_id, company_id, category_id, sub_category_id, name, description, status, quantity, price, tax,
		 has_discount, discount_price, currency, admin_status, is_published, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.s.exec(ctx, "INSERT", "products", query,
		p.ShopID, p.CompanyID, p.CategoryID, p.SubCategoryID, p.Name, p.Description, p.Status, p.Quantity, p.Price, p.Tax,
		p.HasDiscount, p.DiscountPrice, p.Currency, p.AdminStatus, p.IsPublished, p.IsDeleted,
	)
	if err != nil {
		return err
	}
	if p.ID, err = insertID(res); err != nil {
		return err
	}
	p.AverageRating = decimal.Zero
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	return nil
}

func (r *mysqlProducts) getOne(ctx context.Context, where string, args ...any) (*models.Product, error) {
	var p models.Product
	query := "SELECT " + productColumns + " FROM products p WHERE " + where
	if err := r.s.queryRow(ctx, "products", query, args, productDest(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mysqlProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return r.getOne(ctx, "p.id = ?", id)
}

func (r *mysqlProducts) GetInShop(ctx context.Context, shopID, productID int64) (*models.Product, error) {
	return r.getOne(ctx, "p.id = ? AND p.shop_id = ?", productID, shopID)
}

func (r *mysqlProducts) List(ctx context.Context, q models.ProductQuery, page models.Page) ([]models.Product, int64, error) {
	where, args := productFilter(q)

	total, err := r.s.count(ctx, "products", "SELECT COUNT(*)"+productFrom+" WHERE "+where, args...)
	if err != nil {
		return nil, 0, err
	}

	order, ok := productOrder[q.Sort]
	if !ok {
		order = productOrder[models.SortNewest]
	}
	query := "SELECT " + productColumns + productFrom + " WHERE " + where + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	products, err := r.s.scanProducts(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *MySQLStore) scanProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.query(ctx, "products", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(productDest(&p)...); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// productFilter turns a query into a WHERE clause over products p, categories c and sub_categories sc.
func productFilter(q models.ProductQuery) (string, []any) {
	conds := []string{"1 = 1"}
	var args []any
	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if q.ShopID != nil {
		add("p.shop_id = ?", *q.ShopID)
	}
	if q.CategoryID != nil {
		add("p.category_id = ?", *q.CategoryID)
	}
	if q.SubCategoryID != nil {
		add("p.sub_category_id = ?", *q.SubCategoryID)
	}
	// utf8mb4 default collations compare case-insensitively
	if q.CategoryName != "" {
		add("c.name = ?", q.CategoryName)
	}
	if q.SubCategoryName != "" {
		add("sc.name = ?", q.SubCategoryName)
	}
	if q.DiscountBelow.Valid {
		add("p.discount_price < ?", q.DiscountBelow.Decimal)
	}
	if q.HasDiscount != nil {
		add("p.has_discount = ?", *q.HasDiscount)
	}
	if q.RatingAbove.Valid {
		add("p.average_rating > ?", q.RatingAbove.Decimal)
	}
	if q.PriceAbove.Valid {
		add("p.price > ?", q.PriceAbove.Decimal)
	}
	if q.PriceBelow.Valid {
		add("p.price < ?", q.PriceBelow.Decimal)
	}
	for _, word := range strings.Fields(q.Keywords) {
		like := "%" + escapeLike(word) + "%"
		add("(p.name LIKE ? OR p.description LIKE ? OR c.name LIKE ? OR sc.name LIKE ?)", like, like, like, like)
	}
	if q.ExcludeID != nil {
		add("p.id <> ?", *q.ExcludeID)
	}
	if q.OnlyDiscounted {
		add("p.has_discount = TRUE AND p.discount_price IS NOT NULL")
	}
	if q.ExcludeDeleted {
		add("p.is_deleted = FALSE")
	}
	if q.OnlyListed {
		add("p.admin_status = ? AND p.is_deleted = FALSE", models.AdminApproved)
	}

	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *mysqlProducts) Update(ctx context.Context, p *models.Product) error {
	query := `UPDATE products SET
		category_id = ?, sub_category_id = ?, name = ?, description = ?, status = ?, quantity = ?, price = ?, tax = ?,
		has_discount = ?, discount_price = ?, admin_status = ?, is_published = ?, is_deleted = ?
		WHERE id = ? AND shop_id = ?`
	_, err := r.s.exec(ctx, "UPDATE", "products", query,
		p.CategoryID, p.SubCategoryID, p.Name, p.Description, p.Status, p.Quantity, p.Price, p.Tax,
		p.HasDiscount, p.DiscountPrice, p.AdminStatus, p.IsPublished, p.IsDeleted,
		p.ID, p.ShopID,
	)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *mysqlProducts) Delete(ctx context.Context, shopID, productID int64) error {
	n, err := r.s.execAffecting(ctx, "DELETE", "products", "DELETE FROM products WHERE id = ? AND shop_id = ?", productID, shopID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mysqlProducts) LockForUpdate(ctx context.Context, id int64) error {
	var locked int64
	return r.s.queryRow(ctx, "products", "SELECT id FROM products WHERE id = ? FOR UPDATE", []any{id}, &locked)
}

func (r *mysqlProducts) RefreshAverageRating(ctx context.Context, id int64) (decimal.Decimal, error) {
	// updated_at is assigned to itself so the ON UPDATE clause does not fire
	query := `UPDATE products
		SET average_rating = (SELECT COALESCE(AVG(rating), 0) FROM ratings WHERE product_id = ?),
		    updated_at = updated_at
		WHERE id = ?`
	if _, err := r.s.exec(ctx, "UPDATE", "products", query, id, id); err != nil {
		return decimal.Zero, err
	}

	var avg decimal.Decimal
	if err := r.s.queryRow(ctx, "products", "SELECT average_rating FROM products WHERE id = ?", []any{id}, &avg); err != nil {
		return decimal.Zero, err
	}
	return avg, nil
}
