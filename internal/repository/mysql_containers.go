package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/models"
)

type containerTable struct {
	table string
	items string
	fk    string
}

var containerTables = map[models.ContainerKind]containerTable{
	models.KindCart:     {table: "carts", items: "cart_items", fk: "cart_id"},
	models.KindWishlist: {table: "wishlists", items: "wishlist_items", fk: "wishlist_id"},
	models.KindOrder:    {table: "orders", items: "order_items", fk: "order_id"},
}

func tableFor(kind models.ContainerKind) (containerTable, error) {
	t, ok := containerTables[kind]
	if !ok {
		return containerTable{}, fmt.Errorf("unknown container kind %q", kind)
	}
	return t, nil
}

type mysqlContainers struct{ s *MySQLStore }

func (r *mysqlContainers) Get(ctx context.Context, kind models.ContainerKind, ownerID int64) (*models.Container, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	c := models.Container{Kind: kind}
	dest := []any{&c.ID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt}
	columns := "id, owner_id, created_at, updated_at"
	if kind == models.KindCart {
		columns += ", delivery_address"
		dest = append(dest, &c.DeliveryAddress)
	}

	query := "SELECT " + columns + " FROM " + t.table + " WHERE owner_id = ?"
	if err := r.s.queryRow(ctx, t.table, query, []any{ownerID}, dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mysqlContainers) Create(ctx context.Context, kind models.ContainerKind, ownerID int64) (*models.Container, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	res, err := r.s.exec(ctx, "INSERT", t.table, "INSERT INTO "+t.table+" (owner_id) VALUES (?)", ownerID)
	if err != nil {
		return nil, err
	}
	id, err := insertID(res)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &models.Container{ID: id, Kind: kind, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *mysqlContainers) UpdateDeliveryAddress(ctx context.Context, cartID int64, address string) error {
	_, err := r.s.exec(ctx, "UPDATE", "carts", "UPDATE carts SET delivery_address = ? WHERE id = ?", address, cartID)
	return err
}

func (r *mysqlContainers) AddItem(ctx context.Context, kind models.ContainerKind, item *models.LineItem) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	var res sql.Result
	switch kind {
	case models.KindCart:
		query := "INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?, ?, ?)"
		res, err = r.s.exec(ctx, "INSERT", t.items, query, item.ContainerID, item.ProductID, item.Quantity)
	case models.KindWishlist:
		query := "INSERT INTO wishlist_items (wishlist_id, product_id) VALUES (?, ?)"
		res, err = r.s.exec(ctx, "INSERT", t.items, query, item.ContainerID, item.ProductID)
	case models.KindOrder:
		if item.Snapshot == nil {
			return fmt.Errorf("order item for product %d has no price snapshot", item.ProductID)
		}
		snap := item.Snapshot
		query := `INSERT INTO order_items
			(order_id, product_id, customer_id, merchant_company_id, order_price, order_tax, order_discount, quantity, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err = r.s.exec(ctx, "INSERT", t.items, query,
			item.ContainerID, item.ProductID, snap.CustomerID, snap.MerchantCompanyID,
			snap.OrderPrice, snap.OrderTax, snap.OrderDiscount, item.Quantity, item.Status,
		)
	}
	if err != nil {
		return err
	}

	if item.ID, err = insertID(res); err != nil {
		return err
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	return nil
}

// itemSelect returns the SELECT ... FROM ... JOIN prefix for a kind's items and
// a function producing scan destinations for one item.
func itemSelect(kind models.ContainerKind, t containerTable) (string, func(*models.LineItem) []any) {
	productCols := "p.name, p.description, p.status, p.price, p.tax, p.has_discount, p.discount_price, p.currency"
	base := func(it *models.LineItem) []any {
		it.Product = &models.ProductDetails{}
		return []any{
			&it.ID, &it.ContainerID, &it.ProductID, &it.CreatedAt, &it.UpdatedAt,
			&it.Product.Name, &it.Product.Description, &it.Product.Status, &it.Product.Price, &it.Product.Tax,
			&it.Product.HasDiscount, &it.Product.DiscountPrice, &it.Product.Currency,
		}
	}
	prefix := "SELECT i.id, i." + t.fk + ", i.product_id, i.created_at, i.updated_at, " + productCols

	switch kind {
	case models.KindCart:
		return prefix + ", i.quantity FROM cart_items i JOIN products p ON p.id = i.product_id",
			func(it *models.LineItem) []any { return append(base(it), &it.Quantity) }
	case models.KindOrder:
		return prefix + `, i.quantity, i.status, i.customer_id, i.merchant_company_id, i.order_price, i.order_tax, i.order_discount
				FROM order_items i JOIN products p ON p.id = i.product_id`,
			func(it *models.LineItem) []any {
				it.Snapshot = &models.PriceSnapshot{}
				return append(base(it), &it.Quantity, &it.Status,
					&it.Snapshot.CustomerID, &it.Snapshot.MerchantCompanyID,
					&it.Snapshot.OrderPrice, &it.Snapshot.OrderTax, &it.Snapshot.OrderDiscount,
				)
			}
	default:
		return prefix + " FROM " + t.items + " i JOIN products p ON p.id = i.product_id", base
	}
}

func (r *mysqlContainers) GetItem(ctx context.Context, kind models.ContainerKind, containerID, productID int64) (*models.LineItem, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	prefix, dest := itemSelect(kind, t)
	query := prefix + " WHERE i." + t.fk + " = ? AND i.product_id = ?"
	var item models.LineItem
	if err := r.s.queryRow(ctx, t.items, query, []any{containerID, productID}, dest(&item)...); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *mysqlContainers) ListItems(ctx context.Context, kind models.ContainerKind, containerID int64, page *models.Page) ([]models.LineItem, int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.CountItems(ctx, kind, containerID)
	if err != nil {
		return nil, 0, err
	}

	prefix, dest := itemSelect(kind, t)
	query := prefix + " WHERE i." + t.fk + " = ? ORDER BY i.created_at DESC, i.id DESC"
	args := []any{containerID}
	if page != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Size, page.Offset())
	}

	rows, err := r.s.query(ctx, t.items, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]models.LineItem, 0)
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(dest(&item)...); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *mysqlContainers) UpdateItemQuantity(ctx context.Context, kind models.ContainerKind, containerID, productID int64, quantity int) error {
	if kind == models.KindWishlist {
		return ErrUnsupported
	}
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := "UPDATE " + t.items + " SET quantity = ? WHERE " + t.fk + " = ? AND product_id = ?"
	_, err = r.s.exec(ctx, "UPDATE", t.items, query, quantity, containerID, productID)
	return err
}

func (r *mysqlContainers) UpdateItemStatus(ctx context.Context, orderID, productID int64, status string) error {
	query := "UPDATE order_items SET status = ? WHERE order_id = ? AND product_id = ?"
	_, err := r.s.exec(ctx, "UPDATE", "order_items", query, status, orderID, productID)
	return err
}

func (r *mysqlContainers) RemoveItem(ctx context.Context, kind models.ContainerKind, containerID, productID int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := "DELETE FROM " + t.items + " WHERE " + t.fk + " = ? AND product_id = ?"
	n, err := r.s.execAffecting(ctx, "DELETE", t.items, query, containerID, productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mysqlContainers) ClearItems(ctx context.Context, kind models.ContainerKind, containerID int64) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	return r.s.execAffecting(ctx, "DELETE", t.items, "DELETE FROM "+t.items+" WHERE "+t.fk+" = ?", containerID)
}

func (r *mysqlContainers) CountItems(ctx context.Context, kind models.ContainerKind, containerID int64) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	return r.s.count(ctx, t.items, "SELECT COUNT(*) FROM "+t.items+" WHERE "+t.fk+" = ?", containerID)
}
