package repository

import (
	"context"
	"database/sql"
	"errors"
	"storefront-service/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

const orderColumns = `id, user_id, full_name, phone, address_line, city, area, postal_code, country, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*entity.Order, error) {
	order := &entity.Order{}
	var userID sql.NullInt64
	err := row.Scan(&order.ID, &userID, &order.FullName, &order.Phone, &order.AddressLine, &order.City, &order.Area, &order.PostalCode, &order.Country, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := int(userID.Int64)
		order.UserID = &id
	}
	return order, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID int) ([]entity.OrderItem, error) {
	itemQuery := `SELECT id, order_id, product_id, product_name, unit_price, quantity FROM order_items WHERE order_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, itemQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		item := entity.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetOrderByIDAndUser looks up an order filtered by both id and owning
// user in one query. An order owned by a different user comes back as
// sql.ErrNoRows, indistinguishable from a missing one.
func (r *OrderRepository) GetOrderByIDAndUser(ctx context.Context, id, userID int) (*entity.Order, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? AND user_id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, orderQuery, id, userID))
	if err != nil {
		return nil, err
	}

	order.Items, err = r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrdersByUser returns the user's orders newest first, items attached.
func (r *OrderRepository) GetOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, orderQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items, err = r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetLatestOrderByUser returns the user's most recent order, without items.
func (r *OrderRepository) GetLatestOrderByUser(ctx context.Context, userID int) (*entity.Order, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`

	return scanOrder(r.db.QueryRowContext(ctx, orderQuery, userID))
}

// CreateOrder inserts the order and its item snapshots in one transaction.
// An order needs at least one item.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if len(order.Items) == 0 {
		return nil, errors.New("order has no items")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	orderQuery := `INSERT INTO orders (user_id, full_name, phone, address_line, city, area, postal_code, country, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var userID interface{}
	if order.UserID != nil {
		userID = *order.UserID
	}
	res, err := tx.ExecContext(ctx, orderQuery, userID, order.FullName, order.Phone, order.AddressLine, order.City, order.Area, order.PostalCode, order.Country, order.Status)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Insert item snapshots with batch
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
		VALUES `

	var values []interface{}
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?, ?),"
		values = append(values, orderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity)
	}

	// Remove the trailing comma
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order, nil
}
