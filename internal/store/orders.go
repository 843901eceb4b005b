package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-placement-service/internal/models"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// SaveOrder inserts the order and all of its line items in one transaction.
// On success the order and its items carry their generated ids.
func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order,
		"INSERT INTO orders (order_number) VALUES ($1) RETURNING id, order_number, created_at",
		order.OrderNumber)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.LineItems {
		item := &order.LineItems[i]
		item.OrderID = order.ID

		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_line_items (order_id, sku_code, price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			item.OrderID, item.SKUCode, item.Price, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert line item %s: %w", item.SKUCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// GetOrderByNumber retrieves an order and its line items
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT id, order_number, created_at FROM orders WHERE order_number = $1", orderNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderNumber, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &order.LineItems,
		"SELECT id, order_id, sku_code, price, quantity FROM order_line_items WHERE order_id = $1 ORDER BY id",
		order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}

	return &order, nil
}
