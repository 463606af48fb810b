package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/narocila/internal/db"
	"github.com/erazemk/narocila/internal/model"
)

const orderColumns = `id, customer_id, total_amount, status, created_at`

// ListOrders returns a page of orders in insertion order, each with its items.
func (s *Store) ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+orderColumns+` FROM orders ORDER BY id LIMIT ? OFFSET ?`),
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	rows.Close()

	if err := s.attachOrderItems(ctx, s.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder places an order for customerID. Lines are processed in the
// given order: each item must exist and hold at least the requested quantity,
// its stock is decremented, and the line's price is added to the total.
// Decrements are visible to later lines, so repeated item ids compound.
// Either the order, its items and every stock change are committed
// together, or nothing is.
func (s *Store) CreateOrder(ctx context.Context, customerID string, lines []model.OrderLine) (*model.Order, error) {
	var orderID int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		total := decimal.Zero

		for _, line := range lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: item %d", ErrInvalidQuantity, line.ItemID)
			}

			item, err := s.getItem(ctx, tx, line.ItemID, s.dialect.LockClause)
			if errors.Is(err, ErrNotFound) {
				return &ItemNotFoundError{ItemID: line.ItemID}
			}
			if err != nil {
				return err
			}

			if item.Stock < line.Quantity {
				return &InsufficientStockError{ItemID: item.ID, Requested: line.Quantity, Available: item.Stock}
			}

			// The stock guard keeps a concurrent writer from driving stock
			// below zero between the read above and this update.
			err = s.exec(ctx, tx,
				`UPDATE items SET stock = stock - ? WHERE id = ? AND stock >= ?`,
				line.Quantity, item.ID, line.Quantity,
			)
			if errors.Is(err, ErrNotFound) {
				return &InsufficientStockError{ItemID: item.ID, Requested: line.Quantity, Available: item.Stock}
			}
			if err != nil {
				return fmt.Errorf("decrementing stock: %w", err)
			}

			total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		id, err := s.insert(ctx, tx,
			`INSERT INTO orders (customer_id, total_amount, status) VALUES (?, ?, ?)`,
			customerID, total.InexactFloat64(), string(model.OrderStatusPending),
		)
		if err != nil {
			return fmt.Errorf("creating order: %w", err)
		}
		orderID = id

		for _, line := range lines {
			if _, err := s.insert(ctx, tx,
				`INSERT INTO order_items (order_id, item_id, quantity) VALUES (?, ?, ?)`,
				orderID, line.ItemID, line.Quantity,
			); err != nil {
				return fmt.Errorf("creating order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, orderID)
}

// GetOrder returns an order with its items, or ErrNotFound.
func (s *Store) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	orders := []model.Order{*order}
	if err := s.attachOrderItems(ctx, s.db, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// UpdateOrderStatus overwrites an order's status. No transition rules apply.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	err := s.exec(ctx, s.db, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if errors.Is(err, ErrNotFound) {
		// MySQL reports zero affected rows when the status is unchanged.
		if _, getErr := s.GetOrder(ctx, id); getErr != nil {
			return nil, getErr
		}
	} else if err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}

	return s.GetOrder(ctx, id)
}

// DeleteOrder removes an order and its order items. Stock taken by the
// order is not given back.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
			`DELETE FROM order_items WHERE order_id = ?`), id,
		); err != nil {
			return fmt.Errorf("deleting order items: %w", err)
		}

		err := s.exec(ctx, tx, `DELETE FROM orders WHERE id = ?`, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("deleting order: %w", err)
		}
		return err
	})
}

// attachOrderItems loads the items of all given orders with a single query.
func (s *Store) attachOrderItems(ctx context.Context, q querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]any, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		orders[i].Items = []model.OrderItem{}
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
	}

	rows, err := q.QueryContext(ctx, s.dialect.Rebind(
		`SELECT id, order_id, item_id, quantity FROM order_items
		 WHERE order_id IN (`+db.Placeholders(len(ids))+`) ORDER BY id`),
		ids...,
	)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oi model.OrderItem
		if err := rows.Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if i, ok := index[oi.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, oi)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*model.Order, error) {
	order := &model.Order{}
	var status string
	if err := row.Scan(&order.ID, &order.CustomerID, &order.TotalAmount, &status, &order.CreatedAt); err != nil {
		return nil, err
	}
	order.Status = model.OrderStatus(status)
	return order, nil
}
