// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// InsertOrder inserts an order and its line items in a single transaction.
// Returns ErrDuplicateOrder if the order ID already exists.
func (db *DB) InsertOrder(ctx context.Context, order models.OrderRecord, items []models.OrderItemRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE id = ?", order.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check order existence: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("order %s: %w", order.ID, ErrDuplicateOrder)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, display_id, status, total_amount, customer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.DisplayID, string(order.Status), order.TotalAmount,
		order.CustomerID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_name, quantity, price)
			 VALUES (?, ?, ?, ?, ?)`,
			item.ID, order.ID, item.ProductName, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert order item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order insert: %w", err)
	}
	return nil
}

// UpdateOrderStatus transitions an order to the given status, enforcing
// the order lifecycle. Updating to the current status is a no-op.
// Returns the updated record, ErrOrderNotFound if the ID does not exist,
// or ErrInvalidTransition if the lifecycle forbids the change.
func (db *DB) UpdateOrderStatus(ctx context.Context, orderID string, next models.OrderStatus) (models.OrderRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	next = models.NormalizeStatus(string(next))
	if !next.Valid() {
		return models.OrderRecord{}, fmt.Errorf("status %q: %w", next, ErrInvalidTransition)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.OrderRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	current, err := scanOrder(tx.QueryRowContext(ctx, selectOrderQuery+" WHERE id = ?", orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OrderRecord{}, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
		}
		return models.OrderRecord{}, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	if current.Status == next {
		return current, nil
	}
	if !current.Status.CanTransitionTo(next) {
		return models.OrderRecord{}, fmt.Errorf("order %s: %s -> %s: %w",
			orderID, current.Status, next, ErrInvalidTransition)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		string(next), now, orderID)
	if err != nil {
		return models.OrderRecord{}, fmt.Errorf("failed to update order %s: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return models.OrderRecord{}, fmt.Errorf("failed to commit status update: %w", err)
	}

	current.Status = next
	current.UpdatedAt = now
	return current, nil
}

// DeleteOrder removes an order and its line items.
// Returns ErrOrderNotFound if the ID does not exist.
func (db *DB) DeleteOrder(ctx context.Context, orderID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE id = ?", orderID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check order existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", orderID); err != nil {
		return fmt.Errorf("failed to delete order items for %s: %w", orderID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", orderID); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order delete: %w", err)
	}
	return nil
}

// GetOrder loads a single order by ID.
// Returns ErrOrderNotFound if the ID does not exist.
func (db *DB) GetOrder(ctx context.Context, orderID string) (models.OrderRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	order, err := scanOrder(db.conn.QueryRowContext(ctx, selectOrderQuery+" WHERE id = ?", orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OrderRecord{}, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
		}
		return models.OrderRecord{}, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return order, nil
}

// OrderItems loads the line items for a single order.
func (db *DB) OrderItems(ctx context.Context, orderID string) ([]models.OrderItemRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.product_name, i.quantity, i.price, o.status, o.created_at
		 FROM order_items i
		 JOIN orders o ON o.id = i.order_id
		 WHERE i.order_id = ?
		 ORDER BY i.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items for %s: %w", orderID, err)
	}
	defer closeWithLog(rows, "order items rows")

	return scanOrderItems(rows)
}

// RecentOrders lists orders by creation time, newest first.
func (db *DB) RecentOrders(ctx context.Context, limit, offset int) ([]models.OrderRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		selectOrderQuery+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer closeWithLog(rows, "recent orders rows")

	return scanOrders(rows)
}

// InsertCustomer inserts a customer record, ignoring duplicates so feed
// replays stay idempotent.
func (db *DB) InsertCustomer(ctx context.Context, customer models.CustomerRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO customers (id, full_name, email, created_at)
		 VALUES (?, ?, ?, ?)`,
		customer.ID, customer.FullName, customer.Email, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert customer %s: %w", customer.ID, err)
	}
	return nil
}

// rollbackQuietly rolls back a transaction, ignoring ErrTxDone from the
// happy path where Commit already succeeded.
func rollbackQuietly(tx *sql.Tx) {
	if tx != nil {
		_ = tx.Rollback()
	}
}
