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

const selectOrderQuery = `SELECT id, display_id, status, total_amount, customer_id, created_at, updated_at FROM orders`

// PendingOrders returns the orders awaiting attention, newest first,
// capped at limit. This is the snapshot query for the notification
// pipeline.
func (db *DB) PendingOrders(ctx context.Context, limit int) ([]models.OrderRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		selectOrderQuery+` WHERE status = ? ORDER BY created_at DESC, id LIMIT ?`,
		string(models.StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending orders: %w", err)
	}
	defer closeWithLog(rows, "pending orders rows")

	return scanOrders(rows)
}

// OrdersCreatedSince returns all orders created at or after the given
// time, oldest first. Report aggregation buckets these into daily,
// weekly, and monthly series.
func (db *DB) OrdersCreatedSince(ctx context.Context, since time.Time) ([]models.OrderRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		selectOrderQuery+` WHERE created_at >= ? ORDER BY created_at, id`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders since %s: %w", since.Format(time.RFC3339), err)
	}
	defer closeWithLog(rows, "orders since rows")

	return scanOrders(rows)
}

// OrderItemsSince returns line items for orders created at or after the
// given time, with the parent order's status and creation time
// denormalized onto each row so top-product aggregation needs no second
// query.
func (db *DB) OrderItemsSince(ctx context.Context, since time.Time) ([]models.OrderItemRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.product_name, i.quantity, i.price, o.status, o.created_at
		 FROM order_items i
		 JOIN orders o ON o.id = i.order_id
		 WHERE o.created_at >= ?
		 ORDER BY o.created_at, i.id`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items since %s: %w", since.Format(time.RFC3339), err)
	}
	defer closeWithLog(rows, "order items since rows")

	return scanOrderItems(rows)
}

// Customers returns all customer records, oldest first.
func (db *DB) Customers(ctx context.Context) ([]models.CustomerRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, full_name, email, created_at FROM customers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer closeWithLog(rows, "customers rows")

	customers := []models.CustomerRecord{}
	for rows.Next() {
		var c models.CustomerRecord
		var email sql.NullString
		if err := rows.Scan(&c.ID, &c.FullName, &email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c.Email = email.String
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customer rows iteration failed: %w", err)
	}

	return customers, nil
}

// CustomerName returns the display name for a customer ID, or empty
// string if the customer is unknown. Notification enrichment treats a
// missing name as non-fatal.
func (db *DB) CustomerName(ctx context.Context, customerID string) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var name string
	err := db.conn.QueryRowContext(ctx,
		"SELECT full_name FROM customers WHERE id = ?", customerID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up customer %s: %w", customerID, err)
	}
	return name, nil
}

// OrderCountsByCustomer returns the number of orders per customer ID,
// used for the average-orders-per-customer metric.
func (db *DB) OrderCountsByCustomer(ctx context.Context) (map[string]int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT customer_id, COUNT(*) FROM orders
		 WHERE customer_id IS NOT NULL AND customer_id != ''
		 GROUP BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query order counts: %w", err)
	}
	defer closeWithLog(rows, "order counts rows")

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order count rows iteration failed: %w", err)
	}

	return counts, nil
}

// scanOrder scans a single order row.
func scanOrder(row *sql.Row) (models.OrderRecord, error) {
	var o models.OrderRecord
	var status string
	var customerID sql.NullString
	err := row.Scan(&o.ID, &o.DisplayID, &status, &o.TotalAmount, &customerID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return models.OrderRecord{}, err
	}
	o.Status = models.OrderStatus(status)
	o.CustomerID = customerID.String
	return o, nil
}

// scanOrders scans all rows from an order query.
func scanOrders(rows *sql.Rows) ([]models.OrderRecord, error) {
	orders := []models.OrderRecord{}
	for rows.Next() {
		var o models.OrderRecord
		var status string
		var customerID sql.NullString
		if err := rows.Scan(&o.ID, &o.DisplayID, &status, &o.TotalAmount, &customerID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Status = models.OrderStatus(status)
		o.CustomerID = customerID.String
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order rows iteration failed: %w", err)
	}
	return orders, nil
}

// scanOrderItems scans all rows from an order-item join query.
func scanOrderItems(rows *sql.Rows) ([]models.OrderItemRecord, error) {
	items := []models.OrderItemRecord{}
	for rows.Next() {
		var it models.OrderItemRecord
		var status string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Quantity, &it.Price, &status, &it.OrderCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		it.OrderStatus = models.OrderStatus(status)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order item rows iteration failed: %w", err)
	}
	return items, nil
}
