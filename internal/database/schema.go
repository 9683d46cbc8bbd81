// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package database

import (
	"context"
	"fmt"
	"time"
)

// createTables creates the core schema. CREATE TABLE IF NOT EXISTS keeps
// startup idempotent across restarts.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id         VARCHAR PRIMARY KEY,
			full_name  VARCHAR NOT NULL,
			email      VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id           VARCHAR PRIMARY KEY,
			display_id   VARCHAR NOT NULL,
			status       VARCHAR NOT NULL,
			total_amount DOUBLE NOT NULL,
			customer_id  VARCHAR,
			created_at   TIMESTAMP NOT NULL,
			updated_at   TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id           VARCHAR PRIMARY KEY,
			order_id     VARCHAR NOT NULL,
			product_name VARCHAR NOT NULL,
			quantity     INTEGER NOT NULL,
			price        DOUBLE NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// createIndexes creates indexes for the hot query paths: pending-order
// snapshots (status), report windows (created_at), and item lookups.
func (db *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers(created_at)`,
	}

	for _, stmt := range indexes {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
