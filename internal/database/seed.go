// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// SeedMockData seeds the database with demo orders and customers.
// Intended for demos and screenshot capture only; it is a no-op when
// orders already exist.
func (db *DB) SeedMockData(ctx context.Context) error {
	orders, _, err := db.RecordCounts(ctx)
	if err != nil {
		return err
	}
	if orders > 0 {
		logging.Debug().Msg("Skipping mock data seed, orders table not empty")
		return nil
	}

	logging.Info().Msg("Seeding database with mock data...")

	rng := rand.New(rand.NewSource(42)) // fixed seed for reproducible demos

	customers := []models.CustomerRecord{
		{FullName: "Abebe Kebede", Email: "abebe@example.com"},
		{FullName: "Sara Tesfaye", Email: "sara@example.com"},
		{FullName: "Hanna Girma", Email: "hanna@example.com"},
		{FullName: "Dawit Bekele", Email: "dawit@example.com"},
		{FullName: "Meron Alemu", Email: "meron@example.com"},
	}
	products := []struct {
		name  string
		price float64
	}{
		{"Organic Avocado", 4.50},
		{"Red Onion", 1.20},
		{"Tomato Basket", 3.80},
		{"Fresh Mango", 5.00},
		{"Carrot Bundle", 2.10},
		{"Green Pepper", 1.75},
	}
	statuses := []models.OrderStatus{
		models.StatusPending,
		models.StatusProcessing,
		models.StatusCompleted,
		models.StatusCompleted,
		models.StatusCancelled,
	}

	const daysOfHistory = 30
	now := time.Now().UTC()

	for i := range customers {
		customers[i].ID = uuid.New().String()
		customers[i].CreatedAt = now.AddDate(0, 0, -daysOfHistory+rng.Intn(daysOfHistory))
		if err := db.InsertCustomer(ctx, customers[i]); err != nil {
			return err
		}
	}

	for i := 0; i < 120; i++ {
		createdAt := now.Add(-time.Duration(rng.Intn(daysOfHistory*24)) * time.Hour)
		customer := customers[rng.Intn(len(customers))]

		items := make([]models.OrderItemRecord, 0, 3)
		total := 0.0
		for j := 0; j < 1+rng.Intn(3); j++ {
			p := products[rng.Intn(len(products))]
			qty := 1 + rng.Intn(4)
			items = append(items, models.OrderItemRecord{
				ID:          uuid.New().String(),
				ProductName: p.name,
				Quantity:    qty,
				Price:       p.price,
			})
			total += p.price * float64(qty)
		}

		order := models.OrderRecord{
			ID:          uuid.New().String(),
			DisplayID:   fmt.Sprintf("BO-%04d", 1000+i),
			Status:      statuses[rng.Intn(len(statuses))],
			TotalAmount: total,
			CustomerID:  customer.ID,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}
		if err := db.InsertOrder(ctx, order, items); err != nil {
			return err
		}
	}

	logging.Info().Int("orders", 120).Int("customers", len(customers)).Msg("Mock data seeded")
	return nil
}
