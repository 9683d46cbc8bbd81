// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package models

import (
	"time"
)

// OrderStatus is the canonical order lifecycle status.
//
// The lifecycle is forward-only:
//
//	pending -> processing -> completed
//
// with cancelled reachable from pending or processing, never from completed.
// Legacy data sources that use "confirmed" map it to StatusProcessing.
type OrderStatus string

const (
	// StatusPending indicates an order awaiting back-office action.
	StatusPending OrderStatus = "pending"
	// StatusProcessing indicates an accepted order being fulfilled.
	StatusProcessing OrderStatus = "processing"
	// StatusCompleted indicates a fulfilled order. Terminal.
	StatusCompleted OrderStatus = "completed"
	// StatusCancelled indicates an abandoned order. Terminal.
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the canonical statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// Self-transitions are not permitted; the store treats them as no-ops upstream.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next == StatusCompleted || next == StatusCancelled
	default:
		// completed and cancelled are terminal
		return false
	}
}

// AwaitingAttention reports whether orders in this status belong in the
// active notification set.
func (s OrderStatus) AwaitingAttention() bool {
	return s == StatusPending
}

// CountsAsSale reports whether orders in this status contribute to sales
// aggregates (top products, revenue series). Pending orders are not yet
// confirmed sales; cancelled orders never were.
func (s OrderStatus) CountsAsSale() bool {
	return s == StatusProcessing || s == StatusCompleted
}

// NormalizeStatus maps legacy status vocabularies onto the canonical set.
// Unknown values are returned unchanged so validation can reject them.
func NormalizeStatus(raw string) OrderStatus {
	if raw == "confirmed" {
		return StatusProcessing
	}
	return OrderStatus(raw)
}

// OrderRecord represents one customer order as stored in the back office.
// The notification and reporting subsystems only ever read these; mutations
// happen through the order management endpoints.
type OrderRecord struct {
	// ID is the globally unique, never-reused order identifier.
	ID string `json:"id"`
	// DisplayID is the human-facing short code (e.g. "BO-2031"). Optional.
	DisplayID string `json:"display_id,omitempty"`
	// Status follows the forward-only lifecycle documented on OrderStatus.
	Status OrderStatus `json:"status"`
	// TotalAmount is the non-negative order total in the shop currency.
	TotalAmount float64 `json:"total_amount"`
	// CustomerID identifies the placing customer. Empty for guest orders.
	CustomerID string `json:"customer_id,omitempty"`
	// CreatedAt is immutable once set.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt tracks the latest status mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItemRecord is one line item of an order, used by product aggregation.
type OrderItemRecord struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	// OrderStatus is denormalized from the owning order so the aggregation
	// functions can apply the counts-as-sale predicate without a join.
	OrderStatus OrderStatus `json:"order_status"`
	// OrderCreatedAt is denormalized for window filtering.
	OrderCreatedAt time.Time `json:"order_created_at"`
}

// CustomerRecord is a customer-role profile, used by customer metrics and
// for resolving display names into notification entries.
type CustomerRecord struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
