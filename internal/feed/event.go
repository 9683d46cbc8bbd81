// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package feed implements the order change feed on NATS JetStream via
// Watermill. Every order mutation publishes an OrderEvent; the
// notification pipeline consumes them through a durable subscriber so
// events survive restarts and arrive in publish order.
package feed

import (
	"time"

	"github.com/google/uuid"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to OrderEvent.
const SchemaVersion = 1

// Event kinds carried on the feed.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// OrderEvent is the canonical change-feed record for an order mutation.
//
// Deleted events carry only the order ID; created and updated events
// carry the full order record so consumers can reconcile without a
// read-back query.
type OrderEvent struct {
	// SchemaVersion tracks the event format for forward compatibility.
	SchemaVersion int `json:"schema_version,omitempty"`

	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"` // created, updated, deleted
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`

	// Order is the record after the mutation. Nil for deleted events.
	Order *models.OrderRecord `json:"order,omitempty"`
}

// NewOrderEvent creates an event with a unique ID, timestamp, and schema
// version.
func NewOrderEvent(kind, orderID string) *OrderEvent {
	return &OrderEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Kind:          kind,
		OrderID:       orderID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Validate checks required fields and returns an error if validation fails.
func (e *OrderEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	switch e.Kind {
	case KindCreated, KindUpdated, KindDeleted:
	default:
		return &ValidationError{Field: "kind", Message: "must be created, updated, or deleted"}
	}
	if e.OrderID == "" {
		return &ValidationError{Field: "order_id", Message: "required"}
	}
	if e.Kind != KindDeleted && e.Order == nil {
		return &ValidationError{Field: "order", Message: "required for " + e.Kind + " events"}
	}
	return nil
}

// Topic returns the NATS subject for this event.
// Format: orders.<kind>
func (e *OrderEvent) Topic() string {
	return "orders." + e.Kind
}

// EnsureSchemaVersion sets the schema version if not already set, for
// events published before versioning was introduced.
func (e *OrderEvent) EnsureSchemaVersion() {
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
}
