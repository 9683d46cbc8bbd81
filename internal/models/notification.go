// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package models

import (
	"time"
)

// NotificationEntry is the view of an OrderRecord shown in the back-office
// notification bell. An entry exists in the active set if and only if the
// underlying order status is in the awaiting-attention subset; the
// reconciliation engine owns the set exclusively.
type NotificationEntry struct {
	OrderID     string      `json:"order_id"`
	DisplayID   string      `json:"display_id,omitempty"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	CustomerID  string      `json:"customer_id,omitempty"`
	// CustomerDisplayName is resolved best-effort from the customer profile;
	// empty when the lookup failed or the order was placed by a guest.
	CustomerDisplayName string    `json:"customer_display_name,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// ConnectionState is the lifecycle state of the change-feed subscription.
// Owned by the feed subscriber; consumed read-only everywhere else.
type ConnectionState string

const (
	// StateConnecting indicates the subscription is being established.
	StateConnecting ConnectionState = "connecting"
	// StateSubscribed indicates live event delivery.
	StateSubscribed ConnectionState = "subscribed"
	// StateError indicates the feed dropped; polling remains the backstop.
	StateError ConnectionState = "error"
	// StateClosed indicates the subscription was torn down.
	StateClosed ConnectionState = "closed"
)

// NotificationsResponse is the REST payload for the active notification set.
type NotificationsResponse struct {
	Notifications    []NotificationEntry `json:"notifications"`
	UnreadCount      int                 `json:"unread_count"`
	ConnectionStatus ConnectionState     `json:"connection_status"`
	LastRefreshedAt  *time.Time          `json:"last_refreshed_at,omitempty"`
}
