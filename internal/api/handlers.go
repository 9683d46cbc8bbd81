// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package api provides the HTTP surface of the back office: order CRUD,
// the notification snapshot, report metrics, health, and the websocket
// upgrade. Routing uses Chi.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - helpers.go: Shared response/parameter helpers
//   - handlers_health.go: Health endpoints
//   - handlers_notifications.go: Notification snapshot and refresh
//   - handlers_reports.go: Report metrics
//   - handlers_orders.go: Order management (publishes change-feed events)
//   - handlers_websocket.go: WebSocket upgrade
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/config"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/feed"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
	ws "github.com/Yosef-Ali/betty-organic-sub002/internal/websocket"
)

// OrderStore is the database surface order management needs.
type OrderStore interface {
	InsertOrder(ctx context.Context, order models.OrderRecord, items []models.OrderItemRecord) error
	UpdateOrderStatus(ctx context.Context, orderID string, next models.OrderStatus) (models.OrderRecord, error)
	DeleteOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (models.OrderRecord, error)
	OrderItems(ctx context.Context, orderID string) ([]models.OrderItemRecord, error)
	RecentOrders(ctx context.Context, limit, offset int) ([]models.OrderRecord, error)
	Ping(ctx context.Context) error
}

// EventPublisher publishes order change events to the feed. Optional:
// a nil publisher degrades to poll-only notification delivery.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *feed.OrderEvent) error
}

// NotificationSource serves the current notification snapshot and accepts
// operator interaction reports.
type NotificationSource interface {
	Snapshot() models.NotificationsResponse
	ConnectionState() models.ConnectionState
	MarkInteraction()
}

// ReportSource serves the current report snapshot.
type ReportSource interface {
	Current() *models.ReportMetrics
	Refresh()
}

// Refresher triggers an immediate notification snapshot poll.
type Refresher interface {
	Refresh()
}

// Handler contains dependencies for API handlers.
type Handler struct {
	store         OrderStore
	publisher     EventPublisher
	notifications NotificationSource
	reports       ReportSource
	refresher     Refresher
	wsHub         *ws.Hub
	cfg           *config.APIConfig
	startTime     time.Time
}

// NewHandler creates an API handler. publisher, notifications, reports,
// refresher, and wsHub may be nil; the corresponding endpoints respond
// 503 or degrade gracefully.
func NewHandler(store OrderStore, publisher EventPublisher, notifications NotificationSource,
	reports ReportSource, refresher Refresher, wsHub *ws.Hub, cfg *config.APIConfig) *Handler {
	return &Handler{
		store:         store,
		publisher:     publisher,
		notifications: notifications,
		reports:       reports,
		refresher:     refresher,
		wsHub:         wsHub,
		cfg:           cfg,
		startTime:     time.Now(),
	}
}

// getUpgrader builds the websocket upgrader with origin checks from config.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.cfg.CORSOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}
