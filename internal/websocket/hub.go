// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package websocket pushes notification and report updates to connected
// back-office dashboards. The hub owns the client set; broadcasts fan out
// in deterministic client order.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/metrics"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeOrderNotification = "order_notification"
	MessageTypeBadgeUpdate       = "badge_update"
	MessageTypeConnectionStatus  = "connection_status"
	MessageTypeReportUpdate      = "report_update"
	MessageTypeSoundCue          = "sound_cue"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeInteraction       = "interaction"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InteractionHandler is invoked when any client reports an operator
// interaction (click, keypress). Used to unlock deferred sound cues.
type InteractionHandler func()

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients       Clients
	broadcast     chan Message
	Register      chan *Client
	Unregister    chan *Client
	mu            sync.RWMutex
	onInteraction InteractionHandler
}

// Clients is the hub's client set.
type Clients map[*Client]bool

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(Clients),
	}
}

// SetInteractionHandler wires the interaction callback. Must be called
// before the hub serves clients.
func (h *Hub) SetInteractionHandler(fn InteractionHandler) {
	h.onInteraction = fn
}

// String implements suture's service naming.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Serve runs the hub with context support for graceful shutdown.
// Implements suture.Service.
//
// When the context is canceled all connected clients are closed and the
// method returns ctx.Err(), so a supervisor restart never leaves orphaned
// connections.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
//   - Priority 1: Context cancellation (shutdown)
//   - Priority 2: Client lifecycle events (Register/Unregister)
//   - Priority 3: Broadcast messages
//
// Client state is always consistent before messages are processed.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		// Priority 3: Handle broadcast messages or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("websocket client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is NOT logged as an error because cancellation is
// expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()

	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends a message to all connected clients.
// DETERMINISM: Clients are sorted by their monotonic IDs so delivery order
// is consistent across runs; Go map iteration order is random.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Track clients to remove (can't modify map during iteration)
	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.RecordWebSocketMessage(message.Type)
		default:
			// Channel full or closed, mark for removal
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WebSocketConnections.Set(float64(len(h.clients)))
	}
}

// closeAllClients closes all connected clients in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnections.Set(0)
}

// enqueue drops the message when the broadcast buffer is full; REST polling
// is the backstop for missed pushes.
func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastOrderNotification pushes one newly arrived order to all clients.
func (h *Hub) BroadcastOrderNotification(entry models.NotificationEntry) {
	h.enqueue(Message{Type: MessageTypeOrderNotification, Data: entry})
}

// BadgeUpdateData is the payload of a badge_update message.
type BadgeUpdateData struct {
	Count int `json:"count"`
	// Pulse is true when the update was caused by new arrivals, telling the
	// dashboard to animate the badge.
	Pulse     bool   `json:"pulse"`
	Timestamp string `json:"timestamp"`
}

// BroadcastBadgeUpdate pushes the current awaiting-attention count.
func (h *Hub) BroadcastBadgeUpdate(count int, pulse bool) {
	h.enqueue(Message{
		Type: MessageTypeBadgeUpdate,
		Data: BadgeUpdateData{
			Count:     count,
			Pulse:     pulse,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastConnectionStatus pushes the change-feed subscription state.
func (h *Hub) BroadcastConnectionStatus(state models.ConnectionState) {
	h.enqueue(Message{
		Type: MessageTypeConnectionStatus,
		Data: map[string]string{"state": string(state)},
	})
}

// ReportUpdateData is the payload of a report_update message. Clients fetch
// the full snapshot via REST; the push only signals freshness.
type ReportUpdateData struct {
	GeneratedAt string `json:"generated_at"`
	Stale       bool   `json:"stale"`
}

// BroadcastReportUpdate signals that a new report snapshot is available.
func (h *Hub) BroadcastReportUpdate(generatedAt time.Time, stale bool) {
	h.enqueue(Message{
		Type: MessageTypeReportUpdate,
		Data: ReportUpdateData{
			GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
			Stale:       stale,
		},
	})
}

// BroadcastSoundCue tells clients to play the notification chime.
func (h *Hub) BroadcastSoundCue() {
	h.enqueue(Message{Type: MessageTypeSoundCue, Data: nil})
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleInteraction forwards a client interaction report.
func (h *Hub) handleInteraction() {
	if h.onInteraction != nil {
		h.onInteraction()
	}
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
