// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/database"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/feed"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// orderItemRequest is one line item of a create request.
type orderItemRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	Quantity    int     `json:"quantity" validate:"min=1"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// createOrderRequest is the POST /orders payload. ID is optional; the
// server assigns a UUID when absent. "confirmed" is accepted and
// normalized to processing.
type createOrderRequest struct {
	ID          string             `json:"id"`
	DisplayID   string             `json:"display_id"`
	Status      string             `json:"status" validate:"omitempty,oneof=pending processing completed cancelled confirmed"`
	TotalAmount float64            `json:"total_amount" validate:"gte=0"`
	CustomerID  string             `json:"customer_id"`
	Items       []orderItemRequest `json:"items" validate:"dive"`
}

// updateStatusRequest is the PATCH /orders/{id}/status payload.
type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled confirmed"`
}

// orderResponse is an order plus its line items.
type orderResponse struct {
	models.OrderRecord
	Items []models.OrderItemRecord `json:"items,omitempty"`
}

// ordersListResponse is the paginated order listing.
type ordersListResponse struct {
	Orders []models.OrderRecord `json:"orders"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// CreateOrder stores a new order and publishes an orders.created event.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	now := time.Now().UTC()
	order := models.OrderRecord{
		ID:          req.ID,
		DisplayID:   req.DisplayID,
		Status:      models.NormalizeStatus(req.Status),
		TotalAmount: req.TotalAmount,
		CustomerID:  req.CustomerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}

	items := make([]models.OrderItemRecord, 0, len(req.Items))
	var itemTotal float64
	for _, it := range req.Items {
		items = append(items, models.OrderItemRecord{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
		itemTotal += it.Price * float64(it.Quantity)
	}
	if order.TotalAmount == 0 && itemTotal > 0 {
		order.TotalAmount = itemTotal
	}

	if err := h.store.InsertOrder(r.Context(), order, items); err != nil {
		if errors.Is(err, database.ErrDuplicateOrder) {
			respondError(w, http.StatusConflict, "CONFLICT", "Order already exists", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to store order", err)
		return
	}

	h.publishOrderEvent(feed.KindCreated, order.ID, &order)

	respondSuccess(w, http.StatusCreated, orderResponse{OrderRecord: order, Items: items}, started)
}

// GetOrder returns one order with its line items.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	orderID := chi.URLParam(r, "id")

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to load order", err)
		return
	}

	items, err := h.store.OrderItems(r.Context(), orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to load order items", err)
		return
	}

	respondSuccess(w, http.StatusOK, orderResponse{OrderRecord: order, Items: items}, started)
}

// ListOrders returns recent orders, newest first, paginated.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit, offset := h.clampPage(
		getIntParam(r, "limit", h.cfg.DefaultPageSize),
		getIntParam(r, "offset", 0),
	)

	orders, err := h.store.RecentOrders(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to list orders", err)
		return
	}

	respondSuccess(w, http.StatusOK, ordersListResponse{
		Orders: orders,
		Limit:  limit,
		Offset: offset,
	}, started)
}

// UpdateOrderStatus applies a lifecycle transition and publishes an
// orders.updated event.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	orderID := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), orderID, models.NormalizeStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, database.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		case errors.Is(err, database.ErrInvalidTransition):
			respondError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		default:
			respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to update order", err)
		}
		return
	}

	h.publishOrderEvent(feed.KindUpdated, order.ID, &order)

	respondSuccess(w, http.StatusOK, orderResponse{OrderRecord: order}, started)
}

// DeleteOrder removes an order and publishes an orders.deleted event.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	orderID := chi.URLParam(r, "id")

	if err := h.store.DeleteOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to delete order", err)
		return
	}

	h.publishOrderEvent(feed.KindDeleted, orderID, nil)

	respondSuccess(w, http.StatusOK, map[string]string{"id": orderID, "status": "deleted"}, started)
}

// publishOrderEvent publishes a change event asynchronously so a slow or
// unavailable feed never blocks the HTTP response. Failures are logged:
// the snapshot poll repairs delivery.
func (h *Handler) publishOrderEvent(kind, orderID string, order *models.OrderRecord) {
	if h.publisher == nil {
		return
	}

	event := feed.NewOrderEvent(kind, orderID)
	event.Order = order

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.publisher.PublishEvent(ctx, event); err != nil {
			logging.Warn().
				Err(err).
				Str("kind", kind).
				Str("order_id", orderID).
				Msg("Failed to publish order event")
		}
	}()
}
