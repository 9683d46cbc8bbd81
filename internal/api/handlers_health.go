// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package api

import (
	"net/http"
	"time"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Health returns overall service health: database connectivity, feed
// subscription state, and uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	feedState := models.StateClosed
	if h.notifications != nil {
		feedState = h.notifications.ConnectionState()
	}

	// The feed being down degrades but does not fail health: polling
	// remains the delivery backstop.
	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondSuccess(w, code, models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		FeedState:         feedState,
		Uptime:            time.Since(h.startTime).Seconds(),
	}, started)
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"alive"}`))
}

// HealthReady is the readiness probe: the database must answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.store.Ping(r.Context()) != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Database not available", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
