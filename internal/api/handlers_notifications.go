// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package api

import (
	"net/http"
	"time"
)

// Notifications returns the current awaiting-attention snapshot. This is
// the catch-up read a dashboard performs on load; live updates arrive
// over the websocket.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.notifications == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Notification service unavailable", nil)
		return
	}

	respondSuccess(w, http.StatusOK, h.notifications.Snapshot(), started)
}

// NotificationsRefresh triggers an immediate snapshot poll. The refreshed
// list arrives via websocket broadcast; the response only acknowledges
// the trigger.
func (h *Handler) NotificationsRefresh(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Notification service unavailable", nil)
		return
	}

	h.refresher.Refresh()
	respondSuccess(w, http.StatusAccepted, map[string]string{"status": "refresh_requested"}, started)
}

// Refresh triggers an out-of-cadence pass of both pipelines: a snapshot
// poll for notifications and an aggregation run for reports.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.refresher == nil && h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Refresh unavailable", nil)
		return
	}

	if h.refresher != nil {
		h.refresher.Refresh()
	}
	if h.reports != nil {
		h.reports.Refresh()
	}
	respondSuccess(w, http.StatusAccepted, map[string]string{"status": "refresh_requested"}, started)
}

// Interaction records an operator interaction, unlocking deferred sound
// cues. Called by dashboards on first click or keypress.
func (h *Handler) Interaction(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.notifications == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Notification service unavailable", nil)
		return
	}

	h.notifications.MarkInteraction()
	respondSuccess(w, http.StatusOK, map[string]string{"status": "interaction_recorded"}, started)
}
