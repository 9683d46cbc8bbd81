// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package api

import (
	"net/http"
	"time"
)

// ReportMetrics returns the latest aggregated report snapshot. The
// snapshot is replaced wholesale by the aggregator; a stale flag marks
// last-known-good data after a failed run.
func (h *Handler) ReportMetrics(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Report service unavailable", nil)
		return
	}

	respondSuccess(w, http.StatusOK, h.reports.Current(), started)
}

// ReportsRefresh triggers an immediate aggregation run.
func (h *Handler) ReportsRefresh(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Report service unavailable", nil)
		return
	}

	h.reports.Refresh()
	respondSuccess(w, http.StatusAccepted, map[string]string{"status": "refresh_requested"}, started)
}
