// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries structured error details in error responses.
//
// Codes used by this service: VALIDATION_ERROR, NOT_FOUND, CONFLICT,
// QUERY_ERROR, PUBLISH_ERROR, INTERNAL_ERROR.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status            string          `json:"status"`
	Version           string          `json:"version"`
	DatabaseConnected bool            `json:"database_connected"`
	FeedState         ConnectionState `json:"feed_state"`
	Uptime            float64         `json:"uptime_seconds"`
}
