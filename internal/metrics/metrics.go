// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package metrics provides Prometheus instrumentation for the order
// notification and report pipelines: feed throughput, snapshot polls,
// reconciliation deltas, report aggregation runs, websocket fanout, and
// API latency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Change feed metrics
	FeedEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_published_total",
			Help: "Total number of order events published to the feed",
		},
		[]string{"topic"},
	)

	FeedEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_consumed_total",
			Help: "Total number of order events consumed from the feed",
		},
		[]string{"kind"},
	)

	FeedParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_parse_failures_total",
			Help: "Total number of feed messages dropped as malformed",
		},
	)

	FeedConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_connection_state",
			Help: "Feed connection state (0=connecting, 1=subscribed, 2=error, 3=closed)",
		},
	)

	// Snapshot poll metrics
	SnapshotPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_polls_total",
			Help: "Total number of pending-order snapshot polls",
		},
		[]string{"result"}, // "success", "error", "discarded"
	)

	SnapshotPollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_poll_duration_seconds",
			Help:    "Duration of pending-order snapshot queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Reconciliation metrics
	ActiveNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_notifications",
			Help: "Current number of orders awaiting attention",
		},
	)

	ReconcileDeltas = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_deltas_total",
			Help: "Total reconciliation deltas by change type",
		},
		[]string{"change"}, // "added", "removed", "updated"
	)

	NotificationSounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sounds_total",
			Help: "Total notification sound cues by outcome",
		},
		[]string{"outcome"}, // "played", "throttled", "deferred"
	)

	// Report aggregation metrics
	ReportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_runs_total",
			Help: "Total report aggregation runs",
		},
		[]string{"result"}, // "success", "error"
	)

	ReportRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_run_duration_seconds",
			Help:    "Duration of report aggregation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReportStale = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_stale",
			Help: "Whether the published report metrics are stale (1) or fresh (0)",
		},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected websocket clients",
		},
	)

	WebSocketMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total websocket messages sent by type",
		},
		[]string{"type"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)
)

// RecordFeedPublish increments the publish counter for a topic.
func RecordFeedPublish(topic string) {
	FeedEventsPublished.WithLabelValues(topic).Inc()
}

// RecordFeedConsume increments the consume counter for an event kind.
func RecordFeedConsume(kind string) {
	FeedEventsConsumed.WithLabelValues(kind).Inc()
}

// RecordFeedParseFailure increments the malformed-message counter.
func RecordFeedParseFailure() {
	FeedParseFailures.Inc()
}

// SetFeedConnectionState publishes the current feed connection state.
func SetFeedConnectionState(state int) {
	FeedConnectionState.Set(float64(state))
}

// RecordSnapshotPoll records one snapshot poll with its outcome.
func RecordSnapshotPoll(result string, duration time.Duration) {
	SnapshotPollsTotal.WithLabelValues(result).Inc()
	if result == "success" {
		SnapshotPollDuration.Observe(duration.Seconds())
	}
}

// RecordReconcileDelta records reconciliation changes by type.
func RecordReconcileDelta(added, removed, updated int) {
	if added > 0 {
		ReconcileDeltas.WithLabelValues("added").Add(float64(added))
	}
	if removed > 0 {
		ReconcileDeltas.WithLabelValues("removed").Add(float64(removed))
	}
	if updated > 0 {
		ReconcileDeltas.WithLabelValues("updated").Add(float64(updated))
	}
}

// SetActiveNotifications publishes the current awaiting-attention count.
func SetActiveNotifications(count int) {
	ActiveNotifications.Set(float64(count))
}

// RecordNotificationSound records a sound cue outcome.
func RecordNotificationSound(outcome string) {
	NotificationSounds.WithLabelValues(outcome).Inc()
}

// RecordReportRun records one aggregation run with its outcome.
func RecordReportRun(duration time.Duration, err error) {
	if err != nil {
		ReportRunsTotal.WithLabelValues("error").Inc()
		ReportStale.Set(1)
		return
	}
	ReportRunsTotal.WithLabelValues("success").Inc()
	ReportRunDuration.Observe(duration.Seconds())
	ReportStale.Set(0)
}

// RecordAPIRequest records an API request with latency.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records a database query with latency and error outcome.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordWebSocketMessage increments the sent counter for a message type.
func RecordWebSocketMessage(msgType string) {
	WebSocketMessagesSent.WithLabelValues(msgType).Inc()
}
