// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFeedPublishAndConsume(t *testing.T) {
	before := testutil.ToFloat64(FeedEventsPublished.WithLabelValues("orders.created"))
	RecordFeedPublish("orders.created")
	after := testutil.ToFloat64(FeedEventsPublished.WithLabelValues("orders.created"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(FeedEventsConsumed.WithLabelValues("updated"))
	RecordFeedConsume("updated")
	after = testutil.ToFloat64(FeedEventsConsumed.WithLabelValues("updated"))
	assert.Equal(t, before+1, after)
}

func TestRecordSnapshotPoll(t *testing.T) {
	before := testutil.ToFloat64(SnapshotPollsTotal.WithLabelValues("success"))
	RecordSnapshotPoll("success", 20*time.Millisecond)
	after := testutil.ToFloat64(SnapshotPollsTotal.WithLabelValues("success"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(SnapshotPollsTotal.WithLabelValues("discarded"))
	RecordSnapshotPoll("discarded", 0)
	after = testutil.ToFloat64(SnapshotPollsTotal.WithLabelValues("discarded"))
	assert.Equal(t, before+1, after)
}

func TestRecordReconcileDelta(t *testing.T) {
	addedBefore := testutil.ToFloat64(ReconcileDeltas.WithLabelValues("added"))
	removedBefore := testutil.ToFloat64(ReconcileDeltas.WithLabelValues("removed"))

	RecordReconcileDelta(2, 1, 0)

	assert.Equal(t, addedBefore+2, testutil.ToFloat64(ReconcileDeltas.WithLabelValues("added")))
	assert.Equal(t, removedBefore+1, testutil.ToFloat64(ReconcileDeltas.WithLabelValues("removed")))
}

func TestSetActiveNotifications(t *testing.T) {
	SetActiveNotifications(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(ActiveNotifications))

	SetActiveNotifications(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(ActiveNotifications))
}

func TestRecordReportRun(t *testing.T) {
	successBefore := testutil.ToFloat64(ReportRunsTotal.WithLabelValues("success"))
	RecordReportRun(50*time.Millisecond, nil)
	assert.Equal(t, successBefore+1, testutil.ToFloat64(ReportRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(ReportStale))

	errorBefore := testutil.ToFloat64(ReportRunsTotal.WithLabelValues("error"))
	RecordReportRun(0, errors.New("query failed"))
	assert.Equal(t, errorBefore+1, testutil.ToFloat64(ReportRunsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ReportStale))
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/notifications", "200"))
	RecordAPIRequest("GET", "/api/v1/notifications", 200, 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/notifications", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordDBQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("pending_orders"))

	RecordDBQuery("pending_orders", 5*time.Millisecond, nil)
	assert.Equal(t, errBefore, testutil.ToFloat64(DBQueryErrors.WithLabelValues("pending_orders")))

	RecordDBQuery("pending_orders", 5*time.Millisecond, errors.New("boom"))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("pending_orders")))
}

func TestRecordNotificationSound(t *testing.T) {
	before := testutil.ToFloat64(NotificationSounds.WithLabelValues("played"))
	RecordNotificationSound("played")
	assert.Equal(t, before+1, testutil.ToFloat64(NotificationSounds.WithLabelValues("played")))
}
