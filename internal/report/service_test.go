// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// fakeReportStore is an in-memory Store with a togglable failure mode.
type fakeReportStore struct {
	mu        sync.Mutex
	orders    []models.OrderRecord
	items     []models.OrderItemRecord
	customers []models.CustomerRecord
	counts    map[string]int
	err       error
}

func (f *fakeReportStore) OrdersCreatedSince(ctx context.Context, since time.Time) ([]models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeReportStore) OrderItemsSince(ctx context.Context, since time.Time) ([]models.OrderItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeReportStore) Customers(ctx context.Context) ([]models.CustomerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.customers, nil
}

func (f *fakeReportStore) OrderCountsByCustomer(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

func (f *fakeReportStore) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newTestAggregator(store *fakeReportStore) *Aggregator {
	return NewAggregator(store, ServiceConfig{
		RefreshInterval: time.Hour, // tests drive runs explicitly
		Windows:         Config{WindowDays: 7, TopProductsLimit: 5, LookbackMonths: 3},
	})
}

func TestAggregatorSeededBeforeFirstRun(t *testing.T) {
	a := newTestAggregator(&fakeReportStore{})

	snap := a.Current()
	require.NotNil(t, snap)
	assert.True(t, snap.GeneratedAt.IsZero())
	assert.NotNil(t, snap.TopProducts)
}

func TestAggregatorRunPublishesSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	store := &fakeReportStore{
		orders:    []models.OrderRecord{saleOrder("a", 120, now)},
		items:     []models.OrderItemRecord{saleItem("Avocado", 2, 60)},
		customers: []models.CustomerRecord{{ID: "c1", CreatedAt: now}},
		counts:    map[string]int{"c1": 1},
	}
	a := newTestAggregator(store)
	a.nowFunc = func() time.Time { return now }

	a.run(context.Background())

	snap := a.Current()
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, 120.0, snap.TodayStats.Current.Revenue)
	assert.False(t, snap.Stale)
}

func TestAggregatorFailureKeepsLastKnownGood(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	store := &fakeReportStore{
		orders: []models.OrderRecord{saleOrder("a", 120, now)},
		counts: map[string]int{},
	}
	a := newTestAggregator(store)
	a.nowFunc = func() time.Time { return now }

	a.run(context.Background())
	good := a.Current()
	require.False(t, good.Stale)

	store.setError(assert.AnError)
	a.run(context.Background())

	snap := a.Current()
	assert.True(t, snap.Stale)
	// Data survives unchanged from the last good run.
	assert.Equal(t, good.GeneratedAt, snap.GeneratedAt)
	assert.Equal(t, good.TodayStats, snap.TodayStats)

	// Recovery clears the stale flag.
	store.setError(nil)
	a.run(context.Background())
	assert.False(t, a.Current().Stale)
}

func TestAggregatorServeRunsOnStartupAndRefresh(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	store := &fakeReportStore{counts: map[string]int{}}
	a := newTestAggregator(store)
	a.nowFunc = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = a.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !a.Current().GeneratedAt.IsZero() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.False(t, a.Current().GeneratedAt.IsZero(), "startup run never completed")

	// A refresh after new data lands recomputes immediately despite the
	// hour-long ticker.
	store.mu.Lock()
	store.orders = []models.OrderRecord{saleOrder("late", 75, now)}
	store.mu.Unlock()
	a.Refresh()

	deadline = time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if a.Current().TodayStats.Current.Revenue == 75 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 75.0, a.Current().TodayStats.Current.Revenue)
}

func TestAggregatorOnPublishCallback(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	store := &fakeReportStore{counts: map[string]int{}}
	a := newTestAggregator(store)
	a.nowFunc = func() time.Time { return now }

	var published []*models.ReportMetrics
	a.SetOnPublish(func(m *models.ReportMetrics) {
		published = append(published, m)
	})

	a.run(context.Background())
	require.Len(t, published, 1)
	assert.False(t, published[0].Stale)

	// A failed run still publishes, flagged stale, so clients learn about
	// the degradation.
	store.setError(assert.AnError)
	a.run(context.Background())
	require.Len(t, published, 2)
	assert.True(t, published[1].Stale)
}

func TestLookbackStartCoversAllSeries(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	a := newTestAggregator(&fakeReportStore{})

	since := a.lookbackStart(now)

	// Three months back reaches June 1st; that is earlier than both the
	// 7-day and 12-week windows.
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), since)
}
