// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package report

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/metrics"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// Store is the database surface report aggregation reads from.
type Store interface {
	OrdersCreatedSince(ctx context.Context, since time.Time) ([]models.OrderRecord, error)
	OrderItemsSince(ctx context.Context, since time.Time) ([]models.OrderItemRecord, error)
	Customers(ctx context.Context) ([]models.CustomerRecord, error)
	OrderCountsByCustomer(ctx context.Context) (map[string]int, error)
}

// ServiceConfig holds aggregator service tuning.
type ServiceConfig struct {
	RefreshInterval time.Duration
	Windows         Config
}

// Aggregator recomputes report metrics on a cadence and publishes each
// snapshot wholesale. Readers always see either the previous complete
// snapshot or the new one, never a partial mix; a failed run keeps the
// last good snapshot and marks it stale.
type Aggregator struct {
	store     Store
	cfg       ServiceConfig
	current   atomic.Pointer[models.ReportMetrics]
	refresh   chan struct{}
	nowFunc   func() time.Time
	onPublish func(*models.ReportMetrics)
}

// NewAggregator creates an aggregator seeded with an empty snapshot so
// the API can respond before the first run completes.
func NewAggregator(store Store, cfg ServiceConfig) *Aggregator {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 60 * time.Second
	}
	if cfg.Windows.WindowDays <= 0 {
		cfg.Windows.WindowDays = 30
	}
	if cfg.Windows.TopProductsLimit <= 0 {
		cfg.Windows.TopProductsLimit = 5
	}
	if cfg.Windows.LookbackMonths <= 0 {
		cfg.Windows.LookbackMonths = 12
	}

	a := &Aggregator{
		store:   store,
		cfg:     cfg,
		refresh: make(chan struct{}, 1),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
	a.current.Store(models.EmptyReportMetrics(cfg.Windows.WindowDays))
	return a
}

// Current returns the latest published snapshot. Safe for concurrent use.
func (a *Aggregator) Current() *models.ReportMetrics {
	return a.current.Load()
}

// SetOnPublish registers a callback invoked after every snapshot
// publication, stale republications included. Used to push freshness
// signals to websocket clients. Must be set before Serve starts.
func (a *Aggregator) SetOnPublish(fn func(*models.ReportMetrics)) {
	a.onPublish = fn
}

// Refresh requests an immediate aggregation run. Coalesces with any
// pending request.
func (a *Aggregator) Refresh() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

// String implements suture's service naming.
func (a *Aggregator) String() string {
	return "report-aggregator"
}

// Serve runs aggregation until context cancellation. Implements
// suture.Service. The first run happens immediately on startup.
func (a *Aggregator) Serve(ctx context.Context) error {
	a.run(ctx)

	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.run(ctx)
		case <-a.refresh:
			a.run(ctx)
		}
	}
}

// run performs one aggregation pass.
func (a *Aggregator) run(ctx context.Context) {
	start := time.Now()
	snapshot, err := a.aggregate(ctx)
	metrics.RecordReportRun(time.Since(start), err)

	if err != nil {
		logging.Warn().Err(err).Msg("Report aggregation failed, keeping last snapshot")

		// Republish the previous snapshot flagged stale.
		prev := a.current.Load()
		stale := *prev
		stale.Stale = true
		a.current.Store(&stale)
		a.publish(&stale)
		return
	}

	a.current.Store(snapshot)
	a.publish(snapshot)
	logging.Debug().
		Dur("took", time.Since(start)).
		Int("daily_buckets", len(snapshot.DailySeries)).
		Msg("Report metrics refreshed")
}

func (a *Aggregator) publish(snapshot *models.ReportMetrics) {
	if a.onPublish != nil {
		a.onPublish(snapshot)
	}
}

// aggregate loads source data and builds a fresh snapshot.
func (a *Aggregator) aggregate(ctx context.Context) (*models.ReportMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := a.nowFunc()
	since := a.lookbackStart(now)

	orders, err := a.store.OrdersCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	items, err := a.store.OrderItemsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	customers, err := a.store.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	orderCounts, err := a.store.OrderCountsByCustomer(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order counts: %w", err)
	}

	return Build(a.cfg.Windows, orders, items, customers, orderCounts, now), nil
}

// lookbackStart returns the earliest bucket start across all series, so
// one query window serves daily, weekly, and monthly aggregation.
func (a *Aggregator) lookbackStart(now time.Time) time.Time {
	w := a.cfg.Windows
	daily := startOfDay(now).AddDate(0, 0, -(w.WindowDays - 1))
	weekly := startOfWeek(now).AddDate(0, 0, -7*(w.weeklyWindow()-1))
	monthly := startOfMonth(now).AddDate(0, -(w.LookbackMonths - 1), 0)

	earliest := daily
	if weekly.Before(earliest) {
		earliest = weekly
	}
	if monthly.Before(earliest) {
		earliest = monthly
	}
	return earliest
}
