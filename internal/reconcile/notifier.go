// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package reconcile

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/feed"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/metrics"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// SnapshotStore is the database surface the notifier needs: the pending
// snapshot query and customer name lookups for enrichment.
type SnapshotStore interface {
	PendingOrders(ctx context.Context, limit int) ([]models.OrderRecord, error)
	CustomerName(ctx context.Context, customerID string) (string, error)
}

// Update is the notifier's output: the full awaiting list plus the delta
// that produced it. The sink derives presentation (sound, badge, pulse)
// from the delta and renders the list.
type Update struct {
	Entries []models.NotificationEntry
	Delta   Delta
}

// Sink receives reconciled updates and feed connection state changes.
type Sink interface {
	ApplyUpdate(Update)
	SetConnectionState(models.ConnectionState)
}

// Config holds notifier tuning.
type Config struct {
	// PollInterval is the snapshot poll cadence.
	PollInterval time.Duration

	// SnapshotLimit caps orders per snapshot query.
	SnapshotLimit int
}

// snapshotResult carries an async snapshot response back into the apply
// loop, stamped with the sequence issued when the query started.
type snapshotResult struct {
	records []models.OrderRecord
	seq     uint64
	err     error
	took    time.Duration
}

// Notifier drives the reconciliation engine. It owns the engine and is
// the only goroutine that touches it: feed events, snapshot results,
// ticker fires, and manual refreshes all funnel through one loop and
// apply in arrival order.
type Notifier struct {
	store   SnapshotStore
	sink    Sink
	cfg     Config
	engine  *Engine
	breaker *gobreaker.CircuitBreaker[[]models.OrderRecord]

	events    chan *feed.OrderEvent
	states    chan models.ConnectionState
	refresh   chan struct{}
	snapshots chan snapshotResult

	// nameCache memoizes customer ID -> display name lookups.
	nameCache map[string]string
}

// NewNotifier creates a notifier. The circuit breaker trips after five
// consecutive snapshot failures and probes again after 30 seconds, so a
// struggling database is not hammered every poll.
func NewNotifier(store SnapshotStore, sink Sink, cfg Config) *Notifier {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.SnapshotLimit <= 0 {
		cfg.SnapshotLimit = 50
	}

	breaker := gobreaker.NewCircuitBreaker[[]models.OrderRecord](gobreaker.Settings{
		Name:    "snapshot-query",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Snapshot circuit breaker state changed")
		},
	})

	return &Notifier{
		store:     store,
		sink:      sink,
		cfg:       cfg,
		engine:    NewEngine(),
		breaker:   breaker,
		events:    make(chan *feed.OrderEvent, 256),
		states:    make(chan models.ConnectionState, 8),
		refresh:   make(chan struct{}, 1),
		snapshots: make(chan snapshotResult, 4),
		nameCache: make(map[string]string),
	}
}

// HandleEvent enqueues a feed event for reconciliation. Never blocks:
// when the buffer is full the event is dropped and the next snapshot
// poll repairs any divergence.
func (n *Notifier) HandleEvent(ctx context.Context, ev *feed.OrderEvent) error {
	select {
	case n.events <- ev:
	default:
		logging.Warn().
			Str("event_id", ev.EventID).
			Str("kind", ev.Kind).
			Msg("Event buffer full, dropping feed event")
	}
	return nil
}

// HandleConnectionState forwards feed connection transitions into the
// apply loop.
func (n *Notifier) HandleConnectionState(state models.ConnectionState) {
	select {
	case n.states <- state:
	default:
	}
}

// Refresh requests an immediate snapshot poll. Coalesces: a pending
// refresh absorbs further requests.
func (n *Notifier) Refresh() {
	select {
	case n.refresh <- struct{}{}:
	default:
	}
}

// String implements suture's service naming.
func (n *Notifier) String() string {
	return "order-notifier"
}

// Serve runs the apply loop until context cancellation. Implements
// suture.Service.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
//   - Priority 1: Shutdown
//   - Priority 2: Data arrivals (feed events, snapshot results, states)
//   - Priority 3: Poll triggers (ticker, manual refresh)
//
// Data already in flight is always applied before a new poll starts.
func (n *Notifier) Serve(ctx context.Context) error {
	n.sink.SetConnectionState(models.StateConnecting)

	n.startPoll(ctx)

	ticker := time.NewTicker(n.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// Priority 1: Check for shutdown (non-blocking).
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Priority 2: Drain pending data arrivals (non-blocking check).
		select {
		case ev := <-n.events:
			n.applyEvent(ev)
			continue
		case res := <-n.snapshots:
			n.applySnapshot(res)
			continue
		case state := <-n.states:
			n.applyState(state)
			continue
		default:
		}

		// Priority 3: Block for any input.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-n.events:
			n.applyEvent(ev)
		case res := <-n.snapshots:
			n.applySnapshot(res)
		case state := <-n.states:
			n.applyState(state)
		case <-ticker.C:
			n.startPoll(ctx)
		case <-n.refresh:
			n.startPoll(ctx)
		}
	}
}

// startPoll stamps a sequence and queries the snapshot asynchronously so
// a slow query never stalls event application.
func (n *Notifier) startPoll(ctx context.Context) {
	seq := n.engine.NextSeq()

	go func() {
		start := time.Now()
		queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		records, err := n.breaker.Execute(func() ([]models.OrderRecord, error) {
			return n.store.PendingOrders(queryCtx, n.cfg.SnapshotLimit)
		})

		select {
		case n.snapshots <- snapshotResult{records: records, seq: seq, err: err, took: time.Since(start)}:
		case <-ctx.Done():
		}
	}()
}

func (n *Notifier) applyEvent(ev *feed.OrderEvent) {
	metrics.RecordFeedConsume(ev.Kind)

	delta := n.engine.ApplyFeedEvent(ev)
	if delta.Empty() {
		return
	}
	n.emit(delta)
}

func (n *Notifier) applySnapshot(res snapshotResult) {
	if res.err != nil {
		metrics.RecordSnapshotPoll("error", 0)
		logging.Warn().Err(res.err).Msg("Snapshot poll failed, keeping last known state")
		return
	}

	delta, ok := n.engine.ApplySnapshot(res.records, res.seq)
	if !ok {
		metrics.RecordSnapshotPoll("discarded", 0)
		logging.Debug().Uint64("seq", res.seq).Msg("Discarded stale snapshot")
		return
	}
	metrics.RecordSnapshotPoll("success", res.took)

	if delta.Empty() {
		return
	}
	n.emit(delta)
}

func (n *Notifier) applyState(state models.ConnectionState) {
	metrics.SetFeedConnectionState(stateGaugeValue(state))
	n.sink.SetConnectionState(state)
}

// emit enriches the current awaiting list with customer names and pushes
// it to the sink.
func (n *Notifier) emit(delta Delta) {
	records := n.engine.Entries()

	entries := make([]models.NotificationEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, models.NotificationEntry{
			OrderID:             rec.ID,
			DisplayID:           rec.DisplayID,
			Status:              rec.Status,
			TotalAmount:         rec.TotalAmount,
			CustomerID:          rec.CustomerID,
			CustomerDisplayName: n.resolveName(rec.CustomerID),
			CreatedAt:           rec.CreatedAt,
		})
	}

	metrics.SetActiveNotifications(len(entries))
	metrics.RecordReconcileDelta(len(delta.Added), len(delta.RemovedIDs), len(delta.Updated))

	n.sink.ApplyUpdate(Update{Entries: entries, Delta: delta})
}

// resolveName looks up a customer display name, best-effort. A failed
// lookup yields an empty name, never a failed notification.
func (n *Notifier) resolveName(customerID string) string {
	if customerID == "" {
		return ""
	}
	if name, ok := n.nameCache[customerID]; ok {
		return name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	name, err := n.store.CustomerName(ctx, customerID)
	if err != nil {
		logging.Debug().Err(err).Str("customer_id", customerID).Msg("Customer name lookup failed")
		return ""
	}
	n.nameCache[customerID] = name
	return name
}

// stateGaugeValue maps connection states onto the gauge encoding.
func stateGaugeValue(state models.ConnectionState) int {
	switch state {
	case models.StateConnecting:
		return 0
	case models.StateSubscribed:
		return 1
	case models.StateError:
		return 2
	case models.StateClosed:
		return 3
	default:
		return 2
	}
}
