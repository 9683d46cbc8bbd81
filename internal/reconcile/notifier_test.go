// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// fakeStore is an in-memory SnapshotStore.
type fakeStore struct {
	mu      sync.Mutex
	pending []models.OrderRecord
	names   map[string]string
	err     error
	queries int
}

func (f *fakeStore) PendingOrders(ctx context.Context, limit int) ([]models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) CustomerName(ctx context.Context, customerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[customerID], nil
}

func (f *fakeStore) setPending(orders []models.OrderRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = orders
}

// recordingSink captures updates for assertions.
type recordingSink struct {
	mu      sync.Mutex
	updates []Update
	states  []models.ConnectionState
}

func (s *recordingSink) ApplyUpdate(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
}

func (s *recordingSink) SetConnectionState(state models.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *recordingSink) lastUpdate() (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return Update{}, false
	}
	return s.updates[len(s.updates)-1], true
}

func (s *recordingSink) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never met: %s", msg)
}

func startNotifier(t *testing.T, store *fakeStore, sink *recordingSink) *Notifier {
	t.Helper()

	n := NewNotifier(store, sink, Config{
		PollInterval:  50 * time.Millisecond,
		SnapshotLimit: 50,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = n.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return n
}

func TestNotifierInitialLoad(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{
		pending: []models.OrderRecord{pendingOrder("a", now)},
		names:   map[string]string{},
	}
	sink := &recordingSink{}

	startNotifier(t, store, sink)

	waitFor(t, func() bool { return sink.updateCount() > 0 }, "initial update")

	update, ok := sink.lastUpdate()
	require.True(t, ok)
	assert.True(t, update.Delta.Initial)
	require.Len(t, update.Entries, 1)
	assert.Equal(t, "a", update.Entries[0].OrderID)
}

func TestNotifierFeedEventProducesUpdate(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{names: map[string]string{"cust-1": "Sara Tesfaye"}}
	sink := &recordingSink{}

	n := startNotifier(t, store, sink)
	waitFor(t, func() bool { return sink.updateCount() > 0 }, "initial update")
	initial := sink.updateCount()

	order := pendingOrder("b", now)
	order.CustomerID = "cust-1"
	require.NoError(t, n.HandleEvent(context.Background(), createdEvent(order)))

	waitFor(t, func() bool { return sink.updateCount() > initial }, "feed update")

	update, _ := sink.lastUpdate()
	assert.False(t, update.Delta.Initial)
	require.Len(t, update.Delta.Added, 1)
	require.Len(t, update.Entries, 1)
	assert.Equal(t, "Sara Tesfaye", update.Entries[0].CustomerDisplayName)
}

func TestNotifierPollRepairsDivergence(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{}
	sink := &recordingSink{}

	startNotifier(t, store, sink)
	waitFor(t, func() bool { return sink.updateCount() > 0 }, "initial update")

	// An order appears in the database without a feed event; the next
	// poll picks it up.
	store.setPending([]models.OrderRecord{pendingOrder("missed", now)})

	waitFor(t, func() bool {
		u, ok := sink.lastUpdate()
		return ok && len(u.Entries) == 1 && u.Entries[0].OrderID == "missed"
	}, "poll repair")
}

func TestNotifierRefreshTriggersImmediatePoll(t *testing.T) {
	store := &fakeStore{}
	sink := &recordingSink{}

	n := NewNotifier(store, sink, Config{
		PollInterval:  time.Hour, // ticker will not fire during the test
		SnapshotLimit: 50,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = n.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.queries >= 1
	}, "startup poll")

	store.setPending([]models.OrderRecord{pendingOrder("x", time.Now().UTC())})
	n.Refresh()

	waitFor(t, func() bool {
		u, ok := sink.lastUpdate()
		return ok && len(u.Entries) == 1
	}, "refresh poll")
}

func TestNotifierSurvivesSnapshotErrors(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{err: assert.AnError}
	sink := &recordingSink{}

	n := startNotifier(t, store, sink)

	// Feed events still apply while polls fail.
	require.NoError(t, n.HandleEvent(context.Background(), createdEvent(pendingOrder("a", now))))

	waitFor(t, func() bool { return sink.updateCount() > 0 }, "feed update during poll failure")

	update, _ := sink.lastUpdate()
	require.Len(t, update.Entries, 1)
	assert.Equal(t, "a", update.Entries[0].OrderID)
}

func TestNotifierForwardsConnectionState(t *testing.T) {
	store := &fakeStore{}
	sink := &recordingSink{}

	n := startNotifier(t, store, sink)

	n.HandleConnectionState(models.StateSubscribed)

	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		for _, s := range sink.states {
			if s == models.StateSubscribed {
				return true
			}
		}
		return false
	}, "state forwarded")

	sink.mu.Lock()
	assert.Equal(t, models.StateConnecting, sink.states[0])
	sink.mu.Unlock()
}
