// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/reconcile"
)

// fakePlayer counts sound requests.
type fakePlayer struct {
	mu           sync.Mutex
	requests     int
	interactions int
}

func (f *fakePlayer) Request() SoundOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return SoundPlayed
}

func (f *fakePlayer) MarkInteraction() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactions++
}

func (f *fakePlayer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// fakeBroadcaster records broadcast calls.
type fakeBroadcaster struct {
	mu            sync.Mutex
	notifications []models.NotificationEntry
	badges        []int
	pulses        []bool
	states        []models.ConnectionState
}

func (f *fakeBroadcaster) BroadcastOrderNotification(entry models.NotificationEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, entry)
}

func (f *fakeBroadcaster) BroadcastBadgeUpdate(count int, pulse bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badges = append(f.badges, count)
	f.pulses = append(f.pulses, pulse)
}

func (f *fakeBroadcaster) BroadcastConnectionStatus(state models.ConnectionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
}

// fakeRefresher counts refresh triggers.
type fakeRefresher struct {
	mu    sync.Mutex
	count int
}

func (f *fakeRefresher) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}

func entry(id string, amount float64) models.NotificationEntry {
	return models.NotificationEntry{
		OrderID:     id,
		Status:      models.StatusPending,
		TotalAmount: amount,
		CreatedAt:   time.Now().UTC(),
	}
}

func record(id string) models.OrderRecord {
	return models.OrderRecord{
		ID:     id,
		Status: models.StatusPending,
	}
}

func TestPresenterInitialLoadIsSilent(t *testing.T) {
	player := &fakePlayer{}
	bc := &fakeBroadcaster{}
	p := NewPresenter(player, bc, nil)

	p.ApplyUpdate(reconcile.Update{
		Entries: []models.NotificationEntry{entry("a", 10), entry("b", 20)},
		Delta: reconcile.Delta{
			Added:   []models.OrderRecord{record("a"), record("b")},
			Initial: true,
		},
	})

	assert.Zero(t, player.requestCount(), "initial load must not chime")
	assert.Empty(t, bc.notifications, "initial load must not push arrival toasts")
	require.Equal(t, []int{2}, bc.badges)
	assert.Equal(t, []bool{false}, bc.pulses)

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.UnreadCount)
	require.NotNil(t, snap.LastRefreshedAt)
}

func TestPresenterArrivalChimesOncePerBatch(t *testing.T) {
	player := &fakePlayer{}
	bc := &fakeBroadcaster{}
	p := NewPresenter(player, bc, nil)

	p.ApplyUpdate(reconcile.Update{
		Entries: []models.NotificationEntry{entry("a", 10), entry("b", 20), entry("c", 30)},
		Delta: reconcile.Delta{
			Added: []models.OrderRecord{record("a"), record("b"), record("c")},
		},
	})

	assert.Equal(t, 1, player.requestCount(), "one cue per batch")
	assert.Len(t, bc.notifications, 3)
	assert.Equal(t, []bool{true}, bc.pulses)
}

func TestPresenterRemovalNeverChimes(t *testing.T) {
	player := &fakePlayer{}
	bc := &fakeBroadcaster{}
	p := NewPresenter(player, bc, nil)

	p.ApplyUpdate(reconcile.Update{
		Entries: nil,
		Delta:   reconcile.Delta{RemovedIDs: []string{"a"}},
	})

	assert.Zero(t, player.requestCount())
	assert.Empty(t, bc.notifications)
	require.Equal(t, []int{0}, bc.badges)
	assert.Equal(t, []bool{false}, bc.pulses)
}

func TestPresenterArrivalUsesEnrichedEntry(t *testing.T) {
	player := &fakePlayer{}
	bc := &fakeBroadcaster{}
	p := NewPresenter(player, bc, nil)

	enriched := entry("a", 10)
	enriched.CustomerDisplayName = "Sara Tesfaye"

	p.ApplyUpdate(reconcile.Update{
		Entries: []models.NotificationEntry{enriched},
		Delta:   reconcile.Delta{Added: []models.OrderRecord{record("a")}},
	})

	require.Len(t, bc.notifications, 1)
	assert.Equal(t, "Sara Tesfaye", bc.notifications[0].CustomerDisplayName)
}

func TestPresenterRefreshOnSubscribe(t *testing.T) {
	refresher := &fakeRefresher{}
	p := NewPresenter(&fakePlayer{}, &fakeBroadcaster{}, refresher)

	p.SetConnectionState(models.StateSubscribed)
	assert.Equal(t, 1, refresher.count)

	// Staying subscribed does not retrigger.
	p.SetConnectionState(models.StateSubscribed)
	assert.Equal(t, 1, refresher.count)

	// A reconnect cycle does.
	p.SetConnectionState(models.StateError)
	p.SetConnectionState(models.StateSubscribed)
	assert.Equal(t, 2, refresher.count)
}

func TestPresenterConnectionStateBroadcast(t *testing.T) {
	bc := &fakeBroadcaster{}
	p := NewPresenter(&fakePlayer{}, bc, nil)

	p.SetConnectionState(models.StateError)

	assert.Equal(t, []models.ConnectionState{models.StateError}, bc.states)
	assert.Equal(t, models.StateError, p.ConnectionState())
	assert.Equal(t, models.StateError, p.Snapshot().ConnectionStatus)
}

func TestPresenterSnapshotIsCopy(t *testing.T) {
	p := NewPresenter(&fakePlayer{}, nil, nil)

	p.ApplyUpdate(reconcile.Update{
		Entries: []models.NotificationEntry{entry("a", 10)},
		Delta:   reconcile.Delta{Initial: true, Added: []models.OrderRecord{record("a")}},
	})

	snap := p.Snapshot()
	snap.Notifications[0].OrderID = "mutated"

	assert.Equal(t, "a", p.Snapshot().Notifications[0].OrderID)
}
