// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package notify turns reconciled notification updates into presentation:
// websocket broadcasts, the badge count, sound cues, and the REST snapshot
// of the active set. Presentation is derived, never authoritative: the
// reconciliation engine owns the set, this package only renders it.
package notify

import (
	"sync"
	"time"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/reconcile"
)

// Broadcaster pushes notification events to connected websocket clients.
type Broadcaster interface {
	BroadcastOrderNotification(entry models.NotificationEntry)
	BroadcastBadgeUpdate(count int, pulse bool)
	BroadcastConnectionStatus(state models.ConnectionState)
}

// Refresher triggers an immediate snapshot poll upstream.
type Refresher interface {
	Refresh()
}

// Presenter implements reconcile.Sink. It holds the current notification
// list for REST reads, derives presentation effects from each delta, and
// re-syncs via the refresher whenever the feed subscription (re)connects.
type Presenter struct {
	player      Player
	broadcaster Broadcaster
	refresher   Refresher

	mu            sync.RWMutex
	entries       []models.NotificationEntry
	state         models.ConnectionState
	lastRefreshed *time.Time
}

var _ reconcile.Sink = (*Presenter)(nil)

// NewPresenter creates a presenter. broadcaster and refresher may be nil in
// tests; player must not be.
func NewPresenter(player Player, broadcaster Broadcaster, refresher Refresher) *Presenter {
	return &Presenter{
		player:      player,
		broadcaster: broadcaster,
		refresher:   refresher,
		state:       models.StateConnecting,
	}
}

// ApplyUpdate implements reconcile.Sink.
func (p *Presenter) ApplyUpdate(u reconcile.Update) {
	now := time.Now().UTC()

	p.mu.Lock()
	p.entries = u.Entries
	p.lastRefreshed = &now
	p.mu.Unlock()

	arrivals := len(u.Delta.Added) > 0 && !u.Delta.Initial

	if p.broadcaster != nil {
		if arrivals {
			for _, entry := range u.Delta.Added {
				p.broadcaster.BroadcastOrderNotification(toEntry(entry, u.Entries))
			}
		}
		p.broadcaster.BroadcastBadgeUpdate(len(u.Entries), arrivals)
	}

	// One cue per batch: ten orders in one delta chime once.
	if arrivals {
		p.player.Request()
	}
}

// SetConnectionState implements reconcile.Sink. Entering the subscribed
// state triggers a refresh to cover the window where events were missed.
func (p *Presenter) SetConnectionState(state models.ConnectionState) {
	p.mu.Lock()
	prev := p.state
	p.state = state
	p.mu.Unlock()

	if p.broadcaster != nil {
		p.broadcaster.BroadcastConnectionStatus(state)
	}
	if state == models.StateSubscribed && prev != models.StateSubscribed && p.refresher != nil {
		p.refresher.Refresh()
	}
}

// SetRefresher wires the upstream refresher after construction, breaking
// the presenter/notifier construction cycle.
func (p *Presenter) SetRefresher(r Refresher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresher = r
}

// MarkInteraction records an operator interaction, unlocking sound cues.
func (p *Presenter) MarkInteraction() {
	p.player.MarkInteraction()
}

// Snapshot returns the REST view of the active notification set.
func (p *Presenter) Snapshot() models.NotificationsResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := make([]models.NotificationEntry, len(p.entries))
	copy(entries, p.entries)

	return models.NotificationsResponse{
		Notifications:    entries,
		UnreadCount:      len(entries),
		ConnectionStatus: p.state,
		LastRefreshedAt:  p.lastRefreshed,
	}
}

// ConnectionState returns the current feed state for health reporting.
func (p *Presenter) ConnectionState() models.ConnectionState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// toEntry finds the enriched entry for an added order record, falling back
// to a bare projection when the record dropped out of the list between the
// delta and the emit (the list is capped).
func toEntry(rec models.OrderRecord, entries []models.NotificationEntry) models.NotificationEntry {
	for _, e := range entries {
		if e.OrderID == rec.ID {
			return e
		}
	}
	return models.NotificationEntry{
		OrderID:     rec.ID,
		DisplayID:   rec.DisplayID,
		Status:      rec.Status,
		TotalAmount: rec.TotalAmount,
		CustomerID:  rec.CustomerID,
		CreatedAt:   rec.CreatedAt,
	}
}
