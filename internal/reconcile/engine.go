// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package reconcile maintains the set of orders awaiting attention by
// merging two data paths: periodic database snapshots and realtime feed
// events. The Engine is the pure merge logic; the Notifier owns it and
// applies updates from a single goroutine in arrival order.
package reconcile

import (
	"sort"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/feed"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// Delta describes how the awaiting-attention set changed after applying
// a snapshot or feed event.
type Delta struct {
	// Added holds orders that newly entered the awaiting set. An arrival
	// signal (sound, pulse) fires only for these.
	Added []models.OrderRecord

	// Updated holds orders that stayed in the awaiting set with changed
	// fields.
	Updated []models.OrderRecord

	// RemovedIDs holds orders that left the awaiting set.
	RemovedIDs []string

	// Initial marks the first successful load. Arrival signals are
	// suppressed: pre-existing pending orders are not "new".
	Initial bool
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.RemovedIDs) == 0 && !d.Initial
}

// Engine reconciles snapshots and feed events into the awaiting set.
//
// Engine is NOT safe for concurrent use: the Notifier confines it to a
// single goroutine, which is what guarantees arrival-order application.
type Engine struct {
	active  map[string]models.OrderRecord
	loaded  bool
	lastSeq uint64
	nextSeq uint64
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		active: make(map[string]models.OrderRecord),
	}
}

// NextSeq issues a monotonic sequence number. The poller stamps each
// snapshot request before querying; responses carry the stamp back so
// out-of-date responses can be discarded.
func (e *Engine) NextSeq() uint64 {
	e.nextSeq++
	return e.nextSeq
}

// Loaded reports whether an initial snapshot has been applied.
func (e *Engine) Loaded() bool {
	return e.loaded
}

// Count returns the current awaiting-attention count.
func (e *Engine) Count() int {
	return len(e.active)
}

// Entries returns the awaiting orders, newest first. Ties on creation
// time break by ID so the order is stable across calls.
func (e *Engine) Entries() []models.OrderRecord {
	entries := make([]models.OrderRecord, 0, len(e.active))
	for _, o := range e.active {
		entries = append(entries, o)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// ApplySnapshot replaces the awaiting set wholesale with the snapshot
// contents. Returns false and no delta when the snapshot is stale: a
// snapshot stamped before one already applied must be discarded, not
// merged, because it would resurrect orders that newer data removed.
func (e *Engine) ApplySnapshot(records []models.OrderRecord, seq uint64) (Delta, bool) {
	if seq <= e.lastSeq {
		return Delta{}, false
	}
	e.lastSeq = seq

	next := make(map[string]models.OrderRecord, len(records))
	for _, rec := range records {
		rec.Status = models.NormalizeStatus(string(rec.Status))
		if !rec.Status.AwaitingAttention() {
			continue
		}
		next[rec.ID] = rec
	}

	delta := Delta{Initial: !e.loaded}
	for id, rec := range next {
		prev, ok := e.active[id]
		switch {
		case !ok:
			delta.Added = append(delta.Added, rec)
		case orderChanged(prev, rec):
			delta.Updated = append(delta.Updated, rec)
		}
	}
	for id := range e.active {
		if _, ok := next[id]; !ok {
			delta.RemovedIDs = append(delta.RemovedIDs, id)
		}
	}

	sortDelta(&delta)
	e.active = next
	e.loaded = true
	return delta, true
}

// ApplyFeedEvent merges a single feed event into the awaiting set.
// Replayed events are idempotent: applying the same event twice yields
// an empty second delta.
func (e *Engine) ApplyFeedEvent(ev *feed.OrderEvent) Delta {
	var delta Delta

	switch ev.Kind {
	case feed.KindCreated, feed.KindUpdated:
		if ev.Order == nil {
			return delta
		}
		rec := *ev.Order
		rec.Status = models.NormalizeStatus(string(rec.Status))

		prev, present := e.active[rec.ID]
		if rec.Status.AwaitingAttention() {
			switch {
			case !present:
				// Entering the awaiting set is the arrival signal,
				// regardless of event kind.
				e.active[rec.ID] = rec
				delta.Added = append(delta.Added, rec)
			case orderChanged(prev, rec):
				e.active[rec.ID] = rec
				delta.Updated = append(delta.Updated, rec)
			}
		} else if present {
			delete(e.active, rec.ID)
			delta.RemovedIDs = append(delta.RemovedIDs, rec.ID)
		}

	case feed.KindDeleted:
		if _, present := e.active[ev.OrderID]; present {
			delete(e.active, ev.OrderID)
			delta.RemovedIDs = append(delta.RemovedIDs, ev.OrderID)
		}
	}

	return delta
}

// orderChanged reports whether fields relevant to presentation differ.
func orderChanged(a, b models.OrderRecord) bool {
	return a.Status != b.Status ||
		a.TotalAmount != b.TotalAmount ||
		a.DisplayID != b.DisplayID ||
		a.CustomerID != b.CustomerID ||
		!a.UpdatedAt.Equal(b.UpdatedAt)
}

// sortDelta orders delta slices newest first (IDs ascending) so
// downstream presentation is deterministic.
func sortDelta(d *Delta) {
	byNewest := func(s []models.OrderRecord) {
		sort.Slice(s, func(i, j int) bool {
			if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
				return s[i].CreatedAt.After(s[j].CreatedAt)
			}
			return s[i].ID < s[j].ID
		})
	}
	byNewest(d.Added)
	byNewest(d.Updated)
	sort.Strings(d.RemovedIDs)
}
