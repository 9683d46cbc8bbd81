// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package notify

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/metrics"
)

// SoundOutcome is the result of one sound request.
type SoundOutcome string

const (
	// SoundPlayed means the cue was emitted to clients.
	SoundPlayed SoundOutcome = "played"
	// SoundThrottled means the cue was suppressed by the minimum interval.
	SoundThrottled SoundOutcome = "throttled"
	// SoundDeferred means no client interaction has happened yet, so the cue
	// is held until the next interaction.
	SoundDeferred SoundOutcome = "deferred"
)

// Player gates audible notification cues.
type Player interface {
	// Request asks for a sound cue; the player decides whether it fires.
	Request() SoundOutcome

	// MarkInteraction records that an operator interacted with a client,
	// unlocking audio and flushing any deferred cue.
	MarkInteraction()
}

// ThrottledPlayer rate-limits sound cues and defers the first cue until a
// client interaction has been seen, since browsers refuse autoplay before
// the user touches the page. At most one cue fires per minimum interval no
// matter how many orders arrive in a burst.
type ThrottledPlayer struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	unlocked bool
	deferred bool
	emit     func()
}

// NewThrottledPlayer creates a player that calls emit for each cue that
// actually fires, at most once per minInterval.
func NewThrottledPlayer(minInterval time.Duration, emit func()) *ThrottledPlayer {
	if minInterval <= 0 {
		minInterval = 3 * time.Second
	}
	return &ThrottledPlayer{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		emit:    emit,
	}
}

// Request implements Player.
func (p *ThrottledPlayer) Request() SoundOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.unlocked {
		p.deferred = true
		metrics.RecordNotificationSound(string(SoundDeferred))
		logging.Debug().Msg("Sound cue deferred until client interaction")
		return SoundDeferred
	}
	if !p.limiter.Allow() {
		metrics.RecordNotificationSound(string(SoundThrottled))
		return SoundThrottled
	}

	p.emit()
	metrics.RecordNotificationSound(string(SoundPlayed))
	return SoundPlayed
}

// MarkInteraction implements Player. The first interaction unlocks audio;
// a cue deferred before that point fires now, still subject to the rate
// limit.
func (p *ThrottledPlayer) MarkInteraction() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.unlocked = true
	if !p.deferred {
		return
	}
	p.deferred = false

	if p.limiter.Allow() {
		p.emit()
		metrics.RecordNotificationSound(string(SoundPlayed))
	} else {
		metrics.RecordNotificationSound(string(SoundThrottled))
	}
}
