// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlayerDefersUntilInteraction(t *testing.T) {
	emits := 0
	p := NewThrottledPlayer(time.Millisecond, func() { emits++ })

	assert.Equal(t, SoundDeferred, p.Request())
	assert.Equal(t, SoundDeferred, p.Request())
	assert.Zero(t, emits)

	// The interaction flushes the deferred cue once.
	p.MarkInteraction()
	assert.Equal(t, 1, emits)

	// Further interactions without pending cues do nothing.
	p.MarkInteraction()
	assert.Equal(t, 1, emits)
}

func TestPlayerThrottlesBursts(t *testing.T) {
	emits := 0
	p := NewThrottledPlayer(time.Hour, func() { emits++ })
	p.MarkInteraction()

	assert.Equal(t, SoundPlayed, p.Request())
	assert.Equal(t, SoundThrottled, p.Request())
	assert.Equal(t, SoundThrottled, p.Request())
	assert.Equal(t, 1, emits)
}

func TestPlayerAllowsAfterInterval(t *testing.T) {
	emits := 0
	p := NewThrottledPlayer(10*time.Millisecond, func() { emits++ })
	p.MarkInteraction()

	assert.Equal(t, SoundPlayed, p.Request())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, SoundPlayed, p.Request())
	assert.Equal(t, 2, emits)
}
