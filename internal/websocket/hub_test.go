// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// startHub runs the hub and stops it on test cleanup.
func startHub(t *testing.T) *Hub {
	t.Helper()

	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

// connect registers a client without a real network connection; the hub
// only touches the send channel.
func connect(t *testing.T, h *Hub) *Client {
	t.Helper()

	c := NewClient(h, nil)
	h.Register <- c

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if h.GetClientCount() > 0 {
			return c
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("client never registered")
	return nil
}

// receive waits for one message on the client's send channel.
func receive(t *testing.T, c *Client) Message {
	t.Helper()

	select {
	case msg := <-c.send:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	h := startHub(t)

	c := connect(t, h)
	assert.Equal(t, 1, h.GetClientCount())

	h.Unregister <- c
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && h.GetClientCount() > 0 {
		time.Sleep(time.Millisecond)
	}
	assert.Zero(t, h.GetClientCount())

	// The send channel is closed on unregister.
	_, open := <-c.send
	assert.False(t, open)
}

func TestHubBroadcastOrderNotification(t *testing.T) {
	h := startHub(t)
	c := connect(t, h)

	entry := models.NotificationEntry{
		OrderID:             "ord-1",
		DisplayID:           "BO-0001",
		Status:              models.StatusPending,
		TotalAmount:         42.5,
		CustomerDisplayName: "Sara Tesfaye",
	}
	h.BroadcastOrderNotification(entry)

	msg := receive(t, c)
	assert.Equal(t, MessageTypeOrderNotification, msg.Type)
	got, ok := msg.Data.(models.NotificationEntry)
	require.True(t, ok)
	assert.Equal(t, "ord-1", got.OrderID)
}

func TestHubBroadcastBadgeUpdate(t *testing.T) {
	h := startHub(t)
	c := connect(t, h)

	h.BroadcastBadgeUpdate(7, true)

	msg := receive(t, c)
	assert.Equal(t, MessageTypeBadgeUpdate, msg.Type)
	data, ok := msg.Data.(BadgeUpdateData)
	require.True(t, ok)
	assert.Equal(t, 7, data.Count)
	assert.True(t, data.Pulse)
	assert.NotEmpty(t, data.Timestamp)
}

func TestHubBroadcastConnectionStatus(t *testing.T) {
	h := startHub(t)
	c := connect(t, h)

	h.BroadcastConnectionStatus(models.StateSubscribed)

	msg := receive(t, c)
	assert.Equal(t, MessageTypeConnectionStatus, msg.Type)
	data, ok := msg.Data.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "subscribed", data["state"])
}

func TestHubBroadcastReportUpdate(t *testing.T) {
	h := startHub(t)
	c := connect(t, h)

	generated := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	h.BroadcastReportUpdate(generated, false)

	msg := receive(t, c)
	assert.Equal(t, MessageTypeReportUpdate, msg.Type)
	data, ok := msg.Data.(ReportUpdateData)
	require.True(t, ok)
	assert.Equal(t, "2026-08-27T12:00:00Z", data.GeneratedAt)
	assert.False(t, data.Stale)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	h := startHub(t)
	c1 := connect(t, h)
	c2 := connect(t, h)

	h.BroadcastSoundCue()

	assert.Equal(t, MessageTypeSoundCue, receive(t, c1).Type)
	assert.Equal(t, MessageTypeSoundCue, receive(t, c2).Type)
}

func TestHubShutdownClosesClients(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Serve(ctx)
		close(done)
	}()

	c := connect(t, h)
	cancel()
	<-done

	_, open := <-c.send
	assert.False(t, open)
	assert.Zero(t, h.GetClientCount())
}

func TestHubSlowClientEvicted(t *testing.T) {
	h := startHub(t)
	c := connect(t, h)

	// Fill the client's buffer; the next broadcast marks it for removal.
	for i := 0; i < cap(c.send); i++ {
		h.BroadcastSoundCue()
	}
	h.BroadcastSoundCue()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && h.GetClientCount() > 0 {
		time.Sleep(time.Millisecond)
	}
	assert.Zero(t, h.GetClientCount())
}

func TestHubInteractionHandler(t *testing.T) {
	h := NewHub()
	calls := 0
	h.SetInteractionHandler(func() { calls++ })

	h.handleInteraction()
	assert.Equal(t, 1, calls)

	// A hub without a handler must not panic.
	NewHub().handleInteraction()
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong","data":null}`, string(data))
}

func TestClientIDsMonotonic(t *testing.T) {
	h := NewHub()
	a := NewClient(h, nil)
	b := NewClient(h, nil)
	assert.Greater(t, b.ID(), a.ID())
}

func TestHubString(t *testing.T) {
	assert.Equal(t, "websocket-hub", NewHub().String())
}
