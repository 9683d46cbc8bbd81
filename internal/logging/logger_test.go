// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("order_id", "ord-1").Msg("order created")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"order_id":"ord-1"`)
	assert.Contains(t, out, `"message":"order created"`)
}

func TestCtxCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithCorrelationID(context.Background(), "abc12345")
	ctx = ContextWithRequestID(ctx, "req-9")
	logger := Ctx(ctx)
	logger.Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"correlation_id":"abc12345"`)
	assert.Contains(t, out, `"request_id":"req-9"`)
}

func TestGenerateCorrelationID(t *testing.T) {
	id := GenerateCorrelationID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, GenerateCorrelationID())
}

func TestWatermillAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	adapter := NewWatermillAdapter().With(map[string]interface{}{"topic": "orders.created"})
	adapter.Info("subscribed", nil)

	out := buf.String()
	assert.Contains(t, out, `"topic":"orders.created"`)
	assert.Contains(t, out, `"component":"feed"`)
}

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	slogger := NewSlogLogger()
	slogger.Info("service started", "name", "notifier")
	slogger.Debug("suppressed at info level")

	out := buf.String()
	assert.Contains(t, out, `"name":"notifier"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
