// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package database

import (
	"errors"
	"io"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
)

// Sentinel errors returned by store operations. Callers match these with
// errors.Is to map database failures onto API error codes.
var (
	// ErrOrderNotFound is returned when an order ID does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition is returned when a status update violates the
	// order lifecycle (for example completed -> pending).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateOrder is returned when inserting an order whose ID
	// already exists.
	ErrDuplicateOrder = errors.New("order already exists")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeWithLog closes a resource and logs any error. Use this for cleanup
// where errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}
