// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that configuration values are present and within range.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateNotifications(); err != nil {
		return err
	}

	if err := c.validateReports(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server settings.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("HTTP_TIMEOUT must be at least 1s, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
}

// validateDatabase validates DuckDB settings.
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

// NATS limit constants.
const (
	natsMinMemory    = 64 * 1024 * 1024  // 64MB
	natsMinStore     = 100 * 1024 * 1024 // 100MB
	natsMinRetention = 1
	natsMaxRetention = 365
)

// validateNATS validates the change-feed transport settings.
func (c *Config) validateNATS() error {
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.MaxMemory < natsMinMemory {
		return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB, got %d", c.NATS.MaxMemory)
	}
	if c.NATS.MaxStore < natsMinStore {
		return fmt.Errorf("NATS_MAX_STORE must be at least 100MB, got %d", c.NATS.MaxStore)
	}
	if c.NATS.StreamRetentionDays < natsMinRetention || c.NATS.StreamRetentionDays > natsMaxRetention {
		return fmt.Errorf("NATS_RETENTION_DAYS must be between %d and %d, got %d",
			natsMinRetention, natsMaxRetention, c.NATS.StreamRetentionDays)
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("NATS_DURABLE_NAME must not be empty")
	}
	return nil
}

// validateNotifications validates the notification pipeline settings.
func (c *Config) validateNotifications() error {
	if c.Notifications.PollInterval < time.Second {
		return fmt.Errorf("NOTIFY_POLL_INTERVAL must be at least 1s, got %s", c.Notifications.PollInterval)
	}
	if c.Notifications.SnapshotLimit < 1 || c.Notifications.SnapshotLimit > 1000 {
		return fmt.Errorf("NOTIFY_SNAPSHOT_LIMIT must be between 1 and 1000, got %d", c.Notifications.SnapshotLimit)
	}
	if c.Notifications.SoundMinInterval < 0 {
		return fmt.Errorf("NOTIFY_SOUND_MIN_INTERVAL must not be negative, got %s", c.Notifications.SoundMinInterval)
	}
	return nil
}

// validateReports validates the report aggregation settings.
func (c *Config) validateReports() error {
	if c.Reports.RefreshInterval < time.Second {
		return fmt.Errorf("REPORTS_REFRESH_INTERVAL must be at least 1s, got %s", c.Reports.RefreshInterval)
	}
	if c.Reports.WindowDays < 1 || c.Reports.WindowDays > 366 {
		return fmt.Errorf("REPORTS_WINDOW_DAYS must be between 1 and 366, got %d", c.Reports.WindowDays)
	}
	if c.Reports.TopProductsLimit < 1 || c.Reports.TopProductsLimit > 100 {
		return fmt.Errorf("REPORTS_TOP_PRODUCTS_LIMIT must be between 1 and 100, got %d", c.Reports.TopProductsLimit)
	}
	if c.Reports.LookbackMonths < 1 || c.Reports.LookbackMonths > 120 {
		return fmt.Errorf("REPORTS_LOOKBACK_MONTHS must be between 1 and 120, got %d", c.Reports.LookbackMonths)
	}
	return nil
}

// validateAPI validates pagination and rate limit settings.
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must not be smaller than API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %s", c.API.RateLimitWindow)
	}
	return nil
}

// validateLogging validates logging settings.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// validateNATSURL checks that the URL uses the nats scheme and names a host.
func validateNATSURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("scheme must be nats or tls, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
