// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package config provides layered application configuration via Koanf v2:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	NATS          NATSConfig          `koanf:"nats"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Reports       ReportsConfig       `koanf:"reports"`
	API           APIConfig           `koanf:"api"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8090)
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/betty.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: Worker threads, 0 = runtime.NumCPU() (default: 0)
//   - SEED_MOCK_DATA: Seed demo orders on first start (default: false)
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`
	SeedMockData bool   `koanf:"seed_mock_data"`
}

// NATSConfig holds the change-feed transport settings. The feed runs on
// NATS JetStream, embedded in-process by default.
//
// Environment Variables:
//   - NATS_URL: Server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Run an embedded server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: /data/nats/jetstream)
//   - NATS_MAX_MEMORY: JetStream memory limit in bytes (default: 256MB)
//   - NATS_MAX_STORE: JetStream disk limit in bytes (default: 2GB)
//   - NATS_RETENTION_DAYS: Order event retention (default: 7)
//   - NATS_DURABLE_NAME: Durable consumer name (default: order-notifier)
type NATSConfig struct {
	URL                 string `koanf:"url"`
	EmbeddedServer      bool   `koanf:"embedded_server"`
	StoreDir            string `koanf:"store_dir"`
	MaxMemory           int64  `koanf:"max_memory"`
	MaxStore            int64  `koanf:"max_store"`
	StreamRetentionDays int    `koanf:"stream_retention_days"`
	DurableName         string `koanf:"durable_name"`
}

// NotificationsConfig controls the pending-order notification pipeline.
//
// Environment Variables:
//   - NOTIFY_POLL_INTERVAL: Snapshot poll cadence (default: 30s)
//   - NOTIFY_SNAPSHOT_LIMIT: Max orders per snapshot query (default: 50)
//   - NOTIFY_SOUND_MIN_INTERVAL: Minimum gap between sound cues (default: 3s)
type NotificationsConfig struct {
	PollInterval     time.Duration `koanf:"poll_interval"`
	SnapshotLimit    int           `koanf:"snapshot_limit"`
	SoundMinInterval time.Duration `koanf:"sound_min_interval"`
}

// ReportsConfig controls the sales report aggregation pipeline.
//
// Environment Variables:
//   - REPORTS_REFRESH_INTERVAL: Aggregation cadence (default: 60s)
//   - REPORTS_WINDOW_DAYS: Daily series window (default: 30)
//   - REPORTS_TOP_PRODUCTS_LIMIT: Top product list size (default: 5)
//   - REPORTS_LOOKBACK_MONTHS: Monthly series window (default: 12)
type ReportsConfig struct {
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
	WindowDays       int           `koanf:"window_days"`
	TopProductsLimit int           `koanf:"top_products_limit"`
	LookbackMonths   int           `koanf:"lookback_months"`
}

// APIConfig holds API response and rate-limit settings.
//
// Environment Variables:
//   - API_DEFAULT_PAGE_SIZE: Default list page size (default: 20)
//   - API_MAX_PAGE_SIZE: Maximum list page size (default: 100)
//   - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
