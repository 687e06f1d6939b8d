// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package config

import (
	"time"
)

// Config holds all engine configuration loaded from defaults, an optional
// YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Synchronization:
//     - Sync: Bound user, auto-sync, periodic queue drain interval
//     - Retry: Backoff shape shared by the retry executor defaults
//     - Queue: Offline operation queue bounds and journaling
//
//  2. Connectivity:
//     - Remote: Backend base URL, credentials, timeouts, circuit breaker
//     - Probe: Connectivity monitor endpoint and cadence
//
//  3. Infrastructure:
//     - Store: Badger key-value store location
//     - Server: Local HTTP API (status, triggers, websocket, metrics)
//
//  4. Observability:
//     - Logging: Log levels, output formats, optional rotating file
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Sync    SyncConfig    `koanf:"sync"`
	Retry   RetryConfig   `koanf:"retry"`
	Queue   QueueConfig   `koanf:"queue"`
	Remote  RemoteConfig  `koanf:"remote"`
	Probe   ProbeConfig   `koanf:"probe"`
	Store   StoreConfig   `koanf:"store"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// SyncConfig holds sync orchestrator settings.
//
// Environment Variables:
//   - SYNC_USER_ID: User whose family data this device syncs (required)
//   - SYNC_AUTO: Trigger a full sync when connectivity returns (default: true)
//   - SYNC_INTERVAL: Periodic queue drain interval (default: 5m)
type SyncConfig struct {
	// UserID is the user whose children, calendar events, activities and
	// profile the engine pulls. Required.
	UserID string `koanf:"user_id"`

	// AutoSync triggers a full sync when the device comes back online.
	AutoSync bool `koanf:"auto_sync"`

	// Interval is the periodic queue drain cadence. The periodic tick
	// drains deferred operations only; full pulls happen on explicit or
	// connectivity-driven triggers.
	Interval time.Duration `koanf:"interval"`
}

// RetryConfig shapes the default backoff used for remote calls.
//
// Environment Variables:
//   - RETRY_MAX_RETRIES: Replays after the first attempt (default: 3)
//   - RETRY_BASE_DELAY: First wait (default: 1s)
//   - RETRY_MAX_DELAY: Wait ceiling (default: 30s)
//   - RETRY_MULTIPLIER: Exponential growth factor (default: 2.0)
//   - RETRY_JITTER: Add uniform random [0,1s) to each wait (default: true)
type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries"`
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay"`
	Multiplier float64       `koanf:"multiplier"`
	Jitter     bool          `koanf:"jitter"`
}

// QueueConfig holds offline operation queue settings.
//
// Environment Variables:
//   - QUEUE_MAX_RETRIES: Attempts per operation before it is dropped (default: 3)
//   - QUEUE_JOURNAL: Journal descriptors for restart recovery (default: true)
type QueueConfig struct {
	// MaxRetries bounds how many times a retryable operation is attempted
	// before the queue drops it.
	MaxRetries int `koanf:"max_retries"`

	// Journal persists operation descriptors to the key-value store so a
	// restarting engine can re-bind them to registered handlers.
	Journal bool `koanf:"journal"`
}

// RemoteConfig holds backend connection settings for the entity sources.
//
// Environment Variables:
//   - REMOTE_BASE_URL: Backend base URL, e.g. https://api.farmily-up.example (required)
//   - REMOTE_API_TOKEN: Bearer token presented on every request
//   - REMOTE_TIMEOUT: Per-request timeout (default: 15s)
//   - REMOTE_BREAKER_ENABLED: Wrap sources in circuit breakers (default: true)
type RemoteConfig struct {
	BaseURL  string        `koanf:"base_url"`
	APIToken string        `koanf:"api_token"`
	Timeout  time.Duration `koanf:"timeout"`

	// BreakerEnabled wraps every entity source in a circuit breaker so a
	// misbehaving backend sheds load instead of compounding retries.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// ProbeConfig holds connectivity monitor settings.
//
// Environment Variables:
//   - PROBE_URL: Endpoint probed for reachability; empty derives <remote.base_url>/v1/ping
//   - PROBE_INTERVAL: Background probe cadence (default: 30s)
//   - PROBE_TIMEOUT: Single probe timeout (default: 5s)
//   - PROBE_BURST: On-demand probes allowed per interval (default: 5)
//   - FORCE_OFFLINE: Report offline regardless of probes (default: false)
type ProbeConfig struct {
	URL      string        `koanf:"url"`
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`

	// Burst bounds on-demand status probes between background ticks.
	Burst int `koanf:"burst"`

	// ForceOffline pins the gate to offline. Development and tests only.
	ForceOffline bool `koanf:"force_offline"`
}

// StoreConfig holds key-value store settings.
//
// Environment Variables:
//   - STORE_PATH: Badger data directory (default: /data/farmily-sync)
//   - STORE_IN_MEMORY: Run Badger without persistence (default: false)
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// ServerConfig holds the local HTTP API settings.
//
// Environment Variables:
//   - HTTP_ENABLED: Serve the status API (default: true)
//   - HTTP_PORT: Listen port (default: 8387)
//   - HTTP_HOST: Listen host (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: none)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW / DISABLE_RATE_LIMIT
//   - METRICS_ENABLED: Serve Prometheus /metrics (default: true)
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
//   - LOG_FILE: Rotate output into this file instead of stderr
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`

	File           string `koanf:"file"`
	FileMaxSizeMB  int    `koanf:"file_max_size_mb"`
	FileMaxBackups int    `koanf:"file_max_backups"`
	FileMaxAgeDays int    `koanf:"file_max_age_days"`
}

// Load reads configuration from defaults, optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	return loadWithKoanf()
}
