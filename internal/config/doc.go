// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

/*
Package config provides centralized configuration management for the sync
engine.

This package handles loading, validation, and parsing of configuration for
all engine components. It ensures consistent configuration across the sync
orchestrator, offline queue, connectivity monitor, and local API, and
provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

  - Built-in defaults (all optional settings)
  - Optional YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables (highest priority)

# Configuration Structure

The package organizes configuration into logical groups:

  - SyncConfig: Bound user, auto-sync, periodic queue drain interval
  - RetryConfig: Default backoff shape for remote calls
  - QueueConfig: Offline operation queue bounds and journaling
  - RemoteConfig: Backend base URL, credentials, circuit breaker
  - ProbeConfig: Connectivity monitor endpoint and cadence
  - StoreConfig: Badger key-value store location
  - ServerConfig: Local HTTP API (status, triggers, websocket, metrics)
  - LoggingConfig: Log levels, formats, optional rotating file

# Environment Variables

Key variables by component:

Sync (SyncConfig):
  - SYNC_USER_ID: User whose family data this device syncs (required)
  - SYNC_AUTO: Full sync when connectivity returns (default: true)
  - SYNC_INTERVAL: Periodic queue drain interval (default: 5m)

Backend (RemoteConfig):
  - REMOTE_BASE_URL: Backend base URL (required)
  - REMOTE_API_TOKEN: Bearer token for backend requests
  - REMOTE_TIMEOUT: Per-request timeout (default: 15s)
  - REMOTE_BREAKER_ENABLED: Circuit breakers on sources (default: true)

Connectivity (ProbeConfig):
  - PROBE_URL: Reachability endpoint (default: <base URL>/v1/ping)
  - PROBE_INTERVAL: Background probe cadence (default: 30s)
  - FORCE_OFFLINE: Pin the gate offline for development (default: false)

Storage (StoreConfig):
  - STORE_PATH: Badger data directory (default: /data/farmily-sync)
  - STORE_IN_MEMORY: Run Badger without persistence (default: false)

Local API (ServerConfig):
  - HTTP_ENABLED, HTTP_PORT (default: 8387), HTTP_HOST, HTTP_TIMEOUT
  - CORS_ORIGINS: Comma-separated allowed origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - METRICS_ENABLED: Prometheus /metrics (default: true)

Logging (LoggingConfig):
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER, LOG_FILE

# Usage Example

Basic configuration loading:

	import "github.com/neville-gpp/farmily-up-sub000/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Syncing for user %s against %s\n", cfg.Sync.UserID, cfg.Remote.BaseURL)

# Validation

Load() validates before returning:

  - Required fields: SYNC_USER_ID, REMOTE_BASE_URL
  - URL formats: REMOTE_BASE_URL must be a base HTTP(S) URL without path,
    PROBE_URL must be a full HTTP(S) endpoint
  - Numeric ranges: HTTP_PORT (1-65535), QUEUE_MAX_RETRIES (1-10)
  - Duration ranges: SYNC_INTERVAL (10s-24h), PROBE_TIMEOUT < PROBE_INTERVAL

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
