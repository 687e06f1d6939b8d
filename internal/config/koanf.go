// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/farmily-up/config.yaml",
	"/etc/farmily-up/config.yml",
}

// ConfigPathEnvVar overrides the config file search paths when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults applied before the file and
// environment layers.
func defaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			UserID:   "",
			AutoSync: true,
			Interval: 5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
			Multiplier: 2.0,
			Jitter:     true,
		},
		Queue: QueueConfig{
			MaxRetries: 3,
			Journal:    true,
		},
		Remote: RemoteConfig{
			BaseURL:        "",
			APIToken:       "",
			Timeout:        15 * time.Second,
			BreakerEnabled: true,
		},
		Probe: ProbeConfig{
			URL:          "", // derived from remote.base_url when empty
			Interval:     30 * time.Second,
			Timeout:      5 * time.Second,
			Burst:        5,
			ForceOffline: false,
		},
		Store: StoreConfig{
			Path:     "/data/farmily-sync",
			InMemory: false,
		},
		Server: ServerConfig{
			Enabled:           true,
			Port:              8387,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			CORSOrigins:       nil,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			MetricsEnabled:    true,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "json",
			Caller:         false,
			File:           "",
			FileMaxSizeMB:  50,
			FileMaxBackups: 5,
			FileMaxAgeDays: 30,
		},
	}
}

// loadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func loadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// SYNC_USER_ID -> sync.user_id
	// REMOTE_BASE_URL -> remote.base_url
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - SYNC_USER_ID -> sync.user_id
//   - REMOTE_BASE_URL -> remote.base_url
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Sync orchestrator
		"sync_user_id":  "sync.user_id",
		"sync_auto":     "sync.auto_sync",
		"sync_interval": "sync.interval",

		// Retry backoff shape
		"retry_max_retries": "retry.max_retries",
		"retry_base_delay":  "retry.base_delay",
		"retry_max_delay":   "retry.max_delay",
		"retry_multiplier":  "retry.multiplier",
		"retry_jitter":      "retry.jitter",

		// Offline operation queue
		"queue_max_retries": "queue.max_retries",
		"queue_journal":     "queue.journal",

		// Backend connection
		"remote_base_url":        "remote.base_url",
		"remote_api_token":       "remote.api_token",
		"remote_timeout":         "remote.timeout",
		"remote_breaker_enabled": "remote.breaker_enabled",

		// Connectivity probe
		"probe_url":      "probe.url",
		"probe_interval": "probe.interval",
		"probe_timeout":  "probe.timeout",
		"probe_burst":    "probe.burst",
		"force_offline":  "probe.force_offline",

		// Key-value store
		"store_path":      "store.path",
		"store_in_memory": "store.in_memory",

		// Local HTTP API
		"http_enabled":        "server.enabled",
		"http_port":           "server.port",
		"http_host":           "server.host",
		"http_timeout":        "server.timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",
		"metrics_enabled":     "server.metrics_enabled",

		// Logging
		"log_level":             "logging.level",
		"log_format":            "logging.format",
		"log_caller":            "logging.caller",
		"log_file":              "logging.file",
		"log_file_max_size_mb":  "logging.file_max_size_mb",
		"log_file_max_backups":  "logging.file_max_backups",
		"log_file_max_age_days": "logging.file_max_age_days",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	// Start watching the file for changes
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
