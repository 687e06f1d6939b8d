// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	if err := c.validateQueue(); err != nil {
		return err
	}

	if err := c.validateRemote(); err != nil {
		return err
	}

	if err := c.validateProbe(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// Sync bound constants
const (
	syncMinInterval = 10 * time.Second
	syncMaxInterval = 24 * time.Hour
)

// validateSync validates sync orchestrator configuration
func (c *Config) validateSync() error {
	if err := c.validateSyncUserID(); err != nil {
		return err
	}
	return c.validateSyncInterval()
}

// validateSyncUserID validates the bound user
func (c *Config) validateSyncUserID() error {
	if c.Sync.UserID == "" {
		return fmt.Errorf("SYNC_USER_ID is required")
	}
	return nil
}

// validateSyncInterval validates the periodic queue drain interval
func (c *Config) validateSyncInterval() error {
	if c.Sync.Interval < syncMinInterval || c.Sync.Interval > syncMaxInterval {
		return fmt.Errorf("SYNC_INTERVAL must be between %v and %v", syncMinInterval, syncMaxInterval)
	}
	return nil
}

// Retry bound constants
const (
	retryMaxMaxRetries = 10
	retryMinBaseDelay  = time.Millisecond
	retryMaxMaxDelay   = 10 * time.Minute
	retryMinMultiplier = 1.0
	retryMaxMultiplier = 10.0
)

// validateRetry validates the default backoff shape
func (c *Config) validateRetry() error {
	validators := []func() error{
		c.validateRetryMaxRetries,
		c.validateRetryBaseDelay,
		c.validateRetryMaxDelay,
		c.validateRetryMultiplier,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateRetryMaxRetries validates the replay bound
func (c *Config) validateRetryMaxRetries() error {
	if c.Retry.MaxRetries < 0 || c.Retry.MaxRetries > retryMaxMaxRetries {
		return fmt.Errorf("RETRY_MAX_RETRIES must be between 0 and %d", retryMaxMaxRetries)
	}
	return nil
}

// validateRetryBaseDelay validates the first wait
func (c *Config) validateRetryBaseDelay() error {
	if c.Retry.BaseDelay < retryMinBaseDelay {
		return fmt.Errorf("RETRY_BASE_DELAY must be at least %v", retryMinBaseDelay)
	}
	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		return fmt.Errorf("RETRY_BASE_DELAY must not exceed RETRY_MAX_DELAY")
	}
	return nil
}

// validateRetryMaxDelay validates the wait ceiling
func (c *Config) validateRetryMaxDelay() error {
	if c.Retry.MaxDelay > retryMaxMaxDelay {
		return fmt.Errorf("RETRY_MAX_DELAY must not exceed %v", retryMaxMaxDelay)
	}
	return nil
}

// validateRetryMultiplier validates the exponential growth factor
func (c *Config) validateRetryMultiplier() error {
	if c.Retry.Multiplier < retryMinMultiplier || c.Retry.Multiplier > retryMaxMultiplier {
		return fmt.Errorf("RETRY_MULTIPLIER must be between %.1f and %.1f", retryMinMultiplier, retryMaxMultiplier)
	}
	return nil
}

// Queue bound constants
const (
	queueMinMaxRetries = 1
	queueMaxMaxRetries = 10
)

// validateQueue validates offline operation queue configuration
func (c *Config) validateQueue() error {
	if c.Queue.MaxRetries < queueMinMaxRetries || c.Queue.MaxRetries > queueMaxMaxRetries {
		return fmt.Errorf("QUEUE_MAX_RETRIES must be between %d and %d", queueMinMaxRetries, queueMaxMaxRetries)
	}
	return nil
}

// Remote bound constants
const (
	remoteMinTimeout = time.Second
	remoteMaxTimeout = 5 * time.Minute
)

// validateRemote validates backend connection configuration
func (c *Config) validateRemote() error {
	if err := c.validateRemoteBaseURL(); err != nil {
		return err
	}
	return c.validateRemoteTimeout()
}

// validateRemoteBaseURL validates the backend base URL
func (c *Config) validateRemoteBaseURL() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("REMOTE_BASE_URL is required")
	}
	if err := validateHTTPURL(c.Remote.BaseURL, "REMOTE_BASE_URL"); err != nil {
		return fmt.Errorf("REMOTE_BASE_URL is invalid: %w", err)
	}
	return nil
}

// validateRemoteTimeout validates the per-request timeout
func (c *Config) validateRemoteTimeout() error {
	if c.Remote.Timeout < remoteMinTimeout || c.Remote.Timeout > remoteMaxTimeout {
		return fmt.Errorf("REMOTE_TIMEOUT must be between %v and %v", remoteMinTimeout, remoteMaxTimeout)
	}
	return nil
}

// Probe bound constants
const (
	probeMinInterval = 5 * time.Second
	probeMaxInterval = time.Hour
	probeMinTimeout  = time.Second
	probeMaxBurst    = 100
)

// validateProbe validates connectivity monitor configuration
func (c *Config) validateProbe() error {
	validators := []func() error{
		c.validateProbeURL,
		c.validateProbeInterval,
		c.validateProbeTimeout,
		c.validateProbeBurst,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateProbeURL validates the probe endpoint when explicitly set.
// Empty is fine: the monitor derives <remote.base_url>/v1/ping.
func (c *Config) validateProbeURL() error {
	if c.Probe.URL == "" {
		return nil
	}
	if err := validateEndpointURL(c.Probe.URL, "PROBE_URL"); err != nil {
		return fmt.Errorf("PROBE_URL is invalid: %w", err)
	}
	return nil
}

// validateProbeInterval validates the background probe cadence
func (c *Config) validateProbeInterval() error {
	if c.Probe.Interval < probeMinInterval || c.Probe.Interval > probeMaxInterval {
		return fmt.Errorf("PROBE_INTERVAL must be between %v and %v", probeMinInterval, probeMaxInterval)
	}
	return nil
}

// validateProbeTimeout validates the single probe timeout
func (c *Config) validateProbeTimeout() error {
	if c.Probe.Timeout < probeMinTimeout {
		return fmt.Errorf("PROBE_TIMEOUT must be at least %v", probeMinTimeout)
	}
	if c.Probe.Timeout >= c.Probe.Interval {
		return fmt.Errorf("PROBE_TIMEOUT must be shorter than PROBE_INTERVAL")
	}
	return nil
}

// validateProbeBurst validates the on-demand probe budget
func (c *Config) validateProbeBurst() error {
	if c.Probe.Burst < 1 || c.Probe.Burst > probeMaxBurst {
		return fmt.Errorf("PROBE_BURST must be between 1 and %d", probeMaxBurst)
	}
	return nil
}

// validateStore validates key-value store configuration
func (c *Config) validateStore() error {
	if c.Store.InMemory {
		return nil // path unused for in-memory Badger
	}
	if c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required when STORE_IN_MEMORY=false")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateServer validates local HTTP API configuration
func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}

	if err := c.validateServerPort(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateServerPort validates the listen port
func (c *Config) validateServerPort() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}

	if err := c.validateRateLimitRequests(); err != nil {
		return err
	}
	return c.validateRateLimitWindow()
}

// validateRateLimitRequests validates the rate limit requests value
func (c *Config) validateRateLimitRequests() error {
	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	return nil
}

// validateRateLimitWindow validates the rate limit window value
func (c *Config) validateRateLimitWindow() error {
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL validates that a URL is properly formatted for HTTP/HTTPS services.
// Validates: scheme (http/https), host present, no paths or query params.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	// Allow trailing slash but no other paths
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}

// validateEndpointURL validates a full HTTP/HTTPS endpoint URL.
// Unlike validateHTTPURL, a path is allowed (probe endpoints point at a
// concrete route such as /v1/ping).
func validateEndpointURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	return nil
}
