// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Full sync runs and per-entity pulls
// - Retry executor behavior
// - Offline operation queue depth and drains
// - Connectivity probing
// - Local API latency and throughput
// - WebSocket connections

var (
	// Full Sync Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of full sync runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of full sync runs by result",
		},
		[]string{"result"}, // "success", "offline", "sync_in_progress", "error"
	)

	SyncEntitiesPulled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_entities_pulled_total",
			Help: "Total number of records pulled per entity",
		},
		[]string{"entity"}, // "children", "calendar_events", "family_activities", "user_profile"
	)

	SyncEntityErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_entity_errors_total",
			Help: "Total number of per-entity pull failures",
		},
		[]string{"entity"},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of last successful full sync",
		},
	)

	SyncInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_in_flight",
			Help: "Whether a full sync is currently running (0 or 1)",
		},
	)

	// Retry Executor Metrics
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts after a failed first try",
		},
		[]string{"operation"},
	)

	RetryExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_exhausted_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"operation"},
	)

	RetryBackoff = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retry_backoff_seconds",
			Help:    "Backoff waits scheduled between retry attempts",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30},
		},
	)

	// Offline Queue Metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current number of operations waiting in the offline queue",
		},
	)

	QueueEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_enqueued_total",
			Help: "Total number of operations deferred into the offline queue",
		},
	)

	QueueProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_processed_total",
			Help: "Total number of queued operations processed by result",
		},
		[]string{"result"}, // "success", "requeued", "dropped"
	)

	QueueDrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "queue_drain_duration_seconds",
			Help:    "Duration of offline queue drain passes in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	QueueOldestAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_oldest_entry_age_seconds",
			Help: "Age of the oldest queued operation in seconds",
		},
	)

	// Connectivity Metrics
	NetworkOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "network_online",
			Help: "Whether the device currently reports online (0 or 1)",
		},
	)

	NetworkProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_probes_total",
			Help: "Total number of connectivity probes by result",
		},
		[]string{"result"}, // "online", "offline"
	)

	NetworkProbeRTT = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "network_probe_rtt_seconds",
			Help:    "Round-trip time of connectivity probes",
			Buckets: []float64{0.025, 0.05, 0.1, 0.3, 0.6, 1, 2, 5},
		},
	)

	NetworkTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_transitions_total",
			Help: "Total number of connectivity state transitions",
		},
		[]string{"to"}, // "online", "offline"
	)

	// Offline Guard Metrics
	GuardBlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guard_blocked_total",
			Help: "Total number of operations fast-failed while offline",
		},
	)

	GuardFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_failures_total",
			Help: "Total number of guarded operation failures by category",
		},
		[]string{"category"},
	)

	// Conflict Detection Metrics
	ConflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflicts_detected_total",
			Help: "Total number of record conflicts detected",
		},
		[]string{"entity", "rule"}, // rule: "version", "concurrent_edit"
	)

	// Key-Value Store Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of key-value store operations",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of key-value store errors",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the bus",
		},
		[]string{"name"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of events dropped by slow or closed subscribers",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordFullSync records the outcome of a full sync run
func RecordFullSync(duration time.Duration, result string) {
	SyncDuration.Observe(duration.Seconds())
	SyncTotal.WithLabelValues(result).Inc()
	if result == "success" {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordEntityPull records a per-entity pull and its outcome
func RecordEntityPull(entity string, records int, err error) {
	if err != nil {
		SyncEntityErrors.WithLabelValues(entity).Inc()
		return
	}
	SyncEntitiesPulled.WithLabelValues(entity).Add(float64(records))
}

// TrackSyncInFlight marks a full sync as started or finished
func TrackSyncInFlight(running bool) {
	if running {
		SyncInFlight.Set(1)
	} else {
		SyncInFlight.Set(0)
	}
}

// RecordRetryAttempt records a scheduled retry and its backoff wait
func RecordRetryAttempt(operation string, backoff time.Duration) {
	RetryAttempts.WithLabelValues(operation).Inc()
	RetryBackoff.Observe(backoff.Seconds())
}

// RecordRetryExhausted records an operation that failed after all retries
func RecordRetryExhausted(operation string) {
	RetryExhausted.WithLabelValues(operation).Inc()
}

// RecordEnqueue records an operation deferred into the offline queue
func RecordEnqueue() {
	QueueEnqueued.Inc()
}

// RecordQueueItem records the outcome of one processed queue entry
func RecordQueueItem(result string) {
	QueueProcessed.WithLabelValues(result).Inc()
}

// RecordQueueDrain records a queue drain pass
func RecordQueueDrain(duration time.Duration) {
	QueueDrainDuration.Observe(duration.Seconds())
}

// UpdateQueueGauges updates queue gauges with current stats
func UpdateQueueGauges(depth int, oldestAgeSeconds float64) {
	QueueDepth.Set(float64(depth))
	QueueOldestAge.Set(oldestAgeSeconds)
}

// RecordProbe records a connectivity probe and its round-trip time
func RecordProbe(online bool, rtt time.Duration) {
	if online {
		NetworkProbes.WithLabelValues("online").Inc()
		NetworkProbeRTT.Observe(rtt.Seconds())
	} else {
		NetworkProbes.WithLabelValues("offline").Inc()
	}
}

// SetNetworkOnline updates the current connectivity gauge
func SetNetworkOnline(online bool) {
	if online {
		NetworkOnline.Set(1)
	} else {
		NetworkOnline.Set(0)
	}
}

// RecordNetworkTransition records a connectivity state change
func RecordNetworkTransition(online bool) {
	if online {
		NetworkTransitions.WithLabelValues("online").Inc()
	} else {
		NetworkTransitions.WithLabelValues("offline").Inc()
	}
}

// RecordGuardBlocked records an operation fast-failed while offline
func RecordGuardBlocked() {
	GuardBlocked.Inc()
}

// RecordGuardFailure records a guarded operation failure by category
func RecordGuardFailure(category string) {
	GuardFailures.WithLabelValues(category).Inc()
}

// RecordConflict records a detected record conflict
func RecordConflict(entity, rule string) {
	ConflictsDetected.WithLabelValues(entity, rule).Inc()
}

// RecordStoreOperation records a key-value store operation
func RecordStoreOperation(operation string, err error) {
	StoreOperations.WithLabelValues(operation).Inc()
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublished records an event published to the bus
func RecordEventPublished(name string) {
	EventsPublished.WithLabelValues(name).Inc()
}

// RecordEventDropped records an event a subscriber could not take
func RecordEventDropped() {
	EventsDropped.Inc()
}

// RecordBreakerRequest records a request passing through a circuit breaker
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordBreakerTransition records a circuit breaker state change and
// updates the state gauge.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

// breakerStateValue maps breaker state names to gauge values
func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
