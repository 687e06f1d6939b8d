// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring sync health, queue pressure,
connectivity, and the local API.

# Overview

The package provides metrics for:
  - Full sync runs and per-entity pulls
  - Retry executor attempts, backoff waits, and exhaustion
  - Offline queue depth, drains, and per-item outcomes
  - Connectivity probes and online/offline transitions
  - Offline guard fast-fails
  - Conflict detection
  - Local API latency and throughput
  - WebSocket connection counts
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8387/metrics

# Available Metrics

Sync Metrics:
  - sync_duration_seconds: Full sync duration (histogram)
  - sync_runs_total: Sync runs (counter)
    Labels: result (success, offline, sync_in_progress, error)
  - sync_entities_pulled_total: Records pulled per entity (counter)
    Labels: entity (children, calendar_events, family_activities, user_profile)
  - sync_entity_errors_total: Per-entity pull failures (counter)
  - sync_last_success_timestamp: Unix timestamp of last successful sync (gauge)
  - sync_in_flight: Whether a sync is running (gauge, 0 or 1)

Retry Metrics:
  - retry_attempts_total: Retries after a failed first try (counter)
    Labels: operation
  - retry_exhausted_total: Operations failed after all retries (counter)
  - retry_backoff_seconds: Scheduled backoff waits (histogram)

Queue Metrics:
  - queue_depth: Waiting operations (gauge)
  - queue_enqueued_total: Operations deferred offline (counter)
  - queue_processed_total: Processed entries (counter)
    Labels: result (success, requeued, dropped)
  - queue_drain_duration_seconds: Drain pass duration (histogram)
  - queue_oldest_entry_age_seconds: Age of oldest entry (gauge)

Connectivity Metrics:
  - network_online: Current connectivity (gauge, 0 or 1)
  - network_probes_total: Probes by result (counter)
  - network_probe_rtt_seconds: Probe round-trip time (histogram)
  - network_transitions_total: State transitions (counter)
    Labels: to (online, offline)

Guard Metrics:
  - guard_blocked_total: Operations fast-failed while offline (counter)
  - guard_failures_total: Guarded failures by category (counter)

Conflict Metrics:
  - conflicts_detected_total: Detected conflicts (counter)
    Labels: entity, rule (version, concurrent_edit)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total

# Usage Example

Recording sync metrics:

	start := time.Now()
	result := engine.PerformFullSync(ctx)
	metrics.RecordFullSync(time.Since(start), result.Reason)

Serving the endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"

	mux.Handle("/metrics", promhttp.Handler())

# Design Notes

All metrics use promauto and register against the default registry at package
init. Helper functions (RecordFullSync, RecordProbe, UpdateQueueGauges) keep
call sites one-liners and centralize label vocabulary here.
*/
package metrics
