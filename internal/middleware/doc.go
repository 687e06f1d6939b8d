// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

/*
Package middleware provides HTTP middleware for the local status API.

The middleware here is transport infrastructure shared by every API
route: request ID propagation for log correlation, Prometheus request
instrumentation, gzip compression, and an in-process latency monitor.
CORS, rate limiting, and security headers live in internal/api as chi
middleware factories; this package holds the handler-level pieces that
predate the chi router and still compose with it through an adapter.

Key Components:

  - RequestID: UUID request tracking wired into the logging context
  - PrometheusMetrics: per-request counters and latency histograms
  - Compression: gzip for clients that accept it
  - PerformanceMonitor: rolling-window latency percentiles per endpoint

Middleware Stack:

Handlers are mounted through the chi router in internal/api; the
handler-level middleware composes with chi via an adapter:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.Compression))

Usage Example - Request ID:

	http.HandleFunc("/api/v1/sync/status",
	    middleware.RequestID(handler),
	)

	func handler(w http.ResponseWriter, r *http.Request) {
	    logging.Ctx(r.Context()).Info().Msg("status requested")
	}

Usage Example - Performance Monitoring:

	perfMon := middleware.NewPerformanceMonitor(1000)
	mux.Handle("/api/v1/queue", perfMon.Middleware(handler))

	stats := perfMon.GetStats() // per-endpoint p50/p95/p99

Thread Safety:

All middleware components are safe for concurrent use. The
performance monitor guards its sliding window with a sync.RWMutex;
request IDs travel in immutable context values; the Prometheus
middleware only touches atomic collector state.

See Also:

  - internal/api: chi router and the security/rate-limit middleware
  - internal/logging: request and correlation ID context helpers
  - internal/metrics: Prometheus metric definitions
*/
package middleware
