// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package api implements the HTTP surface of the sync daemon: REST
// endpoints for observing and steering the engine, plus the WebSocket
// endpoint that streams engine events to dashboards.
//
// # Key Components
//
//   - Handler: aggregates the engine, network gate, offline queue, and
//     WebSocket hub behind http.HandlerFunc methods
//   - Router: assembles the chi route tree with per-area middleware
//   - ChiMiddleware: CORS and rate limiting factories shared by the
//     route groups
//
// # API Categories
//
//   - Health: GET /api/v1/health, /health/live, /health/ready. Health
//     reports "degraded" while offline but never fails on it; an
//     offline daemon serving cached data is healthy.
//   - Sync: POST /api/v1/sync triggers a background pass (202, or 409
//     with code OFFLINE or SYNC_IN_PROGRESS). GET /api/v1/sync returns
//     the last finished pass, GET /sync/status the live counters, and
//     GET /sync/snapshots/{kind} the cached entity data. POST
//     /sync/reset, /sync/periodic/start, /sync/periodic/stop, and
//     /sync/auto steer the engine.
//   - Queue: GET /api/v1/queue, POST /queue/process, DELETE /queue.
//   - Network: GET /api/v1/network, POST /network/check.
//   - WebSocket: GET /api/v1/ws upgrades and streams engine events.
//
// All endpoints reply with the models.APIResponse envelope. Errors
// carry a stable code (VALIDATION_ERROR, OFFLINE, SYNC_IN_PROGRESS,
// NOT_FOUND, RATE_LIMIT_EXCEEDED, SERVICE_ERROR, INTERNAL_ERROR) so
// clients can branch without parsing messages.
//
// # Usage Example
//
//	handler := api.NewHandler(engine, gate, q, cfg, hub, version)
//	router := api.NewRouter(handler, cfg)
//	srv := &http.Server{Addr: addr, Handler: router.SetupChi()}
//
// # Thread Safety
//
// Handler methods are safe for concurrent use. The last-result cache is
// mutex-guarded and fed both by API-triggered passes and by engine
// events, so GET /api/v1/sync reflects periodic and reconnect passes
// too.
//
// # See Also
//
//   - internal/sync: the engine the API fronts
//   - internal/websocket: hub and client for the /ws endpoint
//   - internal/middleware: request ID, metrics, compression, and
//     latency tracking applied by the router
package api
