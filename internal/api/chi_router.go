// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neville-gpp/farmily-up-sub000/internal/config"
	"github.com/neville-gpp/farmily-up-sub000/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler so the engine's middleware package
// works with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the daemon's chi route tree.
type Router struct {
	handler        *Handler
	chiMW          *ChiMiddleware
	metricsEnabled bool
}

// NewRouter creates the router from the handler and the server
// configuration. A nil config selects the middleware defaults with
// metrics enabled.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	metricsEnabled := true

	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
		if cfg.Server.RateLimitReqs > 0 {
			mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
		}
		if cfg.Server.RateLimitWindow > 0 {
			mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
		}
		mwConfig.RateLimitDisabled = cfg.Server.RateLimitDisabled
		metricsEnabled = cfg.Server.MetricsEnabled
	}

	return &Router{
		handler:        handler,
		chiMW:          NewChiMiddleware(mwConfig),
		metricsEnabled: metricsEnabled,
	}
}

// SetupChi builds the route tree.
//
// Layout:
//   - /api/v1/health, /health/live, /health/ready: permissive rate
//     limit so monitors can poll freely
//   - /api/v1/sync..., /queue..., /network...: standard rate limit,
//     request metrics, latency tracking, compression
//   - /api/v1/ws: standard rate limit only; the upgrade hijacks the
//     connection, so response-rewriting middleware must stay off this
//     path
//   - /metrics: Prometheus exposition, mounted when enabled
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS()) // global so OPTIONS preflight is handled

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.PerformanceMiddleware())
		r.Use(chiMiddleware(middleware.Compression))

		r.Post("/sync", router.handler.TriggerSync)
		r.Get("/sync", router.handler.LastSync)
		r.Get("/sync/status", router.handler.SyncStatus)
		r.Get("/sync/snapshots/{kind}", router.handler.SyncSnapshot)
		r.Post("/sync/reset", router.handler.ResetSync)
		r.Post("/sync/periodic/start", router.handler.PeriodicStart)
		r.Post("/sync/periodic/stop", router.handler.PeriodicStop)
		r.Post("/sync/auto", router.handler.AutoSyncToggle)

		r.Get("/queue", router.handler.QueueStatus)
		r.Post("/queue/process", router.handler.QueueProcess)
		r.Delete("/queue", router.handler.QueueClear)

		r.Get("/network", router.handler.NetworkStatus)
		r.Post("/network/check", router.handler.NetworkCheck)
	})

	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Get("/", router.handler.WebSocket)
	})

	if router.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
