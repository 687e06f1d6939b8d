// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/neville-gpp/farmily-up-sub000/internal/config"
	"github.com/neville-gpp/farmily-up-sub000/internal/events"
	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/middleware"
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
	"github.com/neville-gpp/farmily-up-sub000/internal/queue"
	syncpkg "github.com/neville-gpp/farmily-up-sub000/internal/sync"
	ws "github.com/neville-gpp/farmily-up-sub000/internal/websocket"
)

// Handler aggregates the daemon components the HTTP API fronts. Any
// dependency may be nil; the affected endpoints then answer 503 with
// code SERVICE_ERROR instead of panicking.
type Handler struct {
	engine  *syncpkg.Engine
	gate    netstatus.Gate
	queue   *queue.Queue
	config  *config.Config
	wsHub   *ws.Hub
	version string

	startTime time.Time
	perfMon   *middleware.PerformanceMonitor

	// Most recent finished sync pass. Fed by engine events so passes
	// started by the periodic timer or a reconnect land here too, not
	// just API-triggered ones.
	mu         sync.RWMutex
	lastResult *syncpkg.FullSyncResult

	unsubscribe func()
}

// NewHandler creates the API handler and subscribes it to the engine
// event stream. Call Close when tearing the handler down.
func NewHandler(engine *syncpkg.Engine, gate netstatus.Gate, q *queue.Queue, cfg *config.Config, wsHub *ws.Hub, version string) *Handler {
	h := &Handler{
		engine:    engine,
		gate:      gate,
		queue:     q,
		config:    cfg,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
		perfMon:   middleware.NewPerformanceMonitor(1000),
	}

	if engine != nil {
		h.unsubscribe = engine.Subscribe(h.onEngineEvent)
	}

	return h
}

// Close detaches the handler from the engine event stream.
func (h *Handler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

// onEngineEvent keeps the last-result cache current. Completed passes
// carry the full result as JSON; a recovered panic only surfaces its
// message, so the sync_error record is a stub until the triggering
// caller overwrites it with the full result.
func (h *Handler) onEngineEvent(ev events.Event) {
	switch ev.Name {
	case events.SyncCompleted:
		if len(ev.Result) == 0 {
			return
		}
		var result syncpkg.FullSyncResult
		if err := json.Unmarshal(ev.Result, &result); err != nil {
			logging.Debug().Err(err).Msg("Failed to decode sync result from event")
			return
		}
		h.recordResult(&result)

	case events.SyncError:
		h.recordResult(&syncpkg.FullSyncResult{
			Success:    false,
			Error:      ev.Message,
			FinishedAt: ev.Timestamp,
		})
	}
}

// recordResult stores a finished pass as the latest result.
func (h *Handler) recordResult(result *syncpkg.FullSyncResult) {
	h.mu.Lock()
	h.lastResult = result
	h.mu.Unlock()
}

// LastResult returns the most recent finished sync pass, or nil when no
// pass has finished since startup.
func (h *Handler) LastResult() *syncpkg.FullSyncResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastResult
}

// PerformanceMiddleware exposes the per-endpoint latency recorder for
// the router to mount.
func (h *Handler) PerformanceMiddleware() func(http.Handler) http.Handler {
	return h.perfMon.Middleware
}

// requireEngine writes a 503 and returns false when the handler was
// built without a sync engine.
func (h *Handler) requireEngine(w http.ResponseWriter) bool {
	if h.engine == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Sync engine not available", nil)
		return false
	}
	return true
}

// requireQueue writes a 503 and returns false when the handler was
// built without an offline queue.
func (h *Handler) requireQueue(w http.ResponseWriter) bool {
	if h.queue == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Offline queue not available", nil)
		return false
	}
	return true
}

// requireGate writes a 503 and returns false when the handler was
// built without a network gate.
func (h *Handler) requireGate(w http.ResponseWriter) bool {
	if h.gate == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Network monitor not available", nil)
		return false
	}
	return true
}

// getUpgrader builds the WebSocket upgrader with origin checking wired
// to the configured CORS origins.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. A missing header is accepted: the primary
// consumer is the local desktop app, which is not a browser and sends
// no Origin. Browsers always send one, so cross-site requests still
// have to match the configured origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("websocket upgrade rejected: origin not allowed")
	return false
}
