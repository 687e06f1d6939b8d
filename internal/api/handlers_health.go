// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"net/http"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/models"
)

// requireMethod validates the HTTP method and returns true if valid,
// false if the error response was already sent.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return false
	}
	return true
}

// Health reports overall daemon health.
//
// Method: GET
// Path: /api/v1/health
//
// An offline device reports "degraded", never a failure: serving cached
// family data without connectivity is this daemon's whole purpose, so
// offline must not trip restart loops in process managers that probe
// this endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	online := h.gate != nil && h.gate.IsOnline()
	status := "ok"
	if !online {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:    status,
			Version:   h.version,
			Online:    online,
			UptimeSec: int64(time.Since(h.startTime).Seconds()),
			Timestamp: time.Now().UTC(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthLive is the liveness probe: the process is up and serving.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady is the readiness probe: the engine and queue are wired
// and able to accept work. Connectivity is deliberately not part of
// readiness; an offline daemon still accepts enqueues and serves
// cached snapshots.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	if h.engine == nil || h.queue == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Sync engine not ready", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ready"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
