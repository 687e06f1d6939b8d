// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/store"
	syncpkg "github.com/neville-gpp/farmily-up-sub000/internal/sync"
)

// triggerSyncRequest is the optional body of POST /api/v1/sync. An
// empty body syncs the engine's bound user.
type triggerSyncRequest struct {
	UserID string `json:"user_id" validate:"omitempty,min=1,max=128"`
}

// periodicStartRequest is the optional body of
// POST /api/v1/sync/periodic/start. Zero minutes selects the
// configured interval.
type periodicStartRequest struct {
	IntervalMinutes int `json:"interval_minutes" validate:"omitempty,gte=1,lte=1440"`
}

// autoSyncRequest is the body of POST /api/v1/sync/auto. Enabled is a
// pointer so an explicit false survives validation.
type autoSyncRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// TriggerSync starts a full sync pass in the background.
//
// Method: POST
// Path: /api/v1/sync
//
// Response:
//   - 202: Pass started; watch /api/v1/ws or poll GET /api/v1/sync
//   - 400: Invalid request body
//   - 409: Device offline (code OFFLINE) or a pass is already running
//     (code SYNC_IN_PROGRESS)
//
// The refusal checks also run inside the engine, so a pass slipping
// past these pre-checks is still refused there; the pre-checks exist to
// answer 409 instead of burying the refusal in a background result.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireEngine(w) {
		return
	}

	var req triggerSyncRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if h.gate != nil && !h.gate.IsOnline() {
		respondError(w, http.StatusConflict, "OFFLINE", "Device is offline; sync will run when connectivity returns", nil)
		return
	}
	if h.engine.Stats().Syncing {
		respondError(w, http.StatusConflict, "SYNC_IN_PROGRESS", "A full sync is already running", nil)
		return
	}

	userID := req.UserID
	go func() {
		// The request context dies with the response; the pass must not.
		ctx := context.Background()
		var result *syncpkg.FullSyncResult
		if userID == "" {
			result = h.engine.ForceSyncNow(ctx)
		} else {
			result = h.engine.PerformFullSync(ctx, userID)
		}
		// Refused passes emit no events, so record directly.
		if !result.Success && result.Reason != "" {
			h.recordResult(result)
		}
	}()

	logging.Info().Str("user_id", sanitizeLogValue(userID)).Msg("Full sync triggered via API")
	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"triggered": true, "stage": "full"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// LastSync returns the most recent finished sync pass.
//
// Method: GET
// Path: /api/v1/sync
//
// Response:
//   - 200: Last pass result
//   - 404: No pass has finished since startup
func (h *Handler) LastSync(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireEngine(w) {
		return
	}

	result := h.LastResult()
	if result == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No sync pass has finished yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     result,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// SyncStatus returns the live engine statistics.
//
// Method: GET
// Path: /api/v1/sync/status
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireEngine(w) {
		return
	}

	start := time.Now()
	stats := h.engine.Stats()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// SyncSnapshot returns the cached entity snapshot for one kind.
//
// Method: GET
// Path: /api/v1/sync/snapshots/{kind}
//
// Response:
//   - 200: Raw cached records (array for collections, object for the
//     profile)
//   - 400: Unknown entity kind
//   - 404: No snapshot cached yet for this kind
func (h *Handler) SyncSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireEngine(w) {
		return
	}

	kind, err := models.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	data, err := h.engine.Snapshot(kind)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No snapshot cached for this entity kind", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read snapshot", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     json.RawMessage(data),
		Metadata: models.Metadata{Timestamp: time.Now(), Cached: true},
	})
}

// ResetSync clears the checkpoint, the cached snapshots, and the
// offline queue. The device identity survives.
//
// Method: POST
// Path: /api/v1/sync/reset
func (h *Handler) ResetSync(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireEngine(w) {
		return
	}

	if err := h.engine.ResetSyncState(); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset sync state", err)
		return
	}

	h.recordResult(nil)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"reset": true},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// PeriodicStart arms the periodic queue drain.
//
// Method: POST
// Path: /api/v1/sync/periodic/start
//
// The optional body selects the interval in minutes; omitting it (or
// sending zero) uses the configured default. Calling it again replaces
// the running timer.
func (h *Handler) PeriodicStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireEngine(w) {
		return
	}

	var req periodicStartRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	h.engine.StartPeriodicSync(time.Duration(req.IntervalMinutes) * time.Minute)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"periodic_sync_running": true},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// PeriodicStop cancels the periodic queue drain. Idempotent.
//
// Method: POST
// Path: /api/v1/sync/periodic/stop
func (h *Handler) PeriodicStop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireEngine(w) {
		return
	}

	h.engine.StopPeriodicSync()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"periodic_sync_running": false},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// AutoSyncToggle enables or disables the background sync triggers,
// starting or stopping the periodic timer to match.
//
// Method: POST
// Path: /api/v1/sync/auto
func (h *Handler) AutoSyncToggle(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireEngine(w) {
		return
	}

	var req autoSyncRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	h.engine.SetAutoSync(*req.Enabled)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"auto_sync_enabled": *req.Enabled},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
