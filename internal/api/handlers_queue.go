// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"net/http"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/queue"
)

// queueItemResult is the wire shape of one processed item. The queue's
// ItemResult hides its error from JSON; the API surfaces the message.
type queueItemResult struct {
	ID         string        `json:"id"`
	Type       string        `json:"type,omitempty"`
	Outcome    queue.Outcome `json:"outcome"`
	RetryCount int           `json:"retry_count"`
	Error      string        `json:"error,omitempty"`
}

// QueueStatus returns the queue snapshot and lifetime counters.
//
// Method: GET
// Path: /api/v1/queue
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireQueue(w) {
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":   h.queue.Status(),
			"counters": h.queue.Counters(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// QueueProcess drains the queue once and returns the per-item
// outcomes. A drain already running elsewhere makes this a no-op with
// an empty result list; the concurrent pass owns the items.
//
// Method: POST
// Path: /api/v1/queue/process
func (h *Handler) QueueProcess(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireQueue(w) {
		return
	}

	start := time.Now()
	results := h.queue.Process(r.Context())

	items := make([]queueItemResult, 0, len(results))
	for _, res := range results {
		item := queueItemResult{
			ID:         res.ID,
			Type:       res.Type,
			Outcome:    res.Outcome,
			RetryCount: res.RetryCount,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		items = append(items, item)
	}

	logging.Info().Int("processed", len(items)).Msg("Queue drain triggered via API")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"processed": len(items),
			"results":   items,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// QueueClear discards every pending operation.
//
// Method: DELETE
// Path: /api/v1/queue
func (h *Handler) QueueClear(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) || !h.requireQueue(w) {
		return
	}

	discarded := h.queue.Clear()

	logging.Info().Int("discarded", discarded).Msg("Queue cleared via API")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"discarded": discarded},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
