// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
)

// onDemandChecker is the optional gate capability behind POST
// /api/v1/network/check. The monitor implements it; the static test
// gate does not, and the endpoint then falls back to the cached status.
type onDemandChecker interface {
	CheckNow(ctx context.Context) netstatus.Status
}

// NetworkStatus returns the last known connectivity snapshot.
//
// Method: GET
// Path: /api/v1/network
func (h *Handler) NetworkStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireGate(w) {
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     h.gate.Status(),
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// NetworkCheck probes connectivity immediately and returns the fresh
// status. Probes are rate limited inside the monitor; a throttled
// check returns the cached status, which is at most one probe
// interval old.
//
// Method: POST
// Path: /api/v1/network/check
func (h *Handler) NetworkCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireGate(w) {
		return
	}

	start := time.Now()
	var status netstatus.Status
	if checker, ok := h.gate.(onDemandChecker); ok {
		status = checker.CheckNow(r.Context())
	} else {
		status = h.gate.Status()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
