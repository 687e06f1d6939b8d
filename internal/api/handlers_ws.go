// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"net/http"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	ws "github.com/neville-gpp/farmily-up-sub000/internal/websocket"
)

// WebSocket upgrades the connection and streams engine events to the
// client. The first frame is a status_update carrying the current sync
// statistics, so a dashboard renders real state before the first event
// arrives.
//
// Method: GET
// Path: /api/v1/ws
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()

	if h.engine != nil {
		client.Send(ws.Message{
			Type: ws.MessageTypeStatusUpdate,
			Data: h.engine.Stats(),
		})
	}
}
