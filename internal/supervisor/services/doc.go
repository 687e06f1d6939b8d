// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package services adapts the daemon's components to suture.Service.
//
// Each wrapper translates one lifecycle shape into suture's blocking
// Serve(ctx) pattern:
//
//   - HTTPServerService: http.Server's ListenAndServe/Shutdown pair
//   - MonitorService: the connectivity monitor's Start/Stop pair
//   - HubService: the WebSocket hub's RunWithContext
//   - BridgeService: the bus-to-hub event bridge's Start/Stop pair
//
// The sync engine needs no wrapper; it implements Serve and String
// itself.
//
// All wrappers depend on small local interfaces rather than concrete
// types, so tests substitute mocks without touching the real
// components.
package services
