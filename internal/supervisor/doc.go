// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package supervisor builds the daemon's suture/v4 supervision tree.
//
// # Key Components
//
//   - Tree: root supervisor with network, sync, and api child layers
//   - TreeConfig: failure threshold, decay, backoff, and shutdown
//     timeout knobs with suture's own defaults
//
// # Layering
//
// Services are grouped so that a restart storm in one concern cannot
// take down the others:
//
//	farmily-syncd
//	├── network-layer   connectivity monitor
//	├── sync-layer      sync engine, WebSocket hub, event bridge
//	└── api-layer       HTTP server
//
// The sync engine implements suture.Service directly (Serve/String);
// components with Start/Stop or RunWithContext lifecycles are adapted
// by the wrappers in the services subpackage.
//
// # Usage Example
//
//	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
//	tree.AddNetworkService(services.NewMonitorService(monitor))
//	tree.AddSyncService(engine)
//	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
//	err := tree.Serve(ctx)
//
// # See Also
//
//   - internal/supervisor/services: lifecycle adapters
//   - internal/logging: the zerolog-backed slog handler the tree's
//     event hook logs through
package supervisor
