// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

/*
Package main is the entry point for the Farmily Up sync daemon.

syncd keeps one device's copy of a family's data (children, calendar
events, family activities, and the user profile) in step with the
backend while tolerating long stretches of no connectivity. Operations
performed while offline are journaled and replayed when the network
returns; remote pulls run with bounded retries and conflict detection.

# Application Architecture

The daemon runs every long-lived component under a Suture v4
supervision tree:

	RootSupervisor ("farmily-syncd")
	├── NetworkSupervisor ("network-layer")
	│   └── Connectivity Monitor (HTTP probe loop)
	├── SyncSupervisor ("sync-layer")
	│   ├── Sync Engine (periodic drain + reconnect sync)
	│   ├── WebSocket Hub (dashboard broadcasts)
	│   └── Event Bridge (engine bus → WebSocket)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (status and control API)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and an optional
    YAML config file
 2. Logging: zerolog with JSON/console output modes and optional
    file rotation
 3. Store: BadgerDB key-value store for checkpoints, snapshots, and
    the queue journal
 4. Event Bus: in-process Watermill gochannel Pub/Sub
 5. Offline Queue: journal recovery for operations deferred before the
    last shutdown
 6. Connectivity Monitor: periodic reachability probe against the
    backend
 7. Remote Sources: HTTP entity sources, optionally wrapped in circuit
    breakers
 8. Sync Engine: orchestrator binding gate, queue, sources, and store
 9. WebSocket Hub and Event Bridge: real-time sync progress for local
    dashboards
 10. HTTP Server: Chi router with CORS, rate limiting, and Prometheus
    metrics

# Configuration

All settings come from environment variables, with an optional
config.yaml for persistent overrides. The required ones:

	SYNC_USER_ID     user whose family data this device syncs
	REMOTE_BASE_URL  backend base URL, e.g. https://api.farmily-up.example

Commonly tuned:

	STORE_PATH       Badger data directory (default /data/farmily-sync)
	HTTP_PORT        status API port (default 8387)
	SYNC_INTERVAL    periodic queue drain cadence (default 5m)
	PROBE_INTERVAL   connectivity probe cadence (default 30s)
	LOG_LEVEL        trace, debug, info, warn, error (default info)

See the config package for the complete list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervision tree then
shuts services down in reverse order: the HTTP server drains in-flight
requests, the sync engine finishes or abandons its current pass, and
the store closes last so every journal write lands.

# Example Usage

	SYNC_USER_ID=user-123 \
	REMOTE_BASE_URL=https://api.farmily-up.example \
	STORE_PATH=/var/lib/farmily-sync \
	./syncd
*/
package main
