// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

/*
Package websocket provides real-time push of engine events to dashboard clients.

This package implements WebSocket support for streaming sync lifecycle events,
queue progress, and connectivity transitions to connected frontends. It uses
the gorilla/websocket library with a hub-client architecture for efficient
message broadcasting, plus a bridge that subscribes to the engine event bus.

Key Components:

  - Hub: Central message broker that manages client connections and broadcasts
  - Client: Represents a single WebSocket connection with read/write goroutines
  - BusSubscriber: Forwards engine bus events to the hub
  - Message: Typed message structure for different event types

Architecture:

The package implements a hub-and-spoke pattern fed by the event bus:

	┌──────────┐     ┌──────────┐
	│ EventBus │ ──▶ │   Hub    │ ← Broadcasts to all clients
	└──────────┘     └────┬─────┘
	                      │
	           ┌──────────┼─────────┐
	           │          │         │
	        Client1    Client2   Client3

Each client has two goroutines:
  - readPump: Reads from WebSocket, handles pings
  - writePump: Writes to WebSocket, sends pongs and keepalive pings

Message Types:

Engine events keep their bus names as message types:

  - sync_started, sync_completed, sync_error: sync pass lifecycle
  - queue_enqueued, queue_processing, queue_success, queue_retry,
    queue_failed, queue_cleared: offline queue progress
  - network_changed: connectivity transitions

Plus connection-level types:

  - ping / pong: client keepalive
  - status_update: engine status snapshot pushed on connect

Usage Example - Server:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	bridge := websocket.NewBusSubscriber(hub, bus)
	bridge.Start(ctx)

	// WebSocket upgrade endpoint (see internal/api)
	http.HandleFunc("/api/v1/ws", func(w http.ResponseWriter, r *http.Request) {
	    serveWS(hub, w, r)
	})

Usage Example - Client (JavaScript):

	const ws = new WebSocket('ws://localhost:8487/api/v1/ws');

	ws.onmessage = (event) => {
	    const msg = JSON.parse(event.data);

	    if (msg.type === 'sync_completed') {
	        refreshData(); // Reload lists from local cache
	    }

	    if (msg.type === 'network_changed') {
	        setOfflineBanner(!msg.data.online);
	    }
	};

Connection Lifecycle:

1. Client connects via HTTP upgrade
2. Hub registers client
3. Client starts read/write goroutines
4. Hub broadcasts messages to all clients
5. Client disconnects (network error or explicit close)
6. Hub unregisters client and cleans up

Thread Safety:

The package is fully thread-safe:
  - Hub uses mutex for client map access
  - Channels coordinate goroutine communication
  - Each client has separate read/write goroutines
  - No shared mutable state between clients

Error Handling:

The package handles:
  - Read errors: Closes connection gracefully
  - Write errors: Removes client from hub
  - Slow consumers: Full send buffers disconnect the client
  - Ping/pong timeout: Detects dead connections (60s timeout)

Configuration:

WebSocket settings:
  - writeWait: 10 seconds (time allowed to write message)
  - pongWait: 60 seconds (time allowed to read pong)
  - pingPeriod: 54 seconds (ping interval, must be < pongWait)
  - maxMessageSize: 64 KB (engine events are small)

See Also:

  - github.com/gorilla/websocket: Underlying WebSocket library
  - internal/api: WebSocket endpoint handler
  - internal/events: Event bus the bridge subscribes to
*/
package websocket
