// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package events defines the engine's event model and the two fan-out
// mechanisms built on it.
//
// The Registry dispatches synchronously to in-process listeners in
// registration order; the offline queue and the sync engine expose their
// Subscribe methods through it. The Bus carries the same events across
// goroutine boundaries on a watermill gochannel Pub/Sub, feeding the
// WebSocket hub and anything else that prefers a channel to a callback.
//
// Listener panics never propagate: the Registry recovers per listener, and
// Bus subscribers receive decoded copies on their own channel.
package events
