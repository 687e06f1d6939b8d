// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package store provides the durable key-value store backing the sync
// engine: checkpoints, device identity, and the offline queue journal.
//
// Two implementations of the KV interface are provided:
//
//   - Badger: persistent storage on BadgerDB (ACID, crash-safe). This is
//     what production deployments use so that queued operations and the
//     sync checkpoint survive process restarts and power loss.
//   - Memory: a map-backed store for tests and ephemeral deployments.
//
// The store holds a small number of well-known keys (see keys.go) plus
// prefixed record sets owned by other packages, such as the queue
// journal. Values are opaque byte slices; typed helpers (GetJSON,
// SetJSON, GetTime, SetTime) cover the common encodings.
//
// # Usage
//
//	kv, err := store.Open(store.Options{Path: "/data/farmily-sync"})
//	if err != nil {
//		return err
//	}
//	defer kv.Close()
//
//	deviceID, err := store.EnsureDeviceID(kv)
//
// # Thread Safety
//
// All implementations are safe for concurrent use. Operations on a
// closed store return ErrStoreClosed.
package store
