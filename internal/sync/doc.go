// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package sync orchestrates full synchronization passes between the
// local cache and the Farmily Up backend.
//
// The Engine owns the sync checkpoint and the cached entity snapshots;
// nothing else writes them. A full sync pass runs in a fixed order:
//
//  1. Refuse while offline or while another pass is running.
//  2. Drain the offline operation queue.
//  3. Pull deltas for children, calendar events, and family activities
//     since the checkpoint. Each pull is isolated, so one failing kind
//     never aborts the others. Non-empty results are conflict-checked
//     against the previous snapshot and then replace it.
//  4. Pull the user profile, applied only when it is strictly newer
//     than the checkpoint.
//  5. Advance the checkpoint to now, unconditionally and monotonically.
//
// The checkpoint moves even when entity pulls fail: deltas are defined
// by server-side update times, so a failed kind retries from "now" on
// the next pass instead of re-pulling the same window forever.
//
// Conflict detection (conflict.go) is pure and heuristic. A version
// mismatch between the cached and server copy of a record is always a
// conflict; without versions, near-simultaneous edits with differing
// content are flagged, while edits far apart in time are assumed
// sequential and the newer copy wins silently.
//
// Besides explicit PerformFullSync and ForceSyncNow calls, the Engine
// runs two background triggers under Serve: a periodic timer that
// drains the queue while online, and a connectivity listener that
// launches one full sync when the device comes back online with
// auto-sync enabled.
//
// Construction:
//
//	engine, err := sync.NewEngine(cfg, sync.Deps{
//		Gate:    monitor,
//		KV:      kv,
//		Sources: sources,
//		Queue:   q,
//		Bus:     bus,
//	})
package sync
