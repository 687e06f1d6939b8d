// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package queue implements the offline operation queue: work that could not
// complete while the device was offline (or that failed transiently) is
// absorbed here and replayed when the sync engine drains the queue.
//
// Replay is FIFO with bounded re-queueing. A failed item has its retry count
// incremented; while the count stays under the bound and the error remains
// retryable the item moves to the back of the queue, otherwise it is dropped
// permanently. Re-queued items are not attempted twice within one pass, so a
// single drain performs at most one attempt per item and a permanently
// broken operation cannot starve the queue.
//
// Operations are closures and cannot be serialized, so restarts are handled
// through descriptors: every enqueue journals {id, metadata, enqueued_at,
// retry_count} to the KV store. After a restart, New reloads the journal and
// Restore re-binds each descriptor to the handler registered for its
// metadata type; descriptors with no registered handler are dropped with a
// warning.
//
//	q, _ := queue.New(queue.Config{}, kv, bus)
//	q.RegisterHandler("create_event", replayCreateEvent)
//	restored, dropped := q.Restore()
package queue
