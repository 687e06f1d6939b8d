// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
	"github.com/neville-gpp/farmily-up-sub000/internal/store"
)

// journalPrefix namespaces queue descriptors in the KV store.
const journalPrefix = "queue:op:"

// journalKey builds the KV key for one descriptor.
func journalKey(id string) string {
	return journalPrefix + id
}

// descriptor is the journaled form of an item. The operation closure itself
// is not serializable; a restart rebuilds it from the registered handler for
// Meta.Type.
type descriptor struct {
	ID         string    `json:"id"`
	Meta       Metadata  `json:"meta"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	RetryCount int       `json:"retry_count"`
}

// journalPut persists an item's descriptor. Failures are logged, not
// surfaced: the in-memory queue stays authoritative for this run.
func (q *Queue) journalPut(it *item) {
	desc := descriptor{
		ID:         it.ID,
		Meta:       it.Meta,
		EnqueuedAt: it.EnqueuedAt,
		RetryCount: it.RetryCount,
	}
	if err := store.SetJSON(q.kv, journalKey(it.ID), desc); err != nil {
		logging.Warn().
			Err(err).
			Str("item", it.ID).
			Msg("Queue journal write failed")
	}
}

// journalRemove deletes an item's descriptor.
func (q *Queue) journalRemove(id string) {
	if err := q.kv.Delete(journalKey(id)); err != nil {
		logging.Warn().
			Err(err).
			Str("item", id).
			Msg("Queue journal delete failed")
	}
}

// loadJournal reads persisted descriptors into the pending-restore set,
// ordered by enqueue time. Undecodable entries are deleted after the scan so
// they cannot resurface on the next restart.
func (q *Queue) loadJournal() error {
	var descs []descriptor
	var badKeys []string

	err := q.kv.Scan(journalPrefix, func(key string, value []byte) error {
		var d descriptor
		if err := json.Unmarshal(value, &d); err != nil {
			logging.Warn().
				Err(err).
				Str("key", key).
				Msg("Dropping undecodable queue journal entry")
			badKeys = append(badKeys, key)
			return nil
		}
		descs = append(descs, d)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan queue journal: %w", err)
	}

	for _, key := range badKeys {
		if derr := q.kv.Delete(key); derr != nil {
			logging.Warn().Err(derr).Str("key", key).Msg("Queue journal cleanup failed")
		}
	}

	// Keys are UUIDs, so scan order is meaningless. FIFO order comes from
	// the recorded enqueue time.
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].EnqueuedAt.Before(descs[j].EnqueuedAt)
	})

	q.mu.Lock()
	q.pending = descs
	q.mu.Unlock()

	if len(descs) > 0 {
		logging.Info().Int("count", len(descs)).Msg("Queue journal loaded")
	}
	return nil
}

// RegisterHandler binds an operation type to the function that replays it
// after a restart. Register every type the application enqueues before
// calling Restore.
func (q *Queue) RegisterHandler(opType string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[opType] = h
}

// Restore re-enqueues journaled descriptors whose type has a registered
// handler, preserving their ids, enqueue times, and retry counts.
// Descriptors with no handler are dropped with a warning and removed from
// the journal. Returns the restored and dropped counts; a second call is a
// no-op because the pending set is consumed.
func (q *Queue) Restore() (restoredCount, droppedCount int) {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	handlers := make(map[string]Handler, len(q.handlers))
	for k, v := range q.handlers {
		handlers[k] = v
	}
	q.mu.Unlock()

	for _, d := range pending {
		h, ok := handlers[d.Meta.Type]
		if !ok {
			logging.Warn().
				Str("item", d.ID).
				Str("type", d.Meta.Type).
				Msg("Dropping journaled operation with no registered handler")
			q.journalRemove(d.ID)
			q.unknown.Add(1)
			metrics.RecordQueueItem("unknown_type")
			droppedCount++
			continue
		}

		meta := d.Meta
		it := &item{
			ID:         d.ID,
			Meta:       d.Meta,
			EnqueuedAt: d.EnqueuedAt,
			RetryCount: d.RetryCount,
			op: func(ctx context.Context) error {
				return h(ctx, meta)
			},
		}

		q.mu.Lock()
		q.items = append(q.items, it)
		q.mu.Unlock()

		q.restored.Add(1)
		restoredCount++
	}

	if restoredCount > 0 || droppedCount > 0 {
		logging.Info().
			Int("restored", restoredCount).
			Int("dropped", droppedCount).
			Msg("Queue journal restored")
	}

	q.updateGauges()
	return restoredCount, droppedCount
}
