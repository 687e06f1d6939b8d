// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package sync

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/events"
	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/queue"
	"github.com/neville-gpp/farmily-up-sub000/internal/store"
)

// SnapshotInfo describes one cached entity snapshot.
type SnapshotInfo struct {
	Records int `json:"records"`
	Bytes   int `json:"bytes"`
}

// SyncStats is a point-in-time view of the engine for status surfaces.
type SyncStats struct {
	// LastSync is the checkpoint of the last completed pass; nil
	// before the first sync.
	LastSync *time.Time `json:"last_sync,omitempty"`

	// Pending is the current offline queue depth.
	Pending int `json:"pending_operations"`

	// Failed counts operations the queue dropped permanently.
	Failed uint64 `json:"failed_operations"`

	// Conflicts counts conflicts detected across all passes.
	Conflicts uint64 `json:"conflict_operations"`

	// Completed counts finished full sync passes.
	Completed uint64 `json:"completed_syncs"`

	// SkippedProfile counts profile pulls discarded as stale.
	SkippedProfile uint64 `json:"skipped_profile_pulls"`

	AutoSync bool `json:"auto_sync_enabled"`
	Online   bool `json:"is_online"`
	Periodic bool `json:"periodic_sync_running"`

	// Syncing reports a full sync pass in flight right now.
	Syncing bool `json:"sync_in_progress"`

	// Snapshots describes the cached entity snapshots in the store.
	Snapshots map[models.EntityKind]SnapshotInfo `json:"snapshots"`

	DeviceID string `json:"device_id"`
}

// Stats assembles the current engine statistics.
func (e *Engine) Stats() SyncStats {
	queueStatus := e.queue.Status()

	stats := SyncStats{
		Pending:        queueStatus.Length,
		Failed:         e.queue.Counters().Dropped,
		Conflicts:      e.conflicts.Load(),
		Completed:      e.completed.Load(),
		SkippedProfile: e.skippedProfile.Load(),
		AutoSync:       e.autoSync.Load(),
		Online:         e.gate.IsOnline(),
		Periodic:       e.periodicRunning(),
		Syncing:        e.syncing.Load(),
		Snapshots:      e.snapshotStats(),
		DeviceID:       e.deviceID,
	}
	if checkpoint := e.checkpointTime(); !checkpoint.IsZero() {
		stats.LastSync = &checkpoint
	}
	return stats
}

// snapshotStats sizes the cached snapshots without decoding records.
func (e *Engine) snapshotStats() map[models.EntityKind]SnapshotInfo {
	snapshots := make(map[models.EntityKind]SnapshotInfo)
	for _, kind := range models.AllEntityKinds() {
		data, err := e.kv.Get(snapshotKey(kind))
		if err != nil {
			continue
		}
		snapshots[kind] = SnapshotInfo{Records: countRecords(data), Bytes: len(data)}
	}
	return snapshots
}

// countRecords counts entries in a stored snapshot. Collections are
// stored as arrays; the profile is a single object.
func countRecords(data []byte) int {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err == nil {
		return len(records)
	}
	return 1
}

// ResetSyncState clears the checkpoint, the cached snapshots, the
// offline queue, and the engine's counters, forcing the next pass to
// pull everything from scratch. The device identity survives a reset.
func (e *Engine) ResetSyncState() error {
	if err := e.kv.Delete(store.KeyLastSync); err != nil {
		return fmt.Errorf("clear sync checkpoint: %w", err)
	}
	for _, kind := range models.AllEntityKinds() {
		if err := e.kv.Delete(snapshotKey(kind)); err != nil {
			return fmt.Errorf("clear %s snapshot: %w", kind, err)
		}
	}

	discarded := e.queue.Clear()

	e.mu.Lock()
	e.checkpoint = time.Time{}
	e.mu.Unlock()

	e.completed.Store(0)
	e.conflicts.Store(0)
	e.skippedProfile.Store(0)

	e.setStatusMarker(statusIdle)

	logging.Info().
		Int("discarded_operations", discarded).
		Msg("Sync state reset")
	return nil
}

// Enqueue hands an operation to the offline queue. It exists so
// callers hold a single engine handle instead of reaching into the
// queue directly.
func (e *Engine) Enqueue(op queue.Operation, meta queue.Metadata) string {
	return e.queue.Enqueue(op, meta)
}

// ForceSyncNow runs a full sync for the engine's bound user. It is
// PerformFullSync under another name: callers use it to record intent
// to bypass any UI-level debounce.
func (e *Engine) ForceSyncNow(ctx context.Context) *FullSyncResult {
	return e.PerformFullSync(ctx, e.config.UserID)
}

// DeviceID returns this installation's stable identifier.
func (e *Engine) DeviceID() string {
	return e.deviceID
}

// Snapshot returns the raw cached snapshot for kind. Collections are
// JSON arrays; the profile is a single object. Returns
// store.ErrKeyNotFound before the kind's first successful pull.
func (e *Engine) Snapshot(kind models.EntityKind) ([]byte, error) {
	return e.kv.Get(snapshotKey(kind))
}

// Subscribe registers fn for engine and queue events. Listeners run
// synchronously in registration order; a panicking listener is logged
// and skipped. The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(events.Event)) (unsubscribe func()) {
	return e.registry.Subscribe(fn)
}
