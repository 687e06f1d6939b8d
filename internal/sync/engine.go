// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/events"
	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
	"github.com/neville-gpp/farmily-up-sub000/internal/queue"
	"github.com/neville-gpp/farmily-up-sub000/internal/store"
)

// DefaultPeriodicInterval is how often the periodic drain runs when no
// interval is configured.
const DefaultPeriodicInterval = 5 * time.Minute

// Sync pass refusal reasons.
const (
	ReasonOffline    = "offline"
	ReasonInProgress = "sync_in_progress"
)

// Sync phase markers persisted under store.KeySyncStatus.
const (
	statusIdle    = "idle"
	statusSyncing = "syncing"
)

// snapshotPrefix scopes the cached entity snapshots in the store.
const snapshotPrefix = "snapshot_"

// snapshotKey returns the store key for one kind's cached snapshot.
func snapshotKey(kind models.EntityKind) string {
	return snapshotPrefix + kind.String()
}

// Config holds the engine's settings.
type Config struct {
	// UserID is the signed-in user all background syncs run for.
	UserID string

	// AutoSync enables the background triggers: the periodic queue
	// drain and the full sync on reconnect.
	AutoSync bool

	// PeriodicInterval is the delay between periodic queue drains.
	PeriodicInterval time.Duration
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.PeriodicInterval <= 0 {
		c.PeriodicInterval = DefaultPeriodicInterval
	}
	return c
}

// Deps are the engine's collaborators. Gate, KV, Sources, and Queue
// are required; Bus is optional.
type Deps struct {
	Gate    netstatus.Gate
	KV      store.KV
	Sources Sources
	Queue   *queue.Queue
	Bus     *events.Bus
}

// FullSyncResult reports one full sync pass. Success stays true even
// when individual entity pulls failed; only a refused pass or a
// recovered panic produces Success false, with Reason or Error set.
type FullSyncResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`

	Queue    QueueSummary                      `json:"queue"`
	Entities map[models.EntityKind]*EntityPull `json:"entities,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// QueueSummary aggregates the queue drain inside a sync pass.
type QueueSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Requeued  int `json:"requeued"`
	Dropped   int `json:"dropped"`
}

// EntityPull reports one entity kind's pull inside a sync pass.
type EntityPull struct {
	Pulled    int    `json:"pulled"`
	Conflicts int    `json:"conflicts"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// Engine runs full sync passes and the background sync triggers. It is
// the sole writer of the sync checkpoint and the entity snapshots.
type Engine struct {
	config  Config
	gate    netstatus.Gate
	kv      store.KV
	sources Sources
	queue   *queue.Queue
	bus     *events.Bus

	registry *events.Registry
	deviceID string

	syncing  atomic.Bool
	autoSync atomic.Bool

	mu         sync.Mutex
	checkpoint time.Time

	periodicMu     sync.Mutex
	periodicCancel context.CancelFunc

	wg sync.WaitGroup

	completed      atomic.Uint64
	conflicts      atomic.Uint64
	skippedProfile atomic.Uint64
}

// NewEngine builds the engine, loading or generating the device
// identity and the persisted checkpoint.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if deps.Gate == nil {
		return nil, fmt.Errorf("sync engine requires a connectivity gate")
	}
	if deps.KV == nil {
		return nil, fmt.Errorf("sync engine requires a key-value store")
	}
	if deps.Queue == nil {
		return nil, fmt.Errorf("sync engine requires an offline queue")
	}
	if err := deps.Sources.validate(); err != nil {
		return nil, err
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("sync engine requires a bound user id")
	}
	cfg = cfg.withDefaults()

	deviceID, err := store.EnsureDeviceID(deps.KV)
	if err != nil {
		return nil, fmt.Errorf("ensure device id: %w", err)
	}

	e := &Engine{
		config:   cfg,
		gate:     deps.Gate,
		kv:       deps.KV,
		sources:  deps.Sources,
		queue:    deps.Queue,
		bus:      deps.Bus,
		registry: events.NewRegistry(),
		deviceID: deviceID,
	}
	e.autoSync.Store(cfg.AutoSync)
	e.checkpoint = loadCheckpoint(deps.KV)

	// A pass cannot survive a restart; reset a stale marker.
	e.setStatusMarker(statusIdle)

	// Queue events surface through the engine's listeners too, so one
	// subscription observes the whole sync lifecycle.
	deps.Queue.Subscribe(e.registry.Notify)

	logging.Info().
		Str("device_id", deviceID).
		Bool("auto_sync", cfg.AutoSync).
		Time("checkpoint", e.checkpoint).
		Msg("Sync engine ready")

	return e, nil
}

// loadCheckpoint reads the persisted checkpoint. A missing key is the
// first run; an unreadable value is treated the same so one corrupt
// write cannot wedge sync forever.
func loadCheckpoint(kv store.KV) time.Time {
	t, err := store.GetTime(kv, store.KeyLastSync)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			logging.Warn().Err(err).Msg("Stored sync checkpoint unreadable, starting from zero")
		}
		return time.Time{}
	}
	return t
}

// PerformFullSync runs one full sync pass for userID.
//
// The pass is refused without side effects while offline or while
// another pass is running; otherwise it drains the offline queue,
// pulls every entity kind, advances the checkpoint, and reports the
// aggregate. Overlapping calls are never interleaved.
func (e *Engine) PerformFullSync(ctx context.Context, userID string) *FullSyncResult {
	result := &FullSyncResult{StartedAt: time.Now().UTC()}

	if !e.gate.IsOnline() {
		result.Reason = ReasonOffline
		result.FinishedAt = time.Now().UTC()
		logging.Debug().Str("user_id", userID).Msg("Full sync refused while offline")
		return result
	}

	if !e.syncing.CompareAndSwap(false, true) {
		result.Reason = ReasonInProgress
		result.FinishedAt = time.Now().UTC()
		logging.Debug().Str("user_id", userID).Msg("Full sync already running")
		return result
	}
	defer e.syncing.Store(false)

	e.runFullSync(ctx, userID, result)
	return result
}

// runFullSync executes the pass body while the caller holds the
// single-flight flag. A panic anywhere in the pass is recovered here,
// so every emitted sync_started is paired with exactly one
// sync_completed or sync_error.
func (e *Engine) runFullSync(ctx context.Context, userID string, result *FullSyncResult) {
	start := time.Now()
	metrics.TrackSyncInFlight(true)
	defer metrics.TrackSyncInFlight(false)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logging.Error().
			Str("user_id", userID).
			Interface("panic", r).
			Msg("Full sync panicked")
		result.Success = false
		result.Error = fmt.Sprintf("sync panicked: %v", r)
		result.FinishedAt = time.Now().UTC()
		metrics.RecordFullSync(time.Since(start), "panic")
		e.emit(events.NewSyncError(result.Error))
	}()

	e.setStatusMarker(statusSyncing)
	defer e.setStatusMarker(statusIdle)

	logging.Info().Str("user_id", userID).Msg("Starting full sync")
	e.emit(events.NewSyncStarted("full"))

	// Queued offline operations replay before the pulls so local
	// changes reach the backend first.
	result.Queue = summarizeQueue(e.queue.Process(ctx))

	// One checkpoint capture serves the whole pass: the delta window
	// for the collection pulls and the freshness gate for the profile.
	checkpoint := e.checkpointTime()
	var since *time.Time
	if !checkpoint.IsZero() {
		cp := checkpoint
		since = &cp
	}

	entities := make(map[models.EntityKind]*EntityPull, 4)
	entities[models.KindChildren] = pullCollection(ctx, e, models.KindChildren,
		func(ctx context.Context) ([]models.Child, error) {
			return e.sources.Children.FetchChildren(ctx, userID, since)
		})
	entities[models.KindCalendarEvents] = pullCollection(ctx, e, models.KindCalendarEvents,
		func(ctx context.Context) ([]models.CalendarEvent, error) {
			return e.sources.Calendar.FetchCalendarEvents(ctx, userID, since)
		})
	entities[models.KindFamilyActivities] = pullCollection(ctx, e, models.KindFamilyActivities,
		func(ctx context.Context) ([]models.FamilyActivity, error) {
			return e.sources.Activities.FetchFamilyActivities(ctx, userID, since)
		})
	entities[models.KindUserProfile] = e.pullProfile(ctx, userID, checkpoint)
	result.Entities = entities

	// The checkpoint advances even when pulls failed: deltas are
	// defined by server-side update times, so a failed kind retries
	// from now instead of re-pulling the same window forever.
	e.advanceCheckpoint(time.Now().UTC())

	result.Success = true
	result.FinishedAt = time.Now().UTC()
	e.completed.Add(1)

	var pullErrors int
	for _, pull := range result.Entities {
		if pull.Error != "" {
			pullErrors++
		}
	}
	label := "success"
	if pullErrors > 0 {
		label = "partial"
	}
	metrics.RecordFullSync(time.Since(start), label)

	logging.Info().
		Str("user_id", userID).
		Int("queue_processed", result.Queue.Processed).
		Int("entity_errors", pullErrors).
		Dur("took", time.Since(start)).
		Msg("Full sync complete")

	completed := events.New(events.SyncCompleted)
	if data, err := json.Marshal(result); err == nil {
		completed.Result = data
	}
	e.emit(completed)
}

// pullCollection fetches one collection kind, flags conflicts against
// the cached snapshot, and replaces the snapshot when the pull
// returned records. An empty delta leaves the snapshot untouched.
func pullCollection[T models.Syncable](ctx context.Context, e *Engine, kind models.EntityKind, fetch func(context.Context) ([]T, error)) *EntityPull {
	pull := &EntityPull{}

	records, err := fetch(ctx)
	if err != nil {
		pull.Error = err.Error()
		metrics.RecordEntityPull(kind.String(), 0, err)
		logging.Warn().
			Str("entity", kind.String()).
			Err(err).
			Msg("Entity pull failed")
		return pull
	}

	pull.Pulled = len(records)
	metrics.RecordEntityPull(kind.String(), len(records), nil)
	if len(records) == 0 {
		return pull
	}

	var cached []T
	if err := store.GetJSON(e.kv, snapshotKey(kind), &cached); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		logging.Warn().
			Str("entity", kind.String()).
			Err(err).
			Msg("Cached snapshot unreadable, skipping conflict check")
	}

	conflicts := DetectConflicts(kind, asSyncable(cached), asSyncable(records))
	pull.Conflicts = len(conflicts)
	e.recordConflicts(conflicts)

	if err := store.SetJSON(e.kv, snapshotKey(kind), records); err != nil {
		logging.Warn().
			Str("entity", kind.String()).
			Err(err).
			Msg("Failed to persist entity snapshot")
	}
	return pull
}

// asSyncable widens a concrete record slice for the conflict detector.
func asSyncable[T models.Syncable](records []T) []models.Syncable {
	out := make([]models.Syncable, len(records))
	for i, rec := range records {
		out[i] = rec
	}
	return out
}

// pullProfile fetches the user profile and applies it only when the
// server copy is strictly newer than the checkpoint captured at the
// start of the pass, so a stale read can never clobber fresher local
// state.
func (e *Engine) pullProfile(ctx context.Context, userID string, checkpoint time.Time) *EntityPull {
	kind := models.KindUserProfile
	pull := &EntityPull{}

	profile, err := e.sources.Profile.FetchProfile(ctx, userID)
	if err != nil {
		pull.Error = err.Error()
		metrics.RecordEntityPull(kind.String(), 0, err)
		logging.Warn().
			Str("entity", kind.String()).
			Err(err).
			Msg("Entity pull failed")
		return pull
	}
	if profile == nil {
		// Backend has no profile for this user yet.
		metrics.RecordEntityPull(kind.String(), 0, nil)
		return pull
	}
	metrics.RecordEntityPull(kind.String(), 1, nil)

	if !profile.UpdatedAt.After(checkpoint) {
		pull.Skipped = 1
		e.skippedProfile.Add(1)
		logging.Debug().
			Str("user_id", userID).
			Time("updated_at", profile.UpdatedAt).
			Msg("Profile unchanged since last sync")
		return pull
	}
	pull.Pulled = 1

	var cached models.UserProfile
	if err := store.GetJSON(e.kv, snapshotKey(kind), &cached); err == nil {
		conflicts := DetectConflicts(kind, []models.Syncable{cached}, []models.Syncable{*profile})
		pull.Conflicts = len(conflicts)
		e.recordConflicts(conflicts)
	}

	if err := store.SetJSON(e.kv, snapshotKey(kind), profile); err != nil {
		logging.Warn().
			Str("entity", kind.String()).
			Err(err).
			Msg("Failed to persist entity snapshot")
	}
	return pull
}

// recordConflicts logs and counts detected conflicts. Detection is
// advisory; the server copies are applied regardless.
func (e *Engine) recordConflicts(conflicts []Conflict) {
	for _, c := range conflicts {
		e.conflicts.Add(1)
		metrics.RecordConflict(c.Kind.String(), string(c.Rule))
		logging.Warn().
			Str("entity", c.Kind.String()).
			Str("record_id", c.RecordID).
			Str("rule", string(c.Rule)).
			Msg("Sync conflict detected")
	}
}

// summarizeQueue aggregates one queue pass into the sync result.
func summarizeQueue(results []queue.ItemResult) QueueSummary {
	summary := QueueSummary{Processed: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case queue.OutcomeSuccess:
			summary.Succeeded++
		case queue.OutcomeRequeued:
			summary.Requeued++
		case queue.OutcomeDropped:
			summary.Dropped++
		}
	}
	return summary
}

// checkpointTime returns the in-memory checkpoint.
func (e *Engine) checkpointTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkpoint
}

// advanceCheckpoint moves the checkpoint forward and persists it in
// RFC3339Nano. A timestamp behind the current checkpoint is discarded;
// the checkpoint never moves backward.
func (e *Engine) advanceCheckpoint(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now.Before(e.checkpoint) {
		logging.Warn().
			Time("current", e.checkpoint).
			Time("proposed", now).
			Msg("Refusing to move sync checkpoint backward")
		return
	}
	e.checkpoint = now
	if err := store.SetTime(e.kv, store.KeyLastSync, now); err != nil {
		logging.Warn().Err(err).Msg("Failed to persist sync checkpoint")
	}
}

// setStatusMarker records the coarse sync phase for external
// inspection. The in-process syncing flag stays authoritative, so
// marker write failures are only logged.
func (e *Engine) setStatusMarker(status string) {
	if err := store.SetString(e.kv, store.KeySyncStatus, status); err != nil {
		logging.Warn().Err(err).Msg("Failed to write sync status marker")
	}
}

// emit notifies registered listeners and, when a bus is wired,
// publishes the event for channel consumers.
func (e *Engine) emit(ev events.Event) {
	e.registry.Notify(ev)
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ev); err != nil {
		logging.Warn().
			Str("event", string(ev.Name)).
			Err(err).
			Msg("Failed to publish sync event")
	}
}
