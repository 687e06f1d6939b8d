// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/neville-gpp/farmily-up-sub000/internal/events"
	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
	"github.com/neville-gpp/farmily-up-sub000/internal/retry"
	"github.com/neville-gpp/farmily-up-sub000/internal/store"
)

const (
	// DefaultMaxRetries bounds replay attempts per item: an item failing
	// retryably is attempted on three passes before it is dropped.
	DefaultMaxRetries = 3

	// DefaultItemTimeout bounds a single operation's execution.
	DefaultItemTimeout = 30 * time.Second
)

// Config controls queue behavior.
type Config struct {
	// MaxRetries is the replay bound per item. Zero or negative selects
	// DefaultMaxRetries.
	MaxRetries int

	// ItemTimeout bounds one operation's execution during a pass. Zero or
	// negative selects DefaultItemTimeout.
	ItemTimeout time.Duration
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.ItemTimeout <= 0 {
		c.ItemTimeout = DefaultItemTimeout
	}
	return c
}

// Operation is the work a queued item performs when the queue drains.
type Operation func(ctx context.Context) error

// Metadata describes a queued operation for journaling, events, and restart
// recovery. Type selects the restore handler registered via RegisterHandler;
// Tags carry whatever arguments the handler needs to rebuild the call.
type Metadata struct {
	Type     string            `json:"type"`
	Category string            `json:"category,omitempty"`
	Note     string            `json:"note,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// item is one queued operation. The closure never survives a restart; the
// journaled descriptor does.
type item struct {
	ID         string
	Meta       Metadata
	EnqueuedAt time.Time
	RetryCount int
	op         Operation
}

// Outcome labels what a pass did with one item.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRequeued Outcome = "requeued"
	OutcomeDropped  Outcome = "dropped"
)

// ItemResult reports the outcome of one processed item.
type ItemResult struct {
	ID         string  `json:"id"`
	Type       string  `json:"type,omitempty"`
	Outcome    Outcome `json:"outcome"`
	RetryCount int     `json:"retry_count"`
	Err        error   `json:"-"`
}

// Status is a point-in-time queue snapshot.
type Status struct {
	Length           int        `json:"queue_length"`
	Processing       bool       `json:"is_processing"`
	OldestEnqueuedAt *time.Time `json:"oldest_item_timestamp,omitempty"`
}

// Counters are the queue's lifetime totals.
type Counters struct {
	Enqueued       uint64 `json:"enqueued"`
	Succeeded      uint64 `json:"succeeded"`
	Retried        uint64 `json:"retried"`
	Dropped        uint64 `json:"dropped"`
	Restored       uint64 `json:"restored"`
	UnknownDropped uint64 `json:"unknown_dropped"`
}

// Queue is the FIFO offline operation queue. All methods are safe for
// concurrent use; Process is additionally re-entrancy guarded, so a
// concurrent drain is a silent no-op.
type Queue struct {
	config Config
	kv     store.KV
	bus    *events.Bus

	mu       sync.Mutex
	items    []*item
	pending  []descriptor
	handlers map[string]Handler

	processing atomic.Bool
	registry   *events.Registry

	enqueued  atomic.Uint64
	succeeded atomic.Uint64
	retried   atomic.Uint64
	dropped   atomic.Uint64
	restored  atomic.Uint64
	unknown   atomic.Uint64
}

// Handler rebuilds the operation for a journaled descriptor after a restart.
type Handler func(ctx context.Context, meta Metadata) error

// New creates a queue backed by kv for journaling. Journaled descriptors
// from a previous run are loaded immediately; call RegisterHandler for every
// operation type and then Restore to re-enqueue them. bus may be nil, in
// which case events reach synchronous listeners only.
func New(cfg Config, kv store.KV, bus *events.Bus) (*Queue, error) {
	if kv == nil {
		return nil, fmt.Errorf("queue: kv store is required")
	}

	q := &Queue{
		config:   cfg.withDefaults(),
		kv:       kv,
		bus:      bus,
		registry: events.NewRegistry(),
		handlers: make(map[string]Handler),
	}

	if err := q.loadJournal(); err != nil {
		logging.Warn().Err(err).Msg("Queue journal load failed, starting empty")
	}

	return q, nil
}

// Enqueue appends an operation to the tail. It never blocks and always
// succeeds; journal write failures are logged, not surfaced, because a
// deferred operation must not be lost to a bookkeeping error.
func (q *Queue) Enqueue(op Operation, meta Metadata) string {
	it := &item{
		ID:         uuid.New().String(),
		Meta:       meta,
		EnqueuedAt: time.Now().UTC(),
		op:         op,
	}

	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()

	q.journalPut(it)
	q.enqueued.Add(1)
	metrics.RecordEnqueue()
	q.updateGauges()

	logging.Debug().
		Str("item", it.ID).
		Str("type", meta.Type).
		Msg("Operation enqueued")

	q.emit(events.NewQueueItem(events.QueueEnqueued, it.ID, meta.Type, 0))
	return it.ID
}

// Process drains the queue front-to-back and returns per-item outcomes.
// The pass attempts at most the number of items present when it started, so
// re-queued or newly enqueued items wait for the next pass. A concurrent
// call while a pass is running returns nil without touching the queue.
// Canceling ctx stops the pass between items; unattempted items stay queued.
func (q *Queue) Process(ctx context.Context) []ItemResult {
	if !q.processing.CompareAndSwap(false, true) {
		return nil
	}
	defer q.processing.Store(false)

	q.mu.Lock()
	n := len(q.items)
	q.mu.Unlock()
	if n == 0 {
		return nil
	}

	start := time.Now()

	ev := events.New(events.QueueProcessing)
	ev.Count = n
	q.emit(ev)

	results := make([]ItemResult, 0, n)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			logging.Warn().
				Int("remaining", n-i).
				Msg("Queue pass canceled, remaining items stay queued")
			break
		}

		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			break
		}
		it := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		results = append(results, q.runItem(ctx, it))
	}

	metrics.RecordQueueDrain(time.Since(start))
	q.updateGauges()
	return results
}

// runItem executes one item and applies the success/requeue/drop policy.
func (q *Queue) runItem(ctx context.Context, it *item) ItemResult {
	err := q.execute(ctx, it)

	if err == nil {
		q.journalRemove(it.ID)
		q.succeeded.Add(1)
		metrics.RecordQueueItem("success")

		logging.Debug().
			Str("item", it.ID).
			Str("type", it.Meta.Type).
			Msg("Queued operation replayed")

		q.emit(events.NewQueueItem(events.QueueSuccess, it.ID, it.Meta.Type, it.RetryCount))
		return ItemResult{ID: it.ID, Type: it.Meta.Type, Outcome: OutcomeSuccess, RetryCount: it.RetryCount}
	}

	it.RetryCount++

	if it.RetryCount < q.config.MaxRetries && retry.IsRetryable(err) {
		q.mu.Lock()
		q.items = append(q.items, it)
		q.mu.Unlock()

		q.journalPut(it)
		q.retried.Add(1)
		metrics.RecordQueueItem("retried")

		logging.Warn().
			Err(err).
			Str("item", it.ID).
			Str("type", it.Meta.Type).
			Int("retry_count", it.RetryCount).
			Msg("Queued operation failed, re-queued")

		ev := events.NewQueueItem(events.QueueRetry, it.ID, it.Meta.Type, it.RetryCount)
		ev.Error = err.Error()
		q.emit(ev)
		return ItemResult{ID: it.ID, Type: it.Meta.Type, Outcome: OutcomeRequeued, RetryCount: it.RetryCount, Err: err}
	}

	q.journalRemove(it.ID)
	q.dropped.Add(1)
	metrics.RecordQueueItem("dropped")

	logging.Error().
		Err(err).
		Str("item", it.ID).
		Str("type", it.Meta.Type).
		Int("retry_count", it.RetryCount).
		Str("category", string(retry.Classify(err))).
		Msg("Queued operation dropped")

	ev := events.NewQueueItem(events.QueueFailed, it.ID, it.Meta.Type, it.RetryCount)
	ev.Error = err.Error()
	q.emit(ev)
	return ItemResult{ID: it.ID, Type: it.Meta.Type, Outcome: OutcomeDropped, RetryCount: it.RetryCount, Err: err}
}

// execute runs the operation under the item timeout with panic recovery.
// A panicking operation reports as a non-retryable failure.
func (q *Queue) execute(ctx context.Context, it *item) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error().
				Interface("panic", rec).
				Str("item", it.ID).
				Msg("Queued operation panicked")
			err = fmt.Errorf("queued operation panicked: %v", rec)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, q.config.ItemTimeout)
	defer cancel()

	return it.op(runCtx)
}

// Clear discards every pending item without executing it and empties the
// journal. Returns the number of items removed.
func (q *Queue) Clear() int {
	q.mu.Lock()
	removed := q.items
	q.items = nil
	q.mu.Unlock()

	for _, it := range removed {
		q.journalRemove(it.ID)
	}

	if len(removed) > 0 {
		logging.Info().Int("count", len(removed)).Msg("Queue cleared")
	}

	ev := events.New(events.QueueCleared)
	ev.Count = len(removed)
	q.emit(ev)

	q.updateGauges()
	return len(removed)
}

// Status reports the current queue snapshot. OldestEnqueuedAt is nil when
// the queue is empty; re-queued items keep their original enqueue time, so
// the head is not necessarily the oldest.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := Status{
		Length:     len(q.items),
		Processing: q.processing.Load(),
	}
	if len(q.items) > 0 {
		oldest := q.items[0].EnqueuedAt
		for _, it := range q.items[1:] {
			if it.EnqueuedAt.Before(oldest) {
				oldest = it.EnqueuedAt
			}
		}
		st.OldestEnqueuedAt = &oldest
	}
	return st
}

// Counters returns lifetime totals.
func (q *Queue) Counters() Counters {
	return Counters{
		Enqueued:       q.enqueued.Load(),
		Succeeded:      q.succeeded.Load(),
		Retried:        q.retried.Load(),
		Dropped:        q.dropped.Load(),
		Restored:       q.restored.Load(),
		UnknownDropped: q.unknown.Load(),
	}
}

// Subscribe registers a synchronous listener for queue events. Listeners
// fire in registration order; a panicking listener never aborts processing.
func (q *Queue) Subscribe(fn func(events.Event)) (unsubscribe func()) {
	return q.registry.Subscribe(fn)
}

// emit dispatches to synchronous listeners and, when a bus is attached,
// publishes for channel subscribers.
func (q *Queue) emit(ev events.Event) {
	q.registry.Notify(ev)
	if q.bus == nil {
		return
	}
	if err := q.bus.Publish(ev); err != nil {
		logging.Warn().
			Err(err).
			Str("event", string(ev.Name)).
			Msg("Queue event publish failed")
	}
}

// updateGauges refreshes the depth and oldest-age gauges.
func (q *Queue) updateGauges() {
	st := q.Status()
	oldestAge := float64(0)
	if st.OldestEnqueuedAt != nil {
		oldestAge = time.Since(*st.OldestEnqueuedAt).Seconds()
	}
	metrics.UpdateQueueGauges(st.Length, oldestAge)
}
