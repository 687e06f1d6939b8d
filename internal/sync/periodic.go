// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package sync

import (
	"context"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
)

// StartPeriodicSync arms the recurring queue drain. Calling it again
// replaces the previous timer; an interval of zero or less falls back
// to the configured one.
func (e *Engine) StartPeriodicSync(interval time.Duration) {
	if interval <= 0 {
		interval = e.config.PeriodicInterval
	}

	e.periodicMu.Lock()
	defer e.periodicMu.Unlock()
	e.stopPeriodicLocked()

	ctx, cancel := context.WithCancel(context.Background())
	e.periodicCancel = cancel

	e.wg.Add(1)
	go e.periodicLoop(ctx, interval)

	logging.Info().Dur("interval", interval).Msg("Periodic sync started")
}

// StopPeriodicSync cancels the timer. No further drains start after it
// returns; an in-flight drain is canceled between items. Idempotent.
func (e *Engine) StopPeriodicSync() {
	e.periodicMu.Lock()
	defer e.periodicMu.Unlock()
	e.stopPeriodicLocked()
}

func (e *Engine) stopPeriodicLocked() {
	if e.periodicCancel == nil {
		return
	}
	e.periodicCancel()
	e.periodicCancel = nil
	logging.Info().Msg("Periodic sync stopped")
}

// periodicRunning reports whether the timer is armed.
func (e *Engine) periodicRunning() bool {
	e.periodicMu.Lock()
	defer e.periodicMu.Unlock()
	return e.periodicCancel != nil
}

func (e *Engine) periodicLoop(ctx context.Context, interval time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.periodicTick(ctx)
		}
	}
}

// periodicTick drains the queue while online with auto-sync enabled.
// Periodic passes deliberately skip the remote delta pulls; a full
// pull only happens on explicit or reconnect-triggered syncs.
func (e *Engine) periodicTick(ctx context.Context) {
	if !e.autoSync.Load() {
		return
	}
	if !e.gate.IsOnline() {
		logging.Debug().Msg("Offline at periodic tick, queue untouched")
		return
	}

	results := e.queue.Process(ctx)
	if len(results) > 0 {
		logging.Info().Int("processed", len(results)).Msg("Periodic drain finished")
	}
}

// SetAutoSync toggles the background triggers, starting or stopping
// the periodic timer to match. The reconnect trigger consults the flag
// on each transition, so no subscription changes are needed.
func (e *Engine) SetAutoSync(enabled bool) {
	previous := e.autoSync.Swap(enabled)
	if previous == enabled {
		return
	}

	logging.Info().Bool("enabled", enabled).Msg("Auto-sync toggled")
	if enabled {
		e.StartPeriodicSync(e.config.PeriodicInterval)
	} else {
		e.StopPeriodicSync()
	}
}

// AutoSync reports whether the background triggers are enabled.
func (e *Engine) AutoSync() bool {
	return e.autoSync.Load()
}

// onTransition reacts to connectivity changes. Coming back online with
// auto-sync enabled launches one full sync in the background so
// offline-accumulated changes reconcile promptly; going offline only
// logs, since in-flight work fails fast on its own.
func (e *Engine) onTransition(ctx context.Context, status netstatus.Status) {
	if !status.Online {
		logging.Info().Msg("Connectivity lost, sync paused until back online")
		return
	}
	if !e.autoSync.Load() {
		logging.Debug().Msg("Back online, auto-sync disabled so nothing to do")
		return
	}

	logging.Info().Msg("Back online, reconciling offline changes")
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.PerformFullSync(ctx, e.config.UserID)
	}()
}

// Serve runs the engine's background triggers under supervision: the
// connectivity listener and, when auto-sync is enabled, the periodic
// timer. It blocks until ctx is canceled, then waits for background
// work to finish.
func (e *Engine) Serve(ctx context.Context) error {
	unsubscribe := e.gate.Subscribe(func(status netstatus.Status) {
		e.onTransition(ctx, status)
	})

	if e.autoSync.Load() {
		e.StartPeriodicSync(e.config.PeriodicInterval)
	}

	<-ctx.Done()

	unsubscribe()
	e.StopPeriodicSync()
	e.wg.Wait()
	return ctx.Err()
}

// String names the engine for the supervision tree.
func (e *Engine) String() string {
	return "sync-engine"
}
