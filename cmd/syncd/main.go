// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/api"
	"github.com/neville-gpp/farmily-up-sub000/internal/config"
	"github.com/neville-gpp/farmily-up-sub000/internal/events"
	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
	"github.com/neville-gpp/farmily-up-sub000/internal/queue"
	"github.com/neville-gpp/farmily-up-sub000/internal/remote"
	"github.com/neville-gpp/farmily-up-sub000/internal/store"
	"github.com/neville-gpp/farmily-up-sub000/internal/supervisor"
	"github.com/neville-gpp/farmily-up-sub000/internal/supervisor/services"
	syncpkg "github.com/neville-gpp/farmily-up-sub000/internal/sync"
	ws "github.com/neville-gpp/farmily-up-sub000/internal/websocket"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=v1.2.0" ./cmd/syncd
var version = "dev"

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		// Default logger: config (and its logging section) is unavailable.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		Caller:         cfg.Logging.Caller,
		File:           cfg.Logging.File,
		FileMaxSizeMB:  cfg.Logging.FileMaxSizeMB,
		FileMaxBackups: cfg.Logging.FileMaxBackups,
		FileMaxAgeDays: cfg.Logging.FileMaxAgeDays,
	})

	logging.Info().
		Str("version", version).
		Str("user_id", cfg.Sync.UserID).
		Str("remote", cfg.Remote.BaseURL).
		Bool("auto_sync", cfg.Sync.AutoSync).
		Msg("Starting Farmily sync daemon")

	// Key-value store: checkpoints, snapshots, and the queue journal.
	kv, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open key-value store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing key-value store")
		}
	}()
	if cfg.Store.InMemory {
		logging.Warn().Msg("Store running in memory; nothing survives a restart")
	} else {
		logging.Info().Str("path", cfg.Store.Path).Msg("Key-value store opened")
	}

	// In-process event bus carrying engine and queue events to the
	// WebSocket bridge and any other subscriber.
	bus := events.NewBus(events.BusConfig{})
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// Offline queue. The journal was loaded during construction; the
	// daemon registers no replay handlers of its own, so Restore only
	// reports what a previous run left behind.
	q, err := queue.New(queue.Config{MaxRetries: cfg.Queue.MaxRetries}, kv, bus)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create offline queue")
	}
	if cfg.Queue.Journal {
		restored, droppedCount := q.Restore()
		if restored > 0 || droppedCount > 0 {
			logging.Info().
				Int("restored", restored).
				Int("dropped", droppedCount).
				Msg("Queue journal recovery finished")
		}
	}

	// Connectivity monitor. The probe URL defaults to the backend's
	// ping endpoint when not set explicitly.
	monitor := netstatus.NewMonitor(netstatus.Config{
		URL:          cfg.Probe.URL,
		Interval:     cfg.Probe.Interval,
		Timeout:      cfg.Probe.Timeout,
		Burst:        cfg.Probe.Burst,
		ForceOffline: cfg.Probe.ForceOffline,
	})
	if cfg.Probe.ForceOffline {
		logging.Warn().Msg("FORCE_OFFLINE set; all remote operations will be deferred")
	}

	// Remote entity sources, optionally behind per-entity circuit
	// breakers so a failing backend sheds load instead of compounding
	// retries.
	client, err := remote.New(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		Token:   cfg.Remote.APIToken,
		Timeout: cfg.Remote.Timeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create remote client")
	}
	sources := client.Sources()
	if cfg.Remote.BreakerEnabled {
		sources = remote.WithBreaker(sources).Sources()
		logging.Info().Msg("Circuit breakers enabled for remote sources")
	}

	engine, err := syncpkg.NewEngine(syncpkg.Config{
		UserID:           cfg.Sync.UserID,
		AutoSync:         cfg.Sync.AutoSync,
		PeriodicInterval: cfg.Sync.Interval,
	}, syncpkg.Deps{
		Gate:    monitor,
		KV:      kv,
		Sources: sources,
		Queue:   q,
		Bus:     bus,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create sync engine")
	}
	logging.Info().
		Str("device_id", engine.DeviceID()).
		Dur("interval", cfg.Sync.Interval).
		Msg("Sync engine created")

	// WebSocket hub and the bridge feeding it engine events.
	wsHub := ws.NewHub()
	bridge := ws.NewBusSubscriber(wsHub, bus)

	// Supervision tree. zerolog is bridged to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddNetworkService(services.NewMonitorService(monitor))
	tree.AddSyncService(engine)
	tree.AddSyncService(services.NewHubService(wsHub))
	tree.AddSyncService(services.NewBridgeService(bridge))

	if cfg.Server.Enabled {
		handler := api.NewHandler(engine, monitor, q, cfg, wsHub, version)
		router := api.NewRouter(handler, cfg)

		server := &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router.SetupChi(),
			ReadTimeout:  cfg.Server.Timeout,
			WriteTimeout: cfg.Server.Timeout,
			IdleTimeout:  60 * time.Second,
		}

		tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
		logging.Info().Str("addr", server.Addr).Msg("HTTP API enabled")
	} else {
		logging.Info().Msg("HTTP API disabled (HTTP_ENABLED=false)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Sync daemon stopped gracefully")
}
