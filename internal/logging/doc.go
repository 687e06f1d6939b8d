// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package logging provides centralized zerolog-based structured logging.
//
// The engine runs as a long-lived background daemon, so every component
// logs through one configured sink: JSON for production, console for
// development, optionally a size-rotated file via lumberjack.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Rotating file sink for daemon deployments
//   - Context-aware logging with correlation ID propagation
//   - slog adapter for Suture v4 supervision events
//
// # Quick Start
//
//	import "github.com/neville-gpp/farmily-up-sub000/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("entity", "children").Int("pulled", 4).Msg("Pull complete")
//	logging.Error().Err(err).Msg("Queue item failed")
//
//	// Context-aware logging
//	logging.Ctx(ctx).Info().Str("user_id", userID).Msg("Full sync requested")
//
// # Component Loggers
//
// Long-lived components create a child logger once and reuse it:
//
//	logger := logging.WithComponent("queue")
//	logger.Debug().Str("op_id", id).Msg("Operation enqueued")
package logging
