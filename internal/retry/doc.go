// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package retry executes operations with bounded retries and
// exponential backoff.
//
// The executor retries transient failures (network, timeout,
// connection, server, throttling) and fails fast on permanent ones
// (authentication, validation, not-found, conflict). Retrying a bad
// password or a malformed request wastes time and can trigger account
// lockouts, while retrying a transient network blip is almost always
// correct, so unclassified errors default to non-retryable.
//
// Delays grow as min(base * multiplier^n, max) for the n-th retry,
// with optional uniform jitter of up to one second to spread load
// after a shared outage.
//
// # Usage
//
//	opts := retry.DefaultOptions()
//	opts.Name = "pull_children"
//
//	records, err := retry.DoValue(ctx, func(ctx context.Context) ([]models.Child, error) {
//		return client.FetchChildren(ctx, since)
//	}, opts)
//
// Error classification is exposed separately via Classify and
// IsRetryable so that the offline queue and the network guard apply
// the same taxonomy.
package retry
