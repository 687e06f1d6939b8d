// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
)

// Default backoff parameters.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxDelay   = 30 * time.Second
	DefaultMultiplier = 2.0
)

// jitterRange bounds the random delay added to each backoff wait.
const jitterRange = 1 * time.Second

// maxExponent caps the backoff exponent so the float math cannot
// overflow time.Duration.
const maxExponent = 50

// Options controls the retry behavior of Do and DoValue.
type Options struct {
	// Name labels the operation in logs and metrics.
	Name string

	// MaxRetries is the number of retries after the first attempt,
	// so an operation runs at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor.
	Multiplier float64

	// Jitter adds a uniform random delay in [0, 1s) to each wait so
	// that devices recovering from a shared outage spread their load.
	Jitter bool

	// RetryIf decides whether an error is worth retrying.
	// Defaults to IsRetryable.
	RetryIf func(error) bool

	// OnRetry fires before each wait with the 1-based number of the
	// attempt that just failed, its error, and the upcoming delay.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultOptions returns the standard backoff profile: three retries,
// 1s base delay doubling up to 30s, with jitter.
func DefaultOptions() Options {
	return Options{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Multiplier: DefaultMultiplier,
		Jitter:     true,
	}
}

// withDefaults fills unset fields. A zero MaxRetries is kept as-is:
// it means a single attempt with no retries.
func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "operation"
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Multiplier < 1 {
		o.Multiplier = DefaultMultiplier
	}
	if o.RetryIf == nil {
		o.RetryIf = IsRetryable
	}
	return o
}

// Do runs op with retries per opts, returning the last error once
// attempts are exhausted or a non-retryable error occurs.
func Do(ctx context.Context, op func(ctx context.Context) error, opts Options) error {
	_, err := DoValue(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts)
	return err
}

// DoValue runs op with retries per opts and returns its value.
//
// A non-retryable error (per opts.RetryIf) propagates immediately
// after a single attempt. The backoff wait is canceled by ctx, so an
// abandoned caller never leaves a sleeping goroutine behind;
// cancellation during a wait returns the context error joined with
// the last attempt's error.
func DoValue[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt-1, opts)
			if opts.OnRetry != nil {
				notifyRetry(opts.Name, opts.OnRetry, attempt, lastErr, delay)
			}
			logging.Debug().
				Str("operation", opts.Name).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying operation")
			metrics.RecordRetryAttempt(opts.Name, delay)

			select {
			case <-ctx.Done():
				// Keep the cause of the retries reachable alongside the
				// cancellation.
				return zero, errors.Join(ctx.Err(), lastErr)
			case <-time.After(delay):
			}
		}

		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, errors.Join(err, lastErr)
			}
			return zero, err
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt < opts.MaxRetries && !opts.RetryIf(err) {
			return zero, err
		}
	}

	logging.Warn().
		Str("operation", opts.Name).
		Int("attempts", opts.MaxRetries+1).
		Err(lastErr).
		Msg("Operation failed after all retries")
	metrics.RecordRetryExhausted(opts.Name)

	return zero, fmt.Errorf("%s failed after %d attempts: %w", opts.Name, opts.MaxRetries+1, lastErr)
}

// notifyRetry invokes the OnRetry callback with panic isolation, so a
// buggy observability hook cannot abort the retry loop.
func notifyRetry(name string, fn func(attempt int, err error, delay time.Duration), attempt int, err error, delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("operation", name).
				Int("attempt", attempt).
				Interface("panic", r).
				Msg("OnRetry callback panicked")
		}
	}()
	fn(attempt, err, delay)
}

// backoffDelay computes the wait before retry n (0-based):
// min(base * multiplier^n, max), plus jitter when enabled.
func backoffDelay(n int, opts Options) time.Duration {
	if n > maxExponent {
		n = maxExponent
	}

	delay := float64(opts.BaseDelay) * math.Pow(opts.Multiplier, float64(n))
	// A negative value means the float math overflowed.
	if delay < 0 || delay > float64(opts.MaxDelay) {
		delay = float64(opts.MaxDelay)
	}

	d := time.Duration(delay)
	if opts.Jitter {
		d += randomJitter()
	}
	return d
}

// Jitter randomness. A dedicated source behind a mutex keeps delays
// independent of other rand consumers.
var (
	jitterMu sync.Mutex
	//nolint:gosec // G404: weak random is fine for backoff jitter
	jitterRNG = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// randomJitter returns a uniform duration in [0, jitterRange).
func randomJitter() time.Duration {
	jitterMu.Lock()
	defer jitterMu.Unlock()
	return time.Duration(jitterRNG.Int63n(int64(jitterRange)))
}
