// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package netguard wraps operations with connectivity awareness.
//
// A guarded operation is refused outright while the device is offline
// and runs under the retry executor while online. Either way the
// caller gets a uniform Outcome carrying a classified error and a
// message suitable for direct display to a family member.
package netguard

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
	"github.com/neville-gpp/farmily-up-sub000/internal/retry"
)

// Options configure a guarded operation. The zero value guards a
// network-dependent interactive call: the connectivity check is on and
// failures get a single quick retry.
type Options struct {
	// Name labels the operation in logs and metrics.
	Name string

	// AllowOffline skips the connectivity check for operations that
	// can be served locally, such as reads against cached snapshots.
	AllowOffline bool

	// Retry overrides the retry profile for the online path. Nil
	// selects DefaultRetry.
	Retry *retry.Options

	// OnOffline fires with the refusing network status when the gate
	// blocks the operation. OnFailure is not called in that case.
	OnOffline func(status netstatus.Status)

	// OnFailure fires with the enriched operation error once the
	// online path has exhausted its attempts.
	OnFailure func(err *OpError, status netstatus.Status)
}

// DefaultRetry returns the retry profile for interactive calls: the
// standard backoff limited to a single retry, so a tap in the client
// is never stuck behind a long backoff ladder.
func DefaultRetry() retry.Options {
	opts := retry.DefaultOptions()
	opts.MaxRetries = 1
	return opts
}

// Outcome is the result of a guarded operation. Exactly one of Value
// and Err is meaningful, selected by OK.
type Outcome[T any] struct {
	OK    bool
	Value T
	Err   *OpError
}

// UserMessage returns the display message of a failed outcome and ""
// for a successful one.
func (o Outcome[T]) UserMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.UserMessage
}

// OpError describes a failed guarded operation. It wraps the
// underlying error, so errors.Is and errors.As see through it.
type OpError struct {
	// Op is the operation name from Options.Name.
	Op string
	// Category is the classified failure category.
	Category retry.Category
	// UserMessage is safe to show in the client UI verbatim.
	UserMessage string
	// Status is the network status captured when the failure surfaced.
	Status netstatus.Status
	// Err is the underlying error. Nil only for offline refusals
	// constructed by hand.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed (%s)", e.Op, e.Category)
	}
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Category, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// Run executes op behind the connectivity gate and returns a uniform
// outcome. While offline, and unless opts.AllowOffline is set, op is
// never invoked. While online op runs under the retry executor with
// the profile from opts.Retry. A nil gate skips the connectivity
// check.
func Run[T any](ctx context.Context, gate netstatus.Gate, op func(ctx context.Context) (T, error), opts Options) Outcome[T] {
	if opts.Name == "" {
		opts.Name = "operation"
	}

	status := netstatus.Status{Online: true, Quality: netstatus.QualityUnknown}
	if gate != nil {
		status = gate.Status()
	}

	if !status.Online && !opts.AllowOffline {
		metrics.RecordGuardBlocked()
		logging.Debug().
			Str("operation", opts.Name).
			Msg("Operation refused while offline")
		if opts.OnOffline != nil {
			opts.OnOffline(status)
		}
		return Outcome[T]{Err: &OpError{
			Op:          opts.Name,
			Category:    retry.CategoryOffline,
			UserMessage: MessageFor(retry.CategoryOffline),
			Status:      status,
			Err:         ErrOffline,
		}}
	}

	value, err := retry.DoValue(ctx, func(ctx context.Context) (T, error) {
		return protect(ctx, opts.Name, op)
	}, retryProfile(opts))
	if err == nil {
		return Outcome[T]{OK: true, Value: value}
	}

	category := retry.Classify(err)
	if gate != nil {
		status = gate.Status()
	}
	metrics.RecordGuardFailure(category.String())
	logging.Warn().
		Str("operation", opts.Name).
		Str("category", category.String()).
		Err(err).
		Msg("Guarded operation failed")

	opErr := &OpError{
		Op:          opts.Name,
		Category:    category,
		UserMessage: MessageForStatus(category, status),
		Status:      status,
		Err:         err,
	}
	if opts.OnFailure != nil {
		opts.OnFailure(opErr, status)
	}
	return Outcome[T]{Err: opErr}
}

// Do guards an operation that returns no value.
func Do(ctx context.Context, gate netstatus.Gate, op func(ctx context.Context) error, opts Options) Outcome[struct{}] {
	return Run(ctx, gate, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts)
}

// retryProfile resolves the retry options for the online path.
func retryProfile(opts Options) retry.Options {
	profile := DefaultRetry()
	if opts.Retry != nil {
		profile = *opts.Retry
	}
	if profile.Name == "" {
		profile.Name = opts.Name
	}
	return profile
}

// protect runs one attempt of op, converting a panic into an error so
// a crashing operation degrades into a failed outcome.
func protect[T any](ctx context.Context, name string, op func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("operation", name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Guarded operation panicked")
			err = &panicError{op: name, value: r}
		}
	}()
	return op(ctx)
}

// panicError marks an attempt that crashed instead of returning.
type panicError struct {
	op    string
	value any
}

// Error implements the error interface.
func (e *panicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.op, e.value)
}

// Category pins crashed attempts to unknown so they are neither
// retried nor mistaken for network trouble by message sniffing.
func (e *panicError) Category() retry.Category { return retry.CategoryUnknown }

// Errors
var (
	// ErrOffline is the underlying error of outcomes refused by the
	// connectivity gate; the operation never ran.
	ErrOffline = fmt.Errorf("operation refused: device is offline")
)
