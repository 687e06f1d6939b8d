// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/sony/gobreaker/v2"
)

// Category classifies an error for retry and presentation decisions.
type Category string

const (
	// CategoryAuth covers authentication and authorization failures.
	CategoryAuth Category = "auth"
	// CategoryValidation covers rejected input (400/422-class).
	CategoryValidation Category = "validation"
	// CategoryNotFound covers missing resources.
	CategoryNotFound Category = "not_found"
	// CategoryConflict covers version conflicts (409-class).
	CategoryConflict Category = "conflict"
	// CategoryNetwork covers generic network failures (DNS, unreachable).
	CategoryNetwork Category = "network"
	// CategoryTimeout covers deadline and timeout failures.
	CategoryTimeout Category = "timeout"
	// CategoryConnection covers refused/reset/dropped connections.
	CategoryConnection Category = "connection"
	// CategoryServer covers 5xx-class remote failures.
	CategoryServer Category = "server"
	// CategoryThrottled covers rate limiting (429-class).
	CategoryThrottled Category = "throttled"
	// CategoryOffline covers operations blocked by the connectivity gate.
	CategoryOffline Category = "offline"
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = "unknown"
)

// String returns the category label.
func (c Category) String() string {
	return string(c)
}

// Retryable reports whether errors of this category are worth
// retrying. Auth and validation failures will fail the same way every
// time; unclassified errors are treated the same to avoid hammering a
// remote with requests that cannot succeed.
func (c Category) Retryable() bool {
	switch c {
	case CategoryNetwork, CategoryTimeout, CategoryConnection,
		CategoryServer, CategoryThrottled, CategoryOffline:
		return true
	default:
		return false
	}
}

// Categorizer is implemented by errors that know their own category.
// Classify consults it before any other rule.
type Categorizer interface {
	Category() Category
}

// StatusError is an error carrying an HTTP status code from the
// backend. The remote client returns it for non-2xx responses.
type StatusError struct {
	// StatusCode is the numeric HTTP status.
	StatusCode int

	// Status is the HTTP status text. Filled from StatusCode when empty.
	Status string

	// Body is the truncated response body, when one was captured.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s (status %d)", e.Body, e.StatusCode)
	}
	if e.Status != "" {
		return fmt.Sprintf("%s (status %d)", e.Status, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", http.StatusText(e.StatusCode), e.StatusCode)
}

// Category maps the HTTP status code to an error category.
func (e *StatusError) Category() Category {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return CategoryAuth
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return CategoryValidation
	case e.StatusCode == http.StatusNotFound:
		return CategoryNotFound
	case e.StatusCode == http.StatusConflict:
		return CategoryConflict
	case e.StatusCode == http.StatusRequestTimeout:
		return CategoryTimeout
	case e.StatusCode == http.StatusTooManyRequests:
		return CategoryThrottled
	case e.StatusCode >= 500:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// categorySignatures maps message fragments to categories. Checked in
// order; permanent categories come first so that, for example,
// "authentication timeout" stays non-retryable.
var categorySignatures = []struct {
	category   Category
	signatures []string
}{
	{CategoryAuth, []string{"unauthorized", "forbidden", "authentication", "invalid token", "token expired", "invalid password", "access denied"}},
	{CategoryValidation, []string{"validation", "invalid input", "malformed", "bad request", "unprocessable"}},
	{CategoryNotFound, []string{"not found"}},
	{CategoryConflict, []string{"conflict", "version mismatch"}},
	{CategoryThrottled, []string{"too many requests", "rate limit", "throttled"}},
	{CategoryOffline, []string{"offline"}},
	{CategoryTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{CategoryConnection, []string{"connection refused", "connection reset", "connection closed", "broken pipe", "no route to host", "connect"}},
	{CategoryServer, []string{"internal server error", "bad gateway", "service unavailable"}},
	{CategoryNetwork, []string{"network", "no such host", "unreachable", "dns"}},
}

// Classify determines the category of an error.
//
// Rules are applied in order: errors implementing Categorizer report
// their own category (StatusError maps HTTP status codes); circuit
// breaker rejections map to throttled; context expiry and net timeouts
// map to timeout; refused and reset sockets map to connection;
// remaining url.Error/net.OpError transport failures map to network;
// anything else falls back to a fixed taxonomy of message signatures,
// mirroring how the backend and platform libraries phrase their
// failures.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var categorizer Categorizer
	if errors.As(err, &categorizer) {
		return categorizer.Category()
	}

	// A tripped breaker is a local flow-control rejection, not a fault
	// in the request itself. It clears on its own once the cooldown
	// elapses, so it lands with rate limiting.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return CategoryThrottled
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return CategoryConnection
	}

	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return CategoryNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, entry := range categorySignatures {
		for _, sig := range entry.signatures {
			if strings.Contains(msg, sig) {
				return entry.category
			}
		}
	}

	return CategoryUnknown
}

// IsRetryable reports whether the error is worth retrying. This is
// the default retryability predicate for the executor and the offline
// queue.
func IsRetryable(err error) bool {
	return Classify(err).Retryable()
}
