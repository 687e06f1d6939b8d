// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package remote

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/sync"
)

// Circuit breaker profile, shared by all entity breakers.
const (
	// breakerMaxRequests is how many probe requests a half-open
	// breaker lets through.
	breakerMaxRequests = 3
	// breakerInterval is the rolling window for failure accounting in
	// the closed state.
	breakerInterval = time.Minute
	// breakerTimeout is how long an open breaker waits before probing.
	breakerTimeout = 2 * time.Minute
	// breakerMinRequests is the sample size required before the
	// failure share can trip the breaker.
	breakerMinRequests = 10
	// breakerFailureShare is the failure ratio that trips the breaker.
	breakerFailureShare = 0.6
)

// Breakers decorates a source bundle with one circuit breaker per
// entity, so a failing endpoint for one collection cannot burn
// requests for the others. Breaker rejections classify as throttled,
// which keeps queued operations re-queueing until the cooldown ends.
type Breakers struct {
	inner sync.Sources

	children   *gobreaker.CircuitBreaker[[]models.Child]
	calendar   *gobreaker.CircuitBreaker[[]models.CalendarEvent]
	activities *gobreaker.CircuitBreaker[[]models.FamilyActivity]
	profile    *gobreaker.CircuitBreaker[*models.UserProfile]
}

// WithBreaker wraps every source in the bundle with its own named
// circuit breaker.
func WithBreaker(inner sync.Sources) *Breakers {
	return &Breakers{
		inner:      inner,
		children:   gobreaker.NewCircuitBreaker[[]models.Child](breakerSettings("remote-children")),
		calendar:   gobreaker.NewCircuitBreaker[[]models.CalendarEvent](breakerSettings("remote-calendar-events")),
		activities: gobreaker.NewCircuitBreaker[[]models.FamilyActivity](breakerSettings("remote-family-activities")),
		profile:    gobreaker.NewCircuitBreaker[*models.UserProfile](breakerSettings("remote-profile")),
	}
}

// Sources returns the decorated bundle for engine wiring.
func (b *Breakers) Sources() sync.Sources {
	return sync.Sources{Children: b, Calendar: b, Activities: b, Profile: b}
}

// FetchChildren implements sync.ChildSource.
func (b *Breakers) FetchChildren(ctx context.Context, userID string, since *time.Time) ([]models.Child, error) {
	return guard("remote-children", b.children, func() ([]models.Child, error) {
		return b.inner.Children.FetchChildren(ctx, userID, since)
	})
}

// FetchCalendarEvents implements sync.CalendarSource.
func (b *Breakers) FetchCalendarEvents(ctx context.Context, userID string, since *time.Time) ([]models.CalendarEvent, error) {
	return guard("remote-calendar-events", b.calendar, func() ([]models.CalendarEvent, error) {
		return b.inner.Calendar.FetchCalendarEvents(ctx, userID, since)
	})
}

// FetchFamilyActivities implements sync.ActivitySource.
func (b *Breakers) FetchFamilyActivities(ctx context.Context, userID string, since *time.Time) ([]models.FamilyActivity, error) {
	return guard("remote-family-activities", b.activities, func() ([]models.FamilyActivity, error) {
		return b.inner.Activities.FetchFamilyActivities(ctx, userID, since)
	})
}

// FetchProfile implements sync.ProfileSource.
func (b *Breakers) FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return guard("remote-profile", b.profile, func() (*models.UserProfile, error) {
		return b.inner.Profile.FetchProfile(ctx, userID)
	})
}

// breakerSettings builds the gobreaker profile for one entity source.
func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			share := float64(counts.TotalFailures) / float64(counts.Requests)
			if share >= breakerFailureShare {
				logging.Warn().
					Str("breaker", name).
					Uint32("requests", counts.Requests).
					Uint32("failures", counts.TotalFailures).
					Msg("Opening circuit breaker")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	}
}

// guard runs fetch through the breaker and records the request
// outcome. Rejections are requests the breaker refused to forward.
func guard[T any](name string, cb *gobreaker.CircuitBreaker[T], fetch func() (T, error)) (T, error) {
	value, err := cb.Execute(fetch)
	switch {
	case err == nil:
		metrics.RecordBreakerRequest(name, "success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerRequest(name, "rejected")
		logging.Warn().
			Str("breaker", name).
			Err(err).
			Msg("Request rejected by circuit breaker")
	default:
		metrics.RecordBreakerRequest(name, "failure")
	}
	return value, err
}
