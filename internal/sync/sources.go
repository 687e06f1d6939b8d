// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/models"
)

// ChildSource pulls the family's child roster.
//
// A nil since requests the full collection; otherwise only records
// whose server-side update time is newer than since are returned. The
// same delta contract applies to CalendarSource and ActivitySource.
type ChildSource interface {
	FetchChildren(ctx context.Context, userID string, since *time.Time) ([]models.Child, error)
}

// CalendarSource pulls shared family calendar events.
type CalendarSource interface {
	FetchCalendarEvents(ctx context.Context, userID string, since *time.Time) ([]models.CalendarEvent, error)
}

// ActivitySource pulls family time activities.
type ActivitySource interface {
	FetchFamilyActivities(ctx context.Context, userID string, since *time.Time) ([]models.FamilyActivity, error)
}

// ProfileSource pulls the signed-in user's profile. The profile is a
// single record, so there is no delta window; the engine decides
// whether the fetched copy is newer than its checkpoint.
type ProfileSource interface {
	FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Sources bundles the per-entity remote data sources the engine pulls
// from. One client typically implements all four.
type Sources struct {
	Children   ChildSource
	Calendar   CalendarSource
	Activities ActivitySource
	Profile    ProfileSource
}

// validate rejects a bundle with missing sources.
func (s Sources) validate() error {
	switch {
	case s.Children == nil:
		return fmt.Errorf("sync engine requires a children source")
	case s.Calendar == nil:
		return fmt.Errorf("sync engine requires a calendar events source")
	case s.Activities == nil:
		return fmt.Errorf("sync engine requires a family activities source")
	case s.Profile == nil:
		return fmt.Errorf("sync engine requires a profile source")
	}
	return nil
}
