// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package models

import (
	"fmt"
	"time"
)

// EntityKind identifies one of the syncable family data collections.
//
// The sync orchestrator pulls each kind independently during a full sync;
// a failure in one kind never aborts the others. Kind strings double as
// API path segments, metric labels, and queue journal discriminators, so
// they are stable identifiers and must not be renamed.
type EntityKind string

const (
	// KindChildren is the family's child roster.
	KindChildren EntityKind = "children"

	// KindCalendarEvents is the shared family calendar.
	KindCalendarEvents EntityKind = "calendar_events"

	// KindFamilyActivities is planned and completed family time activities.
	KindFamilyActivities EntityKind = "family_activities"

	// KindUserProfile is the signed-in user's own profile record.
	KindUserProfile EntityKind = "user_profile"
)

// AllEntityKinds lists every syncable kind in pull order.
func AllEntityKinds() []EntityKind {
	return []EntityKind{
		KindChildren,
		KindCalendarEvents,
		KindFamilyActivities,
		KindUserProfile,
	}
}

// Valid reports whether k names a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindChildren, KindCalendarEvents, KindFamilyActivities, KindUserProfile:
		return true
	}
	return false
}

// String returns the stable kind identifier.
func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind converts a string into an EntityKind, rejecting unknown values.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
	return k, nil
}

// Syncable is implemented by every record the engine synchronizes.
// Conflict detection and profile checkpoint gating work purely through
// this interface, so new entity types only need these three accessors.
type Syncable interface {
	// EntityID returns the record's backend-assigned identifier.
	EntityID() string

	// EntityVersion returns the record's monotonic revision number.
	EntityVersion() int64

	// ModifiedAt returns when the record content last changed.
	ModifiedAt() time.Time
}

// Child represents one child in the family roster.
//
// Children are the hub of the data model: calendar events and activities
// reference them by ID. BirthDate drives age display and milestone
// reminders in clients; the engine treats it as opaque data.
type Child struct {
	ID       string `json:"id"`
	FamilyID string `json:"family_id"`

	Name        string     `json:"name"`
	Nickname    *string    `json:"nickname,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	AvatarColor *string    `json:"avatar_color,omitempty"` // hex color for client avatars
	Notes       *string    `json:"notes,omitempty"`

	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"` // tombstone from incremental pulls
}

// EntityID implements Syncable.
func (c Child) EntityID() string { return c.ID }

// EntityVersion implements Syncable.
func (c Child) EntityVersion() int64 { return c.Version }

// ModifiedAt implements Syncable.
func (c Child) ModifiedAt() time.Time { return c.UpdatedAt }

// CalendarEvent represents one entry on the shared family calendar.
//
// ChildIDs links the event to zero or more children (school runs,
// appointments, playdates). All-day events carry date-only semantics in
// StartsAt/EndsAt; clients interpret them in the user's timezone.
type CalendarEvent struct {
	ID       string `json:"id"`
	FamilyID string `json:"family_id"`

	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Location    *string  `json:"location,omitempty"`
	ChildIDs    []string `json:"child_ids,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	AllDay   bool      `json:"all_day"`

	Recurrence      *string `json:"recurrence,omitempty"`       // RRULE string, nil for one-off events
	ReminderMinutes *int    `json:"reminder_minutes,omitempty"` // lead time for client notifications
	Color           *string `json:"color,omitempty"`

	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// EntityID implements Syncable.
func (e CalendarEvent) EntityID() string { return e.ID }

// EntityVersion implements Syncable.
func (e CalendarEvent) EntityVersion() int64 { return e.Version }

// ModifiedAt implements Syncable.
func (e CalendarEvent) ModifiedAt() time.Time { return e.UpdatedAt }

// FamilyActivity represents a planned or completed family time activity.
//
// Activities differ from calendar events: they track intent and completion
// (did we actually do the picnic?) rather than scheduling. Completed
// activities feed the family's activity history and streaks.
type FamilyActivity struct {
	ID       string `json:"id"`
	FamilyID string `json:"family_id"`

	Title          string   `json:"title"`
	Category       string   `json:"category"` // "outing", "meal", "game", "chore", "celebration", "other"
	Notes          *string  `json:"notes,omitempty"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`

	ScheduledFor    *time.Time `json:"scheduled_for,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// EntityID implements Syncable.
func (a FamilyActivity) EntityID() string { return a.ID }

// EntityVersion implements Syncable.
func (a FamilyActivity) EntityVersion() int64 { return a.Version }

// ModifiedAt implements Syncable.
func (a FamilyActivity) ModifiedAt() time.Time { return a.UpdatedAt }

// ProfilePreferences holds per-user client preferences that travel with
// the profile record.
type ProfilePreferences struct {
	NotificationsEnabled   bool `json:"notifications_enabled"`
	WeekStartsMonday       bool `json:"week_starts_monday"`
	DefaultReminderMinutes int  `json:"default_reminder_minutes"`
}

// UserProfile represents the signed-in user's own account record.
//
// Unlike the collection kinds, exactly one profile exists per user. The
// orchestrator only persists a pulled profile when its UpdatedAt is newer
// than the last sync checkpoint, so a stale read can never clobber fresher
// local state.
type UserProfile struct {
	ID       string `json:"id"`
	FamilyID string `json:"family_id"`

	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Timezone    string  `json:"timezone"`
	Locale      string  `json:"locale"`

	Preferences ProfilePreferences `json:"preferences"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID implements Syncable.
func (p UserProfile) EntityID() string { return p.ID }

// EntityVersion implements Syncable.
func (p UserProfile) EntityVersion() int64 { return p.Version }

// ModifiedAt implements Syncable.
func (p UserProfile) ModifiedAt() time.Time { return p.UpdatedAt }
