// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// Compile-time checks that every entity implements Syncable.
var (
	_ Syncable = Child{}
	_ Syncable = CalendarEvent{}
	_ Syncable = FamilyActivity{}
	_ Syncable = UserProfile{}
)

// testJSONRoundTrip is a generic helper that tests JSON marshal/unmarshal for any type.
func testJSONRoundTrip[T any](t *testing.T, name string, input T, verify func(t *testing.T, decoded T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		data, err := json.Marshal(input)
		if err != nil {
			t.Fatalf("Failed to marshal %s: %v", name, err)
		}

		var decoded T
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", name, err)
		}

		if verify != nil {
			verify(t, decoded)
		}
	})
}

func TestEntityKindValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind EntityKind
		want bool
	}{
		{KindChildren, true},
		{KindCalendarEvents, true},
		{KindFamilyActivities, true},
		{KindUserProfile, true},
		{EntityKind("pets"), false},
		{EntityKind(""), false},
		{EntityKind("Children"), false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestParseEntityKind(t *testing.T) {
	t.Parallel()

	t.Run("known kinds parse", func(t *testing.T) {
		for _, kind := range AllEntityKinds() {
			got, err := ParseEntityKind(kind.String())
			if err != nil {
				t.Errorf("ParseEntityKind(%q) unexpected error: %v", kind, err)
			}
			if got != kind {
				t.Errorf("ParseEntityKind(%q) = %q, want %q", kind, got, kind)
			}
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		if _, err := ParseEntityKind("groceries"); err == nil {
			t.Error("ParseEntityKind expected error for unknown kind, got nil")
		}
	})
}

func TestAllEntityKindsOrder(t *testing.T) {
	t.Parallel()

	kinds := AllEntityKinds()
	want := []EntityKind{KindChildren, KindCalendarEvents, KindFamilyActivities, KindUserProfile}

	if len(kinds) != len(want) {
		t.Fatalf("AllEntityKinds() returned %d kinds, want %d", len(kinds), len(want))
	}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Errorf("AllEntityKinds()[%d] = %q, want %q", i, kinds[i], kind)
		}
	}
}

func TestSyncableAccessors(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  Syncable
		id      string
		version int64
	}{
		{
			name:    "child",
			record:  Child{ID: "child-1", Version: 4, UpdatedAt: now},
			id:      "child-1",
			version: 4,
		},
		{
			name:    "calendar event",
			record:  CalendarEvent{ID: "evt-9", Version: 1, UpdatedAt: now},
			id:      "evt-9",
			version: 1,
		},
		{
			name:    "family activity",
			record:  FamilyActivity{ID: "act-2", Version: 12, UpdatedAt: now},
			id:      "act-2",
			version: 12,
		},
		{
			name:    "user profile",
			record:  UserProfile{ID: "user-7", Version: 2, UpdatedAt: now},
			id:      "user-7",
			version: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.EntityID(); got != tt.id {
				t.Errorf("EntityID() = %q, want %q", got, tt.id)
			}
			if got := tt.record.EntityVersion(); got != tt.version {
				t.Errorf("EntityVersion() = %d, want %d", got, tt.version)
			}
			if got := tt.record.ModifiedAt(); !got.Equal(now) {
				t.Errorf("ModifiedAt() = %v, want %v", got, now)
			}
		})
	}
}

func TestJSONMarshaling(t *testing.T) {
	t.Parallel()

	nickname := "Lulu"
	birthDate := time.Date(2019, 3, 14, 0, 0, 0, 0, time.UTC)
	testJSONRoundTrip(t, "Child", Child{
		ID:        "child-1",
		FamilyID:  "fam-1",
		Name:      "Lucia",
		Nickname:  &nickname,
		BirthDate: &birthDate,
		Version:   3,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
	}, func(t *testing.T, decoded Child) {
		if decoded.ID != "child-1" {
			t.Errorf("Expected ID child-1, got %s", decoded.ID)
		}
		if decoded.Nickname == nil || *decoded.Nickname != "Lulu" {
			t.Error("Nickname not properly marshaled/unmarshaled")
		}
		if decoded.BirthDate == nil || !decoded.BirthDate.Equal(birthDate) {
			t.Error("BirthDate not properly marshaled/unmarshaled")
		}
		if decoded.Notes != nil {
			t.Error("Expected Notes to stay nil")
		}
	})

	reminder := 30
	testJSONRoundTrip(t, "CalendarEvent", CalendarEvent{
		ID:              "evt-1",
		FamilyID:        "fam-1",
		Title:           "Swimming lesson",
		ChildIDs:        []string{"child-1", "child-2"},
		StartsAt:        time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC),
		EndsAt:          time.Date(2026, 8, 24, 17, 0, 0, 0, time.UTC),
		ReminderMinutes: &reminder,
		Version:         1,
	}, func(t *testing.T, decoded CalendarEvent) {
		if decoded.Title != "Swimming lesson" {
			t.Errorf("Expected title 'Swimming lesson', got %q", decoded.Title)
		}
		if len(decoded.ChildIDs) != 2 || decoded.ChildIDs[0] != "child-1" {
			t.Errorf("ChildIDs not properly marshaled/unmarshaled: %v", decoded.ChildIDs)
		}
		if decoded.ReminderMinutes == nil || *decoded.ReminderMinutes != 30 {
			t.Error("ReminderMinutes not properly marshaled/unmarshaled")
		}
		if decoded.AllDay {
			t.Error("Expected AllDay to stay false")
		}
	})

	testJSONRoundTrip(t, "UserProfile", UserProfile{
		ID:          "user-7",
		FamilyID:    "fam-1",
		Email:       "neville@farmily.test",
		DisplayName: "Neville",
		Timezone:    "Asia/Hong_Kong",
		Locale:      "en-HK",
		Preferences: ProfilePreferences{
			NotificationsEnabled:   true,
			DefaultReminderMinutes: 15,
		},
		Version: 2,
	}, func(t *testing.T, decoded UserProfile) {
		if decoded.Email != "neville@farmily.test" {
			t.Errorf("Expected email neville@farmily.test, got %q", decoded.Email)
		}
		if !decoded.Preferences.NotificationsEnabled {
			t.Error("Preferences.NotificationsEnabled not preserved")
		}
		if decoded.Preferences.DefaultReminderMinutes != 15 {
			t.Errorf("Preferences.DefaultReminderMinutes = %d, want 15", decoded.Preferences.DefaultReminderMinutes)
		}
	})
}

func TestAPIResponseOmitsEmptyError(t *testing.T) {
	t.Parallel()

	resp := APIResponse{
		Status:   "success",
		Data:     map[string]int{"length": 3},
		Metadata: Metadata{Timestamp: time.Now()},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal APIResponse: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal APIResponse: %v", err)
	}

	if _, present := decoded["error"]; present {
		t.Error("Expected error field to be omitted for success responses")
	}
	if decoded["status"] != "success" {
		t.Errorf("status = %v, want success", decoded["status"])
	}
}
