// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

/*
Package models defines data structures for the sync engine.

This package contains the syncable family data entities, the Syncable
interface that conflict detection and checkpoint gating are built on, and
API request/response structures for the local HTTP surface. It serves as
the single source of truth for data structure definitions.

Key Components:

  - EntityKind: Stable identifiers for the four syncable collections
  - Child, CalendarEvent, FamilyActivity, UserProfile: Domain entities
  - Syncable: The interface every synchronized record implements
  - APIResponse: Standardized API response wrapper

Model Categories:

1. Entity Models:
  - Child: Family child roster entries
  - CalendarEvent: Shared family calendar entries (child links, recurrence)
  - FamilyActivity: Planned/completed family time (participants, completion)
  - UserProfile: The signed-in user's account record and preferences

2. Sync Plumbing:
  - EntityKind: "children", "calendar_events", "family_activities",
    "user_profile"; doubles as API path segment, metric label, and queue
    journal discriminator
  - Syncable: EntityID / EntityVersion / ModifiedAt accessors shared by
    all entities

3. API Request/Response Models:
  - APIResponse: Standard response wrapper
  - APIError: Error details
  - Metadata: Response metadata (timestamp, handler time)
  - HealthStatus: Health endpoint payload

Usage Example - Conflict-aware code against Syncable:

	func newest(a, b models.Syncable) models.Syncable {
	    if a.ModifiedAt().After(b.ModifiedAt()) {
	        return a
	    }
	    return b
	}

All entity structs serialize to JSON with snake_case keys matching the
backend wire format. Optional fields are pointers with omitempty so
untouched fields stay absent from payloads.
*/
package models
