// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library in a
// thread-safe singleton with the engine's custom validators and
// user-friendly error messages. It integrates with the models.APIError
// format so HTTP handlers return consistent validation responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Custom validators for the sync domain: rfc3339, entitykind
//   - Error translation to human-readable messages
//   - APIError conversion under the VALIDATION_ERROR code
//
// # Quick Start
//
//	type PeriodicSyncRequest struct {
//	    IntervalSeconds int `json:"interval_seconds" validate:"omitempty,gte=1,lte=86400"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req PeriodicSyncRequest
//	    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Custom Validators
//
// rfc3339 accepts timestamps in RFC3339 form, with or without
// fractional seconds:
//
//	Since string `validate:"omitempty,rfc3339"`
//
// entitykind accepts the four syncable collection identifiers
// (children, calendar_events, family_activities, user_profile):
//
//	Kind string `validate:"required,entitykind"`
//
// # Error Types
//
// ValidationError represents a single field failure (Field, Tag,
// Param, Value, Error accessors). RequestValidationError aggregates
// them, implements error, and converts to *models.APIError:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Kind must be one of: children, calendar_events, family_activities, user_profile",
//	    "details": {"field": "Kind", "tag": "entitykind", "value": "photos"}
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent
// use; validator caches struct reflection info, so repeat validations
// of the same request type are cheap.
package validation
