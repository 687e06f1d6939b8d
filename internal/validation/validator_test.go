// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

// syncRequest mirrors the API's sync configuration requests.
type syncRequest struct {
	UserID          string `validate:"required,min=1,max=128"`
	IntervalSeconds int    `validate:"omitempty,gte=1,lte=86400"`
	Email           string `validate:"omitempty,email"`
	Order           string `validate:"omitempty,oneof=asc desc"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input syncRequest
	}{
		{
			name: "all fields set",
			input: syncRequest{
				UserID:          "user-1",
				IntervalSeconds: 300,
				Email:           "robin@farmily.app",
				Order:           "asc",
			},
		},
		{
			name:  "only required fields",
			input: syncRequest{UserID: "u"},
		},
		{
			name: "boundary interval",
			input: syncRequest{
				UserID:          "user-1",
				IntervalSeconds: 86400,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     syncRequest
		wantField string
		wantTag   string
	}{
		{
			name:      "missing user id",
			input:     syncRequest{IntervalSeconds: 300},
			wantField: "UserID",
			wantTag:   "required",
		},
		{
			name:      "interval too large",
			input:     syncRequest{UserID: "user-1", IntervalSeconds: 100000},
			wantField: "IntervalSeconds",
			wantTag:   "lte",
		},
		{
			name:      "invalid email",
			input:     syncRequest{UserID: "user-1", Email: "not-an-email"},
			wantField: "Email",
			wantTag:   "email",
		},
		{
			name:      "unknown order",
			input:     syncRequest{UserID: "user-1", Order: "sideways"},
			wantField: "Order",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			errs := err.Errors()
			if len(errs) == 0 {
				t.Fatal("Errors() should contain at least one error")
			}

			found := false
			for _, e := range errs {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("Expected error on field %s with tag %s, got: %v", tt.wantField, tt.wantTag, errs)
			}
		})
	}
}

// ===================================================================================================
// Custom Validator Tests - RFC3339 Timestamps
// ===================================================================================================

type sinceRequest struct {
	Since string `validate:"omitempty,rfc3339"`
}

func TestRFC3339Validation_Valid(t *testing.T) {
	tests := []struct {
		name  string
		since string
	}{
		{"empty is allowed", ""},
		{"plain RFC3339", "2026-08-23T12:00:00Z"},
		{"with offset", "2026-08-23T12:00:00+02:00"},
		{"fractional seconds", "2026-08-23T12:00:00.123456789Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := sinceRequest{Since: tt.since}
			if err := ValidateStruct(&input); err != nil {
				t.Errorf("ValidateStruct() error = %v for %q", err, tt.since)
			}
		})
	}
}

func TestRFC3339Validation_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		since string
	}{
		{"date only", "2026-08-23"},
		{"unix seconds", "1755950400"},
		{"missing timezone", "2026-08-23T12:00:00"},
		{"garbage", "next tuesday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := sinceRequest{Since: tt.since}
			err := ValidateStruct(&input)
			if err == nil {
				t.Fatalf("ValidateStruct() accepted %q", tt.since)
			}
			if errs := err.Errors(); errs[0].Tag() != "rfc3339" {
				t.Errorf("Tag() = %s, want rfc3339", errs[0].Tag())
			}
		})
	}
}

// ===================================================================================================
// Custom Validator Tests - Entity Kind
// ===================================================================================================

type snapshotRequest struct {
	Kind string `validate:"required,entitykind"`
}

func TestEntityKindValidation_Valid(t *testing.T) {
	for _, kind := range []string{"children", "calendar_events", "family_activities", "user_profile"} {
		t.Run(kind, func(t *testing.T) {
			input := snapshotRequest{Kind: kind}
			if err := ValidateStruct(&input); err != nil {
				t.Errorf("ValidateStruct() error = %v for kind %q", err, kind)
			}
		})
	}
}

func TestEntityKindValidation_Invalid(t *testing.T) {
	tests := []struct {
		name string
		kind string
	}{
		{"unknown collection", "photos"},
		{"singular form", "child"},
		{"uppercase", "Children"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := snapshotRequest{Kind: tt.kind}
			err := ValidateStruct(&input)
			if err == nil {
				t.Fatalf("ValidateStruct() accepted kind %q", tt.kind)
			}

			errs := err.Errors()
			if errs[0].Tag() != "entitykind" {
				t.Errorf("Tag() = %s, want entitykind", errs[0].Tag())
			}
			if !strings.Contains(errs[0].Error(), "must be one of") {
				t.Errorf("Error() = %q, want the allowed kinds listed", errs[0].Error())
			}
		})
	}
}

// ===================================================================================================
// Nested Struct Validation
// ===================================================================================================

type nestedRequest struct {
	Sync   syncRequest `validate:"required"`
	Window sinceRequest
}

func TestNestedStructValidation(t *testing.T) {
	input := nestedRequest{
		Sync:   syncRequest{UserID: ""},
		Window: sinceRequest{Since: "garbage"},
	}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("ValidateStruct() should have returned an error")
	}

	var tags []string
	for _, e := range err.Errors() {
		tags = append(tags, e.Tag())
	}

	wantTags := map[string]bool{"required": false, "rfc3339": false}
	for _, tag := range tags {
		if _, ok := wantTags[tag]; ok {
			wantTags[tag] = true
		}
	}
	for tag, seen := range wantTags {
		if !seen {
			t.Errorf("missing %s error in nested validation, got tags %v", tag, tags)
		}
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	input := syncRequest{UserID: ""}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()

	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "UserID is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details == nil {
		t.Fatal("Details = nil")
	}
	if apiErr.Details["field"] != "UserID" {
		t.Errorf("Details[field] = %v, want UserID", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	input := syncRequest{
		UserID:          "",
		IntervalSeconds: 100000,
		Email:           "nope",
	}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()

	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details == nil {
		t.Fatal("Details = nil")
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Details missing 'fields' key for a multi-error response")
	}
	// Combined message lists each failing field.
	for _, field := range []string{"UserID", "IntervalSeconds", "Email"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("Message %q missing field %s", apiErr.Message, field)
		}
	}
}

// ===================================================================================================
// Error Message Translation
// ===================================================================================================

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{
			name:  "required",
			input: &syncRequest{},
			want:  "UserID is required",
		},
		{
			name:  "lte with param",
			input: &syncRequest{UserID: "u", IntervalSeconds: 100000},
			want:  "IntervalSeconds must be less than or equal to 86400",
		},
		{
			name:  "oneof with param",
			input: &syncRequest{UserID: "u", Order: "sideways"},
			want:  "Order must be one of: asc desc",
		},
		{
			name:  "rfc3339",
			input: &sinceRequest{Since: "garbage"},
			want:  "Since must be a valid RFC3339 timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if got := err.Errors()[0].Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ===================================================================================================
// String Length Translation
// ===================================================================================================

func TestStringLengthMessages(t *testing.T) {
	long := strings.Repeat("x", 200)
	input := syncRequest{UserID: long}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	if got := err.Errors()[0].Error(); got != "UserID must be at most 128 characters" {
		t.Errorf("Error() = %q", got)
	}
}
