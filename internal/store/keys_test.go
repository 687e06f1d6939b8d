// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package store

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var deviceIDPattern = regexp.MustCompile(`^device_(\d+)_([0-9a-z]{9})$`)

func TestNewDeviceID_Format(t *testing.T) {
	before := time.Now().UnixMilli()
	id := NewDeviceID()
	after := time.Now().UnixMilli()

	m := deviceIDPattern.FindStringSubmatch(id)
	if m == nil {
		t.Fatalf("NewDeviceID() = %q, want device_<epochMillis>_<random9>", id)
	}

	millis, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		t.Fatalf("timestamp segment %q not an integer: %v", m[1], err)
	}
	if millis < before || millis > after {
		t.Errorf("timestamp segment = %d, want between %d and %d", millis, before, after)
	}
}

func TestNewDeviceID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewDeviceID()
		if seen[id] {
			t.Fatalf("NewDeviceID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestEnsureDeviceID(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()

	first, err := EnsureDeviceID(kv)
	if err != nil {
		t.Fatalf("EnsureDeviceID() error = %v", err)
	}
	if !strings.HasPrefix(first, "device_") {
		t.Errorf("EnsureDeviceID() = %q, want device_ prefix", first)
	}

	// Subsequent calls return the persisted identifier unchanged.
	second, err := EnsureDeviceID(kv)
	if err != nil {
		t.Fatalf("EnsureDeviceID() second call error = %v", err)
	}
	if second != first {
		t.Errorf("EnsureDeviceID() second call = %q, want %q", second, first)
	}

	stored, err := GetString(kv, KeyDeviceID)
	if err != nil {
		t.Fatalf("GetString(KeyDeviceID) error = %v", err)
	}
	if stored != first {
		t.Errorf("stored device id = %q, want %q", stored, first)
	}
}
