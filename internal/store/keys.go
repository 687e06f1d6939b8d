// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// Well-known keys. Other packages own prefixed key ranges (for example
// the queue journal); the keys below are the shared sync state.
const (
	// KeyLastSync holds the RFC3339Nano timestamp of the last
	// completed full sync. Absent before the first sync.
	KeyLastSync = "last_sync_timestamp"

	// KeySyncStatus holds the current sync phase marker
	// ("idle" or "syncing"). Informational; the in-process
	// single-flight guard is authoritative.
	KeySyncStatus = "sync_status"

	// KeyDeviceID holds the stable identifier for this installation,
	// generated once on first run.
	KeyDeviceID = "device_id"
)

// deviceIDAlphabet is the base36 alphabet used for the random suffix.
const deviceIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// deviceIDRandomLen is the length of the random suffix.
const deviceIDRandomLen = 9

// NewDeviceID generates a device identifier of the form
// device_<epochMillis>_<random9>, e.g. device_1767225600000_k3x9p2q7m.
func NewDeviceID() string {
	buf := make([]byte, deviceIDRandomLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back
		// to a time-derived suffix rather than panic.
		nanos := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(nanos >> (uint(i) * 7))
		}
	}
	for i, b := range buf {
		buf[i] = deviceIDAlphabet[int(b)%len(deviceIDAlphabet)]
	}
	return fmt.Sprintf("device_%d_%s", time.Now().UnixMilli(), buf)
}

// EnsureDeviceID returns the stored device identifier, generating and
// persisting a new one on first use.
func EnsureDeviceID(kv KV) (string, error) {
	id, err := GetString(kv, KeyDeviceID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return "", err
	}

	id = NewDeviceID()
	if err := SetString(kv, KeyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}
