// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package store

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// KV is the key-value store used for sync state and the queue journal.
//
// Implementations must be safe for concurrent use. Get returns
// ErrKeyNotFound when the key does not exist; Delete of a missing key
// is a no-op. All operations on a closed store return ErrStoreClosed.
type KV interface {
	// Get returns the value stored under key.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Scan visits every key with the given prefix in lexicographic
	// order. The value slice is only valid for the duration of the
	// callback; copy it if it must outlive the call. Returning an
	// error from fn stops the scan and propagates the error.
	Scan(prefix string, fn func(key string, value []byte) error) error

	// Close releases the underlying storage. Subsequent operations
	// return ErrStoreClosed.
	Close() error
}

// GetJSON reads key and unmarshals its value into v.
func GetJSON(kv KV, key string, v interface{}) error {
	data, err := kv.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(kv KV, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return kv.Set(key, data)
}

// GetString reads key as a UTF-8 string.
func GetString(kv KV, key string) (string, error) {
	data, err := kv.Get(key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetString stores s under key.
func SetString(kv KV, key, s string) error {
	return kv.Set(key, []byte(s))
}

// GetTime reads key as an RFC3339Nano timestamp.
func GetTime(kv KV, key string) (time.Time, error) {
	data, err := kv.Get(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return t, nil
}

// SetTime stores t under key in RFC3339Nano format.
func SetTime(kv KV, key string, t time.Time) error {
	return kv.Set(key, []byte(t.Format(time.RFC3339Nano)))
}

// Errors
var (
	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = fmt.Errorf("key not found")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = fmt.Errorf("store is closed")
)
