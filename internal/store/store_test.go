// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// openTestStores returns every KV implementation under test, keyed by
// name. Each store is closed automatically when the test ends.
func openTestStores(t *testing.T) map[string]KV {
	t.Helper()

	badgerMem, err := OpenForTesting()
	if err != nil {
		t.Fatalf("OpenForTesting() error = %v", err)
	}
	t.Cleanup(func() { badgerMem.Close() })

	badgerDisk, err := Open(Options{Path: filepath.Join(t.TempDir(), "store")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { badgerDisk.Close() })

	memory := NewMemory()
	t.Cleanup(func() { memory.Close() })

	return map[string]KV{
		"badger_memory": badgerMem,
		"badger_disk":   badgerDisk,
		"memory":        memory,
	}
}

func TestKV_SetGet(t *testing.T) {
	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set("alpha", []byte("one")); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := kv.Get("alpha")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != "one" {
				t.Errorf("Get() = %q, want %q", got, "one")
			}

			// Overwrite replaces the previous value.
			if err := kv.Set("alpha", []byte("two")); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}
			got, err = kv.Get("alpha")
			if err != nil {
				t.Fatalf("Get() after overwrite error = %v", err)
			}
			if string(got) != "two" {
				t.Errorf("Get() after overwrite = %q, want %q", got, "two")
			}
		})
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get("no-such-key")
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestKV_Delete(t *testing.T) {
	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set("gone", []byte("x")); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := kv.Delete("gone"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := kv.Get("gone"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrKeyNotFound", err)
			}

			// Deleting a missing key is a no-op.
			if err := kv.Delete("never-existed"); err != nil {
				t.Errorf("Delete() of missing key error = %v, want nil", err)
			}
		})
	}
}

func TestKV_Scan(t *testing.T) {
	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			seed := map[string]string{
				"queue:op:003": "c",
				"queue:op:001": "a",
				"queue:op:002": "b",
				"other:key":    "z",
			}
			for k, v := range seed {
				if err := kv.Set(k, []byte(v)); err != nil {
					t.Fatalf("Set(%q) error = %v", k, err)
				}
			}

			var keys []string
			var values []string
			err := kv.Scan("queue:op:", func(key string, value []byte) error {
				keys = append(keys, key)
				values = append(values, string(value))
				return nil
			})
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}

			wantKeys := []string{"queue:op:001", "queue:op:002", "queue:op:003"}
			if !reflect.DeepEqual(keys, wantKeys) {
				t.Errorf("Scan() keys = %v, want %v", keys, wantKeys)
			}
			wantValues := []string{"a", "b", "c"}
			if !reflect.DeepEqual(values, wantValues) {
				t.Errorf("Scan() values = %v, want %v", values, wantValues)
			}
		})
	}
}

func TestKV_ScanPropagatesError(t *testing.T) {
	sentinel := fmt.Errorf("stop here")

	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				key := fmt.Sprintf("item:%d", i)
				if err := kv.Set(key, []byte("v")); err != nil {
					t.Fatalf("Set(%q) error = %v", key, err)
				}
			}

			visited := 0
			err := kv.Scan("item:", func(key string, value []byte) error {
				visited++
				if visited == 2 {
					return sentinel
				}
				return nil
			})
			if !errors.Is(err, sentinel) {
				t.Errorf("Scan() error = %v, want sentinel", err)
			}
			if visited != 2 {
				t.Errorf("Scan() visited %d keys before error, want 2", visited)
			}
		})
	}
}

func TestKV_Closed(t *testing.T) {
	for name, kv := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if _, err := kv.Get("k"); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("Get() on closed store error = %v, want ErrStoreClosed", err)
			}
			if err := kv.Set("k", []byte("v")); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("Set() on closed store error = %v, want ErrStoreClosed", err)
			}
			if err := kv.Delete("k"); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("Delete() on closed store error = %v, want ErrStoreClosed", err)
			}
			err := kv.Scan("", func(string, []byte) error { return nil })
			if !errors.Is(err, ErrStoreClosed) {
				t.Errorf("Scan() on closed store error = %v, want ErrStoreClosed", err)
			}
		})
	}
}

func TestBadger_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	kv, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := kv.Set(KeyLastSync, []byte("2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopen the same directory; the value must survive.
	kv, err = Open(Options{Path: path})
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer kv.Close()

	got, err := kv.Get(KeyLastSync)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != "2026-01-01T00:00:00Z" {
		t.Errorf("Get() after reopen = %q, want %q", got, "2026-01-01T00:00:00Z")
	}
}

func TestBadger_OpenEmptyPath(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Error("Open() with empty path should fail")
	}
}

func TestBadger_CloseIdempotent(t *testing.T) {
	kv, err := OpenForTesting()
	if err != nil {
		t.Fatalf("OpenForTesting() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestTypedHelpers_JSON(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	in := payload{Name: "bedtime", Count: 3}
	if err := SetJSON(kv, "p", in); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var out payload
	if err := GetJSON(kv, "p", &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out != in {
		t.Errorf("GetJSON() = %+v, want %+v", out, in)
	}

	var missing payload
	if err := GetJSON(kv, "absent", &missing); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("GetJSON() of missing key error = %v, want ErrKeyNotFound", err)
	}
}

func TestTypedHelpers_Time(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()

	in := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	if err := SetTime(kv, KeyLastSync, in); err != nil {
		t.Fatalf("SetTime() error = %v", err)
	}

	out, err := GetTime(kv, KeyLastSync)
	if err != nil {
		t.Fatalf("GetTime() error = %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("GetTime() = %v, want %v", out, in)
	}

	// Garbage in the key is surfaced as a parse error, not swallowed.
	if err := SetString(kv, "bad-time", "not-a-timestamp"); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if _, err := GetTime(kv, "bad-time"); err == nil {
		t.Error("GetTime() of malformed value should fail")
	}
}

func TestTypedHelpers_String(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()

	if err := SetString(kv, KeySyncStatus, "syncing"); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	got, err := GetString(kv, KeySyncStatus)
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if got != "syncing" {
		t.Errorf("GetString() = %q, want %q", got, "syncing")
	}

	if _, err := GetString(kv, "absent"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("GetString() of missing key error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemory_ScanReentrant(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()

	if err := kv.Set("scan:a", []byte("1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The callback writes back into the store; this must not deadlock.
	err := kv.Scan("scan:", func(key string, value []byte) error {
		return kv.Set("derived:"+key, value)
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if _, err := kv.Get("derived:scan:a"); err != nil {
		t.Errorf("Get() of key written during scan error = %v", err)
	}
}
