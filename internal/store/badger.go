// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package store

import (
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
)

// BadgerDB tuning. The store holds small values (timestamps, queue
// descriptors), so memtables and value logs stay well below BadgerDB's
// defaults.
const (
	badgerMemTableSize     = 16 * 1024 * 1024 // 16MB
	badgerValueLogFileSize = 64 * 1024 * 1024 // 64MB
	badgerNumCompactors    = 2                // BadgerDB minimum
)

// Options configures the Badger store.
type Options struct {
	// Path is the directory where BadgerDB stores its files.
	// Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Used by tests and
	// ephemeral deployments; nothing survives a restart.
	InMemory bool

	// SyncWrites forces fsync after every write. Defaults to off:
	// queue entries are retried on the next sync cycle, so losing
	// the tail of the journal on power failure is acceptable.
	SyncWrites bool
}

// Badger is a KV backed by BadgerDB.
type Badger struct {
	db *badger.DB

	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ KV = (*Badger)(nil)

// Open creates or opens a Badger store at opts.Path.
func Open(opts Options) (*Badger, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	badgerOpts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	badgerOpts.SyncWrites = opts.SyncWrites
	badgerOpts.MemTableSize = badgerMemTableSize
	badgerOpts.ValueLogFileSize = badgerValueLogFileSize
	badgerOpts.NumCompactors = badgerNumCompactors
	badgerOpts.Compression = options.Snappy
	badgerOpts.Logger = nil // BadgerDB's logger is too chatty

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("Store opened")

	return &Badger{db: db}, nil
}

// OpenForTesting opens an in-memory Badger store for tests.
func OpenForTesting() (*Badger, error) {
	return Open(Options{InMemory: true})
}

// Get returns the value stored under key.
func (b *Badger) Get(key string) ([]byte, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		// Absence is a normal outcome, not a store failure.
		metrics.RecordStoreOperation("get", nil)
		return nil, ErrKeyNotFound
	}
	metrics.RecordStoreOperation("get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (b *Badger) Set(key string, value []byte) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	metrics.RecordStoreOperation("set", err)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Badger) Delete(key string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	metrics.RecordStoreOperation("delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Scan visits every key with the given prefix in lexicographic order.
func (b *Badger) Scan(prefix string, fn func(key string, value []byte) error) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	return b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = true
		iterOpts.Prefix = []byte(prefix)

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if err := item.Value(func(val []byte) error {
				return fn(key, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the BadgerDB handle. Close is idempotent.
func (b *Badger) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	logging.Debug().Msg("Store closed")
	return nil
}

// checkOpen returns ErrStoreClosed if Close has been called.
func (b *Badger) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrStoreClosed
	}
	return nil
}
