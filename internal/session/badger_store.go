// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefix for BadgerDB storage
const recordKeyPrefix = "question_session:"

// OpenBadger opens a BadgerDB at path. An empty path opens an in-memory
// database, which is what the tests use.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for sessions: %w", err)
	}
	return db, nil
}

// BadgerStore implements Store using BadgerDB entries with a TTL.
type BadgerStore struct {
	db   *badger.DB
	ttl  time.Duration
	owns bool
}

// NewBadgerStore wraps db. With owns set, Close also closes db.
func NewBadgerStore(db *badger.DB, ttl time.Duration, owns bool) *BadgerStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BadgerStore{db: db, ttl: ttl, owns: owns}
}

// DB returns the underlying database, used for value-log GC.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

func recordKey(id string) []byte {
	return []byte(recordKeyPrefix + id)
}

// Create implements Store.
func (s *BadgerStore) Create(_ context.Context, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(r.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get session: %w", err)
		}
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(s.ttl))
	})
	return mapTxnError(err)
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		return readRecord(txn, id, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Replace implements Store. Badger's optimistic transactions also reject
// a write that races another transaction on the same key.
func (s *BadgerStore) Replace(_ context.Context, next *Record) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		var cur Record
		if err := readRecord(txn, next.ID, &cur); err != nil {
			return err
		}
		if cur.Version != next.Version-1 {
			return ErrConflict
		}
		return txn.SetEntry(badger.NewEntry(recordKey(next.ID), data).WithTTL(s.ttl))
	})
	return mapTxnError(err)
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(recordKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// Count returns the number of live records.
func (s *BadgerStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(recordKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the database if the store owns it.
func (s *BadgerStore) Close() error {
	if s.owns {
		return s.db.Close()
	}
	return nil
}

func readRecord(txn *badger.Txn, id string, rec *Record) error {
	item, err := txn.Get(recordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, rec); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		return nil
	})
}

func mapTxnError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}
	return err
}
