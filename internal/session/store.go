// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/config"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// StoreType selects a storage backend.
type StoreType string

const (
	// StoreMemory keeps sessions in a TTL cache (default, not persistent).
	StoreMemory StoreType = "memory"

	// StoreBadger keeps sessions in BadgerDB with per-entry TTLs.
	StoreBadger StoreType = "badger"
)

// Store persists session records.
type Store interface {
	// Create stores a new record. It fails with ErrConflict if the id exists.
	Create(ctx context.Context, r *Record) error

	// Get returns a copy of the record, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Replace stores next if the stored record still has version
	// next.Version-1, and fails with ErrConflict otherwise.
	Replace(ctx context.Context, next *Record) error

	// Delete removes a record. Missing records are not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the backend.
	Close() error
}

// NewStore creates the store selected by cfg.
func NewStore(cfg config.SessionConfig) (Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	switch StoreType(cfg.Store) {
	case "", StoreMemory:
		return NewMemoryStore(ttl), nil
	case StoreBadger:
		db, err := OpenBadger(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewBadgerStore(db, ttl, true), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// MemoryStore keeps records in a cache.Cache. Records are copied on the
// way in and out so callers never share a record with the store.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration

	// mu serialises Replace so the version check and the write are atomic.
	mu sync.Mutex
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl),
		ttl:   ttl,
	}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, r *Record) error {
	if !s.cache.SetIfAbsent(r.ID, r.Clone()) {
		return ErrConflict
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Record).Clone(), nil
}

// Replace implements Store.
func (s *MemoryStore) Replace(_ context.Context, next *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(next.ID)
	if !ok {
		return ErrNotFound
	}
	if v.(*Record).Version != next.Version-1 {
		return ErrConflict
	}
	s.cache.SetWithTTL(next.ID, next.Clone(), s.ttl)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Len returns the number of stored records, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Close stops the cache sweeper.
func (s *MemoryStore) Close() error {
	s.cache.Close()
	return nil
}
