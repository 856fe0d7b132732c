// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

// Entry is a stored value and its deadline.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

func (e Entry) live(now time.Time) bool {
	return !now.After(e.ExpiresAt)
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Rejected    int64 // SetIfAbsent calls that lost to a live entry
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a TTL map safe for concurrent use. Provider results and
// question sessions are its main tenants.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time

	hits, misses, evictions, rejected atomic.Int64
	lastCleanup                       atomic.Int64 // unix nanos

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache whose entries live for ttl. A background sweep runs
// every DefaultCleanupInterval until Close.
//
//	c := cache.New(10 * time.Minute)
//	defer c.Close()
//	c.SetIfAbsent(key, places)
//	if v, ok := c.Get(key); ok {
//	    places := v.([]search.Place)
//	}
func New(ttl time.Duration) *Cache {
	return NewWithCleanup(ttl, DefaultCleanupInterval)
}

// NewWithCleanup is New with an explicit sweep interval.
func NewWithCleanup(ttl, interval time.Duration) *Cache {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	c.lastCleanup.Store(c.now().UnixNano())

	go c.sweepEvery(interval)
	return c
}

// TTL returns the default time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the live value for key. An expired entry is dropped and
// counted as a miss and an eviction.
func (c *Cache) Get(key string) (interface{}, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	switch {
	case !ok:
		c.misses.Add(1)
		return nil, false
	case e.live(now):
		c.hits.Add(1)
		return e.Data, true
	}

	c.mu.Lock()
	// A concurrent writer may have refreshed the entry.
	if cur, ok := c.entries[key]; ok && !cur.live(now) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	c.misses.Add(1)
	c.evictions.Add(1)
	return nil, false
}

// Set stores value with the default TTL, replacing any entry.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value for ttl, replacing any entry.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// SetIfAbsent stores value only when key has no live entry and reports
// whether it did. The first writer wins; expired entries are replaced.
func (c *Cache) SetIfAbsent(key string, value interface{}) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[key]; ok && cur.live(now) {
		c.rejected.Add(1)
		return false
	}
	c.entries[key] = Entry{Data: value, ExpiresAt: now.Add(c.ttl)}
	return true
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if ok {
		c.evictions.Add(1)
	}
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.evictions.Add(int64(n))
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Rejected:    c.rejected.Load(),
		TotalKeys:   int64(c.Len()),
		LastCleanup: time.Unix(0, c.lastCleanup.Load()),
	}
}

// HitRate returns hits as a percentage of lookups, or 0 before any lookup.
func (c *Cache) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := c.now()
	var dropped int64

	c.mu.Lock()
	for key, e := range c.entries {
		if !e.live(now) {
			delete(c.entries, key)
			dropped++
		}
	}
	c.mu.Unlock()

	c.evictions.Add(dropped)
	c.lastCleanup.Store(now.UnixNano())
}

// GenerateKey derives a stable key from a namespace and JSON-encodable
// params: the namespace, a colon and 32 hex characters.
func GenerateKey(namespace string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", namespace, params)
	}
	sum := sha256.Sum256(data)
	return namespace + ":" + hex.EncodeToString(sum[:16])
}
