// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package cache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c := New(1 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c := New(50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
}

func TestCacheSetIfAbsentFirstWriterWins(t *testing.T) {
	t.Parallel()

	c := New(1 * time.Minute)
	defer c.Close()

	if !c.SetIfAbsent("k", "first") {
		t.Fatal("first SetIfAbsent should store")
	}
	if c.SetIfAbsent("k", "second") {
		t.Error("second SetIfAbsent should be a no-op")
	}
	v, _ := c.Get("k")
	if v != "first" {
		t.Errorf("Get = %v, want first", v)
	}
	if got := c.GetStats().Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}
}

func TestCacheSetIfAbsentReplacesExpired(t *testing.T) {
	t.Parallel()

	c := New(30 * time.Millisecond)
	defer c.Close()

	c.SetIfAbsent("k", "old")
	time.Sleep(50 * time.Millisecond)
	if !c.SetIfAbsent("k", "new") {
		t.Fatal("expired entry should be replaceable")
	}
	if v, _ := c.Get("k"); v != "new" {
		t.Errorf("Get = %v, want new", v)
	}
}

func TestCacheSetIfAbsentConcurrent(t *testing.T) {
	t.Parallel()

	c := New(1 * time.Minute)
	defer c.Close()

	var stored atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if c.SetIfAbsent("shared", i) {
				stored.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if got := stored.Load(); got != 1 {
		t.Errorf("%d writers won, want exactly 1", got)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New(1 * time.Minute)
	defer c.Close()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
	c.Delete("key0")
	if _, ok := c.Get("key0"); ok {
		t.Error("Expected key0 to be deleted")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestCacheCleanupSweepsExpired(t *testing.T) {
	t.Parallel()

	c := NewWithCleanup(10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	deadline := time.Now().Add(time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Errorf("cleanup left %d entries", c.Len())
	}
}

func TestCacheHitRate(t *testing.T) {
	t.Parallel()

	c := New(1 * time.Minute)
	defer c.Close()

	if c.HitRate() != 0 {
		t.Error("empty cache hit rate should be 0")
	}
	c.Set("k", 1)
	c.Get("k")
	c.Get("missing")
	if got := c.HitRate(); got != 50 {
		t.Errorf("HitRate = %v, want 50", got)
	}
}

func TestCacheCloseIdempotent(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Close()
	c.Close()
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	type params struct {
		Text   string
		Radius int
	}

	a := GenerateKey("search:mock", params{"cafe", 800})
	b := GenerateKey("search:mock", params{"cafe", 800})
	c := GenerateKey("search:mock", params{"cafe", 1500})

	if a != b {
		t.Error("identical params must produce identical keys")
	}
	if a == c {
		t.Error("different params must produce different keys")
	}
	if !strings.HasPrefix(a, "search:mock:") {
		t.Errorf("key %q should carry its namespace", a)
	}
	// namespace + ":" + 32 hex chars
	if len(a) != len("search:mock:")+32 {
		t.Errorf("unexpected key length %d", len(a))
	}
}
