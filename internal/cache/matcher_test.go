// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package cache

import (
	"strings"
	"sync"
	"testing"
)

func TestKeywordMatcher_AllOverlapping(t *testing.T) {
	t.Parallel()

	m := NewKeywordMatcher(nil)
	m.Add("he", nil)
	m.Add("she", nil)
	m.Add("hers", nil)
	m.Build()

	found := map[string]int{}
	for _, mt := range m.All("ushers") {
		found[mt.Keyword] = mt.Position
	}

	want := map[string]int{"she": 1, "he": 2, "hers": 2}
	for k, pos := range want {
		got, ok := found[k]
		if !ok {
			t.Errorf("expected to find %q", k)
			continue
		}
		if got != pos {
			t.Errorf("%q at %d, want %d", k, got, pos)
		}
	}
}

func TestKeywordMatcher_FirstUsesTableOrder(t *testing.T) {
	t.Parallel()

	m := NewKeywordMatcher(nil)
	m.Add("cafe", "cafe")
	m.Add("market", "market")
	m.Build()

	// "market" appears first in the text but "cafe" was added first.
	hit, ok := m.First("Market Cafe Poblenou")
	if !ok {
		t.Fatal("expected a match")
	}
	if hit.Data != "cafe" {
		t.Errorf("First = %v, want cafe", hit.Data)
	}
}

func TestKeywordMatcher_Longest(t *testing.T) {
	t.Parallel()

	m := NewKeywordMatcher(nil)
	m.Add("la principal", "short")
	m.Add("la principal retro", "long")
	m.Build()

	hit, ok := m.Longest("La Principal Retro Vintage")
	if !ok || hit.Data != "long" {
		t.Errorf("Longest = %+v, %v; want long", hit, ok)
	}
}

func TestKeywordMatcher_WholeWord(t *testing.T) {
	t.Parallel()

	m := NewKeywordMatcher(nil)
	m.AddWord("bar", "restaurant")
	m.Build()

	tests := []struct {
		text string
		want bool
	}{
		{"Bar Celta", true},
		{"El Xampanyet bar", true},
		{"tapas-bar", true},
		{"Barcelona", false},
		{"Embarcadero", false},
	}
	for _, tt := range tests {
		if got := m.Contains(tt.text); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestKeywordMatcher_FoldAndMultibyte(t *testing.T) {
	t.Parallel()

	stripAccents := strings.NewReplacer("à", "a", "ç", "c", "í", "i").Replace
	m := NewKeywordMatcher(stripAccents)
	m.Add("plaça", "park")
	m.Add("cafetería", "cafe")
	m.Build()

	if hit, ok := m.First("PLACA REIAL"); !ok || hit.Data != "park" {
		t.Errorf("folded match failed: %+v %v", hit, ok)
	}
	hit, ok := m.First("Cafetería Ñandú")
	if !ok || hit.Data != "cafe" || hit.Position != 0 {
		t.Errorf("multibyte match = %+v %v", hit, ok)
	}
}

func TestKeywordMatcher_EmptyAndUnbuilt(t *testing.T) {
	t.Parallel()

	m := NewKeywordMatcher(nil)
	m.Add("", "ignored")
	if m.Len() != 0 {
		t.Error("empty keyword should be ignored")
	}
	m.Add("park", nil)
	if m.Contains("park") {
		t.Error("unbuilt matcher should not match")
	}
	m.Build()
	if !m.Contains("a park") {
		t.Error("built matcher should match")
	}
	if _, ok := m.First("nothing here"); ok {
		t.Error("unexpected match")
	}
}

func TestKeywordMatcher_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewKeywordMatcher(nil)
	for _, k := range []string{"starbucks", "zara", "h&m", "five guys"} {
		m.Add(k, k)
	}
	m.Build()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if hit, ok := m.First("Starbucks Reserve"); !ok || hit.Data != "starbucks" {
				t.Errorf("concurrent First = %+v %v", hit, ok)
			}
		}()
	}
	wg.Wait()
}
