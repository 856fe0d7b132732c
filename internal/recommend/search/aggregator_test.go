// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

func testState(queries ...recommend.SearchQuery) *recommend.State {
	prefs := models.Preferences{
		TimeBucket:  models.TimeBucketUpTo30,
		BudgetLevel: models.PriceLow,
		Themes:      []models.Theme{models.ThemeRelax},
	}
	st := recommend.NewState("req-1", "session-1", anchorContext(), prefs, 4)
	st.Queries = queries
	return st
}

func mapsQuery(text string) recommend.SearchQuery {
	return recommend.SearchQuery{Text: text, Target: recommend.TargetMaps, RadiusM: 800, Locale: "es-ES"}
}

func webQuery(text string) recommend.SearchQuery {
	return recommend.SearchQuery{Text: text, Target: recommend.TargetWeb, RadiusM: 800, Locale: "en"}
}

func fastConfig() AggregatorConfig {
	cfg := DefaultAggregatorConfig()
	cfg.PrimaryTimeout = 100 * time.Millisecond
	cfg.SecondaryTimeout = 100 * time.Millisecond
	cfg.TotalTimeout = 150 * time.Millisecond
	return cfg
}

func newTestAggregator(t *testing.T, cfg AggregatorConfig, primary, secondary []Provider) *Aggregator {
	t.Helper()
	a, err := NewAggregator(cfg, nil, primary, secondary, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}
	return a
}

func TestNewAggregatorValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewAggregator(DefaultAggregatorConfig(), nil, nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error without primary providers")
	}
	cfg := DefaultAggregatorConfig()
	cfg.TotalTimeout = time.Second
	if _, err := NewAggregator(cfg, nil, []Provider{NewMock()}, nil, zerolog.Nop()); err == nil {
		t.Error("expected error when total budget is below primary budget")
	}
}

func TestAggregatorMockMode(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(t, DefaultAggregatorConfig(), []Provider{NewMock()}, nil)
	st := testState(mapsQuery("cafe acogedor cerca de CCIB barato"), webQuery("cozy cafe near CCIB cheap"))

	if err := a.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(st.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(st.Items))
	}
	if st.SourceStats["mock"] != 4 || st.ProviderFailed {
		t.Errorf("SourceStats = %v, ProviderFailed = %v", st.SourceStats, st.ProviderFailed)
	}
	for i := range st.Items {
		it := &st.Items[i]
		if it.Source != models.SourceMock || it.Coords == nil || it.DirectionsLink == "" {
			t.Errorf("item %q not fully normalized: %+v", it.Name, it)
		}
	}
}

func TestAggregatorDedupesAcrossQueries(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(t, DefaultAggregatorConfig(), []Provider{NewMock()}, nil)
	st := testState(mapsQuery("cafe acogedor"), mapsQuery("cafe tranquilo"))
	if err := a.Run(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	// The second query returns the four cafes again plus three parks.
	if len(st.Items) != 7 {
		t.Errorf("items = %d, want 7", len(st.Items))
	}
	if st.SourceStats["mock"] != 11 {
		t.Errorf("raw mock count = %d, want 11", st.SourceStats["mock"])
	}
}

func TestAggregatorSecondary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		primary       *fakeProvider
		wantSecondary bool
		wantFailed    bool
		wantItems     int
	}{
		{
			name:          "thin primary",
			primary:       &fakeProvider{name: "primary", places: namedPlaces(models.SourceSerpAPI, "Maps", 2)},
			wantSecondary: true,
			wantItems:     5,
		},
		{
			name:          "sufficient primary",
			primary:       &fakeProvider{name: "primary", places: namedPlaces(models.SourceSerpAPI, "Maps", 6)},
			wantSecondary: false,
			wantItems:     6,
		},
		{
			name:          "failed primary",
			primary:       &fakeProvider{name: "primary", err: errors.New("boom")},
			wantSecondary: true,
			wantFailed:    true,
			wantItems:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			secondary := &fakeProvider{name: "web", target: recommend.TargetWeb, places: namedPlaces(models.SourceBing, "Web", 3)}
			a := newTestAggregator(t, fastConfig(), []Provider{tt.primary}, []Provider{secondary})
			st := testState(mapsQuery("cafe acogedor"), webQuery("cozy cafe"))

			if err := a.Run(context.Background(), st); err != nil {
				t.Fatal(err)
			}
			called := secondary.calls.Load() > 0
			if called != tt.wantSecondary {
				t.Errorf("secondary called = %v, want %v", called, tt.wantSecondary)
			}
			if called {
				if q := secondary.queries(); len(q) != 1 || q[0] != "cozy cafe" {
					t.Errorf("secondary queries = %v, want the web query", q)
				}
			}
			if got := tt.primary.queries(); len(got) != 1 || got[0] != "cafe acogedor" {
				t.Errorf("primary queries = %v, want the maps query", got)
			}
			if st.ProviderFailed != tt.wantFailed {
				t.Errorf("ProviderFailed = %v, want %v", st.ProviderFailed, tt.wantFailed)
			}
			if len(st.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(st.Items), tt.wantItems)
			}
			if _, ok := st.SourceStats["primary"]; !ok {
				t.Errorf("SourceStats = %v, want an entry for every attempted provider", st.SourceStats)
			}
		})
	}
}

func TestAggregatorDropsStragglers(t *testing.T) {
	t.Parallel()

	fast := &fakeProvider{name: "fast", places: namedPlaces(models.SourceSerpAPI, "Fast", 1)}
	slow := &fakeProvider{name: "slow", places: namedPlaces(models.SourceSerpAPI, "Slow", 3), delay: 2 * time.Second, ignoreCtx: true}
	a := newTestAggregator(t, fastConfig(), []Provider{fast, slow}, nil)
	st := testState(mapsQuery("cafe"))

	start := time.Now()
	if err := a.Run(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Run took %v, should return at the primary budget", elapsed)
	}
	if len(st.Items) != 1 || st.Items[0].Name != "Fast 0" {
		t.Errorf("items = %+v, want only the fast result", st.Items)
	}
	if !st.ProviderFailed {
		t.Error("ProviderFailed should be set when a provider misses its budget")
	}
	if st.SourceStats["fast"] != 1 || st.SourceStats["slow"] != 0 {
		t.Errorf("SourceStats = %v", st.SourceStats)
	}
}

func TestAggregatorAllProvidersFail(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	secondary := &fakeProvider{name: "web", err: errors.New("down")}
	a := newTestAggregator(t, fastConfig(), []Provider{primary}, []Provider{secondary})
	st := testState(mapsQuery("cafe"), webQuery("cafe"))

	if err := a.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() should absorb provider failures, got %v", err)
	}
	if len(st.Items) != 0 || !st.ProviderFailed {
		t.Errorf("items = %d, ProviderFailed = %v", len(st.Items), st.ProviderFailed)
	}
}

func TestAggregatorCapsItems(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "primary", places: namedPlaces(models.SourceSerpAPI, "Place", 20)}
	a := newTestAggregator(t, fastConfig(), []Provider{primary}, nil)
	st := testState(mapsQuery("anything"))

	if err := a.Run(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	if len(st.Items) != 15 {
		t.Errorf("items = %d, want 15", len(st.Items))
	}
	if st.SourceStats["primary"] != 20 {
		t.Errorf("raw count = %d, want 20", st.SourceStats["primary"])
	}
	if st.Items[0].Name != "Place 0" || st.Items[14].Name != "Place 14" {
		t.Errorf("order not preserved: first %q last %q", st.Items[0].Name, st.Items[14].Name)
	}
}
