// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package query

import (
	"context"
	"strings"
	"testing"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

var ccib = models.Context{
	LocationLabel: "CCIB",
	Coords:        models.Coordinates{Lat: 41.4095, Lng: 2.2184},
	Language:      "es",
}

func TestRadius(t *testing.T) {
	t.Parallel()

	tests := map[models.TimeBucket]int{
		models.TimeBucketUpTo30:  800,
		models.TimeBucket30To60:  1500,
		models.TimeBucket60To120: 3000,
		models.TimeBucketOver120: 5000,
		"bogus":                  5000,
	}
	for b, want := range tests {
		if got := Radius(b); got != want {
			t.Errorf("Radius(%q) = %d, want %d", b, got, want)
		}
	}
}

func TestGenerateSingleTheme(t *testing.T) {
	t.Parallel()

	qs := Generate(ccib, models.Preferences{
		TimeBucket:  models.TimeBucketUpTo30,
		BudgetLevel: models.PriceLow,
		Themes:      []models.Theme{models.ThemeRelax},
	})

	want := []recommend.SearchQuery{
		{Text: "cafe acogedor cerca de CCIB barato", Target: recommend.TargetMaps, RadiusM: 800, Locale: "es-ES", Theme: models.ThemeRelax},
		{Text: "cozy cafe near CCIB cheap", Target: recommend.TargetWeb, RadiusM: 800, Locale: "en", Theme: models.ThemeRelax},
		{Text: "parque tranquilo cerca de CCIB barato", Target: recommend.TargetMaps, RadiusM: 800, Locale: "es-ES", Theme: models.ThemeRelax},
	}
	if len(qs) != len(want) {
		t.Fatalf("got %d queries, want %d: %+v", len(qs), len(want), qs)
	}
	for i := range want {
		if qs[i] != want[i] {
			t.Errorf("query[%d] = %+v, want %+v", i, qs[i], want[i])
		}
	}
}

func TestGenerateCapsAtSix(t *testing.T) {
	t.Parallel()

	qs := Generate(ccib, models.Preferences{
		TimeBucket:  models.TimeBucketOver120,
		BudgetLevel: models.PriceMid,
		Themes:      models.AllThemes,
	})
	if len(qs) != MaxQueries {
		t.Fatalf("got %d queries, want %d", len(qs), MaxQueries)
	}
	seen := map[string]bool{}
	for _, q := range qs {
		if seen[q.Text] {
			t.Errorf("duplicate query %q", q.Text)
		}
		seen[q.Text] = true
		if q.RadiusM != 5000 {
			t.Errorf("RadiusM = %d, want 5000", q.RadiusM)
		}
		if !strings.Contains(q.Text, "moderado") && !strings.Contains(q.Text, "moderate") {
			t.Errorf("query %q lacks budget keyword", q.Text)
		}
	}
}

func TestGenerateCatalan(t *testing.T) {
	t.Parallel()

	c := ccib
	c.Language = "ca"
	qs := Generate(c, models.Preferences{
		TimeBucket:  models.TimeBucket30To60,
		BudgetLevel: models.PriceHigh,
		Themes:      []models.Theme{models.ThemeFood},
	})
	if len(qs) < MinQueries {
		t.Fatalf("got %d queries", len(qs))
	}
	if qs[0].Text != "menjar barat a prop de CCIB selecte" || qs[0].Locale != "ca-ES" {
		t.Errorf("first query = %+v", qs[0])
	}
}

func TestGenerateDefaultsWithoutThemes(t *testing.T) {
	t.Parallel()

	qs := Generate(ccib, models.Preferences{TimeBucket: models.TimeBucket30To60})
	if len(qs) < MinQueries {
		t.Fatalf("got %d queries, want at least %d", len(qs), MinQueries)
	}
	if qs[0].Theme != models.ThemeRelax {
		t.Errorf("default theme = %q, want relax", qs[0].Theme)
	}
	// Unknown budget adds no keyword.
	if qs[0].Text != "cafe acogedor cerca de CCIB" {
		t.Errorf("query = %q", qs[0].Text)
	}
}

func TestGeneratorStage(t *testing.T) {
	t.Parallel()

	st := recommend.NewState("req", "sess", ccib, models.Preferences{
		TimeBucket:  models.TimeBucket60To120,
		BudgetLevel: models.PriceLow,
		Themes:      []models.Theme{models.ThemeShopping},
	}, 4)
	g := NewGenerator()
	if g.Name() != "query" {
		t.Errorf("Name() = %q", g.Name())
	}
	if err := g.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(st.Queries) < MinQueries || len(st.Queries) > MaxQueries {
		t.Errorf("len(Queries) = %d", len(st.Queries))
	}
	if st.Queries[0].RadiusM != 3000 {
		t.Errorf("RadiusM = %d, want 3000", st.Queries[0].RadiusM)
	}
}
