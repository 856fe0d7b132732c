// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/config"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/fallback"
	"github.com/tomtom215/sidequest/internal/recommend/judge"
	"github.com/tomtom215/sidequest/internal/recommend/search"
)

// cannedProvider answers every query with the same places.
type cannedProvider struct {
	places []search.Place
	err    error
	calls  atomic.Int32
}

func (p *cannedProvider) Name() string                   { return "canned" }
func (p *cannedProvider) Target() recommend.SearchTarget { return recommend.TargetMaps }
func (p *cannedProvider) Search(_ context.Context, _ search.Query) ([]search.Place, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return append([]search.Place(nil), p.places...), nil
}

// scriptedJudge returns a fixed evaluation or error.
type scriptedJudge struct {
	eval *judge.Evaluation
	err  error
}

func (j *scriptedJudge) Evaluate(context.Context, []judge.Candidate, judge.Constraints) (*judge.Evaluation, error) {
	return j.eval, j.err
}

func contexts() *recommend.ContextProvider {
	return recommend.NewContextProvider(config.AnchorConfig{
		Label:            "CCIB",
		Lat:              41.4095,
		Lng:              2.2184,
		WeatherCondition: "sunny",
		TempC:            24,
		Language:         "es",
	})
}

func newEngine(t *testing.T, deps Deps) *recommend.Engine {
	t.Helper()
	if deps.Catalog == nil {
		deps.Catalog = fallback.Builtin()
	}
	engine, err := New(DefaultOptions(), contexts(), deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return engine
}

func request(bucket models.TimeBucket, themes ...models.Theme) models.RecommendRequest {
	return models.RecommendRequest{Preferences: models.Preferences{
		TimeBucket:  bucket,
		BudgetLevel: models.PriceLow,
		Themes:      themes,
	}}
}

func coords(lat, lng float64) *models.Coordinates {
	return &models.Coordinates{Lat: lat, Lng: lng}
}

func rating(r float64) *float64 { return &r }

// greens are four parks around the anchor, nearest first.
func greens() []search.Place {
	return []search.Place{
		{Source: models.SourceSerpAPI, Title: "Parc del Forum", Type: "Park", GPS: coords(41.4110, 2.2200), Rating: rating(4.2), Reviews: "310"},
		{Source: models.SourceSerpAPI, Title: "Parc de Diagonal Mar", Type: "Park", GPS: coords(41.4080, 2.2140), Rating: rating(4.5), Reviews: "1,204"},
		{Source: models.SourceSerpAPI, Title: "Cafe Lumen", Type: "Cafe", GPS: coords(41.4100, 2.2170), Rating: rating(4.6), Reviews: "88", PriceText: "€"},
		{Source: models.SourceSerpAPI, Title: "Mercat del Poblenou", Type: "Market", GPS: coords(41.4060, 2.2080), Rating: rating(4.0), Reviews: "95"},
	}
}

func names(items []models.ActivityItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Name
	}
	return out
}

func TestStageOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		deps Deps
		opts func(*Options)
		want []string
	}{
		{
			name: "with judge",
			deps: Deps{Judge: &scriptedJudge{}},
			want: []string{"query", "search", "timefit", "rank", "evaluate", "reviews", "fallback"},
		},
		{
			name: "without judge",
			want: []string{"query", "search", "timefit", "rank", "reviews", "fallback"},
		},
		{
			name: "reviews disabled",
			opts: func(o *Options) { o.ReviewsDisabled = true },
			want: []string{"query", "search", "timefit", "rank", "fallback"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			deps := tt.deps
			deps.Primary = []search.Provider{search.NewMock()}
			deps.Catalog = fallback.Builtin()
			engine, err := New(opts, contexts(), deps, zerolog.Nop())
			if err != nil {
				t.Fatal(err)
			}
			if got := engine.StageNames(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StageNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRequiresCatalogAndProvider(t *testing.T) {
	t.Parallel()

	if _, err := New(DefaultOptions(), contexts(), Deps{Primary: []search.Provider{search.NewMock()}}, zerolog.Nop()); !errors.Is(err, recommend.ErrEmptyCatalog) {
		t.Errorf("missing catalog: err = %v, want ErrEmptyCatalog", err)
	}
	if _, err := New(DefaultOptions(), contexts(), Deps{Catalog: fallback.Builtin()}, zerolog.Nop()); err == nil {
		t.Error("missing primary provider: expected error")
	}
}

func TestRecommendMockProviders(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, Deps{Primary: []search.Provider{search.NewMock()}})
	resp, err := engine.Recommend(context.Background(), request(models.TimeBucketUpTo30, models.ThemeRelax, models.ThemeFood), recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Items) == 0 || len(resp.Items) > 4 {
		t.Fatalf("items = %d, want 1..4", len(resp.Items))
	}
	if !strings.HasPrefix(resp.SessionID, "session_") {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
	if resp.Context.LocationLabel != "CCIB" {
		t.Errorf("context label = %q", resp.Context.LocationLabel)
	}
	for _, it := range resp.Items {
		if !it.Category.Valid() || it.DirectionsLink == "" || it.ReasonText == "" || it.BudgetHint == "" {
			t.Errorf("%s is missing mandatory fields: %+v", it.Name, it)
		}
		if it.Source != models.SourceFallback && it.TotalTimeMin > 30 {
			t.Errorf("%s total %d min breaks the strict bucket", it.Name, it.TotalTimeMin)
		}
	}
}

func TestRecommendAllProvidersFail(t *testing.T) {
	t.Parallel()

	provider := &cannedProvider{err: recommend.Errorf(recommend.CodeProviderError, "canned.search", "status 503")}
	engine := newEngine(t, Deps{Primary: []search.Provider{provider}})

	resp, err := engine.Recommend(context.Background(), request(models.TimeBucketUpTo30, models.ThemeRelax), recommend.Options{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v, provider failures must not fail the request", err)
	}
	if len(resp.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(resp.Items))
	}
	for _, it := range resp.Items {
		if it.Source != models.SourceFallback {
			t.Errorf("%s source = %s, want fallback", it.Name, it.Source)
		}
	}
	if !resp.Meta.FallbackUsed || !resp.Meta.ProviderError {
		t.Errorf("meta = %+v, want fallback_used and provider_error", resp.Meta)
	}
	if resp.Meta.SourceStats["fallback"] != 4 {
		t.Errorf("source stats = %v", resp.Meta.SourceStats)
	}
	if provider.calls.Load() == 0 {
		t.Error("provider was never called")
	}
}

func TestRecommendStrictBucketDistance(t *testing.T) {
	t.Parallel()

	// 1.2 km walks in 15 min, plus a 15 min park visit: 30 min total.
	// 5 km is an hour on foot and must be excluded.
	provider := &cannedProvider{places: []search.Place{
		{Source: models.SourceSerpAPI, Title: "Near Green", Type: "Park", GPS: coords(41.4203, 2.2184)},
		{Source: models.SourceSerpAPI, Title: "Far Green", Type: "Park", GPS: coords(41.4545, 2.2184)},
	}}
	engine := newEngine(t, Deps{Primary: []search.Provider{provider}})

	resp, err := engine.Recommend(context.Background(), request(models.TimeBucketUpTo30, models.ThemeRelax), recommend.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var near *models.ActivityItem
	for i := range resp.Items {
		switch resp.Items[i].Name {
		case "Near Green":
			near = &resp.Items[i]
		case "Far Green":
			t.Errorf("far park was recommended: %+v", resp.Items[i])
		}
	}
	if near == nil {
		t.Fatalf("near park missing from %v", names(resp.Items))
	}
	if near.TravelTimeMin != 15 || near.TotalTimeMin != 30 {
		t.Errorf("near travel/total = %d/%d, want 15/30", near.TravelTimeMin, near.TotalTimeMin)
	}
	if near.TimeFitnessScore != 20 {
		t.Errorf("near TimeFitnessScore = %v, want 20", near.TimeFitnessScore)
	}
	if resp.Items[0].Name != "Near Green" {
		t.Errorf("organic item must lead, got %v", names(resp.Items))
	}
	if len(resp.Items) != 4 || !resp.Meta.FallbackUsed {
		t.Errorf("items = %v, fallback %v; want a top-up to 4", names(resp.Items), resp.Meta.FallbackUsed)
	}
}

func TestRecommendMalformedJudgeKeepsRankerOrder(t *testing.T) {
	t.Parallel()

	req := request(models.TimeBucket30To60, models.ThemeRelax, models.ThemeFood)

	plain := newEngine(t, Deps{Primary: []search.Provider{&cannedProvider{places: greens()}}})
	want, err := plain.Recommend(context.Background(), req, recommend.Options{})
	if err != nil {
		t.Fatal(err)
	}

	broken := newEngine(t, Deps{
		Primary: []search.Provider{&cannedProvider{places: greens()}},
		Judge:   &scriptedJudge{err: fmt.Errorf("%w: no JSON object in reply", judge.ErrMalformed)},
	})
	got, err := broken.Recommend(context.Background(), req, recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v, a judge failure must be absorbed", err)
	}

	if got.Meta.LLMEvaluated {
		t.Error("LLMEvaluated = true after malformed output")
	}
	if !reflect.DeepEqual(names(got.Items), names(want.Items)) {
		t.Errorf("order = %v, want ranker order %v", names(got.Items), names(want.Items))
	}
	for i := range got.Items {
		if got.Items[i].ReasonText != want.Items[i].ReasonText || got.Items[i].TotalScore != want.Items[i].TotalScore {
			t.Errorf("item %d differs: %+v vs %+v", i, got.Items[i], want.Items[i])
		}
	}
}

func TestRecommendJudgeReorders(t *testing.T) {
	t.Parallel()

	req := request(models.TimeBucket30To60, models.ThemeRelax, models.ThemeFood)
	plain := newEngine(t, Deps{Primary: []search.Provider{&cannedProvider{places: greens()}}})
	base, err := plain.Recommend(context.Background(), req, recommend.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(base.Items) < 2 {
		t.Fatalf("need two organic items, got %v", names(base.Items))
	}

	j := &scriptedJudge{eval: &judge.Evaluation{
		Selections: []judge.Selection{
			{Index: 1, Score: 92, Reason: "shaded and quiet", Pitch: "[10 min walk] Shaded benches by the sea."},
			{Index: 0, Score: 85, Reason: "close"},
			{Index: 2, Score: 60, Reason: "good coffee"},
			{Index: 3, Score: 50, Reason: "busy"},
		},
		Summary: "Two calm picks near the venue.",
	}}
	engine := newEngine(t, Deps{Primary: []search.Provider{&cannedProvider{places: greens()}}, Judge: j})
	resp, err := engine.Recommend(context.Background(), req, recommend.Options{})
	if err != nil {
		t.Fatal(err)
	}

	if !resp.Meta.LLMEvaluated || resp.Meta.LLMEvaluation != "Two calm picks near the venue." {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if resp.Items[0].Name != base.Items[1].Name || resp.Items[1].Name != base.Items[0].Name {
		t.Errorf("order = %v, want the judge's first two picks swapped from %v", names(resp.Items), names(base.Items))
	}
	if resp.Items[0].LLMScore == nil || *resp.Items[0].LLMScore != 92 {
		t.Errorf("LLMScore = %v", resp.Items[0].LLMScore)
	}
	if resp.Items[0].ReasonText != "[10 min walk] Shaded benches by the sea." {
		t.Errorf("pitch not applied: %q", resp.Items[0].ReasonText)
	}
}

func TestRecommendInvalidInput(t *testing.T) {
	t.Parallel()

	provider := &cannedProvider{places: greens()}
	engine := newEngine(t, Deps{Primary: []search.Provider{provider}})

	tests := []struct {
		name string
		req  models.RecommendRequest
	}{
		{"no themes", request(models.TimeBucketUpTo30)},
		{"unknown bucket", request("15-20", models.ThemeRelax)},
		{"unknown theme", request(models.TimeBucketUpTo30, "nightlife")},
		{"bad budget", models.RecommendRequest{Preferences: models.Preferences{
			TimeBucket: models.TimeBucketUpTo30, BudgetLevel: "free", Themes: []models.Theme{models.ThemeRelax},
		}}},
	}
	for _, tt := range tests {
		_, err := engine.Recommend(context.Background(), tt.req, recommend.Options{})
		if recommend.CodeOf(err) != recommend.CodeInvalidInput {
			t.Errorf("%s: CodeOf(%v) = %s, want INVALID_INPUT", tt.name, err, recommend.CodeOf(err))
		}
	}
	if n := provider.calls.Load(); n != 0 {
		t.Errorf("provider called %d times for invalid input", n)
	}
}
