// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package fallback

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/ranker"
	"github.com/tomtom215/sidequest/internal/recommend/timefit"
)

// StageName is the pipeline name of the generator.
const StageName = "fallback"

// Scoring constants. Catalog scores start below typical organic scores.
const (
	BaseScore       = 60
	NearBonus       = 15 // <= 500 m
	MidBonus        = 10 // <= 1000 m
	FarBonus        = 5
	ThemeBonus      = 5
	RainIndoor      = 10
	RainOutdoor     = -5
	DryOutdoor      = 5
	StayMinutes     = 20
	nearMeters      = 500
	midMeters       = 1000
	maxCatalogScore = 100
)

// Generator is the fallback stage. Register it with RegisterStage: it is
// the terminal availability guarantee and its failure fails the request.
type Generator struct {
	catalog *Catalog
	city    string
	logger  zerolog.Logger
}

// NewGenerator creates the stage. city is used for text direction links.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGenerator(catalog *Catalog, city string, logger zerolog.Logger) *Generator {
	return &Generator{
		catalog: catalog,
		city:    city,
		logger:  logger.With().Str("component", "fallback").Logger(),
	}
}

// Name implements recommend.Stage.
func (g *Generator) Name() string { return StageName }

// Run implements recommend.Stage. It appends catalog items after the
// current results until TopN is reached or the catalog is exhausted.
func (g *Generator) Run(_ context.Context, st *recommend.State) error {
	missing := st.Missing()
	if missing == 0 {
		return nil
	}
	if g.catalog.Len() == 0 {
		return recommend.Errorf(recommend.CodeInternal, "fallback.generate", "%w", recommend.ErrEmptyCatalog)
	}

	candidates := make([]models.ActivityItem, 0, g.catalog.Len())
	for i := range g.catalog.entries {
		e := &g.catalog.entries[i]
		if st.Has(e.ID, geo.NormalizeName(e.Name), geo.NormalizeName) {
			continue
		}
		candidates = append(candidates, g.item(e, st))
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].TotalScore > candidates[b].TotalScore
	})
	if len(candidates) > missing {
		candidates = candidates[:missing]
	}
	if len(candidates) == 0 {
		return nil
	}

	st.Results = append(st.Results, candidates...)
	st.FallbackUsed = true
	if st.SourceStats == nil {
		st.SourceStats = make(map[string]int)
	}
	st.SourceStats[string(models.SourceFallback)] += len(candidates)
	metrics.RecordFallback(len(candidates))

	g.logger.Info().
		Str("request_id", st.RequestID).
		Int("added", len(candidates)).
		Int("results", len(st.Results)).
		Msg("topped up results from curated catalog")
	return nil
}

// item materializes e for the request anchor.
func (g *Generator) item(e *Entry, st *recommend.State) models.ActivityItem {
	coords := models.Coordinates{Lat: e.Lat, Lng: e.Lng}
	dist := geo.DistanceMeters(st.Context.Coords, coords)
	open := true

	it := models.ActivityItem{
		ID:                  e.ID,
		Name:                e.Name,
		Category:            e.Category,
		PriceLevel:          models.PriceLow,
		BudgetHint:          models.PriceLow,
		OpenNow:             &open,
		IndoorOutdoor:       e.Setting,
		Address:             e.Address,
		Coords:              &coords,
		DistanceMeters:      &dist,
		Travel:              geo.EstimateTravel(dist),
		ExpectedWaitMin:     0,
		ExpectedDurationMin: StayMinutes,
		ThemeTags:           append([]models.Theme(nil), e.Themes...),
		Source:              models.SourceFallback,
		LocaleHints:         models.LocaleHints{LocalVibe: true},
	}
	timefit.Annotate(&it, st.Prefs.TimeBucket, st.Prefs.TravelMode)
	it.TotalScore = Score(&it, &st.Prefs, st.Context.Weather)
	it.ReasonText = ranker.TravelLabel(it.TravelTimeMin, st.Prefs.TravelMode) + " " + e.Note
	it.DirectionsLink = geo.DirectionsLink(st.Context.Coords, it.Coords, it.Name, g.city)
	return it
}

// Score rates a catalog item by distance, theme overlap and weather,
// clamped to [0, 100].
func Score(it *models.ActivityItem, prefs *models.Preferences, w models.Weather) float64 {
	score := BaseScore
	switch d := it.DistanceMeters; {
	case d == nil:
	case *d <= nearMeters:
		score += NearBonus
	case *d <= midMeters:
		score += MidBonus
	default:
		score += FarBonus
	}

	for _, t := range prefs.Themes {
		if it.HasTheme(t) {
			score += ThemeBonus
		}
	}

	if w.IsRain() {
		switch it.IndoorOutdoor {
		case models.Indoor:
			score += RainIndoor
		case models.Outdoor:
			score += RainOutdoor
		}
	} else if it.IndoorOutdoor == models.Outdoor {
		score += DryOutdoor
	}

	switch {
	case score < 0:
		return 0
	case score > maxCatalogScore:
		return maxCatalogScore
	}
	return float64(score)
}
