// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package ranker

import (
	"math"

	"github.com/tomtom215/sidequest/internal/models"
)

// Component weights and defaults.
const (
	DistanceWeight  = 20.0
	DistanceDefault = 10.0
	DistanceScale   = 1000.0

	BudgetExact    = 15.0
	BudgetAdjacent = 8.0
	BudgetUnknown  = 7.0

	RatingWeight  = 15.0
	RatingDefault = 7.0

	WeatherMax         = 10.0
	WeatherRainOutdoor = 2.0
	WeatherNeutral     = 7.0
	WeatherDryOutdoor  = 3.0

	ThemeFloor   = 6.0
	ThemePerHit  = 3.0
	ThemeMax     = 15.0
	LocalBonus   = 5.0
	ClosedMalus  = 15.0
	MaxComposite = 100.0
)

// Breakdown holds the individual components of a composite score.
type Breakdown struct {
	Distance float64
	Time     float64
	Budget   float64
	Rating   float64
	Weather  float64
	Theme    float64
	Local    float64
	Closed   float64
}

// Total sums the components and clamps the result to [0, MaxComposite].
func (b Breakdown) Total() float64 {
	t := b.Distance + b.Time + b.Budget + b.Rating + b.Weather + b.Theme + b.Local - b.Closed
	return math.Max(0, math.Min(MaxComposite, t))
}

// Explain computes the score components of item.
//
//nolint:gocritic // hugeParam: Weather is small and read-only
func Explain(item *models.ActivityItem, prefs *models.Preferences, weather models.Weather) Breakdown {
	b := Breakdown{
		Distance: DistanceScore(item.DistanceMeters),
		Time:     item.TimeFitnessScore,
		Budget:   BudgetScore(item.PriceLevel, prefs.BudgetLevel),
		Rating:   RatingScore(item.Rating),
		Weather:  WeatherScore(item.IndoorOutdoor, weather),
		Theme:    ThemeScore(item.ThemeTags, prefs.Themes),
	}
	if !item.LocaleHints.Chain {
		b.Local = LocalBonus
	}
	if item.OpenNow != nil && !*item.OpenNow {
		b.Closed = ClosedMalus
	}
	return b
}

// Score returns the composite score of item.
//
//nolint:gocritic // hugeParam: Weather is small and read-only
func Score(item *models.ActivityItem, prefs *models.Preferences, weather models.Weather) float64 {
	return Explain(item, prefs, weather).Total()
}

// DistanceScore decays exponentially with distance.
func DistanceScore(meters *int) float64 {
	if meters == nil {
		return DistanceDefault
	}
	d := math.Max(0, float64(*meters))
	return DistanceWeight * math.Exp(-d/DistanceScale)
}

// BudgetScore compares the item's price tier with the requested one.
func BudgetScore(price, want models.PriceLevel) float64 {
	pt, wt := price.Tier(), want.Tier()
	switch {
	case pt < 0:
		return BudgetUnknown
	case pt == wt:
		return BudgetExact
	case wt >= 0 && (pt-wt == 1 || wt-pt == 1):
		return BudgetAdjacent
	default:
		return 0
	}
}

// RatingScore scales a 0-5 rating onto RatingWeight.
func RatingScore(rating *float64) float64 {
	if rating == nil {
		return RatingDefault
	}
	r := math.Max(0, math.Min(5, *rating))
	return r / 5 * RatingWeight
}

// WeatherScore favours indoor places in the rain and outdoor ones otherwise.
//
//nolint:gocritic // hugeParam: Weather is small and read-only
func WeatherScore(setting models.IndoorOutdoor, w models.Weather) float64 {
	if w.IsRain() {
		switch setting {
		case models.Indoor:
			return WeatherMax
		case models.Outdoor:
			return WeatherRainOutdoor
		default:
			return WeatherNeutral
		}
	}
	if setting == models.Outdoor {
		return math.Min(WeatherMax, WeatherNeutral+WeatherDryOutdoor)
	}
	return WeatherNeutral
}

// ThemeScore rewards overlap between item tags and requested themes.
func ThemeScore(tags, want []models.Theme) float64 {
	hits := 0
	for _, w := range want {
		for _, t := range tags {
			if t == w {
				hits++
				break
			}
		}
	}
	if hits == 0 {
		return ThemeFloor
	}
	return math.Min(ThemeMax, ThemeFloor+ThemePerHit*float64(hits))
}
