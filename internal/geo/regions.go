// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package geo

import (
	"sync"

	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/models"
)

// RegionCalibrationRadius is how far the request anchor may be from a
// region table's origin before the table stops applying.
const RegionCalibrationRadius = 2000.0

// Region is a band of neighbourhoods sharing a coarse travel estimate.
type Region struct {
	Name     string
	Keywords []string
	Travel   models.TravelTimes
}

// RegionTable estimates travel time from neighbourhood names when an item
// has no coordinates. Its estimates are only meaningful near Origin.
type RegionTable struct {
	Origin  models.Coordinates
	matcher *cache.KeywordMatcher
}

// NewRegionTable builds a table calibrated for origin. Regions are
// checked in order; the first region with a matching keyword wins.
func NewRegionTable(origin models.Coordinates, regions []Region) *RegionTable {
	m := cache.NewKeywordMatcher(Fold)
	for _, r := range regions {
		for _, kw := range r.Keywords {
			m.Add(kw, r.Travel)
		}
	}
	return &RegionTable{Origin: origin, matcher: m.Build()}
}

// Applies reports whether anchor is close enough to the calibration origin.
func (rt *RegionTable) Applies(anchor models.Coordinates) bool {
	return rt != nil && Within(rt.Origin, anchor, RegionCalibrationRadius)
}

// Estimate returns the travel estimate for the first region named in text.
func (rt *RegionTable) Estimate(anchor models.Coordinates, text string) (models.TravelTimes, bool) {
	if !rt.Applies(anchor) || text == "" {
		return models.TravelTimes{}, false
	}
	hit, ok := rt.matcher.First(text)
	if !ok {
		return models.TravelTimes{}, false
	}
	return hit.Data.(models.TravelTimes), true
}

// CCIB is the Barcelona convention centre the default table is calibrated for.
var CCIB = models.Coordinates{Lat: 41.4095, Lng: 2.2184}

var barcelonaRegions = []Region{
	{
		Name:     "nearby",
		Keywords: []string{"poblenou", "diagonal mar", "llull", "forum", "maresme", "besòs"},
		Travel:   models.TravelTimes{WalkingMin: 15, DrivingMin: 5, TransitMin: 10},
	},
	{
		Name:     "mid",
		Keywords: []string{"sagrada familia", "eixample", "fort pienc", "sant martí"},
		Travel:   models.TravelTimes{WalkingMin: 35, DrivingMin: 10, TransitMin: 20},
	},
	{
		Name: "far",
		Keywords: []string{
			"gracia", "gothic", "born", "raval", "sarria", "les corts", "sants",
			"montjuic", "ciutadella", "barrio gotico", "el born", "catalunya",
		},
		Travel: models.TravelTimes{WalkingMin: 60, DrivingMin: 15, TransitMin: 25},
	},
}

var (
	defaultRegions     *RegionTable
	defaultRegionsOnce sync.Once
)

// DefaultRegionTable returns the shared table calibrated for CCIB.
func DefaultRegionTable() *RegionTable {
	defaultRegionsOnce.Do(func() {
		defaultRegions = NewRegionTable(CCIB, barcelonaRegions)
	})
	return defaultRegions
}
