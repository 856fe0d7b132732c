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

// GazetteerVersion identifies the built-in place table. Bump it when
// entries change so cached search results are not reused across versions.
const GazetteerVersion = "bcn-2"

// GazetteerEntry maps a known place name to coordinates.
type GazetteerEntry struct {
	Name   string
	Coords models.Coordinates
}

// Gazetteer resolves coordinates for well-known places by name.
// Matching is accent-folded and case-insensitive; the longest entry name
// contained in the queried text wins.
type Gazetteer struct {
	matcher *cache.KeywordMatcher
}

// NewGazetteer builds a gazetteer over entries.
func NewGazetteer(entries []GazetteerEntry) *Gazetteer {
	m := cache.NewKeywordMatcher(Fold)
	for _, e := range entries {
		m.Add(e.Name, e.Coords)
	}
	return &Gazetteer{matcher: m.Build()}
}

// Lookup returns the coordinates of the best-matching entry in text.
func (g *Gazetteer) Lookup(text string) (models.Coordinates, bool) {
	if g == nil || text == "" {
		return models.Coordinates{}, false
	}
	hit, ok := g.matcher.Longest(text)
	if !ok {
		return models.Coordinates{}, false
	}
	return hit.Data.(models.Coordinates), true
}

// Len returns the number of entries.
func (g *Gazetteer) Len() int {
	return g.matcher.Len()
}

var (
	defaultGazetteer     *Gazetteer
	defaultGazetteerOnce sync.Once
)

// DefaultGazetteer returns the shared built-in Barcelona gazetteer.
func DefaultGazetteer() *Gazetteer {
	defaultGazetteerOnce.Do(func() {
		defaultGazetteer = NewGazetteer(barcelonaPlaces)
	})
	return defaultGazetteer
}

func at(lat, lng float64) models.Coordinates {
	return models.Coordinates{Lat: lat, Lng: lng}
}

var barcelonaPlaces = []GazetteerEntry{
	// parks
	{"ciutadella park", at(41.3886, 2.1883)},
	{"parc de la ciutadella", at(41.3886, 2.1883)},
	{"parc de cervantes", at(41.3778, 2.1147)},
	{"parc del centre del poblenou", at(41.4069, 2.2014)},
	{"parc diagonal mar", at(41.4108, 2.2266)},
	{"parc del mirador del poble-sec", at(41.3668, 2.1640)},
	{"parc de l'estació del nord", at(41.3934, 2.1814)},

	// vintage shops
	{"la principal retro", at(41.3818, 2.1653)},
	{"la principal", at(41.3818, 2.1653)},
	{"los féliz vintage", at(41.3851, 2.1734)},
	{"los feliz vintage", at(41.3851, 2.1734)},
	{"féliz vintage", at(41.3851, 2.1734)},
	{"el maniqui vintage", at(41.3829, 2.1708)},
	{"love vintage", at(41.3866, 2.1721)},
	{"vintage poblenou", at(41.4044, 2.2035)},
	{"cotton vintage", at(41.3851, 2.1734)},
	{"le swing vintage", at(41.3829, 2.1708)},
	{"lullaby vintage", at(41.3819, 2.1689)},
	{"neko vintage", at(41.3866, 2.1721)},

	// cafes
	{"faborit casa amatller", at(41.3917, 2.1649)},
	{"decent cafe", at(41.4056, 2.2045)},
	{"granja primavera", at(41.3869, 2.1674)},
	{"coffee house barcelona", at(41.3917, 2.1649)},
	{"cafe cometa", at(41.3829, 2.1708)},
	{"cafe caracas", at(41.3851, 2.1734)},
	{"cafe de l'opera", at(41.3805, 2.1728)},
	{"citizen cafe", at(41.3917, 2.1649)},
	{"little fern", at(41.4056, 2.2045)},
	{"cafe fargo", at(41.4037, 2.1744)},

	// markets
	{"mercat de sant antoni", at(41.3745, 2.1665)},
	{"mercat del poblenou", at(41.4044, 2.2035)},
	{"mercat de la boqueria", at(41.3816, 2.1722)},
	{"mercat de santa caterina", at(41.3852, 2.1814)},
	{"mercat del ninot", at(41.3902, 2.1542)},
	{"la concepció market", at(41.3937, 2.1605)},
	{"mercat de l'abaceria", at(41.4152, 2.1563)},
	{"mercat de la barceloneta", at(41.3797, 2.1889)},
}
