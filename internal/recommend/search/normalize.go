// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
)

// unnamedPlace is used when a record carries neither a title nor a type.
const unnamedPlace = "Unnamed place"

// idSpace bounds the numeric part of generated item ids.
const idSpace = 100000

// Normalizer turns raw Places into ActivityItems. It is stateless apart
// from its read-only tables and safe for concurrent use.
type Normalizer struct {
	classifier *Classifier
	gazetteer  *geo.Gazetteer
	regions    *geo.RegionTable
	city       string
}

// NewNormalizer creates a normalizer. Nil tables fall back to the
// built-in Barcelona data.
func NewNormalizer(classifier *Classifier, gazetteer *geo.Gazetteer, regions *geo.RegionTable, city string) *Normalizer {
	if classifier == nil {
		classifier = NewClassifier()
	}
	if gazetteer == nil {
		gazetteer = geo.DefaultGazetteer()
	}
	if regions == nil {
		regions = geo.DefaultRegionTable()
	}
	return &Normalizer{
		classifier: classifier,
		gazetteer:  gazetteer,
		regions:    regions,
		city:       city,
	}
}

// Classifier exposes the keyword tables for other stages.
func (n *Normalizer) Classifier() *Classifier {
	return n.classifier
}

// Normalize maps one raw record onto the canonical schema. It never
// fails: missing fields take their documented defaults.
//
//nolint:gocritic // hugeParam: Place and Context are read-only inputs
func (n *Normalizer) Normalize(p Place, ctx models.Context) models.ActivityItem {
	name := strings.TrimSpace(p.Title)
	if name == "" {
		name = strings.TrimSpace(p.Type)
	}
	if name == "" {
		name = unnamedPlace
	}

	text := strings.Join([]string{name, p.Type, p.Description}, " ")
	category := n.classifier.Category(text)
	profile := category.Profile()

	item := models.ActivityItem{
		Name:                name,
		Category:            category,
		PriceLevel:          n.classifier.Price(p.PriceText, p.Description+" "+p.Snippet),
		OpenNow:             OpenNow(p.OpenState),
		IndoorOutdoor:       profile.Setting,
		Address:             strings.TrimSpace(p.Address),
		PlaceID:             p.CanonicalID(),
		ExpectedWaitMin:     profile.WaitMin,
		ExpectedDurationMin: profile.DurationMin,
		ThemeTags:           n.classifier.Themes(text+" "+p.Snippet, category),
		Source:              p.Source,
		SourceURL:           p.URL,
	}
	item.BudgetHint = item.PriceLevel

	if p.Rating != nil && !math.IsNaN(*p.Rating) {
		r := clampRating(*p.Rating)
		item.Rating = &r
	}
	if c, ok := ReviewCount(p.Reviews); ok {
		item.ReviewCount = &c
	}
	if p.Thumbnail != "" {
		item.Photos = []string{p.Thumbnail}
	}

	if brand := n.classifier.Chain(name); brand != "" {
		item.LocaleHints = models.LocaleHints{Chain: true, ChainBrand: brand}
	} else {
		item.LocaleHints = models.LocaleHints{LocalVibe: true}
	}

	item.Coords = n.coordinates(&p, name)
	n.attachTravel(&item, ctx, text+" "+item.Address)

	item.ID = itemID(p.Source, name, item.Coords)
	item.DirectionsLink = geo.DirectionsLink(ctx.Coords, item.Coords, name, n.city)
	return item
}

// coordinates tries the three provider slots, then the gazetteer.
func (n *Normalizer) coordinates(p *Place, name string) *models.Coordinates {
	for _, c := range []*models.Coordinates{p.GPS, p.Position} {
		if validCoords(c) {
			v := *c
			return &v
		}
	}
	if p.Lat != nil && p.Lng != nil {
		c := models.Coordinates{Lat: *p.Lat, Lng: *p.Lng}
		if validCoords(&c) {
			return &c
		}
	}
	if c, ok := n.gazetteer.Lookup(name); ok {
		return &c
	}
	return nil
}

// attachTravel fills distance and per-mode travel. Without coordinates
// the region table gives a coarser estimate, then category defaults.
//
//nolint:gocritic // hugeParam: ctx is read-only
func (n *Normalizer) attachTravel(item *models.ActivityItem, ctx models.Context, text string) {
	if item.Coords != nil {
		d := geo.DistanceMeters(ctx.Coords, *item.Coords)
		item.DistanceMeters = &d
		item.Travel = geo.EstimateTravel(d)
		return
	}
	if t, ok := n.regions.Estimate(ctx.Coords, text); ok {
		item.Travel = t
		return
	}
	item.Travel = item.Category.Profile().DefaultTravel
}

// Complete fills any field an item is missing and leaves the rest alone,
// so applying it to a normalized item returns that item unchanged. It is
// used on cached and catalog items.
//
//nolint:gocritic // hugeParam: ctx is read-only
func (n *Normalizer) Complete(item *models.ActivityItem, ctx models.Context) {
	if strings.TrimSpace(item.Name) == "" {
		item.Name = unnamedPlace
	}
	if !item.Category.Valid() {
		item.Category = n.classifier.Category(item.Name + " " + item.Address)
	}
	profile := item.Category.Profile()
	if !item.PriceLevel.Valid() {
		item.PriceLevel = models.PriceUnknown
	}
	if !item.BudgetHint.Valid() {
		item.BudgetHint = item.PriceLevel
	}
	if item.IndoorOutdoor == "" {
		item.IndoorOutdoor = profile.Setting
	}
	if item.ExpectedDurationMin == 0 {
		item.ExpectedWaitMin = profile.WaitMin
		item.ExpectedDurationMin = profile.DurationMin
	}
	if item.ThemeTags == nil {
		item.ThemeTags = n.classifier.Themes(item.Name, item.Category)
	}
	if item.Travel.IsZero() {
		if item.Coords == nil {
			if c, ok := n.gazetteer.Lookup(item.Name); ok {
				item.Coords = &c
			}
		}
		n.attachTravel(item, ctx, item.Name+" "+item.Address)
	}
	if item.ID == "" {
		item.ID = itemID(item.Source, item.Name, item.Coords)
	}
	if item.DirectionsLink == "" {
		item.DirectionsLink = geo.DirectionsLink(ctx.Coords, item.Coords, item.Name, n.city)
	}
}

func validCoords(c *models.Coordinates) bool {
	if c == nil || math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func clampRating(r float64) float64 {
	return math.Max(0, math.Min(5, r))
}

// itemID derives a stable provider-qualified id from name and position.
func itemID(source models.Source, name string, c *models.Coordinates) string {
	h := fnv.New32a()
	h.Write([]byte(geo.NormalizeName(name)))
	if c != nil {
		h.Write([]byte(strconv.FormatFloat(c.Lat, 'f', 5, 64)))
		h.Write([]byte(strconv.FormatFloat(c.Lng, 'f', 5, 64)))
	}
	src := string(source)
	if src == "" {
		src = "unknown"
	}
	return fmt.Sprintf("%s:%d", src, h.Sum32()%idSpace)
}
