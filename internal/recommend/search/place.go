// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"errors"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// Place is a provider-neutral raw search record. Every field may be
// empty; normalization treats absence as a normal state.
type Place struct {
	Source models.Source

	Title       string
	Type        string
	Description string
	Snippet     string
	Address     string
	URL         string
	Thumbnail   string

	Rating    *float64
	Reviews   string // "156 reviews", "2,431" or a bare count
	PriceText string // "€€", "$", "cheap eats"
	OpenState string // "Open now", "Cerrado"

	// Coordinate slots, tried in this order.
	GPS      *models.Coordinates // explicit lat/lng pair
	Position *models.Coordinates // provider-specific position, e.g. an entity geo
	Lat, Lng *float64            // top-level fields

	PlaceID string
	DataID  string
	DataCID string
}

// CanonicalID returns the provider's place identifier, if any.
func (p *Place) CanonicalID() string {
	switch {
	case p.PlaceID != "":
		return p.PlaceID
	case p.DataID != "":
		return p.DataID
	default:
		return p.DataCID
	}
}

// Query is what a provider receives: a generated query plus the anchor.
type Query struct {
	recommend.SearchQuery
	Anchor   models.Coordinates
	Location string
}

// Provider is one search backend. Implementations translate Query into
// their own API and return raw Places; they never normalize.
type Provider interface {
	Name() string
	Target() recommend.SearchTarget
	Search(ctx context.Context, q Query) ([]Place, error)
}

// ErrThrottled is returned when the outbound rate limit has no tokens.
// The call is skipped rather than delayed.
var ErrThrottled = errors.New("provider throttled")
