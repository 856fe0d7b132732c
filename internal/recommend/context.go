// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"strings"
	"time"

	"github.com/tomtom215/sidequest/internal/config"
	"github.com/tomtom215/sidequest/internal/models"
)

// ContextProvider supplies the request anchor. The default is fixed at
// startup; callers may override parts of it per request.
type ContextProvider struct {
	anchor models.Context
	now    func() time.Time
}

// NewContextProvider builds a provider from the anchor configuration.
func NewContextProvider(cfg config.AnchorConfig) *ContextProvider {
	return &ContextProvider{
		anchor: models.Context{
			LocationLabel: cfg.Label,
			Coords:        models.Coordinates{Lat: cfg.Lat, Lng: cfg.Lng},
			Weather:       models.Weather{Condition: cfg.WeatherCondition, TempC: cfg.TempC},
			Language:      cfg.Language,
		},
		now: time.Now,
	}
}

// Default returns the configured anchor stamped with the current time.
func (p *ContextProvider) Default() models.Context {
	c := p.anchor
	c.Timestamp = p.now().UTC()
	return c
}

// Build merges override into the default anchor. Empty fields in the
// override leave the default untouched.
func (p *ContextProvider) Build(override *models.ContextOverride) models.Context {
	c := p.Default()
	if override == nil {
		return c
	}
	if label := strings.TrimSpace(override.LocationLabel); label != "" {
		c.LocationLabel = label
	}
	if co := override.Coords; co != nil && co.Lat != nil && co.Lng != nil {
		c.Coords = models.Coordinates{Lat: *co.Lat, Lng: *co.Lng}
	}
	if w := override.Weather; w != nil {
		if cond := strings.ToLower(strings.TrimSpace(w.Condition)); cond != "" {
			c.Weather.Condition = cond
		}
		if w.TempC != nil {
			c.Weather.TempC = *w.TempC
		}
	}
	return c
}
