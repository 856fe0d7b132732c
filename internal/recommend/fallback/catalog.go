// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package fallback tops up short result lists from a curated catalog.
//
// The catalog is read once at startup, either the built-in Barcelona set or
// a YAML file (catalog.path), and never changes afterwards. The Generator
// stage appends the best-matching entries after the organic results until
// the response holds TopN items or the catalog runs out.
package fallback

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/validation"
)

// Entry is one curated place.
type Entry struct {
	ID       string               `koanf:"id" json:"id"`
	Name     string               `koanf:"name" json:"name" validate:"required,max=120"`
	Category models.Category      `koanf:"category" json:"category" validate:"required,category"`
	Setting  models.IndoorOutdoor `koanf:"setting" json:"setting" validate:"omitempty,oneof=indoor outdoor mixed unknown"`
	Lat      float64              `koanf:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lng      float64              `koanf:"lng" json:"lng" validate:"gte=-180,lte=180"`
	Address  string               `koanf:"address" json:"address"`
	Themes   []models.Theme       `koanf:"themes" json:"themes" validate:"required,min=1,dive,theme"`

	// Note is the justification shown after the travel prefix.
	Note string `koanf:"note" json:"note" validate:"required,max=100"`
}

// Catalog is an immutable list of entries.
type Catalog struct {
	entries []Entry
}

// NewCatalog validates entries and fills missing ids and settings.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, recommend.ErrEmptyCatalog
	}
	out := make([]Entry, len(entries))
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		e := entries[i]
		e.Themes = append([]models.Theme(nil), e.Themes...)
		if verr := validation.ValidateStruct(&e); verr != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, e.Name, verr)
		}
		if e.ID == "" {
			e.ID = "fallback:" + slug(e.Name)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
		if e.Setting == "" {
			e.Setting = e.Category.Profile().Setting
		}
		out[i] = e
	}
	return &Catalog{entries: out}, nil
}

// Load reads a YAML catalog with a top-level "entries" list.
func Load(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	var entries []Entry
	if err := k.UnmarshalWithConf("entries", &entries, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return NewCatalog(entries)
}

// LoadOrBuiltin loads path, or returns the built-in catalog when path is empty.
func LoadOrBuiltin(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return Load(path)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Builtin returns the curated Barcelona catalog.
func Builtin() *Catalog {
	c, err := NewCatalog(builtinEntries)
	if err != nil {
		panic(fmt.Sprintf("fallback: built-in catalog is invalid: %v", err))
	}
	return c
}

var builtinEntries = []Entry{
	{
		ID: "fallback:catalunya-benches", Name: "Plaça de Catalunya benches",
		Category: models.CategoryPark, Setting: models.Outdoor,
		Lat: 41.3874, Lng: 2.1686, Address: "Plaça de Catalunya, Barcelona",
		Themes: []models.Theme{models.ThemeRelax},
		Note:   "Square, free. A good place to sit down for a while.",
	},
	{
		ID: "fallback:gracia-window-shopping", Name: "Passeig de Gràcia window shopping",
		Category: models.CategoryShopping, Setting: models.Mixed,
		Lat: 41.3910, Lng: 2.1649, Address: "Passeig de Gràcia, Barcelona",
		Themes: []models.Theme{models.ThemeShopping},
		Note:   "Boulevard, free. Browse the flagship windows.",
	},
	{
		ID: "fallback:born-alleys", Name: "El Born alleys photo walk",
		Category: models.CategoryViewpoint, Setting: models.Outdoor,
		Lat: 41.3839, Lng: 2.1823, Address: "El Born, Barcelona",
		Themes: []models.Theme{models.ThemeActivity},
		Note:   "Old alleys, free. Great for photos.",
	},
	{
		ID: "fallback:ciutadella-walk", Name: "Ciutadella park short walk",
		Category: models.CategoryPark, Setting: models.Outdoor,
		Lat: 41.3888, Lng: 2.1872, Address: "Parc de la Ciutadella, Barcelona",
		Themes: []models.Theme{models.ThemeRelax, models.ThemeActivity},
		Note:   "Park, free. A green loop past the fountain.",
	},
	{
		ID: "fallback:boqueria-market", Name: "La Boqueria market browse",
		Category: models.CategoryMarket, Setting: models.Indoor,
		Lat: 41.3816, Lng: 2.1722, Address: "La Rambla 91, Barcelona",
		Themes: []models.Theme{models.ThemeFood, models.ThemeShopping},
		Note:   "Market, low budget. Graze on local produce.",
	},
	{
		ID: "fallback:gothic-quarter-walk", Name: "Gothic Quarter walk",
		Category: models.CategoryLandmark, Setting: models.Outdoor,
		Lat: 41.3828, Lng: 2.1761, Address: "Barri Gòtic, Barcelona",
		Themes: []models.Theme{models.ThemeActivity},
		Note:   "Old town, free. Medieval lanes and squares.",
	},
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range geo.Fold(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
