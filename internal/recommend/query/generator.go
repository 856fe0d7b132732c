// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package query turns preferences into a small set of provider-agnostic
// search queries. Generation is deterministic and makes no external calls.
package query

import (
	"context"
	"strings"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// MaxQueries caps the generated set.
const MaxQueries = 6

// MinQueries is the floor guaranteed by the generic fallback queries.
const MinQueries = 2

// phrases per theme and language, in priority order.
var phrases = map[models.Theme]map[string][]string{
	models.ThemeRelax: {
		"es": {"cafe acogedor", "parque tranquilo", "mirador"},
		"ca": {"cafè acollidor", "parc tranquil"},
		"en": {"cozy cafe", "quiet park", "viewpoint"},
	},
	models.ThemeShopping: {
		"es": {"mercado local", "tienda vintage", "papelería"},
		"ca": {"mercat local", "botiga vintage"},
		"en": {"local market", "vintage shop", "stationery store"},
	},
	models.ThemeFood: {
		"es": {"comida barata", "bar de tapas", "panadería"},
		"ca": {"menjar barat", "bar de tapes"},
		"en": {"cheap eats", "tapas bar", "bakery"},
	},
	models.ThemeActivity: {
		"es": {"museo pequeño", "galería de arte", "espectáculo callejero"},
		"ca": {"museu petit", "galeria d'art"},
		"en": {"small museum", "art gallery", "street performance"},
	},
}

var budgetWords = map[models.PriceLevel]map[string]string{
	models.PriceLow:  {"es": "barato", "ca": "barat", "en": "cheap"},
	models.PriceMid:  {"es": "moderado", "ca": "moderat", "en": "moderate"},
	models.PriceHigh: {"es": "fino", "ca": "selecte", "en": "upscale"},
}

var nearWord = map[string]string{
	"es": "cerca de",
	"ca": "a prop de",
	"en": "near",
}

var radiusByBucket = map[models.TimeBucket]int{
	models.TimeBucketUpTo30:  800,
	models.TimeBucket30To60:  1500,
	models.TimeBucket60To120: 3000,
	models.TimeBucketOver120: 5000,
}

// Radius returns the search radius in metres for bucket. Unknown buckets
// get the widest radius.
func Radius(bucket models.TimeBucket) int {
	if r, ok := radiusByBucket[bucket]; ok {
		return r
	}
	return radiusByBucket[models.TimeBucketOver120]
}

// Generator is the query stage.
type Generator struct{}

// NewGenerator returns the query stage.
func NewGenerator() *Generator {
	return &Generator{}
}

// Name implements recommend.Stage.
func (g *Generator) Name() string { return "query" }

// Run implements recommend.Stage.
func (g *Generator) Run(_ context.Context, st *recommend.State) error {
	st.Queries = Generate(st.Context, st.Prefs)
	return nil
}

// Generate builds between MinQueries and MaxQueries queries.
//
// Each theme contributes its first local-language phrase (maps target) and
// its first English phrase (web target); a second round adds each theme's
// second local phrase while room remains.
//
//nolint:gocritic // hugeParam: read-only request values
func Generate(c models.Context, prefs models.Preferences) []recommend.SearchQuery {
	themes := prefs.Themes
	if len(themes) == 0 {
		themes = []models.Theme{models.ThemeRelax}
	}
	lang := localLanguage(c.Language)
	radius := Radius(prefs.TimeBucket)
	location := c.LocationLabel

	b := newBuilder()
	for _, t := range themes {
		if p := phrase(t, lang, 0); p != "" {
			b.add(localQuery(p, location, lang, prefs.BudgetLevel, radius, t))
		}
		if p := phrase(t, "en", 0); p != "" {
			b.add(englishQuery(p, location, prefs.BudgetLevel, radius, t))
		}
	}
	for _, t := range themes {
		if p := phrase(t, lang, 1); p != "" {
			b.add(localQuery(p, location, lang, prefs.BudgetLevel, radius, t))
		}
	}

	if len(b.out) < MinQueries {
		b.add(recommend.SearchQuery{
			Text:    "lugares interesantes cerca de " + location,
			Target:  recommend.TargetMaps,
			RadiusM: radius,
			Locale:  "es-ES",
		})
		b.add(recommend.SearchQuery{
			Text:    "things to do near " + location,
			Target:  recommend.TargetWeb,
			RadiusM: radius,
			Locale:  "en",
		})
	}
	return b.out
}

// localLanguage picks the phrase table for local queries. English anchors
// still search in Spanish locally; the English phrases are always added.
func localLanguage(lang string) string {
	if lang == "ca" {
		return "ca"
	}
	return "es"
}

func phrase(t models.Theme, lang string, i int) string {
	list := phrases[t][lang]
	if i < len(list) {
		return list[i]
	}
	return ""
}

func localQuery(p, location, lang string, budget models.PriceLevel, radius int, t models.Theme) recommend.SearchQuery {
	return recommend.SearchQuery{
		Text:    compose(p, nearWord[lang], location, budgetWords[budget][lang]),
		Target:  recommend.TargetMaps,
		RadiusM: radius,
		Locale:  lang + "-ES",
		Theme:   t,
	}
}

func englishQuery(p, location string, budget models.PriceLevel, radius int, t models.Theme) recommend.SearchQuery {
	return recommend.SearchQuery{
		Text:    compose(p, nearWord["en"], location, budgetWords[budget]["en"]),
		Target:  recommend.TargetWeb,
		RadiusM: radius,
		Locale:  "en",
		Theme:   t,
	}
}

func compose(parts ...string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// builder dedupes by text and enforces MaxQueries.
type builder struct {
	out  []recommend.SearchQuery
	seen map[string]bool
}

func newBuilder() *builder {
	return &builder{seen: make(map[string]bool)}
}

//nolint:gocritic // hugeParam: small value copied into the result slice
func (b *builder) add(q recommend.SearchQuery) {
	key := strings.ToLower(q.Text)
	if len(b.out) >= MaxQueries || b.seen[key] {
		return
	}
	b.seen[key] = true
	b.out = append(b.out, q)
}
