// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package session

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
)

// Defaults for values neither seeded nor found in the answers.
const (
	DefaultTimeBucket  = models.TimeBucket30To60
	DefaultBudgetLevel = models.PriceMid
	DefaultTheme       = models.ThemeRelax

	// maxNaturalInput matches the request limit on natural_input.
	maxNaturalInput = 1000
)

var (
	timeKeywords = map[models.TimeBucket][]string{
		models.TimeBucketUpTo30: {
			"30 min", "30 minutes", "half an hour", "half hour", "quick",
			"media hora", "mitja hora", "rapido",
		},
		models.TimeBucket30To60: {
			"an hour", "1 hour", "one hour", "60 min", "45 min",
			"una hora", "1 hora",
		},
		models.TimeBucket60To120: {
			"2 hours", "two hours", "couple of hours", "90 min",
			"dos horas", "2 horas", "dues hores",
		},
		models.TimeBucketOver120: {
			"more than 2 hours", "more than two hours", "over 2 hours", "all afternoon",
			"all day", "whole day", "mas de 2 horas", "mas de dos horas", "todo el dia", "tota la tarda",
		},
	}

	budgetKeywords = map[models.PriceLevel][]string{
		models.PriceLow: {
			"cheap", "for free", "low cost", "low budget", "inexpensive", "budget friendly",
			"barato", "gratis", "economico", "barat",
		},
		models.PriceMid: {
			"moderate", "mid-range", "mid range", "medium", "reasonable",
			"moderado", "moderat",
		},
		models.PriceHigh: {
			"expensive", "fancy", "luxury", "upscale", "splurge", "treat myself",
			"caro", "lujo", "luxe",
		},
	}

	themeKeywords = map[models.Theme][]string{
		models.ThemeRelax: {
			"relax", "quiet", "calm", "rest", "chill", "peaceful", "tranquil", "sit down",
			"descansar", "tranquilo", "tranquil·la", "relajarme",
		},
		models.ThemeShopping: {
			"shop", "shops", "shopping", "buy", "souvenir", "souvenirs", "boutique",
			"compras", "tiendas", "botigues",
		},
		models.ThemeFood: {
			"eat", "food", "lunch", "dinner", "snack", "coffee", "cafe", "tapas", "drink",
			"comer", "comida", "menjar",
		},
		models.ThemeActivity: {
			"active", "activity", "explore", "walk", "sport", "museum", "sightseeing", "photos",
			"pasear", "actividad", "visitar", "passejar",
		},
	}

	travelKeywords = map[models.TravelMode][]string{
		models.TravelWalking: {"on foot", "walking", "a pie", "a peu"},
		models.TravelDriving: {"by car", "taxi", "drive", "driving", "en coche", "en cotxe"},
		models.TravelTransit: {"metro", "bus", "tram", "public transport", "transporte publico"},
	}
)

var (
	matchersOnce sync.Once
	timeMatcher  *cache.KeywordMatcher
	budgetMatch  *cache.KeywordMatcher
	themeMatcher *cache.KeywordMatcher
	travelMatch  *cache.KeywordMatcher
)

// buildMatcher registers every keyword as a whole word. Map iteration
// order is irrelevant: lookups use the longest match or text position.
func buildMatcher[K ~string](table map[K][]string) *cache.KeywordMatcher {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	m := cache.NewKeywordMatcher(geo.Fold)
	for _, k := range keys {
		for _, kw := range table[K(k)] {
			m.AddWord(kw, K(k))
		}
	}
	return m.Build()
}

func matchers() {
	matchersOnce.Do(func() {
		timeMatcher = buildMatcher(timeKeywords)
		budgetMatch = buildMatcher(budgetKeywords)
		themeMatcher = buildMatcher(themeKeywords)
		travelMatch = buildMatcher(travelKeywords)
	})
}

// Preferences derives a recommendation request from a completed record.
// Seeded values win. Otherwise the last answer that mentions a time, budget
// or travel keyword decides, and themes are collected from every answer in
// the order they appear. Anything still unknown takes the defaults.
func Preferences(r *Record) (models.Preferences, error) {
	if !r.Completed() {
		return models.Preferences{}, ErrNotCompleted
	}
	matchers()

	prefs := models.Preferences{
		TimeBucket:   DefaultTimeBucket,
		BudgetLevel:  DefaultBudgetLevel,
		NaturalInput: NaturalInput(r),
	}

	var themes []models.Theme
	seen := make(map[models.Theme]bool)
	for _, q := range answered(r) {
		if hit, ok := timeMatcher.Longest(q.Answer); ok {
			prefs.TimeBucket = hit.Data.(models.TimeBucket)
		}
		if hit, ok := budgetMatch.Longest(q.Answer); ok {
			prefs.BudgetLevel = hit.Data.(models.PriceLevel)
		}
		if hit, ok := travelMatch.Longest(q.Answer); ok {
			prefs.TravelMode = hit.Data.(models.TravelMode)
		}
		for _, hit := range themeMatcher.All(q.Answer) {
			t := hit.Data.(models.Theme)
			if !seen[t] && len(themes) < 4 {
				seen[t] = true
				themes = append(themes, t)
			}
		}
	}
	if len(themes) == 0 {
		themes = []models.Theme{DefaultTheme}
	}
	prefs.Themes = themes

	if r.Seed.TimeBucket != "" {
		prefs.TimeBucket = r.Seed.TimeBucket
	}
	if r.Seed.BudgetLevel != "" {
		prefs.BudgetLevel = r.Seed.BudgetLevel
	}
	if len(r.Seed.Themes) > 0 {
		prefs.Themes = append([]models.Theme(nil), r.Seed.Themes...)
	}
	return prefs, nil
}

// NaturalInput renders the answered questions as "Q: ... A: ..." pairs in
// question order, cut to the request limit.
func NaturalInput(r *Record) string {
	var b strings.Builder
	for _, q := range answered(r) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("Q: ")
		b.WriteString(q.Text)
		b.WriteString(" A: ")
		b.WriteString(q.Answer)
	}
	return truncateRunes(b.String(), maxNaturalInput)
}

func answered(r *Record) []Question {
	out := make([]Question, 0, len(r.Questions))
	for _, q := range r.Questions {
		if q.Answer != "" {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
