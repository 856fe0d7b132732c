// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
)

// maxAspects is how many recurring aspects a keyword summary names.
const maxAspects = 3

var priceWords = []struct {
	level models.PriceLevel
	words []string
}{
	{models.PriceLow, []string{"cheap", "affordable", "free", "inexpensive", "budget", "bargain", "barato", "barata", "económico", "gratis", "gratuito", "barat"}},
	{models.PriceMid, []string{"reasonable", "moderate", "fair price", "worth the price", "razonable", "normal price", "precio normal"}},
	{models.PriceHigh, []string{"expensive", "pricey", "overpriced", "costly", "caro", "carísimo"}},
}

var aspectWords = []struct {
	label string
	words []string
}{
	{"views", []string{"view", "views", "vista", "vistas", "sunset", "atardecer"}},
	{"coffee", []string{"coffee", "espresso", "latte", "cortado", "café con leche"}},
	{"food", []string{"food", "tapas", "delicious", "tasty", "comida", "deliciosa", "delicioso"}},
	{"friendly staff", []string{"friendly", "staff", "service", "amable", "servicio", "atención"}},
	{"atmosphere", []string{"atmosphere", "vibe", "cozy", "cosy", "ambiente", "acogedor"}},
	{"quiet", []string{"quiet", "peaceful", "calm", "relaxing", "tranquilo", "tranquila"}},
	{"crowds", []string{"crowded", "busy", "queue", "lleno", "cola"}},
	{"cleanliness", []string{"clean", "limpio", "limpia"}},
}

// KeywordSummarizer summarizes reviews by keyword counting. It needs no
// network access and never fails.
type KeywordSummarizer struct {
	prices  *cache.KeywordMatcher
	aspects *cache.KeywordMatcher
}

// NewKeywordSummarizer compiles the keyword tables.
func NewKeywordSummarizer() *KeywordSummarizer {
	prices := cache.NewKeywordMatcher(geo.Fold)
	for _, row := range priceWords {
		for _, w := range row.words {
			prices.AddWord(w, row.level)
		}
	}
	aspects := cache.NewKeywordMatcher(geo.Fold)
	for i, row := range aspectWords {
		for _, w := range row.words {
			aspects.AddWord(w, i)
		}
	}
	return &KeywordSummarizer{prices: prices.Build(), aspects: aspects.Build()}
}

// Summarize implements Summarizer.
func (k *KeywordSummarizer) Summarize(_ context.Context, _ string, reviews []string, _ string) (Summary, error) {
	if len(reviews) == 0 {
		return Summary{PriceLevel: models.PriceUnknown}, nil
	}
	return Summary{
		Text:       k.describe(reviews),
		PriceLevel: k.Price(reviews),
	}, nil
}

// Price infers the level mentioned by the most reviews. Ties and no
// mentions are unknown.
func (k *KeywordSummarizer) Price(reviews []string) models.PriceLevel {
	votes := make(map[models.PriceLevel]int)
	for _, r := range reviews {
		seen := make(map[models.PriceLevel]bool)
		for _, m := range k.prices.All(r) {
			lvl := m.Data.(models.PriceLevel)
			if !seen[lvl] {
				seen[lvl] = true
				votes[lvl]++
			}
		}
	}

	best, bestVotes, tie := models.PriceUnknown, 0, false
	for _, lvl := range []models.PriceLevel{models.PriceLow, models.PriceMid, models.PriceHigh} {
		switch v := votes[lvl]; {
		case v > bestVotes:
			best, bestVotes, tie = lvl, v, false
		case v == bestVotes && v > 0:
			tie = true
		}
	}
	if tie {
		return models.PriceUnknown
	}
	return best
}

func (k *KeywordSummarizer) describe(reviews []string) string {
	counts := make([]int, len(aspectWords))
	for _, r := range reviews {
		seen := make(map[int]bool)
		for _, m := range k.aspects.All(r) {
			i := m.Data.(int)
			if !seen[i] {
				seen[i] = true
				counts[i]++
			}
		}
	}

	order := make([]int, 0, len(aspectWords))
	for i, c := range counts {
		if c > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) > maxAspects {
		order = order[:maxAspects]
	}

	if len(order) == 0 {
		if len(reviews) == 1 {
			return "1 review available."
		}
		return fmt.Sprintf("%d reviews available.", len(reviews))
	}
	noun := "reviews mention"
	if len(reviews) == 1 {
		noun = "review mentions"
	}
	labels := make([]string, len(order))
	for i, idx := range order {
		labels[i] = aspectWords[idx].label
	}
	return fmt.Sprintf("%d %s %s.", len(reviews), noun, joinAnd(labels))
}

func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
