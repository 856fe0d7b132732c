// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
)

// categoryKeywords is checked in order; the first table entry found in
// the text wins. Short words that occur inside other words are matched
// as whole words only ("bar" must not match "Barcelona").
var categoryKeywords = []struct {
	category models.Category
	words    []string
	whole    []string
}{
	{models.CategoryCafe, []string{"cafe", "coffee", "bakery", "pastelería", "cafetería"}, nil},
	{models.CategoryPark, []string{"park", "parque", "gardens", "jardines", "plaza", "plaça", "square"}, []string{"parc"}},
	{models.CategoryViewpoint, []string{"viewpoint", "mirador", "bunkers", "overlook"}, nil},
	{models.CategoryMarket, []string{"market", "mercado", "mercat", "flea"}, nil},
	{models.CategoryShopping, []string{"vintage", "shop", "tienda", "botiga", "shopping"}, nil},
	{models.CategoryMuseum, []string{"museum", "museo", "museu", "gallery", "galería", "galeria"}, nil},
	{models.CategoryRestaurant, []string{"restaurant", "restaurante", "tapas", "food", "comida"}, []string{"bar"}},
	{models.CategoryLandmark, []string{"landmark", "monument", "monumento", "cathedral", "catedral", "basilica", "basílica"}, nil},
}

var chainBrands = []string{
	"starbucks", "mcdonald", "burger king", "kfc", "subway",
	"h&m", "zara", "uniqlo", "nike", "adidas",
	"seven eleven", "family mart",
	"100 montaditos", "telepizza", "dunkin", "tim hortons", "five guys", "vips", "foster's hollywood",
}

var themeByCategory = map[models.Category]models.Theme{
	models.CategoryCafe:       models.ThemeRelax,
	models.CategoryPark:       models.ThemeRelax,
	models.CategoryViewpoint:  models.ThemeActivity,
	models.CategoryMarket:     models.ThemeShopping,
	models.CategoryMuseum:     models.ThemeActivity,
	models.CategoryShopping:   models.ThemeShopping,
	models.CategoryRestaurant: models.ThemeFood,
	models.CategoryLandmark:   models.ThemeActivity,
}

var themeKeywords = []struct {
	theme models.Theme
	words []string
}{
	{models.ThemeRelax, []string{"quiet", "tranquil", "peaceful", "cozy"}},
	{models.ThemeShopping, []string{"shop", "market", "store"}},
	{models.ThemeFood, []string{"food", "eat", "restaurant", "cafe"}},
	{models.ThemeActivity, []string{"museum", "gallery", "tour", "experience"}},
}

var priceHints = []struct {
	level models.PriceLevel
	words []string
}{
	{models.PriceHigh, []string{"expensive", "upscale", "fine dining", "luxury", "caro"}},
	{models.PriceMid, []string{"moderate", "moderado", "mid-range"}},
	{models.PriceLow, []string{"cheap", "budget", "barato", "económico", "inexpensive"}},
}

// Classifier holds the compiled keyword tables. It is immutable and safe
// for concurrent use.
type Classifier struct {
	categories *cache.KeywordMatcher
	chains     *cache.KeywordMatcher
	themes     *cache.KeywordMatcher
	prices     *cache.KeywordMatcher
}

// NewClassifier compiles the keyword tables.
func NewClassifier() *Classifier {
	cat := cache.NewKeywordMatcher(geo.Fold)
	for _, row := range categoryKeywords {
		for _, w := range row.words {
			cat.Add(w, row.category)
		}
		for _, w := range row.whole {
			cat.AddWord(w, row.category)
		}
	}

	chains := cache.NewKeywordMatcher(geo.Fold)
	for _, b := range chainBrands {
		chains.Add(b, b)
	}

	themes := cache.NewKeywordMatcher(geo.Fold)
	for _, row := range themeKeywords {
		for _, w := range row.words {
			themes.Add(w, row.theme)
		}
	}

	prices := cache.NewKeywordMatcher(geo.Fold)
	for _, row := range priceHints {
		for _, w := range row.words {
			prices.Add(w, row.level)
		}
	}

	return &Classifier{
		categories: cat.Build(),
		chains:     chains.Build(),
		themes:     themes.Build(),
		prices:     prices.Build(),
	}
}

// Category classifies free text. Unknown text is "other".
func (c *Classifier) Category(text string) models.Category {
	if hit, ok := c.categories.First(text); ok {
		return hit.Data.(models.Category)
	}
	return models.CategoryOther
}

// Chain returns the matched chain brand, or "" for independent places.
func (c *Classifier) Chain(name string) string {
	if hit, ok := c.chains.First(name); ok {
		return hit.Data.(string)
	}
	return ""
}

// Themes derives theme tags from the category and keyword hints, in
// canonical theme order without duplicates.
func (c *Classifier) Themes(text string, category models.Category) []models.Theme {
	found := make(map[models.Theme]bool)
	if t, ok := themeByCategory[category]; ok {
		found[t] = true
	}
	for _, m := range c.themes.All(text) {
		found[m.Data.(models.Theme)] = true
	}

	tags := make([]models.Theme, 0, len(found))
	for _, t := range models.AllThemes {
		if found[t] {
			tags = append(tags, t)
		}
	}
	return tags
}

// Price parses a price tier from currency symbols ("€€", "$$$") or text
// hints. Symbols win over words.
func (c *Classifier) Price(priceText, description string) models.PriceLevel {
	if n := currencyRun(priceText); n > 0 {
		switch {
		case n == 1:
			return models.PriceLow
		case n == 2:
			return models.PriceMid
		default:
			return models.PriceHigh
		}
	}
	if hit, ok := c.prices.First(priceText + " " + description); ok {
		return hit.Data.(models.PriceLevel)
	}
	return models.PriceUnknown
}

// currencyRun counts the longest run of one currency symbol.
func currencyRun(s string) int {
	best, run := 0, 0
	var last rune
	for _, r := range s {
		if r == '€' || r == '$' || r == '£' {
			if r == last {
				run++
			} else {
				run = 1
			}
			last = r
			if run > best {
				best = run
			}
			continue
		}
		run, last = 0, 0
	}
	return best
}

var firstInt = regexp.MustCompile(`\d[\d,.]*`)

// ReviewCount extracts the first integer in text, ignoring thousands
// separators. ok is false when text has no digits.
func ReviewCount(text string) (int, bool) {
	m := firstInt.FindString(text)
	if m == "" {
		return 0, false
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// OpenNow interprets an open-state string. Closed wins over open so
// "Closed · Opens 9 AM" is closed.
func OpenNow(state string) *bool {
	s := geo.Fold(state)
	if s == "" {
		return nil
	}
	var v bool
	switch {
	case strings.Contains(s, "closed"), strings.Contains(s, "cerrado"), strings.Contains(s, "tancat"):
		v = false
	case strings.Contains(s, "open"), strings.Contains(s, "abierto"), strings.Contains(s, "obert"):
		v = true
	default:
		return nil
	}
	return &v
}
