// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package ranker

import (
	"fmt"
	"unicode/utf8"

	"github.com/tomtom215/sidequest/internal/models"
)

// MaxReasonLen is the rune limit for reason text; longer text uses the
// compact template.
const MaxReasonLen = 80

var travelVerb = map[models.TravelMode]string{
	models.TravelWalking: "walk",
	models.TravelDriving: "drive",
	models.TravelTransit: "transit",
	models.TravelFastest: "away",
}

var budgetLabel = map[models.PriceLevel]string{
	models.PriceLow:  "low",
	models.PriceMid:  "mid",
	models.PriceHigh: "high",
}

var themeLabel = map[models.Theme]string{
	models.ThemeRelax:    "relaxing",
	models.ThemeShopping: "shopping",
	models.ThemeFood:     "a bite",
	models.ThemeActivity: "something active",
}

// TravelLabel renders the bracketed travel prefix, e.g. "[12 min walk]".
func TravelLabel(minutes int, mode models.TravelMode) string {
	verb, ok := travelVerb[mode]
	if !ok {
		verb = travelVerb[models.TravelWalking]
	}
	return fmt.Sprintf("[%d min %s]", minutes, verb)
}

// Reason builds the short human-readable justification for item.
func Reason(item *models.ActivityItem, prefs *models.Preferences) string {
	label := item.Category.Profile().Label

	budget, ok := budgetLabel[item.BudgetHint]
	if !ok {
		budget = "not listed"
	}

	rating := "no rating yet"
	if item.Rating != nil && *item.Rating > 0 {
		rating = fmt.Sprintf("rated %.1f/5", *item.Rating)
	}

	theme := "a short break"
	for _, t := range prefs.Themes {
		if item.HasTheme(t) {
			theme = themeLabel[t]
			break
		}
	}

	prefix := TravelLabel(item.TravelTimeMin, prefs.TravelMode)
	reason := fmt.Sprintf("%s %s · %s. Budget %s. Good for %s.", prefix, label, rating, budget, theme)
	if utf8.RuneCountInString(reason) > MaxReasonLen {
		reason = fmt.Sprintf("%s %s. Budget %s, good for %s.", prefix, label, budget, theme)
	}
	return reason
}
