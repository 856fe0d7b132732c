// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package session

import (
	"fmt"
	"strings"

	"github.com/tomtom215/sidequest/internal/models"
)

// QuestionCount is the number of questions in a flow.
const QuestionCount = 3

// DefaultQuestions builds the question flow for seed at the anchor ctx.
// The first question asks about the kind of activity, the second about
// indoor or outdoor given the weather. The third asks for the first thing
// still unknown: time, then budget, then company.
//
//nolint:gocritic // hugeParam: ctx is read-only
func DefaultQuestions(seed *Seed, ctx models.Context, newID func() string) []Question {
	location := ctx.LocationLabel
	if location == "" {
		location = "the area"
	}

	first := fmt.Sprintf("What kind of activity would you like to do around %s?", location)
	if len(seed.Themes) > 0 {
		first = fmt.Sprintf("You picked %s. What kind of atmosphere are you after?", themeList(seed.Themes))
	}

	second := fmt.Sprintf("It is %s right now. Would you rather stay indoors or go outside?", weatherPhrase(ctx.Weather))

	var third string
	switch {
	case seed.TimeBucket == "":
		third = "How much free time do you have: half an hour, an hour, two hours or more?"
	case seed.BudgetLevel == "":
		third = "What budget do you have in mind: cheap, moderate or a splurge?"
	default:
		third = "Are you on your own or with company?"
	}

	texts := [QuestionCount]string{first, second, third}
	out := make([]Question, len(texts))
	for i, text := range texts {
		out[i] = Question{ID: newID(), Text: text, Order: i + 1}
	}
	return out
}

func themeList(themes []models.Theme) string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = string(t)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func weatherPhrase(w models.Weather) string {
	cond := strings.TrimSpace(w.Condition)
	if cond == "" || cond == "unknown" {
		return fmt.Sprintf("%.0f°C", w.TempC)
	}
	return fmt.Sprintf("%s and %.0f°C", cond, w.TempC)
}
