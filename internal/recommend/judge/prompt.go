// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package judge

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sidequest/internal/models"
)

// maxReviewChars bounds the review text sent for summarization.
const maxReviewChars = 2000

const evaluateSystem = "You are a Barcelona local guide. You pick activities that fit a traveler's " +
	"free time exactly and you answer with JSON only."

const summarizeSystem = "You summarize visitor reviews objectively and briefly."

func timeRule(c *Constraints) string {
	bound, ok := c.TimeBucket.Bound()
	switch {
	case !ok:
		return "There is no hard time limit; prefer places worth the trip."
	case c.TimeBucket.IsStrict():
		return fmt.Sprintf("The traveler has at most %d minutes. Any candidate whose total_time_min exceeds %d must score at most %d.",
			bound, bound, StrictCap)
	default:
		return fmt.Sprintf("The traveler has at most %d minutes. Prefer candidates whose total_time_min fits within %d.",
			bound, bound)
	}
}

func themeList(themes []models.Theme) string {
	parts := make([]string, len(themes))
	for i, t := range themes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// evaluationPrompt renders the user message for an evaluation.
func evaluationPrompt(cands []Candidate, c *Constraints) (string, error) {
	body, err := json.MarshalIndent(cands, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode candidates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pick exactly %d of the candidates below.\n\n", c.N)
	b.WriteString("Traveler:\n")
	fmt.Fprintf(&b, "- Time available: %s minutes\n", c.TimeBucket)
	fmt.Fprintf(&b, "- Budget: %s\n", c.Budget)
	fmt.Fprintf(&b, "- Themes: %s\n", themeList(c.Themes))
	fmt.Fprintf(&b, "- Weather: %s, %.0f°C\n", c.Weather.Condition, c.Weather.TempC)
	if c.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", c.Location)
	}
	if c.NaturalInput != "" {
		fmt.Fprintf(&b, "- Request: %s\n", c.NaturalInput)
	}

	b.WriteString("\nPriorities, most important first:\n")
	fmt.Fprintf(&b, "1. Time constraint. %s\n", timeRule(c))
	b.WriteString("2. Budget fit.\n")
	b.WriteString("3. Theme match.\n")
	b.WriteString("4. Local character over chains.\n")
	b.WriteString("5. Category variety, at most 2 per category.\n")
	b.WriteString("6. Open now and easy to reach.\n")
	if c.NaturalInput != "" {
		b.WriteString("7. Honour the traveler's request.\n")
	}

	b.WriteString("\nCandidates:\n")
	b.Write(body)
	b.WriteString("\n\nRespond with a JSON object of this shape:\n")
	b.WriteString(`{"selected":[{"index":<candidate index>,"score":<0-100>,"reason":"<under 200 characters>",` +
		`"pitch":"<one line for the traveler, under 100 characters>"}],"evaluation":"<overall assessment, under 200 characters>"}`)
	return b.String(), nil
}

// summaryPrompt renders the user message for review summarization.
func summaryPrompt(place string, reviews []string, naturalInput string) string {
	if len(reviews) > 5 {
		reviews = reviews[:5]
	}
	combined := strings.Join(reviews, "\n\n")
	if r := []rune(combined); len(r) > maxReviewChars {
		combined = string(r[:maxReviewChars]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Visitor reviews for %q:\n\n%s\n\n", place, combined)
	if naturalInput != "" {
		fmt.Fprintf(&b, "The traveler asked: %s\nSummarize with that request in mind.\n\n", naturalInput)
	}
	b.WriteString("1. Summarize the reviews in 2-3 sentences, balancing strengths and caveats.\n")
	b.WriteString("2. Infer the price level from what reviewers say: low (cheap, affordable, free), " +
		"mid (reasonable, moderate), high (expensive, pricey) or unknown when price is not mentioned.\n\n")
	b.WriteString("Answer in exactly two lines:\nSUMMARY: <summary>\nPRICE_LEVEL: <low|mid|high|unknown>")
	return b.String()
}
