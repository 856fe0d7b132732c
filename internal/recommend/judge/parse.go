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

type evaluationPayload struct {
	Selected []struct {
		Index  *int     `json:"index"`
		Score  *float64 `json:"score"`
		Reason string   `json:"reason"`
		Pitch  string   `json:"pitch"`
	} `json:"selected"`
	Evaluation string `json:"evaluation"`
}

// extractJSON returns the body of the first fenced block, or the trimmed
// content when there is no fence.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	i := strings.Index(s, "```")
	if i < 0 {
		return s
	}
	rest := s[i+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
		rest = rest[nl+1:] // language tag
	}
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// ParseEvaluation validates a raw judge reply against a pool of poolSize
// candidates. Exactly n distinct in-range selections with scores in
// [0, 100] are required; anything else is ErrMalformed.
func ParseEvaluation(content string, poolSize, n int) (*Evaluation, error) {
	var p evaluationPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(p.Selected) != n {
		return nil, fmt.Errorf("%w: got %d selections, want %d", ErrMalformed, len(p.Selected), n)
	}

	eval := &Evaluation{
		Selections: make([]Selection, 0, n),
		Summary:    strings.TrimSpace(p.Evaluation),
	}
	seen := make(map[int]bool, n)
	for _, s := range p.Selected {
		if s.Index == nil || s.Score == nil {
			return nil, fmt.Errorf("%w: selection missing index or score", ErrMalformed)
		}
		idx := *s.Index
		if idx < 1 || idx > poolSize {
			return nil, fmt.Errorf("%w: index %d out of range 1..%d", ErrMalformed, idx, poolSize)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: index %d selected twice", ErrMalformed, idx)
		}
		seen[idx] = true
		if *s.Score < 0 || *s.Score > 100 {
			return nil, fmt.Errorf("%w: score %v out of range", ErrMalformed, *s.Score)
		}
		eval.Selections = append(eval.Selections, Selection{
			Index:  idx - 1,
			Score:  *s.Score,
			Reason: strings.TrimSpace(s.Reason),
			Pitch:  strings.TrimSpace(s.Pitch),
		})
	}
	return eval, nil
}

// ParseSummary reads the two-line SUMMARY / PRICE_LEVEL reply.
func ParseSummary(content string) (Summary, error) {
	out := Summary{PriceLevel: models.PriceUnknown}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "[]")
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "SUMMARY":
			out.Text = value
		case "PRICE_LEVEL":
			if lvl := models.PriceLevel(strings.ToLower(value)); lvl.Valid() {
				out.PriceLevel = lvl
			}
		}
	}
	if out.Text == "" {
		return Summary{}, fmt.Errorf("%w: no summary line", ErrMalformed)
	}
	return out, nil
}
