// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package models

import (
	"fmt"
	"strings"
)

// TimeBucket is a discretized upper bound on the traveler's free time.
type TimeBucket string

const (
	TimeBucketUpTo30  TimeBucket = "≤30"
	TimeBucket30To60  TimeBucket = "30-60"
	TimeBucket60To120 TimeBucket = "60-120"
	TimeBucketOver120 TimeBucket = ">120"
)

// timeBucketUpTo30ASCII is the keyboard-friendly spelling of TimeBucketUpTo30.
const timeBucketUpTo30ASCII = "<=30"

// ParseTimeBucket canonicalises s. The ASCII spelling "<=30" is accepted.
func ParseTimeBucket(s string) (TimeBucket, error) {
	s = strings.TrimSpace(s)
	if s == timeBucketUpTo30ASCII {
		return TimeBucketUpTo30, nil
	}
	b := TimeBucket(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown time bucket %q", s)
	}
	return b, nil
}

// Valid reports whether b is one of the known buckets.
func (b TimeBucket) Valid() bool {
	switch b {
	case TimeBucketUpTo30, TimeBucket30To60, TimeBucket60To120, TimeBucketOver120:
		return true
	}
	return false
}

// Bound returns the upper bound in minutes. ok is false for the unbounded bucket.
func (b TimeBucket) Bound() (minutes int, ok bool) {
	switch b {
	case TimeBucketUpTo30:
		return 30, true
	case TimeBucket30To60:
		return 60, true
	case TimeBucket60To120:
		return 120, true
	default:
		return 0, false
	}
}

// IsStrict reports whether b is the strict short-gap bucket where
// over-budget candidates are excluded rather than penalised.
func (b TimeBucket) IsStrict() bool {
	return b == TimeBucketUpTo30
}

// PriceLevel is a coarse price tier.
type PriceLevel string

const (
	PriceLow     PriceLevel = "low"
	PriceMid     PriceLevel = "mid"
	PriceHigh    PriceLevel = "high"
	PriceUnknown PriceLevel = "unknown"
)

// Valid reports whether p is a known price level.
func (p PriceLevel) Valid() bool {
	switch p {
	case PriceLow, PriceMid, PriceHigh, PriceUnknown:
		return true
	}
	return false
}

// Tier returns 0, 1 or 2 for low, mid and high; -1 otherwise.
func (p PriceLevel) Tier() int {
	switch p {
	case PriceLow:
		return 0
	case PriceMid:
		return 1
	case PriceHigh:
		return 2
	default:
		return -1
	}
}

// Theme is a requested activity theme.
type Theme string

const (
	ThemeRelax    Theme = "relax"
	ThemeShopping Theme = "shopping"
	ThemeFood     Theme = "food"
	ThemeActivity Theme = "activity"
)

// AllThemes lists themes in their canonical order.
var AllThemes = []Theme{ThemeRelax, ThemeShopping, ThemeFood, ThemeActivity}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeRelax, ThemeShopping, ThemeFood, ThemeActivity:
		return true
	}
	return false
}

// IndoorOutdoor describes weather exposure.
type IndoorOutdoor string

const (
	Indoor         IndoorOutdoor = "indoor"
	Outdoor        IndoorOutdoor = "outdoor"
	Mixed          IndoorOutdoor = "mixed"
	SettingUnknown IndoorOutdoor = "unknown"
)

// Source tags the provider an item came from.
type Source string

const (
	SourceSerpAPI    Source = "serpapi"
	SourceBing       Source = "bing"
	SourceDuckDuckGo Source = "duckduckgo"
	SourceMock       Source = "mock"
	SourceFallback   Source = "fallback"
)

// TravelMode selects the representative travel estimate.
type TravelMode string

const (
	TravelWalking TravelMode = "walking"
	TravelDriving TravelMode = "driving"
	TravelTransit TravelMode = "transit"
	TravelFastest TravelMode = "fastest"
)

// Valid reports whether m is a known mode. The empty mode is valid and means walking.
func (m TravelMode) Valid() bool {
	switch m {
	case "", TravelWalking, TravelDriving, TravelTransit, TravelFastest:
		return true
	}
	return false
}
