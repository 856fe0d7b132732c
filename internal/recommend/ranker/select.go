// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package ranker

import (
	"sort"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
)

// Sort orders items by descending TotalScore, then ascending distance with
// unknown distances last, then name, then id.
func Sort(items []models.ActivityItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(&items[i], &items[j])
	})
}

func less(a, b *models.ActivityItem) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	switch {
	case a.DistanceMeters != nil && b.DistanceMeters == nil:
		return true
	case a.DistanceMeters == nil && b.DistanceMeters != nil:
		return false
	case a.DistanceMeters != nil && *a.DistanceMeters != *b.DistanceMeters:
		return *a.DistanceMeters < *b.DistanceMeters
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// constraints are the post-selection rules for one selection pass.
type constraints struct {
	chainDedupe bool
	categoryCap int // 0 disables the cap

	brands     map[string]bool
	categories map[models.Category]int
}

func newConstraints(chainDedupe bool, categoryCap int) *constraints {
	return &constraints{
		chainDedupe: chainDedupe,
		categoryCap: categoryCap,
		brands:      make(map[string]bool),
		categories:  make(map[models.Category]int),
	}
}

func chainKey(item *models.ActivityItem) string {
	if !item.LocaleHints.Chain {
		return ""
	}
	if item.LocaleHints.ChainBrand != "" {
		return item.LocaleHints.ChainBrand
	}
	return geo.NormalizeName(item.Name)
}

func (c *constraints) allows(item *models.ActivityItem) bool {
	if key := chainKey(item); c.chainDedupe && key != "" && c.brands[key] {
		return false
	}
	if c.categoryCap > 0 && c.categories[item.Category] >= c.categoryCap {
		return false
	}
	return true
}

func (c *constraints) add(item *models.ActivityItem) {
	if key := chainKey(item); key != "" {
		c.brands[key] = true
	}
	c.categories[item.Category]++
}

// Select picks up to n items from ranked, which must already be sorted.
// Constraints are relaxed in the order they are applied, chain dedupe
// first and then the category cap, until n items are found or nothing is
// left to relax. The result keeps ranked order.
func Select(ranked []models.ActivityItem, n, categoryCap int) []models.ActivityItem {
	if n <= 0 || len(ranked) == 0 {
		return nil
	}
	passes := []*constraints{
		newConstraints(true, categoryCap),
		newConstraints(false, categoryCap),
		newConstraints(false, 0),
	}

	var picked []models.ActivityItem
	for _, c := range passes {
		picked = pick(ranked, n, c)
		if len(picked) >= n || len(picked) == len(ranked) {
			break
		}
	}
	return picked
}

func pick(ranked []models.ActivityItem, n int, c *constraints) []models.ActivityItem {
	out := make([]models.ActivityItem, 0, n)
	for i := range ranked {
		if len(out) == n {
			break
		}
		if !c.allows(&ranked[i]) {
			continue
		}
		c.add(&ranked[i])
		out = append(out, ranked[i].Clone())
	}
	return out
}
