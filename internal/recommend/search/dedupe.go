// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
)

// DuplicateRadius is how close two same-named items must be to merge.
const DuplicateRadius = 50.0

// Dedupe merges items that share a normalized name and either sit within
// DuplicateRadius of each other or carry the same place id. Two items
// that both lack coordinates count as co-located. The higher rated
// duplicate is kept in the position of the first occurrence.
func Dedupe(items []models.ActivityItem) []models.ActivityItem {
	out := make([]models.ActivityItem, 0, len(items))
	names := make([]string, 0, len(items))

	for i := range items {
		name := geo.NormalizeName(items[i].Name)
		merged := false
		for j := range out {
			if names[j] != name || !sameplace(&out[j], &items[i]) {
				continue
			}
			if ratingOf(&items[i]) > ratingOf(&out[j]) {
				out[j] = items[i]
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, items[i])
			names = append(names, name)
		}
	}
	return out
}

func sameplace(a, b *models.ActivityItem) bool {
	if a.PlaceID != "" && a.PlaceID == b.PlaceID {
		return true
	}
	switch {
	case a.Coords != nil && b.Coords != nil:
		return geo.Within(*a.Coords, *b.Coords, DuplicateRadius)
	case a.Coords == nil && b.Coords == nil:
		return true
	default:
		return false
	}
}

func ratingOf(it *models.ActivityItem) float64 {
	if it.Rating == nil {
		return -1
	}
	return *it.Rating
}
