// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package ranker scores candidates and selects the top N.

# Composite Score

Each item gets a weighted sum clamped to [0, 100]:

	distance  20  exp(-d/1000) * 20, 10 when the distance is unknown
	time      20  time-fitness score from the timefit stage
	budget    15  exact 15, adjacent tier 8, unknown price 7, otherwise 0
	rating    15  rating/5 * 15, 7 when unrated
	weather   10  rain: indoor 10, outdoor 2, other 7; dry: 7, outdoor 10
	theme     15  6 with no overlap, otherwise min(15, 6 + 3*overlap)
	local      5  0 for recognized chains

Items known to be closed lose 15 points.

# Strict Filter

In the strict time bucket any item whose total time exceeds the bound is
removed before selection. Other buckets rely on the soft time score.

# Selection

Candidates are ordered by score, then distance (unknown last), then name.
Selection walks that order greedily, skipping repeated chain brands and
capping items per category. When the constraints leave fewer than N items
they are relaxed one at a time, chain dedupe first, and selection reruns.
*/
package ranker
