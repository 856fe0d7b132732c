// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package geo holds the location helpers used while normalizing search
// results: haversine distance (via orb/geo), per-mode travel estimates,
// accent folding, the named-place gazetteer, the neighbourhood region
// table and map links.
//
// The gazetteer and region table are read-only after construction and
// safe for concurrent use.
package geo
