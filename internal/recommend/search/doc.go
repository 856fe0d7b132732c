// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package search implements the search stage: provider clients, the
fan-out aggregator and normalization into models.ActivityItem.

# Providers

Each backend implements Provider and returns raw Places:

  - SerpAPI: google_maps engine, the primary maps provider
  - Bing: Web Search v7, secondary web provider
  - DuckDuckGo: keyless HTML results parsed with goquery, secondary web provider
  - Mock: canned Barcelona data used when no primary key is configured

Guard wraps a provider with the shared result cache, singleflight
coalescing, a token-bucket throttle and a circuit breaker.

# Budgets

The aggregator gives the primary providers PrimaryTimeout and the whole
stage TotalTimeout. Secondary providers run only when the primary
returned fewer than MinPrimaryItems raw results or any call failed, and
get whatever is left of the total, capped at SecondaryTimeout. Answers
arriving after a budget are dropped.

# Normalization

Normalizer.Normalize never fails. Coordinates are taken from the GPS,
Position and Lat/Lng slots in that order, then from the gazetteer; items
without coordinates get a regional or category travel estimate.
Duplicates (same folded name, and same place id or within 50 m) are
merged keeping the higher rating.
*/
package search
