// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package reviews attaches review snippets, a short summary and photos to the
final selection.

The Enricher stage fans out one lookup per selected item, bounded by a
semaphore. Each lookup has its own deadline and the whole batch has another;
an item whose lookup fails or is still running when the batch deadline
passes is returned exactly as the ranker (or evaluator) left it. A failure
never removes an item or fails the request.

Enrichment per item:

  - TopReviews: up to ShowSnippets snippets, in the order the upstream ranks them
  - ReviewSummary: produced by a judge.Summarizer when snippets exist, otherwise
    a rating-based sentence ("Rated 4.6/5 across 120 reviews, highly rated.")
  - PriceLevel and BudgetHint: replaced when the summarizer infers a price
  - Photos, PlaceID and coordinates: filled only when the item has none

PlaceLookup abstracts the upstream. SerpAPILookup resolves the place with the
google_maps engine and then reads google_maps_reviews for the best match.
*/
package reviews
