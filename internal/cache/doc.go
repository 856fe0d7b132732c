// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package cache provides the in-memory data structures shared by the
recommendation pipeline.

# TTL Cache

Cache is a thread-safe key/value store with a fixed time-to-live. Search
providers use it to memoise raw results keyed by GenerateKey over the provider
name, normalised query text, radius and a coarse coordinate bucket:

	c := cache.New(10 * time.Minute)
	defer c.Close()

	key := cache.GenerateKey("search:serpapi", params)
	if v, ok := c.Get(key); ok {
	    return v.([]search.Place), nil
	}
	places, err := provider.Search(ctx, q)
	if err == nil {
	    c.SetIfAbsent(key, places)
	}

SetIfAbsent implements first-writer-wins: once a key holds a live entry,
later writes for it are no-ops. The cache is an optimisation only; callers
must behave identically on a miss.

# Keyword Matching

KeywordMatcher is an Aho-Corasick automaton used for the static lookup tables
(category keywords, chain brands, the place gazetteer and the neighbourhood
region table). One pass over a name finds every keyword; First and Longest
pick the winning entry by table order or keyword length.

# Thread Safety

Cache methods are safe for concurrent use. A KeywordMatcher must be fully
built before it is shared; after Build it is read-only.
*/
package cache
