// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package recommend runs the nearby-activity recommendation pipeline.
//
// # Architecture
//
// A request carries the traveler's preferences (time bucket, budget,
// themes, travel mode and optional free text) and an optional override of
// the default location and weather. The Engine validates it, seeds a
// State and hands that State through a fixed list of stages:
//
//   - query: builds provider-neutral search queries from themes and weather
//   - search: fans the queries out to the place providers and normalizes results
//   - timefit: estimates travel, wait and stay minutes and scores the fit
//   - rank: scores, applies the strict time filter and selects the top N
//   - evaluate: optionally lets an LLM judge re-rank the candidate pool
//   - reviews: optionally attaches review snippets, photos and a summary
//   - fallback: tops the list up from a curated catalog
//
// The stage implementations live in sub-packages; package pipeline wires
// them together. This package holds the shared State, the Engine, the
// error taxonomy and the context provider.
//
// # Failure Handling
//
// Stages are either required or optional. A failing optional stage is
// logged and skipped; the request continues with whatever State it left.
// A failing required stage fails the request with its error classified
// by Code. Provider failures never fail a request: the search stage
// records them on the State and the fallback stage fills the gap.
//
// # Usage
//
//	contexts := recommend.NewContextProvider(cfg.Anchor)
//	engine, err := pipeline.New(pipeline.DefaultOptions(), contexts, deps, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, req, recommend.Options{RequestID: reqID})
//	if recommend.CodeOf(err) == recommend.CodeInvalidInput {
//	    // 400
//	}
//
// # Thread Safety
//
// The Engine is safe for concurrent use once its stages are registered.
// Each request gets its own State; stages run sequentially on the calling
// goroutine and must merge any fan-out back into the State before they
// return.
package recommend
