// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package judge provides the optional judge capability and the evaluator
stage that uses it.

# Capabilities

Judge re-evaluates the ranked candidate pool and returns exactly N
selections with scores and rationale. Summarizer condenses review
snippets into a short text and a coarse price level.

Client implements both against any OpenAI-compatible chat completions
endpoint. KeywordSummarizer implements Summarizer without network access
and is used when no API key is configured.

# Degradation

Every judge failure is absorbed. A timeout, transport error, open circuit
or malformed payload leaves the ranker's selection untouched. A response
is only adopted when it names exactly min(N, pool) distinct in-range
candidates with scores in [0, 100].

# Time Policy

The prompt states the time bound first and, in the strict bucket, caps
any over-budget candidate at StrictCap. The evaluator still drops any
selected item that violates the strict filter and backfills from the
ranker's order.
*/
package judge
