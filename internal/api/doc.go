// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package api provides the HTTP REST API layer for Sidequest.

Routes (Chi router):

  - GET  /api/v1/health: breaker states, configured providers, judge flag
  - GET  /api/v1/context: the default anchor (location, weather, local time)
  - POST /api/v1/recommend: run the pipeline for explicit preferences
  - POST /api/v1/questions/start: begin a question session
  - POST /api/v1/questions/answer: answer the current question
  - GET  /api/v1/questions/{id}: current session state
  - POST /api/v1/questions/{id}/back: step back one question
  - POST /api/v1/questions/{id}/recommend: recommend from a completed session
  - GET  /metrics: Prometheus exposition

Every JSON response uses the models.APIResponse envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "metadata": {"timestamp": "...", "query_time_ms": 812, "request_id": "..."},
	  "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}
	}

Error codes map to status as follows: INVALID_INPUT and VALIDATION_ERROR
400, NOT_FOUND 404, CONFLICT 409, RATE_LIMITED 429, PROVIDER_ERROR 502,
UPSTREAM_TIMEOUT 504, INTERNAL_ERROR 500.

The two recommend routes share one per-IP rate limit (httprate, 30 requests
per minute by default). Each successful recommendation is handed to the
EventPublisher without waiting for delivery.
*/
package api
