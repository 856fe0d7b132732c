// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint responds with.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": {"session_id": "session_20261016_101500_3f2a9c1d", "items": [...]},
//	  "metadata": {"timestamp": "2026-10-16T10:15:00Z", "query_time_ms": 812}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the structured error body.
//
// Codes:
//   - INVALID_INPUT / VALIDATION_ERROR: malformed or missing preferences
//   - NOT_FOUND: unknown question session
//   - RATE_LIMITED: too many requests
//   - UPSTREAM_TIMEOUT: a search or judge call exceeded its budget
//   - PROVIDER_ERROR: a provider returned an erroneous response
//   - INTERNAL_ERROR: unexpected failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Time      time.Time         `json:"time"`
	Breakers  map[string]string `json:"breakers,omitempty"`
	Providers []string          `json:"providers"`
	Judge     bool              `json:"judge_enabled"`
}
