// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package middleware provides HTTP middleware components for the application.

Key Components:

  - Request ID: UUID-based request tracking, propagated into the logging context
  - Prometheus Metrics: HTTP request/response instrumentation

Both are written against http.HandlerFunc; the api package adapts them to
chi's func(http.Handler) http.Handler shape.
*/
package middleware
