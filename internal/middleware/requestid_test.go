// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/sidequest/internal/logging"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()

	var capturedID, loggingID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		loggingID = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	RequestID(handler)(rec, req)

	responseID := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if capturedID != responseID {
		t.Errorf("Context ID (%s) doesn't match response header ID (%s)", capturedID, responseID)
	}
	if loggingID != responseID {
		t.Errorf("logging context ID (%s) doesn't match (%s)", loggingID, responseID)
	}
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	t.Parallel()

	var capturedID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "upstream-123")
	rec := httptest.NewRecorder()
	RequestID(handler)(rec, req)

	if capturedID != "upstream-123" {
		t.Errorf("capturedID = %q, want upstream-123", capturedID)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "upstream-123" {
		t.Errorf("response header = %q", got)
	}
}

func TestRequestID_RejectsUnsafeIDs(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{strings.Repeat("a", 200), "abc\ndef"} {
		var capturedID string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedID = GetRequestID(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header[RequestIDHeader] = []string{bad}
		RequestID(handler)(httptest.NewRecorder(), req)

		if capturedID == bad {
			t.Errorf("unsafe request ID %q was accepted", bad)
		}
		if _, err := uuid.Parse(capturedID); err != nil {
			t.Errorf("replacement ID %q is not a UUID", capturedID)
		}
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
