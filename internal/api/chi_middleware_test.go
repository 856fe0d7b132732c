// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sidequest/internal/config"
)

// =====================================================
// ChiMiddleware Configuration Tests
// =====================================================

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	t.Parallel()
	m := NewChiMiddleware(nil)

	if m.config == nil {
		t.Fatal("config is nil")
	}
	// Default should be empty (requires explicit configuration)
	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want []", m.config.CORSAllowedOrigins)
	}
	if m.config.RateLimitRequests != 30 || m.config.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d per %s, want 30 per 1m", m.config.RateLimitRequests, m.config.RateLimitWindow)
	}
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sec        config.SecurityConfig
		wantReqs   int
		wantWindow time.Duration
		wantOff    bool
		wantOrigin int
	}{
		{"zero values keep defaults", config.SecurityConfig{}, 30, time.Minute, false, 0},
		{"overrides", config.SecurityConfig{
			RateLimitReqs:   5,
			RateLimitWindow: 10 * time.Second,
			CORSOrigins:     []string{"https://app.example.com"},
		}, 5, 10 * time.Second, false, 1},
		{"disabled", config.SecurityConfig{RateLimitDisabled: true}, 30, time.Minute, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := ChiMiddlewareConfigFrom(tt.sec)
			if cfg.RateLimitRequests != tt.wantReqs || cfg.RateLimitWindow != tt.wantWindow || cfg.RateLimitDisabled != tt.wantOff {
				t.Errorf("cfg = %+v", cfg)
			}
			if len(cfg.CORSAllowedOrigins) != tt.wantOrigin {
				t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
			}
		})
	}
}

// =====================================================
// Rate limiting
// =====================================================

func TestRateLimit_SharedAcrossPipelineRoutes(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	ts := newTestServer(t, cfg)

	if w, _ := ts.do(t, http.MethodPost, "/api/v1/recommend", validRecommendBody); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	// Counts against the same budget even though the session is unknown.
	if w, _ := ts.do(t, http.MethodPost, "/api/v1/questions/nope/recommend", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second request status = %d", w.Code)
	}

	w, env := ts.do(t, http.MethodPost, "/api/v1/recommend", validRecommendBody)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeRateLimited {
		t.Errorf("error = %+v", env.Error)
	}

	// Non-pipeline routes are not limited.
	for i := 0; i < 5; i++ {
		if w, _ := ts.do(t, http.MethodGet, "/api/v1/health", ""); w.Code != http.StatusOK {
			t.Fatalf("health status = %d", w.Code)
		}
		if w, _ := ts.do(t, http.MethodPost, "/api/v1/questions/start", ""); w.Code != http.StatusCreated {
			t.Fatalf("start status = %d", w.Code)
		}
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	ts := newTestServer(t, cfg)

	for i := 0; i < 3; i++ {
		if w, _ := ts.do(t, http.MethodPost, "/api/v1/recommend", validRecommendBody); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
}

// =====================================================
// CORS and router
// =====================================================

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://app.example.com"}
	ts := newTestServer(t, cfg)

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommend", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: Access-Control-Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestRouter_RequestIDGenerated(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	w, env := ts.do(t, http.MethodGet, "/api/v1/health", "")
	id := w.Header().Get("X-Request-ID")
	if id == "" || env.Metadata.RequestID != id {
		t.Errorf("header %q metadata %q", id, env.Metadata.RequestID)
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodGet, "/api/v1/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/v1/health") {
		t.Error("metrics output has no route-labelled request series")
	}
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
