// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/sidequest/internal/validation"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.TopN != 4 {
		t.Errorf("TopN = %d, want 4", cfg.TopN)
	}
	if cfg.City != "Barcelona" {
		t.Errorf("City = %q", cfg.City)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "top n of one", modify: func(c *Config) { c.TopN = 1 }},
		{name: "top n of ten", modify: func(c *Config) { c.TopN = 10 }},
		{name: "top n zero", modify: func(c *Config) { c.TopN = 0 }, wantError: true},
		{name: "top n too large", modify: func(c *Config) { c.TopN = 11 }, wantError: true},
		{name: "zero stage timeout", modify: func(c *Config) { c.StageTimeout = 0 }, wantError: true},
		{name: "negative stage timeout", modify: func(c *Config) { c.StageTimeout = -time.Second }, wantError: true},
		{name: "empty city is allowed", modify: func(c *Config) { c.City = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	verr := &validation.RequestValidationError{}
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"classified", Errorf(CodeProviderError, "serpapi.search", "status %d", 502), CodeProviderError},
		{"wrapped classified", fmt.Errorf("outer: %w", Errorf(CodeUpstreamTimeout, "judge.evaluate", "slow")), CodeUpstreamTimeout},
		{"validation", fmt.Errorf("decode: %w", verr), CodeInvalidInput},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), CodeUpstreamTimeout},
		{"unclassified", errors.New("boom"), CodeInternal},
		{"empty code falls through", &Error{Op: "x", Err: context.DeadlineExceeded}, CodeUpstreamTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	if Wrap("op", nil) != nil {
		t.Error("Wrap(nil) must be nil")
	}

	inner := Errorf(CodeProviderError, "bing.search", "status 500")
	err := Wrap("search", inner)
	var e *Error
	if !errors.As(err, &e) || e.Op != "search" || e.Code != CodeProviderError {
		t.Errorf("Wrap() = %#v", err)
	}
	if !errors.Is(err, inner) {
		t.Error("Wrap() lost the cause")
	}
	if got := err.Error(); got != "search: bing.search: status 500" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&Error{Code: CodeInternal, Op: "fallback.generate"}).Error(); got != "fallback.generate: INTERNAL_ERROR" {
		t.Errorf("Error() without cause = %q", got)
	}
}
