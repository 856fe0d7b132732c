// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/sidequest/internal/validation"
)

// Code is an error taxonomy code surfaced to API callers.
type Code string

const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeUpstreamTimeout Code = "UPSTREAM_TIMEOUT"
	CodeProviderError   Code = "PROVIDER_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a classified pipeline error. Op names the failing operation,
// e.g. "serpapi.search" or "fallback.load".
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error with a formatted cause.
func Errorf(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err under op. The code of an already classified error
// is kept; otherwise CodeOf decides.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeOf(err), Op: op, Err: err}
}

// ErrEmptyCatalog is returned when the fallback catalog has no entries.
var ErrEmptyCatalog = errors.New("fallback catalog is empty")

// CodeOf classifies err. Deadline errors are upstream timeouts, validation
// errors are invalid input, anything unclassified is internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		return CodeInvalidInput
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeUpstreamTimeout
	}
	return CodeInternal
}
