// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package breaker wraps sony/gobreaker with the service's trip policy,
// logging and Prometheus metrics. Every outbound dependency (search
// providers, the judge, place lookup, the event publisher) gets its own
// Breaker so one failing upstream never opens another's circuit.
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/metrics"
)

// Trip policy: open when at least minRequests were seen in the current
// interval and failureRatio of them failed.
const (
	minRequests      = 10
	failureRatio     = 0.6
	halfOpenRequests = 3
	countInterval    = time.Minute
)

// ErrOpen is returned when the circuit rejects a call.
var ErrOpen = errors.New("circuit breaker open")

// Breaker guards calls to one upstream.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// Settings configures a Breaker.
type Settings struct {
	Name string

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// IsSuccessful classifies errors that should not count as failures,
	// for example caller cancellation. Nil counts every error.
	IsSuccessful func(err error) bool
}

// New creates a Breaker and publishes its initial closed state.
func New(s Settings) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: halfOpenRequests,
		Interval:    countInterval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= failureRatio {
				logging.Warn().
					Str("breaker", s.Name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := from.String(), to.String()
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.BreakerStateValue(toStr))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	}
	if s.IsSuccessful != nil {
		settings.IsSuccessful = s.IsSuccessful
	}

	return &Breaker{
		cb:   gobreaker.NewCircuitBreaker[interface{}](settings),
		name: s.Name,
	}
}

// Name returns the breaker name used in metrics.
func (b *Breaker) Name() string {
	return b.name
}

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Execute runs fn through the circuit. Rejections are reported as ErrOpen.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, ErrOpen
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// Do runs fn through b and type-asserts its result.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.New("circuit breaker: unexpected result type")
	}
	return typed, nil
}
