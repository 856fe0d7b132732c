// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sidequest/internal/breaker"
	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// cacheName labels search cache metrics.
const cacheName = "search"

// defaultCallTimeout bounds a shared upstream call when GuardOptions
// leaves CallTimeout unset.
const defaultCallTimeout = 5 * time.Second

// GuardOptions configures the protections around one provider.
type GuardOptions struct {
	// Cache is shared by all guarded providers; keys include the provider
	// name. Nil disables caching.
	Cache *cache.Cache

	RatePerSecond  float64
	RateBurst      int
	BreakerTimeout time.Duration

	// CallTimeout bounds one upstream call. The call is shared by every
	// coalesced caller, so it does not inherit any caller's deadline.
	CallTimeout time.Duration
}

// Guarded wraps a Provider with a result cache, request coalescing, an
// outbound token bucket and a circuit breaker, in that order.
type Guarded struct {
	provider Provider
	cache    *cache.Cache
	group    singleflight.Group
	limiter  *rate.Limiter
	breaker  *breaker.Breaker
	timeout  time.Duration
	logger   zerolog.Logger
}

// Guard wraps p.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Guard(p Provider, opts GuardOptions, logger zerolog.Logger) *Guarded {
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}
	timeout := opts.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	return &Guarded{
		provider: p,
		cache:    opts.Cache,
		limiter:  rate.NewLimiter(limit, burst),
		breaker: breaker.New(breaker.Settings{
			Name:    "search-" + p.Name(),
			Timeout: timeout,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
		timeout: callTimeout,
		logger:  logger.With().Str("provider", p.Name()).Logger(),
	}
}

// Name returns the wrapped provider's name.
func (g *Guarded) Name() string { return g.provider.Name() }

// Target returns the wrapped provider's target.
func (g *Guarded) Target() recommend.SearchTarget { return g.provider.Target() }

// BreakerState reports the circuit state for health output.
func (g *Guarded) BreakerState() string { return g.breaker.State() }

// Search serves q from cache when possible. Concurrent identical misses
// share one upstream call. The call is skipped with ErrThrottled when the
// token bucket is empty and with breaker.ErrOpen when the circuit is open.
func (g *Guarded) Search(ctx context.Context, q Query) ([]Place, error) {
	key := g.cacheKey(q)

	if g.cache != nil {
		if v, ok := g.cache.Get(key); ok {
			metrics.RecordCacheLookup(cacheName, true)
			metrics.RecordProviderCall(g.Name(), "cached", 0)
			return clonePlaces(v.([]Place)), nil
		}
		metrics.RecordCacheLookup(cacheName, false)
	}

	// Joined callers must not fail when the caller that started the call
	// gives up, so the upstream call runs detached under its own bound.
	ch := g.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return g.call(callCtx, key, q)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clonePlaces(res.Val.([]Place)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Guarded) call(ctx context.Context, key string, q Query) ([]Place, error) {
	if !g.limiter.Allow() {
		metrics.RecordProviderCall(g.Name(), "throttled", 0)
		return nil, ErrThrottled
	}

	start := time.Now()
	places, err := breaker.Do(g.breaker, func() ([]Place, error) {
		return g.provider.Search(ctx, q)
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, breaker.ErrOpen):
			outcome = "rejected"
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			outcome = "timeout"
		}
		metrics.RecordProviderCall(g.Name(), outcome, elapsed)
		g.logger.Debug().Err(err).Str("outcome", outcome).Dur("elapsed", elapsed).Msg("search call failed")
		return nil, err
	}

	metrics.RecordProviderCall(g.Name(), "ok", elapsed)
	if g.cache != nil {
		g.cache.SetIfAbsent(key, places)
	}
	return places, nil
}

// cacheKey hashes provider, folded query text, radius, locale and the
// anchor rounded to 0.01 degrees.
func (g *Guarded) cacheKey(q Query) string {
	return cache.GenerateKey(cacheName, struct {
		Provider string  `json:"p"`
		Text     string  `json:"q"`
		Radius   int     `json:"r"`
		Locale   string  `json:"l"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
	}{
		Provider: g.Name(),
		Text:     strings.Join(strings.Fields(strings.ToLower(q.Text)), " "),
		Radius:   q.RadiusM,
		Locale:   q.Locale,
		Lat:      coarse(q.Anchor.Lat),
		Lng:      coarse(q.Anchor.Lng),
	})
}

func coarse(v float64) float64 {
	return math.Round(v*100) / 100
}

// clonePlaces copies the slice header so callers can append freely. Place
// pointer fields are never mutated after a provider returns them.
func clonePlaces(in []Place) []Place {
	if in == nil {
		return nil
	}
	out := make([]Place, len(in))
	copy(out, in)
	return out
}
