// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// fakeProvider returns canned places after an optional delay. With
// ignoreCtx set it keeps sleeping past cancellation, like a stuck upstream.
type fakeProvider struct {
	name      string
	target    recommend.SearchTarget
	places    []Place
	err       error
	delay     time.Duration
	ignoreCtx bool

	calls atomic.Int32
	mu    sync.Mutex
	seen  []string
}

func (f *fakeProvider) Name() string                   { return f.name }
func (f *fakeProvider) Target() recommend.SearchTarget { return f.target }

func (f *fakeProvider) Search(ctx context.Context, q Query) ([]Place, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, q.Text)
	f.mu.Unlock()

	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Place, len(f.places))
	copy(out, f.places)
	return out, nil
}

func (f *fakeProvider) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

// namedPlaces builds n distinct places without coordinates.
func namedPlaces(source models.Source, prefix string, n int) []Place {
	out := make([]Place, n)
	for i := range out {
		out[i] = Place{Source: source, Title: fmt.Sprintf("%s %d", prefix, i)}
	}
	return out
}
