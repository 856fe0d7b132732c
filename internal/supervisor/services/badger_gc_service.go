// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// ValueLogGCer is satisfied by *badger.DB.
type ValueLogGCer interface {
	RunValueLogGC(discardRatio float64) error
}

// BadgerGCService periodically reclaims value-log space left behind by
// expired question sessions.
type BadgerGCService struct {
	db       ValueLogGCer
	interval time.Duration
	ratio    float64
	logger   zerolog.Logger
	name     string
}

// NewBadgerGCService creates a GC service. Non-positive interval means 5m,
// a ratio outside (0,1) means 0.5.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerGCService(db ValueLogGCer, interval time.Duration, ratio float64, logger zerolog.Logger) *BadgerGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &BadgerGCService{
		db:       db,
		interval: interval,
		ratio:    ratio,
		logger:   logger.With().Str("component", "badger-gc").Logger(),
		name:     "badger-gc",
	}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.collect(); err != nil {
				return err
			}
		}
	}
}

// collect runs GC until no more cleanup is possible. A closed database
// ends the service.
func (s *BadgerGCService) collect() error {
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(s.ratio)
		switch {
		case err == nil:
			rewrites++
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
		case errors.Is(err, badger.ErrDBClosed):
			return err
		default:
			s.logger.Warn().Err(err).Msg("value log GC failed")
		}
		break
	}
	if rewrites > 0 {
		s.logger.Debug().Int("rewrites", rewrites).Msg("value log GC reclaimed space")
	}
	return nil
}

// String implements fmt.Stringer for suture logging.
func (s *BadgerGCService) String() string {
	return s.name
}
