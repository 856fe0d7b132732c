// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RouterFactory builds a ready-to-run Watermill router.
type RouterFactory func() (*message.Router, error)

// RouterService runs a Watermill router under supervision.
//
// A closed router cannot be run again, so each Serve call asks the factory
// for a new one. Handler registration lives in the factory.
//
// Example usage:
//
//	svc := services.NewRouterService("event-router", func() (*message.Router, error) {
//	    return events.NewRouter(events.DefaultRouterConfig(), bus, auditor)
//	})
//	tree.AddMessagingService(svc)
type RouterService struct {
	factory RouterFactory
	name    string
	running chan struct{}
	once    sync.Once
}

// NewRouterService creates a router service.
func NewRouterService(name string, factory RouterFactory) *RouterService {
	return &RouterService{factory: factory, name: name, running: make(chan struct{})}
}

// Serve implements suture.Service. It returns when ctx is canceled or the
// router stops on its own; the latter makes suture restart it.
func (s *RouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("%s: build router: %w", s.name, err)
	}

	go func() {
		select {
		case <-router.Running():
			s.markRunning()
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: router stopped unexpectedly", s.name)
}

func (s *RouterService) markRunning() {
	s.once.Do(func() { close(s.running) })
}

// Running is closed once the first router has started its handlers.
func (s *RouterService) Running() <-chan struct{} {
	return s.running
}

// String implements fmt.Stringer for suture logging.
func (s *RouterService) String() string {
	return s.name
}
