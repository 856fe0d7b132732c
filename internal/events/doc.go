// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package events publishes a RecommendationServed event after every
// successful recommendation and consumes it with an in-process audit handler.
//
// # Transports
//
// The Bus runs over one of two Watermill Pub/Sub implementations:
//
//   - gochannel (default): in-process, nothing to deploy
//   - NATS JetStream (events.nats_url set): durable, shared between replicas
//
// In JetStream mode the stream is provisioned on startup with a subject
// wildcard covering every sidequest topic, and the subscriber binds to it.
//
// # Delivery
//
// Publishing is best-effort. Each publish runs through a circuit breaker
// and is bounded by events.publish_timeout; failures are counted in
// sidequest_events_published_total and logged, never returned to the
// HTTP caller.
//
// # Consumers
//
// NewRouter wires the Auditor into a Watermill router with panic recovery
// and retries. The router is run as a supervised service.
package events
