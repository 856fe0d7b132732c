// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package services provides suture.Service wrappers for Sidequest components.

Each wrapper translates a component lifecycle into suture's
Serve(ctx) error pattern and implements fmt.Stringer so supervisor events
name the service.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server; graceful Shutdown on cancellation
  - http.ErrServerClosed is treated as a clean stop

Event Router (RouterService):
  - Runs a Watermill message.Router built by a factory
  - A fresh router per Serve call, so restarts work after Close

Badger GC (BadgerGCService):
  - Periodic RunValueLogGC on the session database
  - Stops when the database is closed
*/
package services
