// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

/*
Package supervisor provides process supervision for Sidequest using suture v4.

Long-running services are grouped into three layers so that a failure in
one layer restarts only that layer:

	RootSupervisor ("sidequest")
	├── DataSupervisor ("data-layer")
	│   └── BadgerGCService (session.store = badger)
	├── MessagingSupervisor ("messaging-layer")
	│   └── RouterService (events.enabled, audit consumer)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (start, failure, backoff, restart) are logged through the
sutureslog adapter on the shared slog logger.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

The services subpackage holds the suture.Service wrappers.
*/
package supervisor
