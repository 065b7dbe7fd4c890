// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for CineMatch using suture v4.

# Overview

Long-running services are organized into two layers:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   ├── events.Recorder
	│   └── SessionCleanupService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently. A cleanup loop or event recorder
stuck in backoff does not stop the HTTP server.

# Logging

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog. cmd/server passes logging.NewSlogLogger so these events end up
in the same zerolog stream as the rest of the application.

# Shutdown

Canceling the context passed to Serve stops every service. Services that do
not return within TreeConfig.ShutdownTimeout are listed by
UnstoppedServiceReport and LogUnstopped.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewSessionCleanupService(sessions, cfg.Session.CleanupInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
