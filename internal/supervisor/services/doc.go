// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services provides suture.Service wrappers for CineMatch components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, which suture uses to name the service in its events.

Available services:

  - HTTPServerService: runs an *http.Server and shuts it down gracefully
    when the context is canceled.
  - SessionCleanupService: calls session.Service.Cleanup on a ticker to
    purge sessions idle for longer than session.ttl.
*/
package services
