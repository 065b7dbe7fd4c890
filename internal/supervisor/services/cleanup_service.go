// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
)

// SessionCleaner removes idle sessions and reports how many were removed.
//
// Satisfied by *session.Service.
type SessionCleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// SessionCleanupService periodically purges idle sessions.
//
// Store errors are logged and retried on the next tick; Serve only
// returns when its context is canceled.
type SessionCleanupService struct {
	cleaner  SessionCleaner
	interval time.Duration
}

// NewSessionCleanupService creates the cleanup loop. A non-positive
// interval defaults to one minute.
//
// Example usage:
//
//	tree.AddDataService(services.NewSessionCleanupService(sessionService, cfg.Session.CleanupInterval))
func NewSessionCleanupService(cleaner SessionCleaner, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionCleanupService{
		cleaner:  cleaner,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("session-cleanup")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.cleaner.Cleanup(ctx); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("Session cleanup failed")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *SessionCleanupService) String() string {
	return "session-cleanup"
}
