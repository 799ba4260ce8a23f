// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package services

import (
	"context"
	"fmt"
	"time"
)

// SweepFunc executes one retention sweep. The caller decides the cutoff
// and owns logging of the result; this package only handles scheduling.
//
// Wired in cmd/server as a closure over (*database.DB).PurgeOldData.
type SweepFunc func(ctx context.Context) error

// RetentionService runs a retention sweep on a fixed interval.
//
// It adapts a plain sweep function to suture's Serve pattern:
//
//  1. Runs one sweep immediately on start
//  2. Re-runs the sweep every interval
//  3. Stops cleanly when the context is canceled
//
// A failed sweep returns its error, so suture restarts the service and
// the start-time sweep becomes the retry. Persistent failures fall into
// the supervisor's backoff policy instead of a tight loop.
//
// The service is simply not added to the tree when retention is
// disabled (retention.days <= 0).
type RetentionService struct {
	sweep    SweepFunc
	interval time.Duration
	name     string
}

// NewRetentionService creates a new retention sweeper.
//
// The interval defaults to 24 hours when zero or negative.
func NewRetentionService(sweep SweepFunc, interval time.Duration) *RetentionService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RetentionService{
		sweep:    sweep,
		interval: interval,
		name:     "retention-sweeper",
	}
}

// Serve implements suture.Service.
func (s *RetentionService) Serve(ctx context.Context) error {
	// Initial sweep so a long-stopped instance purges promptly on boot.
	if err := s.sweep(ctx); err != nil {
		return fmt.Errorf("retention sweep failed: %w", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				return fmt.Errorf("retention sweep failed: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *RetentionService) String() string {
	return s.name
}
