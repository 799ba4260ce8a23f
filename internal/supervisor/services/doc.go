// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

/*
Package services provides suture.Service wrappers for QR Wizard components.

This package adapts application components to the suture v4 supervision
model, translating their native lifecycle patterns (ListenAndServe, a
periodic sweep function) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation to the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Retention Sweeper (RetentionService):
  - Runs the scan/conversion retention purge on a fixed interval
  - Sweeps once at start, then on every tick
  - Failed sweeps are retried through the supervisor's backoff policy

# Design Principles

Interface-Based Wrapping:
  - Wrappers depend on small interfaces or plain functions, not concrete types
  - Enables testing with mocks
  - Avoids import cycles with wrapped packages

Error Semantics:
  - Return nil: service stopped cleanly (no restart)
  - Return error: service failed (supervisor restarts it)
  - Return ctx.Err() after cancellation: normal shutdown

Logging:
  - Wrappers do not log; domain components and the sutureslog event
    hook own all logging
*/
package services
