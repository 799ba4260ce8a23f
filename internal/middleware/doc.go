// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for request ID tracking,
structured request logging, Prometheus metrics instrumentation, performance
monitoring, CORS, rate limiting and security headers. These components work
alongside the session middleware in internal/auth to form the complete
middleware stack for HTTP request processing.

Key Components:

  - Request ID: UUID-based request tracking wired into the logging context
  - Request Logger: one structured zerolog entry per completed request
  - Prometheus Metrics: HTTP request/response instrumentation
  - Performance Monitor: request latency tracking with percentile calculations
  - ChiMiddleware: CORS and per-endpoint rate limiting factories built on
    go-chi/cors and go-chi/httprate
  - SecurityHeaders: nosniff, frame denial, referrer policy and conditional HSTS

Middleware Stack:

The router applies middleware in this order:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)        // context + X-Request-ID header
	r.Use(middleware.RequestLogger)    // structured completion log
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders())
	r.Use(chimw.Compress(5))           // chi's gzip middleware
	r.Use(cm.CORS())                   // cm := middleware.NewChiMiddleware(cfg)

Rate limits are then applied per route group rather than globally, because
the tracking redirect and the admin API have very different traffic shapes:

	r.With(cm.RateLimitRedirect()).Get("/t/{slug}", h.Redirect)
	r.With(cm.RateLimitLogin()).Post("/api/login", h.Login)
	r.With(cm.RateLimitExport()).Get("/api/export/scans.csv", h.ExportScans)

Endpoint label cardinality:

Both the Prometheus middleware and the performance monitor key metrics by
the chi route pattern (for example /t/{slug}), never the raw request path.
A million distinct slugs must not create a million label values.

Performance Characteristics:

  - Metrics overhead: <0.1ms per request
  - Request ID overhead: <0.01ms (UUID generation)
  - Performance monitor: RWMutex-guarded sliding window of recent samples

Thread Safety:

All middleware components are thread-safe:
  - Performance monitor uses sync.RWMutex
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations
  - httprate limiters use their own internal locking

See Also:

  - internal/auth: Session authentication middleware
  - internal/api: HTTP handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
  - internal/logging: Context helpers used by RequestID and RequestLogger
*/
package middleware
