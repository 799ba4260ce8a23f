// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus
client library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Redirect hot path throughput and scan classification
  - QR image rendering
  - Conversion tracking and pixel beacon hits
  - HTTP request latency and throughput
  - Database query performance
  - Retention purge runs
  - Admin login attempts

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Redirect Metrics:
  - redirects_total: Tracking URL hits (counter)
    Labels: outcome (redirected, not_found, paused, archived, expired)
  - redirect_duration_seconds: Redirect handling latency incl. scan logging (histogram)
  - scans_recorded_total: Scan events recorded (counter)
    Labels: device_type (mobile, tablet, desktop, bot, unknown)
  - scans_bot_total / scans_unique_total / scans_duplicate_total: Classification counters

QR Rendering Metrics:
  - qr_images_rendered_total: Rendered QR images (counter)
    Labels: format (png, svg)
  - qr_render_duration_seconds: Render latency (histogram)
    Labels: format

Conversion Metrics:
  - conversions_recorded_total: Conversion events (counter)
    Labels: attribution (goal_id, auto_matched, unmatched)
  - pixel_beacon_hits_total: Pixel beacon requests (counter)

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - duckdb_connection_pool_size: Connections in use (gauge)

Retention Metrics:
  - retention_purge_duration_seconds: Purge run duration (histogram)
  - retention_scans_purged_total / retention_conversions_purged_total: Deleted rows
  - retention_errors_total: Failed purge runs (counter)
  - retention_last_success_timestamp: Unix timestamp of last successful purge (gauge)

Geolocation Metrics:
  - geo_lookups_total: GeoIP lookups (counter)
    Labels: result (hit, miss, error, disabled)
  - geo_lookup_duration_seconds: Lookup latency (histogram)

Import/Export Metrics:
  - import_rows_total: CSV import rows (counter)
    Labels: result (created, skipped)
  - exports_total: Export downloads (counter)
    Labels: kind (scans, qrcodes, zip)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/soerfi/qr-wizard/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    // Register metrics endpoint
	    http.Handle("/metrics", promhttp.Handler())

	    // Record metrics
	    metrics.RecordRedirect("redirected", 3*time.Millisecond)
	    metrics.RecordScan("mobile", false, true, false)
	    metrics.RecordQRRender("png", 8*time.Millisecond)
	}

Recording HTTP metrics with middleware:

	func MetricsMiddleware(next http.Handler) http.Handler {
	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	        start := time.Now()

	        // Wrap ResponseWriter to capture status code
	        rw := &responseWriter{ResponseWriter: w, statusCode: 200}

	        next.ServeHTTP(rw, r)

	        metrics.RecordAPIRequest(r.Method, r.URL.Path,
	            strconv.Itoa(rw.statusCode), time.Since(start))
	    })
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'qr-wizard'
	    static_configs:
	      - targets: ['localhost:8080']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Redirect rate
	rate(redirects_total{outcome="redirected"}[5m])

	# Scan bot share
	rate(scans_bot_total[5m]) / rate(scans_recorded_total[5m])

	# API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# Conversion rate by attribution
	rate(conversions_recorded_total[1h])

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use chi route patterns, never raw paths (slugs and
    IDs would otherwise create one series per link)
  - Redirect outcomes, attribution kinds and export kinds are fixed
    constant sets
  - Error types are truncated to 50 characters

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/api: Redirect, conversion and export recording
  - internal/supervisor: Retention purge recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
