// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package api implements the HTTP surface of qr-wizard: the public
// tracking endpoints and the admin JSON API.
//
// Public (no auth):
//   - GET /t/{slug}      tracking redirect, logs a scan event
//   - GET /goal.gif      1x1 conversion beacon
//   - GET /health        liveness and readiness
//   - GET /metrics       Prometheus metrics
//   - POST /api/login    session login
//
// Admin (session cookie required):
//   - /api/qrcodes...    link CRUD, bulk import/action, image download
//   - /api/goals, /api/conversions
//   - /api/analytics/... summary, timeseries, top, breakdown, options
//   - /api/export/...    scans and library CSV exports
//   - /api/retention/run manual retention purge
//
// All /api responses use the models.APIResponse envelope. Image, CSV,
// ZIP, redirect and beacon responses are raw bodies.
//
// Routing is go-chi with per-group middleware: the redirect hot path
// carries only a permissive rate limit, while the admin groups stack
// authentication, tighter rate limits and security headers. See
// SetupChi for the full composition.
package api
