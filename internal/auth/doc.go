// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package auth implements single-admin session authentication.
//
// The model is deliberately small: one shared admin password, stored
// as a bcrypt hash in configuration, exchanged at POST /api/login for
// a signed session cookie. There are no users, roles, or server-side
// session records.
//
// # Components
//
//   - Service: password verification (bcrypt), session cookie
//     issue/clear/validate (gorilla/securecookie, signed with
//     SECRET_KEY), per-IP login throttling
//   - LoginLimiter: token-bucket login rate limiting keyed by client
//     IP with background eviction of idle entries
//   - RequireAuth: middleware for the admin route group returning
//     401 UNAUTHORIZED in the standard response envelope
//
// # Session Model
//
// The cookie payload is a Session{Authenticated, IssuedAt} struct,
// serialized and signed by securecookie. Validation checks the
// signature and that IssuedAt is within SESSION_TIMEOUT. Logout
// clears the cookie client-side only: a captured cookie remains
// valid until it times out, which is an accepted trade-off of the
// stateless design (rotate SECRET_KEY to force-invalidate).
//
// # Usage
//
//	svc := auth.NewService(cfg)
//	defer svc.Close()
//
//	r.Route("/api", func(r chi.Router) {
//		r.Post("/login", handlers.Login)       // public, rate limited
//		r.Group(func(r chi.Router) {
//			r.Use(svc.RequireAuth)
//			r.Mount("/qrcodes", qrcodeRoutes)
//		})
//	})
package auth
