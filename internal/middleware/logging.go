// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/soerfi/qr-wizard/internal/logging"
)

// RequestLogger returns a middleware that writes one structured log entry
// per completed request: method, path, status, duration and remote address.
// Install it after RequestID so the request id is attached to every entry.
//
// Server errors log at error level, client errors at warn, everything
// else at info.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		var event *zerolog.Event
		switch {
		case ww.statusCode >= http.StatusInternalServerError:
			event = logging.Ctx(r.Context()).Error()
		case ww.statusCode >= http.StatusBadRequest:
			event = logging.Ctx(r.Context()).Warn()
		default:
			event = logging.Ctx(r.Context()).Info()
		}

		event.
			Str("component", "http").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("Request completed")
	})
}
