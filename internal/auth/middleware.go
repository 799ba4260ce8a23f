// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package auth

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/models"
)

// RequireAuth gates admin API routes behind a valid session cookie.
// Unauthenticated requests get a 401 in the standard error envelope.
// Public routes (redirect, pixel, login, health, metrics, static UI)
// are never wrapped with this middleware; the router decides, not a
// path allowlist here.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsAuthenticated(r) {
			writeUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	logging.Ctx(r.Context()).Debug().
		Str("component", "auth").
		Str("path", r.URL.Path).
		Msg("Rejected unauthenticated request")

	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    models.ErrCodeUnauthorized,
			Message: "Unauthorized",
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode unauthorized response")
	}
}
