// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"net/http"

	"github.com/soerfi/qr-wizard/internal/identity"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/models"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/login. A successful password check issues
// the signed session cookie. Attempts are rate limited per IP ahead of
// the bcrypt comparison so the hash work cannot be farmed.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := identity.ClientIP(r)

	if !h.auth.AllowLogin(ip) {
		h.secLog.LogRateLimited(ip)
		metrics.RecordLoginAttempt("rate_limited")
		respondError(w, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Too many requests", nil)
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !h.auth.VerifyPassword(req.Password) {
		h.secLog.LogLoginFailure(ip, r.UserAgent(), "invalid password")
		metrics.RecordLoginAttempt("failure")
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, msgInvalidPassword, nil)
		return
	}

	if err := h.auth.CreateSession(w); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to create session")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create session", nil)
		return
	}

	h.secLog.LogLoginSuccess(ip, r.UserAgent())
	metrics.RecordLoginAttempt("success")
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles POST /api/logout. Always succeeds, session or not.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSession(w)
	h.secLog.LogLogout(identity.ClientIP(r))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AuthStatus handles GET /api/auth_status. It is reachable without a
// session so the dashboard can decide whether to show the login form.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		"authenticated": h.auth.IsAuthenticated(r),
	})
}
