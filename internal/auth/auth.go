// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/soerfi/qr-wizard/internal/config"
	"github.com/soerfi/qr-wizard/internal/logging"
)

// SessionCookieName is the cookie that carries the signed admin session.
const SessionCookieName = "qrw_session"

// bcryptCost is used when generating password hashes (CLI helper,
// tests). Verification accepts any cost embedded in the stored hash.
const bcryptCost = 12

// Session is the payload stored inside the signed session cookie.
// Sessions are stateless: the cookie itself is the only record, so
// there is nothing to look up or invalidate server-side. Expiry is
// enforced by checking IssuedAt against the configured timeout on
// every request.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	IssuedAt      time.Time `json:"issued_at"`
}

// Service verifies the admin password and issues signed session
// cookies. The cookie is signed (tamper-evident) but not encrypted;
// it carries no secrets, only an authenticated flag and a timestamp.
type Service struct {
	passwordHash   []byte
	sc             *securecookie.SecureCookie
	sessionTimeout time.Duration
	secureCookies  bool
	limiter        *LoginLimiter
}

// NewService builds the auth service from security configuration.
// An empty AdminPasswordHash is allowed but makes every login fail,
// which is the documented lockout mode for unconfigured deployments.
func NewService(cfg *config.Config) *Service {
	sc := securecookie.New([]byte(cfg.Security.SecretKey), nil)
	sc.MaxAge(int(cfg.Security.SessionTimeout.Seconds()))

	if cfg.Security.AdminPasswordHash == "" {
		logging.Warn().
			Str("component", "auth").
			Msg("ADMIN_PASSWORD_HASH not set, all admin logins will be rejected")
	}

	return &Service{
		passwordHash:   []byte(cfg.Security.AdminPasswordHash),
		sc:             sc,
		sessionTimeout: cfg.Security.SessionTimeout,
		secureCookies:  cfg.IsProduction(),
		limiter:        NewLoginLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow),
	}
}

// VerifyPassword checks a candidate password against the stored
// bcrypt hash. Comparison is constant-time inside bcrypt itself.
// An empty stored hash always fails.
func (s *Service) VerifyPassword(password string) bool {
	if len(s.passwordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}

// CreateSession issues a signed session cookie on the response.
func (s *Service) CreateSession(w http.ResponseWriter) error {
	session := Session{
		Authenticated: true,
		IssuedAt:      time.Now().UTC(),
	}
	encoded, err := s.sc.Encode(SessionCookieName, session)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(s.sessionTimeout.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession expires the session cookie. Because sessions are
// stateless this is purely client-side; an already-captured cookie
// stays valid until its timeout elapses.
func (s *Service) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// IsAuthenticated reports whether the request carries a valid,
// unexpired session cookie. Any decode failure (missing cookie,
// bad signature, wrong shape) reads as unauthenticated.
func (s *Service) IsAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	var session Session
	if err := s.sc.Decode(SessionCookieName, cookie.Value, &session); err != nil {
		return false
	}
	if !session.Authenticated {
		return false
	}
	return time.Since(session.IssuedAt) < s.sessionTimeout
}

// AllowLogin reports whether a login attempt from the given IP is
// within the per-IP rate limit.
func (s *Service) AllowLogin(ip string) bool {
	return s.limiter.Allow(ip)
}

// Close stops background goroutines owned by the service.
func (s *Service) Close() {
	s.limiter.Stop()
}

// HashPassword generates a bcrypt hash suitable for
// ADMIN_PASSWORD_HASH. Used by the --hash-password CLI helper.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
