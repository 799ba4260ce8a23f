// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package logging

import (
	"github.com/rs/zerolog"
)

// SecurityEvent represents a security-relevant event for audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g. "login_success", "logout").
	Event string
	// IPAddress is the client's IP address.
	IPAddress string
	// UserAgent is the client's user agent (truncated before logging).
	UserAgent string
	// Success indicates if the operation was successful.
	Success bool
	// Error is the error message if the operation failed.
	Error string
}

// SecurityLogger provides audit logging for authentication events.
// Passwords and session secrets are never passed to it.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogEvent logs a security event.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info().Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", event.Error)
	}

	e.Msg("")
}

// LogLoginSuccess logs a successful admin login.
func (l *SecurityLogger) LogLoginSuccess(ip, userAgent string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_success",
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	})
}

// LogLoginFailure logs a failed admin login attempt.
func (l *SecurityLogger) LogLoginFailure(ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_failure",
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   false,
		Error:     reason,
	})
}

// LogLogout logs a session logout.
func (l *SecurityLogger) LogLogout(ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "logout",
		IPAddress: ip,
		Success:   true,
	})
}

// LogRateLimited logs a rate-limited login attempt.
func (l *SecurityLogger) LogRateLimited(ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_rate_limited",
		IPAddress: ip,
		Success:   false,
		Error:     "too many attempts",
	})
}

// truncateString limits a string to max characters.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
