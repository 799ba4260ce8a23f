// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP. Each IP gets a
// token bucket with a burst of attempts that refills one token per
// window, so a burst of failures locks the IP out for roughly one
// window per wasted attempt. Idle entries are evicted in the
// background to bound memory on long-running servers.
type LoginLimiter struct {
	entries   map[string]*limiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter creates a limiter allowing a burst of attempts per
// IP within the window. The cleanup goroutine starts immediately;
// call Stop to release it.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	if attempts < 1 {
		attempts = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &LoginLimiter{
		entries:   make(map[string]*limiterEntry),
		rate:      rate.Every(window),
		burst:     attempts,
		stopClean: make(chan struct{}),
	}
	go l.startCleanup(10 * time.Minute)
	return l
}

// Allow reports whether a login attempt from ip is within the limit.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{
			limiter:    rate.NewLimiter(l.rate, l.burst),
			lastAccess: time.Now(),
		}
		l.entries[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

func (l *LoginLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopClean:
			return
		}
	}
}

// cleanup evicts entries idle for over an hour. A returning IP simply
// gets a fresh bucket, which errs on the permissive side.
func (l *LoginLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range l.entries {
		if entry.lastAccess.Before(threshold) {
			delete(l.entries, ip)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *LoginLimiter) Stop() {
	close(l.stopClean)
}
