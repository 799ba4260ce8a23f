// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package auth

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLoginLimiter_AllowsBurst(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	defer l.Stop()

	ip := "192.0.2.1"
	for i := 0; i < 3; i++ {
		if !l.Allow(ip) {
			t.Fatalf("Attempt %d within burst should be allowed", i+1)
		}
	}
	if l.Allow(ip) {
		t.Error("Attempt beyond burst should be denied")
	}
}

func TestLoginLimiter_PerIPIsolation(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("192.0.2.1") {
		t.Fatal("First IP should be allowed")
	}
	if l.Allow("192.0.2.1") {
		t.Error("First IP should be exhausted")
	}
	if !l.Allow("192.0.2.2") {
		t.Error("Second IP should have an independent budget")
	}
}

func TestLoginLimiter_RefillsAfterWindow(t *testing.T) {
	l := NewLoginLimiter(1, 50*time.Millisecond)
	defer l.Stop()

	ip := "192.0.2.3"
	if !l.Allow(ip) {
		t.Fatal("First attempt should be allowed")
	}
	if l.Allow(ip) {
		t.Fatal("Second immediate attempt should be denied")
	}

	time.Sleep(120 * time.Millisecond)

	if !l.Allow(ip) {
		t.Error("Attempt after the window elapsed should be allowed")
	}
}

func TestLoginLimiter_DefensiveDefaults(t *testing.T) {
	l := NewLoginLimiter(0, 0)
	defer l.Stop()

	ip := "192.0.2.4"
	if !l.Allow(ip) {
		t.Error("Expected a minimum burst of one attempt")
	}
	if l.Allow(ip) {
		t.Error("Expected second attempt to be denied with burst clamped to 1")
	}
}

func TestLoginLimiter_CleanupEvictsIdleEntries(t *testing.T) {
	l := NewLoginLimiter(5, time.Minute)
	defer l.Stop()

	l.Allow("192.0.2.5")
	l.Allow("192.0.2.6")

	// Backdate one entry past the eviction threshold
	l.mu.Lock()
	l.entries["192.0.2.5"].lastAccess = time.Now().Add(-2 * time.Hour)
	l.mu.Unlock()

	l.cleanup()

	l.mu.Lock()
	_, staleExists := l.entries["192.0.2.5"]
	_, freshExists := l.entries["192.0.2.6"]
	l.mu.Unlock()

	if staleExists {
		t.Error("Expected idle entry to be evicted")
	}
	if !freshExists {
		t.Error("Expected recently used entry to survive cleanup")
	}
}

func TestLoginLimiter_ConcurrentAccess(t *testing.T) {
	l := NewLoginLimiter(10, time.Minute)
	defer l.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.0.%d", n)
			for j := 0; j < 50; j++ {
				l.Allow(ip)
			}
		}(i)
	}
	wg.Wait()

	// Every IP stays within its own bucket
	for i := 0; i < 10; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i)
		if l.Allow(ip) {
			t.Errorf("IP %s should be exhausted after 50 attempts", ip)
		}
	}
}

func BenchmarkLoginLimiter_Allow(b *testing.B) {
	l := NewLoginLimiter(1000000, time.Minute)
	defer l.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Allow("192.0.2.10")
	}
}
