// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestRetentionService_Interface(t *testing.T) {
	// Verify RetentionService implements suture.Service
	var _ suture.Service = (*RetentionService)(nil)
}

func TestNewRetentionService(t *testing.T) {
	svc := NewRetentionService(func(ctx context.Context) error { return nil }, time.Hour)

	if svc == nil {
		t.Fatal("NewRetentionService returned nil")
	}
	if svc.interval != time.Hour {
		t.Errorf("expected interval 1h, got %v", svc.interval)
	}
	if svc.name != "retention-sweeper" {
		t.Errorf("expected name 'retention-sweeper', got %q", svc.name)
	}
}

func TestNewRetentionService_DefaultInterval(t *testing.T) {
	// Zero interval gets default
	svc := NewRetentionService(func(ctx context.Context) error { return nil }, 0)
	if svc.interval != 24*time.Hour {
		t.Errorf("expected default interval 24h, got %v", svc.interval)
	}

	// Negative interval gets default
	svc = NewRetentionService(func(ctx context.Context) error { return nil }, -time.Hour)
	if svc.interval != 24*time.Hour {
		t.Errorf("expected default interval 24h, got %v", svc.interval)
	}
}

func TestRetentionService_Serve(t *testing.T) {
	t.Run("sweeps once on start", func(t *testing.T) {
		var sweeps atomic.Int32
		svc := NewRetentionService(func(ctx context.Context) error {
			sweeps.Add(1)
			return nil
		}, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		// Give the initial sweep time to run, then stop
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if got := sweeps.Load(); got != 1 {
			t.Errorf("expected 1 sweep on start, got %d", got)
		}
	})

	t.Run("sweeps again on every tick", func(t *testing.T) {
		var sweeps atomic.Int32
		svc := NewRetentionService(func(ctx context.Context) error {
			sweeps.Add(1)
			return nil
		}, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		// Initial sweep plus at least two ticks
		time.Sleep(90 * time.Millisecond)
		cancel()
		<-errCh

		if got := sweeps.Load(); got < 3 {
			t.Errorf("expected at least 3 sweeps, got %d", got)
		}
	})

	t.Run("returns error when the initial sweep fails", func(t *testing.T) {
		sweepErr := errors.New("database locked")
		svc := NewRetentionService(func(ctx context.Context) error {
			return sweepErr
		}, time.Hour)

		err := svc.Serve(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, sweepErr) {
			t.Errorf("expected error containing %v, got %v", sweepErr, err)
		}
	})

	t.Run("returns error when a tick sweep fails", func(t *testing.T) {
		sweepErr := errors.New("database locked")
		var sweeps atomic.Int32
		svc := NewRetentionService(func(ctx context.Context) error {
			// First sweep (on start) succeeds, second fails
			if sweeps.Add(1) > 1 {
				return sweepErr
			}
			return nil
		}, 10*time.Millisecond)

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(context.Background())
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, sweepErr) {
				t.Errorf("expected sweep error, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after sweep failure")
		}
	})
}

func TestRetentionService_String(t *testing.T) {
	svc := NewRetentionService(func(ctx context.Context) error { return nil }, time.Hour)

	if svc.String() != "retention-sweeper" {
		t.Errorf("expected 'retention-sweeper', got %q", svc.String())
	}
}

func TestRetentionService_WithSupervisor(t *testing.T) {
	// A failing sweeper is restarted by the supervisor, and the restart
	// re-runs the sweep.
	var sweeps atomic.Int32
	svc := NewRetentionService(func(ctx context.Context) error {
		if sweeps.Add(1) <= 2 {
			return errors.New("transient failure")
		}
		return nil
	}, time.Hour)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errCh := sup.ServeBackground(ctx)

	time.Sleep(200 * time.Millisecond)
	cancel()
	<-errCh

	if got := sweeps.Load(); got < 3 {
		t.Errorf("expected at least 3 sweep attempts across restarts, got %d", got)
	}
}
