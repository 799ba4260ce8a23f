// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/soerfi/qr-wizard/internal/auth"
	"github.com/soerfi/qr-wizard/internal/config"
	"github.com/soerfi/qr-wizard/internal/database"
	"github.com/soerfi/qr-wizard/internal/geo"
	"github.com/soerfi/qr-wizard/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent
// resource exhaustion in CI. Concurrent DuckDB CGO calls under resource
// pressure can hang, so database access is fully serialized.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New() call itself.
var testDBMutex sync.Mutex

// testPassword is hashed with bcrypt.MinCost in tests for speed;
// production hashes use cost 12.
const testPassword = "correct-horse-battery"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to generate test hash: %v", err)
	}
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			Environment: "development",
		},
		Database: config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "1GB",
		},
		Tracking: config.TrackingConfig{
			Param:             "qr_tid",
			UniqueWindowHours: 24,
		},
		Privacy: config.PrivacyConfig{
			IPHashSalt: "test-salt",
		},
		Retention: config.RetentionConfig{
			Days: 365,
		},
		Security: config.SecurityConfig{
			SecretKey:         "0123456789abcdef0123456789abcdef",
			AdminPasswordHash: string(hash),
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
			LoginRateLimit:    5,
			LoginRateWindow:   time.Minute,
		},
		API: config.APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
	}
}

// testServer is a fully wired API over an in-memory database.
type testServer struct {
	handler *Handler
	db      *database.DB
	cfg     *config.Config
	auth    *auth.Service
	mux     http.Handler

	sessionOnce sync.Once
	session     *http.Cookie
}

// newTestServer builds a complete server with timeout protection
// around the DuckDB open. The semaphore is held for the whole test.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := testConfig(t)

	type result struct {
		db  *database.DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := database.New(&cfg.Database)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	var db *database.DB
	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		db = res.db
		t.Cleanup(func() {
			if err := db.Close(); err != nil {
				t.Errorf("Failed to close test database: %v", err)
			}
		})
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}

	authSvc := auth.NewService(cfg)
	t.Cleanup(authSvc.Close)

	h := NewHandler(db, cfg, authSvc, geo.NewNoop())
	return &testServer{
		handler: h,
		db:      db,
		cfg:     cfg,
		auth:    authSvc,
		mux:     NewRouter(h).SetupChi(),
	}
}

// sessionCookie lazily issues one admin session for the server.
func (ts *testServer) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	ts.sessionOnce.Do(func() {
		rec := httptest.NewRecorder()
		if err := ts.auth.CreateSession(rec); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.SessionCookieName {
				ts.session = c
				return
			}
		}
		t.Fatalf("Session cookie %q not set on response", auth.SessionCookieName)
	})
	return ts.session
}

// do executes a request with an admin session attached.
func (ts *testServer) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.AddCookie(ts.sessionCookie(t))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

// doJSON marshals payload and executes an authenticated request.
func (ts *testServer) doJSON(t *testing.T, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return ts.do(t, method, target, bytes.NewReader(raw))
}

// doAnon executes a request without a session.
func (ts *testServer) doAnon(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors models.APIResponse with a raw data payload.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Error    *models.APIError `json:"error"`
	Metadata models.Metadata  `json:"metadata"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

// dataAs decodes the envelope's data payload into dst.
func dataAs(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Fatalf("Expected success envelope, got %q (error: %+v)", env.Status, env.Error)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("Failed to decode data payload: %v\ndata: %s", err, string(env.Data))
	}
}

// wantError asserts an error envelope with the given status and code,
// returning the error for message checks.
func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) *models.APIError {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Expected status %d, got %d\nbody: %s", status, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "error" {
		t.Fatalf("Expected error envelope, got %q", env.Status)
	}
	if env.Error == nil {
		t.Fatalf("Expected error payload, got none")
	}
	if env.Error.Code != code {
		t.Errorf("Expected error code %q, got %q", code, env.Error.Code)
	}
	return env.Error
}

// Shared test helpers

func strPtr(s string) *string {
	return &s
}

func linkPath(id int64) string {
	return "/api/qrcodes/" + strconv.FormatInt(id, 10)
}

func testTime(day, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}

// mustCreateLink inserts a minimal active link directly, bypassing the
// API, applying mutate before the insert.
func mustCreateLink(t *testing.T, db *database.DB, slug string, mutate func(*models.Link)) *models.Link {
	t.Helper()

	now := testTime(1, 12)
	l := &models.Link{
		Slug:           slug,
		DestinationURL: "https://example.com/landing",
		Status:         models.LinkStatusActive,
		Dynamic:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if mutate != nil {
		mutate(l)
	}
	if err := db.CreateLink(context.Background(), l); err != nil {
		t.Fatalf("CreateLink(%q) failed: %v", slug, err)
	}
	return l
}

// mustInsertScan inserts a non-bot desktop scan directly, applying
// mutate before the insert.
func mustInsertScan(t *testing.T, db *database.DB, qrCodeID int64, at time.Time, mutate func(*models.ScanEvent)) *models.ScanEvent {
	t.Helper()

	e := &models.ScanEvent{
		QRCodeID:   qrCodeID,
		ScannedAt:  at,
		DeviceType: models.DeviceDesktop,
	}
	if mutate != nil {
		mutate(e)
	}
	if err := db.InsertScan(context.Background(), e); err != nil {
		t.Fatalf("InsertScan failed: %v", err)
	}
	return e
}
