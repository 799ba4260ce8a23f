// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soerfi/qr-wizard/internal/database"
	"github.com/soerfi/qr-wizard/internal/models"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	crawlerUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

// scan issues an anonymous GET /t/{slug} with the given user agent and
// source IP.
func (ts *testServer) scan(t *testing.T, slug, ua, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/t/"+slug, nil)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

// exportedScans pulls every logged scan for assertions, newest first.
func exportedScans(t *testing.T, db *database.DB) []models.ScanExportRow {
	t.Helper()
	rows, err := db.ScansForExport(context.Background(), database.ScanFilter{})
	if err != nil {
		t.Fatalf("ScansForExport failed: %v", err)
	}
	return rows
}

func TestRedirect_ActiveLink(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", func(l *models.Link) {
		l.DestinationURL = "https://example.com/landing"
	})

	rec := ts.scan(t, "AAAAAA2", desktopUA, "203.0.113.7")
	if rec.Code != http.StatusFound {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusFound)
	}
	want := "https://example.com/landing?qr_tid=AAAAAA2"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	rows := exportedScans(t, ts.db)
	if len(rows) != 1 {
		t.Fatalf("len(scans) = %d, want 1", len(rows))
	}
	scan := rows[0]
	if scan.DeviceType != models.DeviceDesktop {
		t.Errorf("DeviceType = %q, want %q", scan.DeviceType, models.DeviceDesktop)
	}
	if scan.IsBot {
		t.Error("IsBot = true, want false")
	}
	if !scan.IsUnique {
		t.Error("IsUnique = false, want true for a first scan")
	}
}

func TestRedirect_PreservesExistingTrackingParam(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", func(l *models.Link) {
		l.DestinationURL = "https://example.com/?qr_tid=manual"
	})

	rec := ts.scan(t, "AAAAAA2", desktopUA, "")
	want := "https://example.com/?qr_tid=manual"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want existing parameter preserved (%q)", got, want)
	}
}

func TestRedirect_AppliesUTMWhenEnabled(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", func(l *models.Link) {
		l.DestinationURL = "https://example.com/lp?utm_source=print"
		l.AutoAppendUTM = true
		l.UTMSource = strPtr("qr")
		l.UTMMedium = strPtr("offline")
	})

	rec := ts.scan(t, "AAAAAA2", desktopUA, "")
	got := rec.Header().Get("Location")

	// The destination's own utm_source wins; the link only contributes
	// parameters the URL does not already carry.
	want := "https://example.com/lp?utm_source=print&utm_medium=offline&qr_tid=AAAAAA2"
	if got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestRedirect_UnknownSlug(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.scan(t, "ZZZZZZ9", desktopUA, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "This QR Code does not exist.") {
		t.Errorf("Body = %q, want the not-found page", rec.Body.String())
	}
}

func TestRedirect_PausedAndArchived(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", func(l *models.Link) { l.Status = models.LinkStatusPaused })
	mustCreateLink(t, ts.db, "AAAAAA3", func(l *models.Link) { l.Status = models.LinkStatusArchived })

	for slug, status := range map[string]string{
		"AAAAAA2": "paused",
		"AAAAAA3": "archived",
	} {
		rec := ts.scan(t, slug, desktopUA, "")
		if rec.Code != http.StatusGone {
			t.Errorf("%s: Status = %d, want %d", slug, rec.Code, http.StatusGone)
		}
		want := "This QR Code is currently " + status + "."
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("%s: body %q, want %q", slug, rec.Body.String(), want)
		}
	}

	// Paused and archived scans are not logged.
	if rows := exportedScans(t, ts.db); len(rows) != 0 {
		t.Errorf("len(scans) = %d, want 0 for unavailable links", len(rows))
	}
}

func TestRedirect_ExpiredLinkArchivesLazily(t *testing.T) {
	ts := newTestServer(t)
	past := time.Now().UTC().Add(-time.Hour)
	link := mustCreateLink(t, ts.db, "AAAAAA2", func(l *models.Link) {
		l.ExpiresAt = &past
	})

	rec := ts.scan(t, "AAAAAA2", desktopUA, "")
	if rec.Code != http.StatusGone {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusGone)
	}
	if !strings.Contains(rec.Body.String(), "This QR Code is currently archived.") {
		t.Errorf("Body = %q, want the archived page", rec.Body.String())
	}

	stored, err := ts.db.GetLink(context.Background(), link.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if stored.Status != models.LinkStatusArchived {
		t.Errorf("Status = %q, want archived after lazy expiry", stored.Status)
	}
}

func TestRedirect_UniqueWindowDeduplicates(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", nil)

	for i := 0; i < 2; i++ {
		rec := ts.scan(t, "AAAAAA2", desktopUA, "203.0.113.7")
		if rec.Code != http.StatusFound {
			t.Fatalf("scan %d: Status = %d, want %d", i, rec.Code, http.StatusFound)
		}
	}

	rows := exportedScans(t, ts.db)
	if len(rows) != 2 {
		t.Fatalf("len(scans) = %d, want 2", len(rows))
	}
	// Newest first: the repeat visit is a duplicate, the first unique.
	if rows[0].IsUnique || !rows[0].IsDuplicate {
		t.Errorf("repeat scan: unique=%v duplicate=%v, want false/true", rows[0].IsUnique, rows[0].IsDuplicate)
	}
	if !rows[1].IsUnique || rows[1].IsDuplicate {
		t.Errorf("first scan: unique=%v duplicate=%v, want true/false", rows[1].IsUnique, rows[1].IsDuplicate)
	}
}

func TestRedirect_DifferentVisitorsStayUnique(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", nil)

	ts.scan(t, "AAAAAA2", desktopUA, "203.0.113.7")
	ts.scan(t, "AAAAAA2", iphoneUA, "198.51.100.23")

	rows := exportedScans(t, ts.db)
	if len(rows) != 2 {
		t.Fatalf("len(scans) = %d, want 2", len(rows))
	}
	for i, row := range rows {
		if !row.IsUnique {
			t.Errorf("scan %d: IsUnique = false, want true for distinct visitors", i)
		}
	}
	if rows[0].DeviceType != models.DeviceMobile {
		t.Errorf("DeviceType = %q, want %q for the iPhone scan", rows[0].DeviceType, models.DeviceMobile)
	}
}

func TestRedirect_BotsAreFlaggedAndNeverUnique(t *testing.T) {
	ts := newTestServer(t)
	mustCreateLink(t, ts.db, "AAAAAA2", nil)

	rec := ts.scan(t, "AAAAAA2", crawlerUA, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("Status = %d, want %d (bots still get redirected)", rec.Code, http.StatusFound)
	}

	rows := exportedScans(t, ts.db)
	if len(rows) != 1 {
		t.Fatalf("len(scans) = %d, want 1", len(rows))
	}
	if !rows[0].IsBot {
		t.Error("IsBot = false, want true for a crawler UA")
	}
	if rows[0].IsUnique || rows[0].IsDuplicate {
		t.Errorf("bot scan: unique=%v duplicate=%v, want false/false", rows[0].IsUnique, rows[0].IsDuplicate)
	}
}

func TestRedirect_StoresHashedIPOnly(t *testing.T) {
	ts := newTestServer(t)
	link := mustCreateLink(t, ts.db, "AAAAAA2", nil)

	ts.scan(t, "AAAAAA2", desktopUA, "203.0.113.7")

	scans, err := ts.db.Summary(context.Background(), database.ScanFilter{QRCodeID: &link.ID})
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if scans.TotalScans != 1 {
		t.Fatalf("TotalScans = %d, want 1", scans.TotalScans)
	}

	stored, err := ts.db.GetScan(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if stored.IPHash == nil {
		t.Fatal("IPHash = nil, want a hash")
	}
	if strings.Contains(*stored.IPHash, "203.0.113") {
		t.Errorf("IPHash = %q, must not contain the raw address", *stored.IPHash)
	}
	if len(*stored.IPHash) != 64 {
		t.Errorf("len(IPHash) = %d, want 64 hex chars", len(*stored.IPHash))
	}
}
