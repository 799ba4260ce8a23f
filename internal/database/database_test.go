// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soerfi/qr-wizard/internal/config"
	"github.com/soerfi/qr-wizard/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent
// resource exhaustion in CI. Concurrent DuckDB CGO calls under resource
// pressure can hang, so database access is fully serialized.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New() call itself.
var testDBMutex sync.Mutex

// setupTestDB creates a new in-memory test database with timeout
// protection. The semaphore is held for the entire test lifecycle and
// released via t.Cleanup, so only one test has an active DuckDB
// connection at any time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Failed to close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

// Shared test helpers

func strPtr(s string) *string {
	return &s
}

func testTime(day, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}

// mustCreateLink inserts a minimal active link, applying mutate before
// the insert.
func mustCreateLink(t *testing.T, db *DB, slug string, mutate func(*models.Link)) *models.Link {
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

// mustInsertScan inserts a non-bot desktop scan, applying mutate before
// the insert.
func mustInsertScan(t *testing.T, db *DB, qrCodeID int64, at time.Time, mutate func(*models.ScanEvent)) *models.ScanEvent {
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

func TestNew_InMemory(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if db.Conn() == nil {
		t.Fatal("Conn() returned nil")
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	// Re-running initialization against an existing schema must not fail.
	if err := db.initialize(); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}
}

func TestCreateAndGetLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	expires := testTime(30, 0)
	created := mustCreateLink(t, db, "aB3xK9m", func(l *models.Link) {
		l.Name = strPtr("Spring Poster")
		l.Campaign = strPtr("spring")
		l.Channel = strPtr("poster")
		l.AutoAppendUTM = true
		l.UTMSource = strPtr("qr")
		l.ExpiresAt = &expires
	})

	if created.ID == 0 {
		t.Fatal("CreateLink did not assign an id")
	}

	got, err := db.GetLink(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}

	if got.Slug != "aB3xK9m" {
		t.Errorf("Slug = %q, want %q", got.Slug, "aB3xK9m")
	}
	if got.Name == nil || *got.Name != "Spring Poster" {
		t.Errorf("Name = %v, want Spring Poster", got.Name)
	}
	if got.Campaign == nil || *got.Campaign != "spring" {
		t.Errorf("Campaign = %v, want spring", got.Campaign)
	}
	if got.Location != nil {
		t.Errorf("Location = %v, want nil", got.Location)
	}
	if !got.AutoAppendUTM {
		t.Error("AutoAppendUTM = false, want true")
	}
	if got.UTMSource == nil || *got.UTMSource != "qr" {
		t.Errorf("UTMSource = %v, want qr", got.UTMSource)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
	if got.TotalScans != 0 {
		t.Errorf("TotalScans = %d, want 0", got.TotalScans)
	}
	if got.GoalName != nil {
		t.Errorf("GoalName = %v, want nil", got.GoalName)
	}
}

func TestGetLink_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetLink(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLink error = %v, want ErrNotFound", err)
	}
}

func TestGetLinkBySlug(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := mustCreateLink(t, db, "aB3xK9m", nil)

	got, err := db.GetLinkBySlug(ctx, "aB3xK9m")
	if err != nil {
		t.Fatalf("GetLinkBySlug failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %d, want %d", got.ID, created.ID)
	}

	if _, err := db.GetLinkBySlug(ctx, "zzzzzzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLinkBySlug(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestGetLink_IncludesScanCountAndPrimaryGoal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	link := mustCreateLink(t, db, "aB3xK9m", nil)
	mustInsertScan(t, db, link.ID, testTime(1, 13), nil)
	mustInsertScan(t, db, link.ID, testTime(1, 14), nil)

	if err := db.UpsertPrimaryGoal(ctx, link.ID, "signup", strPtr("https://example.com/thanks"), testTime(1, 15)); err != nil {
		t.Fatalf("UpsertPrimaryGoal failed: %v", err)
	}

	got, err := db.GetLink(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if got.TotalScans != 2 {
		t.Errorf("TotalScans = %d, want 2", got.TotalScans)
	}
	if got.GoalName == nil || *got.GoalName != "signup" {
		t.Errorf("GoalName = %v, want signup", got.GoalName)
	}
	if got.GoalTarget == nil || *got.GoalTarget != "https://example.com/thanks" {
		t.Errorf("GoalTarget = %v, want https://example.com/thanks", got.GoalTarget)
	}
}

func TestSlugExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateLink(t, db, "aB3xK9m", nil)

	exists, err := db.SlugExists(ctx, "aB3xK9m")
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if !exists {
		t.Error("SlugExists(existing) = false, want true")
	}

	exists, err = db.SlugExists(ctx, "zzzzzzz")
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if exists {
		t.Error("SlugExists(unknown) = true, want false")
	}
}

func TestUpdateLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	link := mustCreateLink(t, db, "aB3xK9m", nil)

	link.Name = strPtr("Renamed")
	link.DestinationURL = "https://example.com/new"
	link.Status = models.LinkStatusPaused
	link.Campaign = strPtr("fall")
	link.UpdatedAt = testTime(2, 9)

	if err := db.UpdateLink(ctx, link); err != nil {
		t.Fatalf("UpdateLink failed: %v", err)
	}

	got, err := db.GetLink(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if got.Name == nil || *got.Name != "Renamed" {
		t.Errorf("Name = %v, want Renamed", got.Name)
	}
	if got.DestinationURL != "https://example.com/new" {
		t.Errorf("DestinationURL = %q, want https://example.com/new", got.DestinationURL)
	}
	if got.Status != models.LinkStatusPaused {
		t.Errorf("Status = %q, want paused", got.Status)
	}
	if !got.UpdatedAt.Equal(testTime(2, 9)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, testTime(2, 9))
	}

	missing := *link
	missing.ID = 9999
	if err := db.UpdateLink(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateLink(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestSetLinkStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	link := mustCreateLink(t, db, "aB3xK9m", nil)

	if err := db.SetLinkStatus(ctx, link.ID, models.LinkStatusArchived, testTime(2, 10)); err != nil {
		t.Fatalf("SetLinkStatus failed: %v", err)
	}

	got, err := db.GetLink(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if got.Status != models.LinkStatusArchived {
		t.Errorf("Status = %q, want archived", got.Status)
	}

	if err := db.SetLinkStatus(ctx, 9999, models.LinkStatusPaused, testTime(2, 10)); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetLinkStatus(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteLink_CascadesDependents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	link := mustCreateLink(t, db, "aB3xK9m", nil)
	keep := mustCreateLink(t, db, "zY8wV7u", nil)

	scan := mustInsertScan(t, db, link.ID, testTime(1, 13), nil)
	mustInsertScan(t, db, keep.ID, testTime(1, 13), nil)

	conv := &models.ConversionEvent{
		QRCodeID:    link.ID,
		ScanEventID: &scan.ID,
		OccurredAt:  testTime(1, 14),
	}
	if err := db.InsertConversion(ctx, conv); err != nil {
		t.Fatalf("InsertConversion failed: %v", err)
	}
	if err := db.InsertHistory(ctx, link.ID, models.HistoryActionCreated, nil, testTime(1, 12)); err != nil {
		t.Fatalf("InsertHistory failed: %v", err)
	}
	if err := db.UpsertPrimaryGoal(ctx, link.ID, "signup", nil, testTime(1, 12)); err != nil {
		t.Fatalf("UpsertPrimaryGoal failed: %v", err)
	}

	if err := db.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}

	if _, err := db.GetLink(ctx, link.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLink after delete error = %v, want ErrNotFound", err)
	}

	tables := []string{"scan_events", "conversion_events", "qr_history", "goals"}
	for _, table := range tables {
		var n int64
		err := db.Conn().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE qr_code_id = ?", link.ID,
		).Scan(&n)
		if err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s rows after delete = %d, want 0", table, n)
		}
	}

	// The other link's data survives.
	kept, err := db.GetLink(ctx, keep.ID)
	if err != nil {
		t.Fatalf("GetLink(keep) failed: %v", err)
	}
	if kept.TotalScans != 1 {
		t.Errorf("kept TotalScans = %d, want 1", kept.TotalScans)
	}

	if err := db.DeleteLink(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteLink(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestListLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateLink(t, db, "aaaaaa2", func(l *models.Link) {
		l.Name = strPtr("Spring Poster")
		l.Campaign = strPtr("spring")
		l.CreatedAt = testTime(1, 10)
	})
	mustCreateLink(t, db, "bbbbbb2", func(l *models.Link) {
		l.Campaign = strPtr("summer")
		l.Status = models.LinkStatusPaused
		l.CreatedAt = testTime(2, 10)
	})
	mustCreateLink(t, db, "cccccc2", func(l *models.Link) {
		l.Owner = strPtr("marketing")
		l.CreatedAt = testTime(3, 10)
	})

	t.Run("newest first", func(t *testing.T) {
		list, err := db.ListLinks(ctx, models.LinkFilter{Page: 1, PerPage: 50})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if len(list.Items) != 3 {
			t.Fatalf("len(Items) = %d, want 3", len(list.Items))
		}
		if list.Items[0].Slug != "cccccc2" || list.Items[2].Slug != "aaaaaa2" {
			t.Errorf("order = [%s %s %s], want newest first",
				list.Items[0].Slug, list.Items[1].Slug, list.Items[2].Slug)
		}
		if list.Pagination.Total != 3 {
			t.Errorf("Total = %d, want 3", list.Pagination.Total)
		}
	})

	t.Run("substring search is case-insensitive", func(t *testing.T) {
		list, err := db.ListLinks(ctx, models.LinkFilter{Query: "poster", Page: 1, PerPage: 50})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if len(list.Items) != 1 || list.Items[0].Slug != "aaaaaa2" {
			t.Fatalf("search %q returned %d items, want the Spring Poster link", "poster", len(list.Items))
		}
	})

	t.Run("facet filters", func(t *testing.T) {
		list, err := db.ListLinks(ctx, models.LinkFilter{Campaign: "summer", Page: 1, PerPage: 50})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if len(list.Items) != 1 || list.Items[0].Slug != "bbbbbb2" {
			t.Fatalf("campaign filter returned %d items, want 1", len(list.Items))
		}

		list, err = db.ListLinks(ctx, models.LinkFilter{Status: models.LinkStatusPaused, Page: 1, PerPage: 50})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if len(list.Items) != 1 || list.Items[0].Slug != "bbbbbb2" {
			t.Fatalf("status filter returned %d items, want 1", len(list.Items))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page1, err := db.ListLinks(ctx, models.LinkFilter{Page: 1, PerPage: 2})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if len(page1.Items) != 2 {
			t.Errorf("page 1 len = %d, want 2", len(page1.Items))
		}
		if page1.Pagination.TotalPages != 2 {
			t.Errorf("TotalPages = %d, want 2", page1.Pagination.TotalPages)
		}

		page2, err := db.ListLinks(ctx, models.LinkFilter{Page: 2, PerPage: 2})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if len(page2.Items) != 1 || page2.Items[0].Slug != "aaaaaa2" {
			t.Errorf("page 2 = %d items, want the oldest link", len(page2.Items))
		}
	})

	t.Run("no matches", func(t *testing.T) {
		list, err := db.ListLinks(ctx, models.LinkFilter{Query: "nothing-matches", Page: 1, PerPage: 50})
		if err != nil {
			t.Fatalf("ListLinks failed: %v", err)
		}
		if list.Items == nil {
			t.Error("Items is nil, want empty slice")
		}
		if list.Pagination.Total != 0 || list.Pagination.TotalPages != 0 {
			t.Errorf("empty result pagination = %+v", list.Pagination)
		}
	})
}

func TestListLinksByIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := mustCreateLink(t, db, "aaaaaa2", func(l *models.Link) { l.CreatedAt = testTime(1, 10) })
	b := mustCreateLink(t, db, "bbbbbb2", func(l *models.Link) { l.CreatedAt = testTime(2, 10) })

	links, err := db.ListLinksByIDs(ctx, []int64{a.ID, b.ID, 9999})
	if err != nil {
		t.Fatalf("ListLinksByIDs failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("len = %d, want 2 (unknown ids skipped)", len(links))
	}
	if links[0].ID != b.ID {
		t.Errorf("first link = %d, want newest %d", links[0].ID, b.ID)
	}

	links, err = db.ListLinksByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListLinksByIDs(nil) failed: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("ListLinksByIDs(nil) = %d items, want 0", len(links))
	}
}

func TestBulkUpdateLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := mustCreateLink(t, db, "aaaaaa2", nil)
	b := mustCreateLink(t, db, "bbbbbb2", nil)

	count, err := db.BulkUpdateLinks(ctx, []int64{a.ID, b.ID},
		map[string]interface{}{
			"campaign": "relaunch",
			"status":   models.LinkStatusPaused,
			"slug":     "injected", // not whitelisted, must be ignored
		},
		testTime(4, 9),
	)
	if err != nil {
		t.Fatalf("BulkUpdateLinks failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	got, err := db.GetLink(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if got.Campaign == nil || *got.Campaign != "relaunch" {
		t.Errorf("Campaign = %v, want relaunch", got.Campaign)
	}
	if got.Status != models.LinkStatusPaused {
		t.Errorf("Status = %q, want paused", got.Status)
	}
	if got.Slug != "aaaaaa2" {
		t.Errorf("Slug = %q, non-whitelisted column was applied", got.Slug)
	}
	if !got.UpdatedAt.Equal(testTime(4, 9)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, testTime(4, 9))
	}

	count, err = db.BulkUpdateLinks(ctx, []int64{a.ID}, map[string]interface{}{"slug": "x"}, testTime(4, 9))
	if err != nil {
		t.Fatalf("BulkUpdateLinks(no valid columns) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 when nothing whitelisted", count)
	}
}

func TestLibraryStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stats, err := db.LibraryStats(ctx)
	if err != nil {
		t.Fatalf("LibraryStats on empty library failed: %v", err)
	}
	if stats.Total != 0 || stats.Active != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}

	mustCreateLink(t, db, "aaaaaa2", nil)
	mustCreateLink(t, db, "bbbbbb2", nil)
	mustCreateLink(t, db, "cccccc2", func(l *models.Link) { l.Status = models.LinkStatusPaused })
	mustCreateLink(t, db, "dddddd2", func(l *models.Link) { l.Status = models.LinkStatusArchived })

	stats, err = db.LibraryStats(ctx)
	if err != nil {
		t.Fatalf("LibraryStats failed: %v", err)
	}
	if stats.Active != 2 || stats.Paused != 1 || stats.Archived != 1 || stats.Total != 4 {
		t.Errorf("stats = %+v, want active=2 paused=1 archived=1 total=4", stats)
	}
}

func TestFilterOptions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateLink(t, db, "aaaaaa2", func(l *models.Link) {
		l.Campaign = strPtr("spring")
		l.Channel = strPtr("poster")
	})
	mustCreateLink(t, db, "bbbbbb2", func(l *models.Link) {
		l.Campaign = strPtr("autumn")
		l.Owner = strPtr("marketing")
	})
	mustCreateLink(t, db, "cccccc2", func(l *models.Link) {
		l.Campaign = strPtr("spring") // duplicate collapses
	})

	options, err := db.FilterOptions(ctx)
	if err != nil {
		t.Fatalf("FilterOptions failed: %v", err)
	}

	wantCampaigns := []string{"autumn", "spring"}
	if len(options.Campaigns) != len(wantCampaigns) {
		t.Fatalf("Campaigns = %v, want %v", options.Campaigns, wantCampaigns)
	}
	for i, want := range wantCampaigns {
		if options.Campaigns[i] != want {
			t.Errorf("Campaigns[%d] = %q, want %q (sorted)", i, options.Campaigns[i], want)
		}
	}
	if len(options.Channels) != 1 || options.Channels[0] != "poster" {
		t.Errorf("Channels = %v, want [poster]", options.Channels)
	}
	if len(options.Locations) != 0 {
		t.Errorf("Locations = %v, want empty", options.Locations)
	}
	if len(options.Owners) != 1 || options.Owners[0] != "marketing" {
		t.Errorf("Owners = %v, want [marketing]", options.Owners)
	}
}

func TestHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	link := mustCreateLink(t, db, "aB3xK9m", nil)

	entries := []struct {
		action  string
		details *string
		at      time.Time
	}{
		{models.HistoryActionCreated, strPtr(`{"destination_url":"https://example.com"}`), testTime(1, 10)},
		{models.HistoryActionCreatedBulk, strPtr(`{"row":2}`), testTime(1, 11)},
		{models.HistoryActionUpdated, nil, testTime(1, 12)},
	}
	for _, e := range entries {
		if err := db.InsertHistory(ctx, link.ID, e.action, e.details, e.at); err != nil {
			t.Fatalf("InsertHistory(%s) failed: %v", e.action, err)
		}
	}

	got, err := db.ListHistory(ctx, link.ID, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Action != models.HistoryActionUpdated {
		t.Errorf("first entry = %q, want newest (%q)", got[0].Action, models.HistoryActionUpdated)
	}
	if got[2].Details == nil || *got[2].Details != `{"destination_url":"https://example.com"}` {
		t.Errorf("oldest details = %v", got[2].Details)
	}

	limited, err := db.ListHistory(ctx, link.ID, 2)
	if err != nil {
		t.Fatalf("ListHistory(limit) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited len = %d, want 2", len(limited))
	}
}

func TestInPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "()"},
		{1, "(?)"},
		{3, "(?, ?, ?)"},
	}
	for _, tt := range tests {
		if got := inPlaceholders(tt.n); got != tt.want {
			t.Errorf("inPlaceholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
