// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLinkIsExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry", nil, false},
		{"past expiry", &past, true},
		{"future expiry", &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Link{ExpiresAt: tt.expiresAt}
			if got := l.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIResponseOmitsEmptyFields(t *testing.T) {
	resp := APIResponse{
		Status:   "success",
		Data:     map[string]int{"id": 1},
		Metadata: Metadata{Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(b)
	if strings.Contains(s, "\"error\"") {
		t.Errorf("success response should omit error field, got %s", s)
	}
	if strings.Contains(s, "query_time_ms") {
		t.Errorf("zero query time should be omitted, got %s", s)
	}
}

func TestLinkSerializesNullFacets(t *testing.T) {
	name := "Poster"
	l := Link{
		ID:             1,
		Slug:           "aB3xK9m",
		Name:           &name,
		DestinationURL: "https://example.com",
		Status:         LinkStatusActive,
		Dynamic:        true,
	}

	b, err := json.Marshal(&l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(b)
	// Facets are part of the contract even when unset; clients rely on
	// explicit nulls rather than absent keys.
	for _, key := range []string{"\"campaign\":null", "\"owner\":null", "\"expires_at\":null", "\"goal_name\":null"} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in serialized link, got %s", key, s)
		}
	}
}
