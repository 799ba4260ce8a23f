// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"encoding/csv"
	"strings"

	"github.com/soerfi/qr-wizard/internal/models"
)

// sniffDelimiter picks the most frequent candidate delimiter in the
// first line. Comma wins ties and empty input.
func sniffDelimiter(content string) rune {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	best := ','
	bestCount := strings.Count(line, ",")
	for _, cand := range []rune{';', '|', '\t'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// hasHeaderRow reports whether the first line looks like column names
// rather than data. A destination column keyword forces a header;
// otherwise a first cell that is not a URL is the tell, since
// header-less uploads carry the destination in column one.
func hasHeaderRow(content string) bool {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "destination_url") || strings.Contains(lower, "url") {
		return true
	}

	cells := strings.Split(strings.TrimSuffix(line, "\r"), string(sniffDelimiter(content)))
	first := strings.Trim(strings.TrimSpace(cells[0]), `"`)
	return first != "" && !isHTTPURL(first)
}

// readCSV parses the whole upload with a sniffed delimiter. Ragged
// rows are tolerated; quoting errors are not.
func readCSV(content string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// rowValues maps a record onto its header columns. Without a header
// the first column is taken as the destination.
func rowValues(header []string, record []string) map[string]string {
	row := map[string]string{}
	if header == nil {
		if len(record) > 0 {
			row["destination_url"] = record[0]
		}
		return row
	}
	for i, name := range header {
		if name == "" || i >= len(record) {
			continue
		}
		row[name] = record[i]
	}
	return row
}

// firstValue returns the first non-empty value among keys.
func firstValue(row map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(row[key]); v != "" {
			return v
		}
	}
	return ""
}

// csvStatus coerces a raw status cell to a known literal. Unknown
// values fall back to active so one bad cell cannot sink a batch.
func csvStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.LinkStatusPaused:
		return models.LinkStatusPaused
	case models.LinkStatusArchived:
		return models.LinkStatusArchived
	default:
		return models.LinkStatusActive
	}
}

// parseBool interprets common spreadsheet truthy spellings. Empty
// cells return def; anything unrecognized is false.
func parseBool(raw string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on", "y":
		return true
	}
	return false
}

// jsonTruthy mirrors the loose presence check bulk updates use: empty
// strings, zero numbers, false and null all mean "field not provided".
func jsonTruthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

// jsonBool coerces a JSON value to bool, accepting the string forms
// parseBool knows.
func jsonBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return parseBool(t, false)
	case float64:
		return t != 0
	default:
		return false
	}
}
