// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/soerfi/qr-wizard/internal/database"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/models"
	"github.com/soerfi/qr-wizard/internal/validation"
)

// maxBodyBytes caps JSON request bodies. CSV uploads have their own
// limit in handleBulkImport.
const maxBodyBytes = 1 << 20 // 1 MiB

// respondJSON writes a success envelope around data.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	respondEnvelope(w, status, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// respondJSONTimed is respondJSON with the query duration recorded in
// the envelope metadata. Analytics handlers use it so the dashboard can
// surface slow filter combinations.
func respondJSONTimed(w http.ResponseWriter, status int, data interface{}, started time.Time) {
	respondEnvelope(w, status, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError writes an error envelope with the given code and
// message. Details is optional field-level context.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondEnvelope(w, status, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

func respondEnvelope(w http.ResponseWriter, status int, resp models.APIResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal API response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","error":{"code":"INTERNAL_ERROR","message":"Failed to encode response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondDatabaseError logs the failure and answers with a generic
// DATABASE_ERROR envelope. Internal error details never reach clients.
func respondDatabaseError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.Ctx(r.Context()).Error().
		Err(err).
		Str("operation", op).
		Msg("Database operation failed")
	respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Database operation failed", nil)
}

// decodeJSON reads a size-capped JSON request body into dst. On failure
// it writes a VALIDATION_ERROR response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgInvalidBody, nil)
		return false
	}
	return true
}

// validateRequest runs struct validation on req. On failure it writes
// the translated VALIDATION_ERROR response and returns false.
func validateRequest(w http.ResponseWriter, req interface{}) bool {
	if verr := validation.ValidateStruct(req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// idParam extracts the {id} URL parameter as a positive int64. A zero
// return means the response has already been written.
func idParam(w http.ResponseWriter, r *http.Request) int64 {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
		return 0
	}
	return id
}

// queryInt reads an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// parseTimestamp accepts the timestamp shapes the dashboard and
// integrators send: RFC 3339 (with Z or offset), a bare date, or a
// date-time without zone. Naive values are taken as UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "Z") {
		raw = strings.TrimSuffix(raw, "Z") + "+00:00"
	}

	layouts := []string{
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp: " + raw)
}

// isNotFound reports whether err is the store's row-missing sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// strValue dereferences s, mapping nil to "".
func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optString maps "" to nil so empty form fields clear a column instead
// of storing an empty string.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isHTTPURL reports whether raw parses as an absolute http(s) URL with
// a host. Schemes like javascript: and data: must never become redirect
// destinations.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// normOpt trims an optional text field, mapping absent and empty both
// to nil.
func normOpt(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// statusOrDefault lowercases and trims a status literal, defaulting
// empty to active. Unknown literals pass through for the validator to
// reject.
func statusOrDefault(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return models.LinkStatusActive
	}
	return s
}

// marshalDetails serializes a history details document. The inputs are
// always JSON-safe maps, so a marshal failure just drops the payload.
func marshalDetails(doc map[string]interface{}) *string {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// sanitizeLogValue strips CR/LF so attacker-supplied strings cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
