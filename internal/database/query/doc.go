// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package query provides SQL query building utilities for the database package.
//
// This package reduces code duplication and provides type-safe query construction
// for parameterized SQL WHERE clauses. It ensures consistent parameter handling
// and prevents SQL injection vulnerabilities.
//
// # Overview
//
// The WhereBuilder is the primary component, providing a fluent interface for
// constructing WHERE clauses with properly parameterized queries:
//
//	wb := query.NewWhereBuilder()
//	wb.AddTimeRange("s.scanned_at", start, end)
//	wb.AddFacet("q.campaign", "spring-launch")
//	whereClause, args := wb.Build()
//	// Result: "s.scanned_at >= ? AND s.scanned_at <= ? AND q.campaign = ?"
//	// Args: [start, end, "spring-launch"]
//
// # Usage Example
//
// Building a filtered scan query:
//
//	func CountScans(ctx context.Context, filter models.ScanFilter) (int64, error) {
//	    wb := query.NewWhereBuilder()
//	    wb.AddTimeRange("s.scanned_at", filter.Start, filter.End)
//	    wb.AddFacet("q.campaign", filter.Campaign)
//	    wb.AddID("s.qr_code_id", filter.QRCodeID)
//	    wb.AddBool("s.is_bot", false)
//
//	    whereClause, args := wb.Build()
//
//	    sql := fmt.Sprintf(`
//	        SELECT COUNT(*) FROM scan_events s
//	        JOIN qr_codes q ON q.id = s.qr_code_id
//	        WHERE %s
//	    `, whereClause)
//
//	    row := db.QueryRowContext(ctx, sql, args...)
//	    // ...
//	}
//
// Adding custom clauses:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("s.visitor_fingerprint IS NOT NULL")
//	wb.AddClause("s.device_type = ?", "mobile")
//
// # Available Filter Methods
//
// The WhereBuilder provides methods for common filter types:
//
//   - AddTimeRange: Inclusive bounds on a timestamp column
//   - AddFacet: Equality on a facet column, skipping empty values
//   - AddID: Equality on an integer key column, skipping nil
//   - AddBool: Equality on a boolean column
//   - AddClause: Adds custom WHERE clause with parameters
//
// # SQL Injection Prevention
//
// All methods use parameterized queries with ? placeholders. Column
// names passed to the helpers must be literals, never user input.
//
// # Thread Safety
//
// WhereBuilder instances are not thread-safe. Create a new instance per query
// or protect concurrent access with appropriate synchronization.
package query
