// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package query

import (
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized
// arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddTimeRange("s.scanned_at", start, end)
//	wb.AddFacet("q.campaign", "spring")
//	whereClause, args := wb.Build()
//	// s.scanned_at >= ? AND s.scanned_at <= ? AND q.campaign = ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty WhereBuilder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw condition with its arguments. Use for
// conditions the helpers don't cover.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddTimeRange adds inclusive lower/upper bounds on a timestamp
// column. Nil bounds are skipped.
func (wb *WhereBuilder) AddTimeRange(column string, start, end *time.Time) *WhereBuilder {
	if start != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, *start)
	}
	if end != nil {
		wb.clauses = append(wb.clauses, column+" <= ?")
		wb.args = append(wb.args, *end)
	}
	return wb
}

// AddFacet adds an equality condition on a facet column. Empty values
// are skipped so unset filters do not constrain.
func (wb *WhereBuilder) AddFacet(column, value string) *WhereBuilder {
	if value != "" {
		wb.clauses = append(wb.clauses, column+" = ?")
		wb.args = append(wb.args, value)
	}
	return wb
}

// AddID adds an equality condition on an integer key column. Nil is
// skipped.
func (wb *WhereBuilder) AddID(column string, id *int64) *WhereBuilder {
	if id != nil {
		wb.clauses = append(wb.clauses, column+" = ?")
		wb.args = append(wb.args, *id)
	}
	return wb
}

// AddBool adds an equality condition on a boolean column.
func (wb *WhereBuilder) AddBool(column string, value bool) *WhereBuilder {
	wb.clauses = append(wb.clauses, column+" = ?")
	wb.args = append(wb.args, value)
	return wb
}

// Build joins the clauses with AND. Returns ("1=1", nil args) when no
// clauses were added so callers can always interpolate the result.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return joinClauses(wb.clauses), wb.args
}

// BuildWithPrefix returns the clause with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

func joinClauses(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}
