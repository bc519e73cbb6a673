package core

import (
	"fmt"
	"strings"

	"github.com/coregx/tabula/internal/dialects"
)

// compileSelect renders the accumulated clauses into a SELECT statement
// with canonical ? placeholders. It returns positional parameters, or
// for RawQueryNamed the named parameter map instead. Raw queries pass
// through untouched.
func (r *Record) compileSelect() (string, []any, map[string]any, error) {
	if r.rawSQL != "" {
		if r.rawNamed != nil {
			return r.rawSQL, nil, r.rawNamed, nil
		}
		params := make([]any, len(r.rawParams))
		copy(params, r.rawParams)
		return r.rawSQL, params, nil, nil
	}
	if r.table == "" {
		return "", nil, nil, ErrNoTable
	}

	// Clause builders append their bind values to r.values as they
	// render, so argument order here fixes the parameter order.
	r.values = nil
	query := joinIfNotEmpty(" ",
		r.buildSelectStart(),
		r.buildJoin(),
		r.compileConditions(condWhere),
		r.buildGroupBy(),
		r.compileConditions(condHaving),
		r.buildOrderBy(),
		r.buildLimit(),
		r.buildOffset(),
	)
	return query, r.values, nil, nil
}

func (r *Record) buildSelectStart() string {
	cols := "*"
	if !r.usingDefaultColumns && len(r.columns) > 0 {
		cols = strings.Join(r.columns, ", ")
	}
	if r.distinct {
		cols = "DISTINCT " + cols
	}
	fragment := "SELECT "
	if r.limit != nil && r.db.limitStyle() == LimitTopN {
		fragment += fmt.Sprintf("TOP %d ", *r.limit)
	}
	fragment += cols + " FROM " + r.db.quote(r.table)
	if r.alias != "" {
		fragment += " " + r.db.quote(r.alias)
	}
	return fragment
}

func (r *Record) buildJoin() string {
	if len(r.joins) == 0 {
		return ""
	}
	r.values = append(r.values, r.joinValues...)
	return strings.Join(r.joins, " ")
}

func (r *Record) buildGroupBy() string {
	if len(r.groupBy) == 0 {
		return ""
	}
	return "GROUP BY " + strings.Join(r.groupBy, ", ")
}

func (r *Record) buildOrderBy() string {
	if len(r.orderBy) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(r.orderBy, ", ")
}

// buildLimit renders the trailing limit clause. TOP-style dialects render
// the limit inside buildSelectStart instead, so this stays empty there.
func (r *Record) buildLimit() string {
	if r.limit == nil || r.db.limitStyle() != LimitSuffix {
		return ""
	}
	return fmt.Sprintf("%s %d", r.db.dialect.LimitKeyword, *r.limit)
}

// buildOffset renders whenever an offset is set, regardless of limit
// style.
func (r *Record) buildOffset() string {
	if r.offset == nil {
		return ""
	}
	return fmt.Sprintf("%s %d", r.db.dialect.OffsetKeyword, *r.offset)
}

// compileInsert renders an INSERT for the record's dirty fields, in the
// order they were set. Expression fields are inlined and contribute no
// bind value. RETURNING dialects get the id columns appended so the
// generated key comes back with the insert.
func (r *Record) compileInsert() (string, []any) {
	fields := make([]string, 0, len(r.dirtyOrder))
	placeholders := make([]string, 0, len(r.dirtyOrder))
	params := make([]any, 0, len(r.dirtyOrder))
	for _, f := range r.dirtyOrder {
		fields = append(fields, r.db.quote(f))
		if _, isExpr := r.exprs[f]; isExpr {
			placeholders = append(placeholders, fmt.Sprintf("%v", r.dirty[f]))
			continue
		}
		placeholders = append(placeholders, "?")
		params = append(params, r.dirty[f])
	}

	pieces := []string{
		"INSERT INTO",
		r.db.quote(r.table),
		"(" + strings.Join(fields, ", ") + ")",
		"VALUES",
		"(" + strings.Join(placeholders, ", ") + ")",
	}
	if r.db.dialect.InsertReturning {
		pieces = append(pieces, "RETURNING "+dialects.QuoteIdentifiers(r.db.quoteChar(), r.idColumnNames()))
	}
	return strings.Join(pieces, " "), params
}

// compileUpdate renders an UPDATE of the dirty fields keyed on the id
// columns. The returned params cover the SET list only; the caller
// appends the id values.
func (r *Record) compileUpdate() (string, []any) {
	assignments := make([]string, 0, len(r.dirtyOrder))
	params := make([]any, 0, len(r.dirtyOrder))
	for _, f := range r.dirtyOrder {
		if _, isExpr := r.exprs[f]; isExpr {
			assignments = append(assignments, r.db.quote(f)+" = "+fmt.Sprintf("%v", r.dirty[f]))
			continue
		}
		assignments = append(assignments, r.db.quote(f)+" = ?")
		params = append(params, r.dirty[f])
	}
	query := "UPDATE " + r.db.quote(r.table) + " SET " +
		strings.Join(assignments, ", ") + " " + r.idWhereClause()
	return query, params
}

// idWhereClause renders the WHERE matching every id column.
func (r *Record) idWhereClause() string {
	cols := r.idColumnNames()
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, r.db.quote(c)+" = ?")
	}
	return "WHERE " + strings.Join(parts, " AND ")
}

// joinIfNotEmpty joins the non-empty pieces with sep, so absent clauses
// never leave doubled separators behind.
func joinIfNotEmpty(sep string, pieces ...string) string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
