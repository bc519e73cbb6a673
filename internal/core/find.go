package core

import (
	"errors"
	"strconv"
	"strings"
)

// run compiles and executes the accumulated query, returning raw rows.
func (r *Record) run() ([]map[string]any, error) {
	query, params, named, err := r.compileSelect()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.runSelect(r.context(), r.table, query, params, named)
	if err != nil {
		return nil, err
	}
	r.resetQueryState()
	return rows, nil
}

// resetQueryState clears what a finished run consumed: the working bind
// buffer and the result column list. Conditions, joins and ordering stay
// in place so the same record can be run again.
func (r *Record) resetQueryState() {
	r.values = nil
	r.columns = nil
	r.usingDefaultColumns = true
}

// FindOne runs the query and hydrates the first row. An optional id
// argument shortcuts WhereIDIs. The query is capped to one row; a miss
// returns ErrNotFound.
func (r *Record) FindOne(id ...any) (*Record, error) {
	if len(id) > 0 {
		r.WhereIDIs(id[0])
	}
	r.Limit(1)
	rows, err := r.run()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return r.recordFromRow(rows[0]), nil
}

// FindMany runs the query and hydrates every row.
func (r *Record) FindMany() ([]*Record, error) {
	rows, err := r.run()
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, r.recordFromRow(row))
	}
	return records, nil
}

// FindResultSet runs the query and wraps the hydrated rows in a
// ResultSet for bulk field access and writes.
func (r *Record) FindResultSet() (ResultSet, error) {
	records, err := r.FindMany()
	if err != nil {
		return nil, err
	}
	return ResultSet(records), nil
}

// FindArray runs the query and returns the raw rows without hydrating
// records around them.
func (r *Record) FindArray() ([]map[string]any, error) {
	return r.run()
}

// Count runs COUNT over the query, of * unless a column is given.
func (r *Record) Count(column ...string) (any, error) {
	col := "*"
	if len(column) > 0 {
		col = column[0]
	}
	return r.aggregate("COUNT", col)
}

// Max runs MAX over the query for one column.
func (r *Record) Max(column string) (any, error) {
	return r.aggregate("MAX", column)
}

// Min runs MIN over the query for one column.
func (r *Record) Min(column string) (any, error) {
	return r.aggregate("MIN", column)
}

// Avg runs AVG over the query for one column.
func (r *Record) Avg(column string) (any, error) {
	return r.aggregate("AVG", column)
}

// Sum runs SUM over the query for one column.
func (r *Record) Sum(column string) (any, error) {
	return r.aggregate("SUM", column)
}

// aggregate swaps the result columns for a single aggregate expression,
// runs the query, and restores them. Integral results come back as
// int64, fractional as float64, and a query matching no rows as zero.
func (r *Record) aggregate(fn, column string) (any, error) {
	alias := strings.ToLower(fn)
	expr := column
	if expr != "*" {
		expr = r.db.quote(expr)
	}

	savedColumns := r.columns
	savedDefault := r.usingDefaultColumns
	r.columns = nil
	r.usingDefaultColumns = true
	r.SelectExprAs(fn+"("+expr+")", alias)

	rec, err := r.FindOne()
	r.columns = savedColumns
	r.usingDefaultColumns = savedDefault

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return int64(0), nil
		}
		return nil, err
	}
	return coerceAggregate(rec.Get(alias)), nil
}

// coerceAggregate normalizes driver-dependent aggregate results. Values
// that round-trip as integers become int64 even when the driver hands
// back floats or digit strings; anything non-numeric passes through.
func coerceAggregate(v any) any {
	switch n := v.(type) {
	case nil:
		return int64(0)
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case float32:
		f := float64(n)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case []byte:
		return coerceNumericString(string(n))
	case string:
		return coerceNumericString(n)
	default:
		return v
	}
}

func coerceNumericString(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	}
	return s
}
