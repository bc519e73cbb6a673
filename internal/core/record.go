package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Expr marks a string value as raw SQL. Expression values are inlined
// into the generated statement instead of being bound as parameters, so
// they must never carry user input.
type Expr string

// Record is both the query builder and the unit of hydrated data. A
// fresh Record from DB.Table starts empty; fluent methods accumulate
// query clauses, finder methods run them, and Set plus Save write
// changed fields back. A Record is not safe for concurrent use; build
// and run each one from a single goroutine.
type Record struct {
	db  *DB
	ctx context.Context

	table string
	alias string

	columns             []string
	usingDefaultColumns bool
	distinct            bool

	joins      []string
	joinValues []any

	wheres  []condition
	havings []condition

	groupBy []string
	orderBy []string

	limit  *int
	offset *int

	rawSQL    string
	rawParams []any
	rawNamed  map[string]any

	// values is the working bind-parameter buffer of the most recent
	// compile; reset before each compile and after each run.
	values []any

	data       map[string]any
	dirty      map[string]any
	dirtyOrder []string
	exprs      map[string]struct{}
	isNew      bool

	idColumns []string
}

// WithContext makes the record's queries run under ctx.
func (r *Record) WithContext(ctx context.Context) *Record {
	r.ctx = ctx
	return r
}

func (r *Record) context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return r.db.context()
}

// Get returns the value of a hydrated field, or nil when absent.
func (r *Record) Get(field string) any {
	return r.data[field]
}

// String returns a field rendered as a string. Driver bytes and numbers
// come back in their natural text form; absent fields yield "".
func (r *Record) String(field string) string {
	v, ok := r.data[field]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int returns a field coerced to int64. The second return reports
// whether the field was present and numeric.
func (r *Record) Int(field string) (int64, bool) {
	v, ok := r.data[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Has reports whether the record carries the field at all; a present
// NULL still counts.
func (r *Record) Has(field string) bool {
	_, ok := r.data[field]
	return ok
}

// Fields lists the record's field names in sorted order.
func (r *Record) Fields() []string {
	return getKeys(r.data)
}

// AsMap copies the record's data. With arguments, only those fields are
// included; absent fields are simply skipped.
func (r *Record) AsMap(fields ...string) map[string]any {
	if len(fields) == 0 {
		out := make(map[string]any, len(r.data))
		for k, v := range r.data {
			out[k] = v
		}
		return out
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := r.data[f]; ok {
			out[f] = v
		}
	}
	return out
}

// ID returns the record's primary key value. Compound keys come back as
// a column-to-value map.
func (r *Record) ID() any {
	cols := r.idColumnNames()
	if len(cols) == 1 {
		return r.data[cols[0]]
	}
	id := make(map[string]any, len(cols))
	for _, c := range cols {
		id[c] = r.data[c]
	}
	return id
}

// Set assigns one field, or with a map argument several at once, and
// marks them dirty so the next Save writes them. Map fields apply in
// sorted key order.
func (r *Record) Set(column any, value ...any) *Record {
	switch c := column.(type) {
	case string:
		var v any
		if len(value) > 0 {
			v = value[0]
		}
		r.setField(c, v, false)
	case map[string]any:
		for _, k := range getKeys(c) {
			r.setField(k, c[k], false)
		}
	default:
		panic(fmt.Sprintf("tabula: unsupported Set column type %T", column))
	}
	return r
}

// SetExpr assigns a raw SQL expression to one field, or with a map
// argument several at once. Expression fields are inlined into INSERT
// and UPDATE statements rather than bound.
func (r *Record) SetExpr(column any, value ...any) *Record {
	switch c := column.(type) {
	case string:
		var v any
		if len(value) > 0 {
			v = value[0]
		}
		r.setField(c, v, true)
	case map[string]any:
		for _, k := range getKeys(c) {
			r.setField(k, c[k], true)
		}
	default:
		panic(fmt.Sprintf("tabula: unsupported SetExpr column type %T", column))
	}
	return r
}

func (r *Record) setField(field string, value any, expr bool) {
	if r.data == nil {
		r.data = make(map[string]any)
	}
	if r.dirty == nil {
		r.dirty = make(map[string]any)
	}
	if _, already := r.dirty[field]; !already {
		r.dirtyOrder = append(r.dirtyOrder, field)
	}
	r.data[field] = value
	r.dirty[field] = value
	if expr {
		if r.exprs == nil {
			r.exprs = make(map[string]struct{})
		}
		r.exprs[field] = struct{}{}
	} else {
		delete(r.exprs, field)
	}
}

// IsDirty reports whether the field has been modified since hydration.
func (r *Record) IsDirty(field string) bool {
	_, ok := r.dirty[field]
	return ok
}

// IsNew reports whether the record was created locally and not yet saved.
func (r *Record) IsNew() bool {
	return r.isNew
}

// Create turns the record into a new, unsaved row. An optional seed map
// populates it with every seed field marked dirty.
func (r *Record) Create(seed ...map[string]any) *Record {
	r.isNew = true
	if len(seed) > 0 && seed[0] != nil {
		r.Hydrate(seed[0])
		r.isNew = true
		r.ForceAllDirty()
	}
	return r
}

// Hydrate replaces the record's data with a row fetched elsewhere. The
// record is considered clean and existing afterwards.
func (r *Record) Hydrate(row map[string]any) *Record {
	r.data = make(map[string]any, len(row))
	for k, v := range row {
		r.data[k] = v
	}
	r.dirty = make(map[string]any)
	r.dirtyOrder = nil
	r.exprs = nil
	r.isNew = false
	return r
}

// ForceAllDirty marks every hydrated field dirty so the next Save writes
// the full row. Fields apply in sorted order.
func (r *Record) ForceAllDirty() *Record {
	r.dirty = make(map[string]any, len(r.data))
	r.dirtyOrder = make([]string, 0, len(r.data))
	for _, k := range getKeys(r.data) {
		r.dirty[k] = r.data[k]
		r.dirtyOrder = append(r.dirtyOrder, k)
	}
	return r
}

// UseIDColumn overrides the primary key column(s) for this record,
// taking precedence over connection-level overrides.
func (r *Record) UseIDColumn(columns ...string) *Record {
	r.idColumns = columns
	return r
}

func (r *Record) idColumnNames() []string {
	if len(r.idColumns) > 0 {
		return r.idColumns
	}
	if cols, ok := r.db.config.IDColumnOverrides[r.table]; ok && len(cols) > 0 {
		return cols
	}
	if r.db.config.IDColumn != "" {
		return []string{r.db.config.IDColumn}
	}
	return []string{"id"}
}

// idValues resolves the record's primary key values in column order,
// failing with ErrMissingID when any is absent or NULL.
func (r *Record) idValues() ([]any, error) {
	cols := r.idColumnNames()
	values := make([]any, 0, len(cols))
	for _, c := range cols {
		v, ok := r.data[c]
		if !ok || v == nil {
			return nil, WrapError(ErrMissingID, c)
		}
		values = append(values, v)
	}
	return values, nil
}

// nullIDRemains reports whether any primary key column is still unset,
// meaning the database will assign it on insert.
func (r *Record) nullIDRemains() bool {
	for _, c := range r.idColumnNames() {
		if v, ok := r.data[c]; !ok || v == nil {
			return true
		}
	}
	return false
}

// recordFromRow builds a hydrated record sharing this record's
// connection, table and key configuration.
func (r *Record) recordFromRow(row map[string]any) *Record {
	rec := r.db.Table(r.table)
	rec.ctx = r.ctx
	rec.idColumns = r.idColumns
	rec.Hydrate(row)
	return rec
}

// getKeys returns a map's keys in sorted order, keeping map-driven
// operations deterministic.
func getKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
