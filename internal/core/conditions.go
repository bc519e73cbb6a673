package core

import (
	"fmt"
	"strings"
)

type conditionKind int

const (
	condWhere conditionKind = iota
	condHaving
)

// condition is one accumulated WHERE or HAVING fragment together with
// the bind values it contributes. Fragments in a list are AND-joined.
type condition struct {
	fragment string
	values   []any
}

func (r *Record) addCondition(kind conditionKind, fragment string, values ...any) {
	c := condition{fragment: fragment, values: values}
	if kind == condHaving {
		r.havings = append(r.havings, c)
	} else {
		r.wheres = append(r.wheres, c)
	}
}

// addSimpleCondition handles the column-operator-value family. The
// column may be a single name or a map of columns to values, applied in
// sorted key order. Unqualified column names are qualified with the
// table (or its alias) once the query has joins, so they keep resolving
// unambiguously.
func (r *Record) addSimpleCondition(kind conditionKind, column any, op string, value ...any) {
	switch c := column.(type) {
	case string:
		var v any
		if len(value) > 0 {
			v = value[0]
		}
		r.appendSimple(kind, c, op, v)
	case map[string]any:
		for _, k := range getKeys(c) {
			r.appendSimple(kind, k, op, c[k])
		}
	default:
		panic(fmt.Sprintf("tabula: unsupported condition column type %T", column))
	}
}

func (r *Record) appendSimple(kind conditionKind, column, op string, value any) {
	if len(r.joins) > 0 && !strings.Contains(column, ".") {
		prefix := r.table
		if r.alias != "" {
			prefix = r.alias
		}
		column = prefix + "." + column
	}
	r.addCondition(kind, r.db.quote(column)+" "+op+" ?", value)
}

// addPlaceholderCondition handles IN-style operators that take a value
// list. Expr values are inlined instead of bound. The column may again
// be a map, each entry contributing its own condition in sorted order.
func (r *Record) addPlaceholderCondition(kind conditionKind, column any, op string, values []any) {
	switch c := column.(type) {
	case string:
		r.appendPlaceholders(kind, c, op, values)
	case map[string]any:
		for _, k := range getKeys(c) {
			r.appendPlaceholders(kind, k, op, toValueList(c[k]))
		}
	default:
		panic(fmt.Sprintf("tabula: unsupported condition column type %T", column))
	}
}

func (r *Record) appendPlaceholders(kind conditionKind, column, op string, values []any) {
	parts := make([]string, 0, len(values))
	bound := make([]any, 0, len(values))
	for _, v := range values {
		if e, ok := v.(Expr); ok {
			parts = append(parts, string(e))
			continue
		}
		parts = append(parts, "?")
		bound = append(bound, v)
	}
	fragment := r.db.quote(column) + " " + op + " (" + strings.Join(parts, ", ") + ")"
	r.addCondition(kind, fragment, bound...)
}

// addNoValueCondition handles operators that bind nothing, like IS NULL.
func (r *Record) addNoValueCondition(kind conditionKind, columns []string, op string) {
	for _, c := range columns {
		r.addCondition(kind, r.db.quote(c)+" "+op)
	}
}

// toValueList normalizes a map entry's value to the list form the
// placeholder conditions consume.
func toValueList(v any) []any {
	switch vv := v.(type) {
	case []any:
		return vv
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(vv))
		for i, n := range vv {
			out[i] = n
		}
		return out
	case []int64:
		out := make([]any, len(vv))
		for i, n := range vv {
			out[i] = n
		}
		return out
	default:
		return []any{v}
	}
}

// compileConditions renders one condition list, appending its bind
// values to the working buffer. Empty lists render as "".
func (r *Record) compileConditions(kind conditionKind) string {
	list := r.wheres
	keyword := "WHERE"
	if kind == condHaving {
		list = r.havings
		keyword = "HAVING"
	}
	if len(list) == 0 {
		return ""
	}
	fragments := make([]string, 0, len(list))
	for _, c := range list {
		fragments = append(fragments, c.fragment)
		r.values = append(r.values, c.values...)
	}
	return keyword + " " + strings.Join(fragments, " AND ")
}
