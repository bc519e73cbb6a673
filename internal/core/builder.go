package core

import (
	"fmt"
	"strings"
)

// Alias gives the query's table an alias, used both in FROM and when
// qualifying columns in joined queries.
func (r *Record) Alias(alias string) *Record {
	r.alias = alias
	return r
}

// Select narrows the result columns to the given identifiers. The first
// call replaces the default SELECT *; later calls append.
func (r *Record) Select(columns ...string) *Record {
	for _, c := range columns {
		r.addResultColumn(r.db.quote(c))
	}
	return r
}

// SelectAs selects one column under an alias.
func (r *Record) SelectAs(column, alias string) *Record {
	r.addResultColumn(r.db.quote(column) + " AS " + r.db.quote(alias))
	return r
}

// SelectExpr selects a raw SQL expression verbatim.
func (r *Record) SelectExpr(expr string) *Record {
	r.addResultColumn(expr)
	return r
}

// SelectExprAs selects a raw SQL expression under an alias.
func (r *Record) SelectExprAs(expr, alias string) *Record {
	r.addResultColumn(expr + " AS " + r.db.quote(alias))
	return r
}

func (r *Record) addResultColumn(expr string) {
	if r.usingDefaultColumns {
		r.columns = []string{expr}
		r.usingDefaultColumns = false
		return
	}
	r.columns = append(r.columns, expr)
}

// Distinct makes the query return distinct rows.
func (r *Record) Distinct() *Record {
	r.distinct = true
	return r
}

// Join adds a plain JOIN. The constraint is either a raw SQL string or
// a {first, operator, second} triple whose columns are quoted.
func (r *Record) Join(table string, constraint any, alias ...string) *Record {
	return r.addJoin("JOIN", table, constraint, alias)
}

// InnerJoin adds an INNER JOIN.
func (r *Record) InnerJoin(table string, constraint any, alias ...string) *Record {
	return r.addJoin("INNER JOIN", table, constraint, alias)
}

// LeftOuterJoin adds a LEFT OUTER JOIN.
func (r *Record) LeftOuterJoin(table string, constraint any, alias ...string) *Record {
	return r.addJoin("LEFT OUTER JOIN", table, constraint, alias)
}

// RightOuterJoin adds a RIGHT OUTER JOIN.
func (r *Record) RightOuterJoin(table string, constraint any, alias ...string) *Record {
	return r.addJoin("RIGHT OUTER JOIN", table, constraint, alias)
}

// FullOuterJoin adds a FULL OUTER JOIN.
func (r *Record) FullOuterJoin(table string, constraint any, alias ...string) *Record {
	return r.addJoin("FULL OUTER JOIN", table, constraint, alias)
}

func (r *Record) addJoin(operator, table string, constraint any, alias []string) *Record {
	var on string
	switch c := constraint.(type) {
	case string:
		on = c
	case [3]string:
		on = r.db.quote(c[0]) + " " + c[1] + " " + r.db.quote(c[2])
	case []string:
		if len(c) != 3 {
			panic(fmt.Sprintf("tabula: join constraint needs 3 elements, got %d", len(c)))
		}
		on = r.db.quote(c[0]) + " " + c[1] + " " + r.db.quote(c[2])
	default:
		panic(fmt.Sprintf("tabula: unsupported join constraint type %T", constraint))
	}
	join := operator + " " + r.db.quote(table)
	if len(alias) > 0 && alias[0] != "" {
		join += " " + r.db.quote(alias[0])
	}
	join += " ON " + on
	r.joins = append(r.joins, join)
	return r
}

// RawJoin appends a hand-written join fragment with its bind values.
func (r *Record) RawJoin(sql string, args ...any) *Record {
	r.joins = append(r.joins, sql)
	r.joinValues = append(r.joinValues, args...)
	return r
}

// Where adds an equality condition; a map argument adds one condition
// per entry. Conditions accumulate and are AND-joined.
func (r *Record) Where(column any, value ...any) *Record {
	return r.WhereEqual(column, value...)
}

// WhereEqual adds a column = value condition.
func (r *Record) WhereEqual(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, "=", value...)
	return r
}

// WhereNotEqual adds a column != value condition.
func (r *Record) WhereNotEqual(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, "!=", value...)
	return r
}

// WhereIDIs matches the table's primary key. Compound keys take a
// column-to-value map.
func (r *Record) WhereIDIs(id any) *Record {
	cols := r.idColumnNames()
	if len(cols) > 1 {
		return r.WhereEqual(r.compoundIDValues(id, cols))
	}
	return r.WhereEqual(cols[0], id)
}

// WhereIDIn matches any of several primary key values. Compound keys
// take column-to-value maps and expand to an OR of per-key groups.
func (r *Record) WhereIDIn(ids ...any) *Record {
	cols := r.idColumnNames()
	if len(cols) > 1 {
		queries := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			queries = append(queries, r.compoundIDValues(id, cols))
		}
		return r.WhereAnyIs(queries)
	}
	return r.WhereIn(cols[0], ids...)
}

func (r *Record) compoundIDValues(id any, cols []string) map[string]any {
	m, ok := id.(map[string]any)
	if !ok {
		panic(fmt.Sprintf("tabula: compound key value must be a map, got %T", id))
	}
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c] = m[c]
	}
	return out
}

// WhereAnyIs adds an OR of AND-groups, one group per map. The operator
// defaults to "=" and may be a single string for all columns or a
// per-column map; columns missing from the map fall back to "=".
func (r *Record) WhereAnyIs(queries []map[string]any, operator ...any) *Record {
	defaultOp := "="
	var opByColumn map[string]string
	if len(operator) > 0 {
		switch o := operator[0].(type) {
		case string:
			defaultOp = o
		case map[string]string:
			opByColumn = o
		default:
			panic(fmt.Sprintf("tabula: unsupported operator type %T", operator[0]))
		}
	}

	pieces := []string{"(("}
	var values []any
	firstGroup := true
	for _, q := range queries {
		if !firstGroup {
			pieces = append(pieces, ") OR (")
		}
		firstGroup = false
		firstCol := true
		for _, col := range getKeys(q) {
			if !firstCol {
				pieces = append(pieces, "AND")
			}
			firstCol = false
			op := defaultOp
			if o, ok := opByColumn[col]; ok {
				op = o
			}
			pieces = append(pieces, r.db.quote(col), op, "?")
			values = append(values, q[col])
		}
	}
	pieces = append(pieces, "))")
	return r.WhereRaw(strings.Join(pieces, " "), values...)
}

// WhereLike adds a LIKE condition.
func (r *Record) WhereLike(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, "LIKE", value...)
	return r
}

// WhereNotLike adds a NOT LIKE condition.
func (r *Record) WhereNotLike(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, "NOT LIKE", value...)
	return r
}

// WhereGt adds a greater-than condition.
func (r *Record) WhereGt(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, ">", value...)
	return r
}

// WhereGte adds a greater-or-equal condition.
func (r *Record) WhereGte(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, ">=", value...)
	return r
}

// WhereLt adds a less-than condition.
func (r *Record) WhereLt(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, "<", value...)
	return r
}

// WhereLte adds a less-or-equal condition.
func (r *Record) WhereLte(column any, value ...any) *Record {
	r.addSimpleCondition(condWhere, column, "<=", value...)
	return r
}

// WhereIn adds an IN condition. A single slice argument is expanded;
// Expr values are inlined rather than bound.
func (r *Record) WhereIn(column any, values ...any) *Record {
	r.addPlaceholderCondition(condWhere, column, "IN", flattenValues(values))
	return r
}

// WhereNotIn adds a NOT IN condition.
func (r *Record) WhereNotIn(column any, values ...any) *Record {
	r.addPlaceholderCondition(condWhere, column, "NOT IN", flattenValues(values))
	return r
}

// WhereNull adds IS NULL conditions for the given columns.
func (r *Record) WhereNull(columns ...string) *Record {
	r.addNoValueCondition(condWhere, columns, "IS NULL")
	return r
}

// WhereNotNull adds IS NOT NULL conditions for the given columns.
func (r *Record) WhereNotNull(columns ...string) *Record {
	r.addNoValueCondition(condWhere, columns, "IS NOT NULL")
	return r
}

// WhereRaw adds a hand-written condition fragment with its bind values.
// The fragment is wired into the AND chain untouched, so it may carry
// its own parentheses and OR logic.
func (r *Record) WhereRaw(sql string, args ...any) *Record {
	r.addCondition(condWhere, sql, args...)
	return r
}

// Having adds an equality HAVING condition; a map argument adds one per
// entry.
func (r *Record) Having(column any, value ...any) *Record {
	return r.HavingEqual(column, value...)
}

// HavingEqual adds a column = value HAVING condition.
func (r *Record) HavingEqual(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, "=", value...)
	return r
}

// HavingNotEqual adds a column != value HAVING condition.
func (r *Record) HavingNotEqual(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, "!=", value...)
	return r
}

// HavingIDIs matches the primary key in the HAVING clause.
func (r *Record) HavingIDIs(id any) *Record {
	cols := r.idColumnNames()
	if len(cols) > 1 {
		return r.Having(r.compoundIDValues(id, cols))
	}
	return r.Having(cols[0], id)
}

// HavingLike adds a LIKE HAVING condition.
func (r *Record) HavingLike(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, "LIKE", value...)
	return r
}

// HavingNotLike adds a NOT LIKE HAVING condition.
func (r *Record) HavingNotLike(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, "NOT LIKE", value...)
	return r
}

// HavingGt adds a greater-than HAVING condition.
func (r *Record) HavingGt(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, ">", value...)
	return r
}

// HavingGte adds a greater-or-equal HAVING condition.
func (r *Record) HavingGte(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, ">=", value...)
	return r
}

// HavingLt adds a less-than HAVING condition.
func (r *Record) HavingLt(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, "<", value...)
	return r
}

// HavingLte adds a less-or-equal HAVING condition.
func (r *Record) HavingLte(column any, value ...any) *Record {
	r.addSimpleCondition(condHaving, column, "<=", value...)
	return r
}

// HavingIn adds an IN HAVING condition.
func (r *Record) HavingIn(column any, values ...any) *Record {
	r.addPlaceholderCondition(condHaving, column, "IN", flattenValues(values))
	return r
}

// HavingNotIn adds a NOT IN HAVING condition.
func (r *Record) HavingNotIn(column any, values ...any) *Record {
	r.addPlaceholderCondition(condHaving, column, "NOT IN", flattenValues(values))
	return r
}

// HavingNull adds IS NULL HAVING conditions.
func (r *Record) HavingNull(columns ...string) *Record {
	r.addNoValueCondition(condHaving, columns, "IS NULL")
	return r
}

// HavingNotNull adds IS NOT NULL HAVING conditions.
func (r *Record) HavingNotNull(columns ...string) *Record {
	r.addNoValueCondition(condHaving, columns, "IS NOT NULL")
	return r
}

// HavingRaw adds a hand-written HAVING fragment with its bind values.
func (r *Record) HavingRaw(sql string, args ...any) *Record {
	r.addCondition(condHaving, sql, args...)
	return r
}

// GroupBy groups the result by the given columns.
func (r *Record) GroupBy(columns ...string) *Record {
	for _, c := range columns {
		r.groupBy = append(r.groupBy, r.db.quote(c))
	}
	return r
}

// GroupByExpr groups the result by a raw SQL expression.
func (r *Record) GroupByExpr(expr string) *Record {
	r.groupBy = append(r.groupBy, expr)
	return r
}

// OrderByAsc orders the result by a column, ascending.
func (r *Record) OrderByAsc(column string) *Record {
	r.orderBy = append(r.orderBy, r.db.quote(column)+" ASC")
	return r
}

// OrderByDesc orders the result by a column, descending.
func (r *Record) OrderByDesc(column string) *Record {
	r.orderBy = append(r.orderBy, r.db.quote(column)+" DESC")
	return r
}

// OrderByExpr orders the result by a raw SQL expression.
func (r *Record) OrderByExpr(expr string) *Record {
	r.orderBy = append(r.orderBy, expr)
	return r
}

// Limit caps the number of returned rows.
func (r *Record) Limit(n int) *Record {
	r.limit = &n
	return r
}

// Offset skips the first n rows.
func (r *Record) Offset(n int) *Record {
	r.offset = &n
	return r
}

// RawQuery replaces the generated SELECT with a hand-written statement
// using ? placeholders. Finder methods still hydrate its rows.
func (r *Record) RawQuery(sql string, args ...any) *Record {
	r.rawSQL = sql
	r.rawParams = args
	r.rawNamed = nil
	return r
}

// RawQueryNamed replaces the generated SELECT with a statement using
// :name placeholders bound from the given map.
func (r *Record) RawQueryNamed(sql string, params map[string]any) *Record {
	r.rawSQL = sql
	r.rawParams = nil
	r.rawNamed = params
	return r
}

// flattenValues expands a single slice argument so WhereIn accepts both
// variadic values and one prebuilt list.
func flattenValues(values []any) []any {
	if len(values) == 1 {
		switch values[0].(type) {
		case []any, []string, []int, []int64:
			return toValueList(values[0])
		}
	}
	return values
}
