package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coregx/tabula/internal/cache"
	"github.com/coregx/tabula/internal/tracer"
)

// runSelect executes a read and returns its rows as column-keyed maps.
// With caching enabled a repeated query is served from the connection's
// result store without touching the driver or the query log.
func (db *DB) runSelect(ctx context.Context, table, query string, params []any, named map[string]any) ([]map[string]any, error) {
	ctx, span := db.tracer.StartSpan(ctx, "tabula.query.select")
	defer span.End()

	var key string
	if db.config.Caching {
		key = db.cacheKey(query, params, named, table)
		if rows, ok := db.queryStore().Get(key); ok {
			tracer.AddQueryAttributes(span, &tracer.QueryMetadata{
				SQL:       query,
				Args:      params,
				Database:  db.driverName,
				Operation: "SELECT",
				Table:     table,
				CacheHit:  true,
			})
			return cache.CloneRows(rows), nil
		}
	}

	execQuery := query
	execParams := params
	if named != nil {
		q, args, err := sqlx.Named(query, named)
		if err != nil {
			return nil, WrapError(err, "binding named parameters")
		}
		execQuery = q
		execParams = args
	}
	execQuery = db.dialect.Rebind(execQuery)

	stmt, err := db.prepare(ctx, execQuery)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := db.fetchRows(ctx, stmt, execParams)
	elapsed := time.Since(start)

	// Named queries are logged unsubstituted: positional binding cannot
	// align with :name placeholders.
	logParams := params
	if named != nil {
		logParams = nil
	}
	db.recordQueryLog(query, logParams, elapsed)

	meta := &tracer.QueryMetadata{
		SQL:       query,
		Args:      execParams,
		Duration:  elapsed,
		Database:  db.driverName,
		Operation: "SELECT",
		Table:     table,
		Error:     err,
	}
	if err != nil {
		tracer.AddQueryAttributes(span, meta)
		db.logger.Error("query execution failed",
			"sql", query,
			"params", db.sanitizer.MaskParams(query, execParams),
			"database", db.driverName,
			"error", err)
		return nil, err
	}

	meta.RowsAffected = int64(len(results))
	tracer.AddQueryAttributes(span, meta)
	db.logger.Info("query executed",
		"sql", query,
		"params", db.sanitizer.MaskParams(query, execParams),
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
		"rows", len(results),
		"database", db.driverName)

	if db.config.Caching {
		db.queryStore().Set(key, cache.CloneRows(results))
	}
	return results, nil
}

// runExec executes a write statement with the same logging, tracing and
// statement reuse as reads. Write results are never cached.
func (db *DB) runExec(ctx context.Context, table, query string, params []any) (sql.Result, error) {
	ctx, span := db.tracer.StartSpan(ctx, "tabula.query.exec")
	defer span.End()

	stmt, err := db.prepare(ctx, db.dialect.Rebind(query))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := stmt.ExecContext(ctx, params...)
	elapsed := time.Since(start)

	db.recordQueryLog(query, params, elapsed)

	meta := &tracer.QueryMetadata{
		SQL:       query,
		Args:      params,
		Duration:  elapsed,
		Database:  db.driverName,
		Operation: tracer.DetectOperation(query),
		Table:     table,
		Error:     err,
	}
	if err != nil {
		tracer.AddQueryAttributes(span, meta)
		db.logger.Error("query execution failed",
			"sql", query,
			"params", db.sanitizer.MaskParams(query, params),
			"database", db.driverName,
			"error", err)
		return nil, WrapError(err, "executing statement")
	}

	if n, affErr := res.RowsAffected(); affErr == nil {
		meta.RowsAffected = n
	}
	tracer.AddQueryAttributes(span, meta)
	db.logger.Info("statement executed",
		"sql", query,
		"params", db.sanitizer.MaskParams(query, params),
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
		"rows_affected", meta.RowsAffected,
		"database", db.driverName)

	return res, nil
}

// runInsertReturning executes an INSERT whose dialect returns the
// generated key columns as a result row. The row is nil when the driver
// produced none.
func (db *DB) runInsertReturning(ctx context.Context, table, query string, params []any) (map[string]any, error) {
	ctx, span := db.tracer.StartSpan(ctx, "tabula.query.insert")
	defer span.End()

	stmt, err := db.prepare(ctx, db.dialect.Rebind(query))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.fetchRows(ctx, stmt, params)
	elapsed := time.Since(start)

	db.recordQueryLog(query, params, elapsed)

	meta := &tracer.QueryMetadata{
		SQL:       query,
		Args:      params,
		Duration:  elapsed,
		Database:  db.driverName,
		Operation: "INSERT",
		Table:     table,
		Error:     err,
	}
	tracer.AddQueryAttributes(span, meta)
	if err != nil {
		db.logger.Error("query execution failed",
			"sql", query,
			"params", db.sanitizer.MaskParams(query, params),
			"database", db.driverName,
			"error", err)
		return nil, err
	}

	db.logger.Info("statement executed",
		"sql", query,
		"params", db.sanitizer.MaskParams(query, params),
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
		"database", db.driverName)

	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// prepare returns a cached prepared statement for query, preparing and
// caching it on first use. The query must already be in the driver's
// bind var form.
func (db *DB) prepare(ctx context.Context, query string) (*sqlx.Stmt, error) {
	if stmt, ok := db.stmtCache.Get(query); ok {
		return stmt, nil
	}
	stmt, err := db.sqlx.PreparexContext(ctx, query)
	if err != nil {
		return nil, WrapError(err, "preparing statement")
	}
	db.stmtCache.Set(query, stmt)
	return stmt, nil
}

func (db *DB) fetchRows(ctx context.Context, stmt *sqlx.Stmt, params []any) ([]map[string]any, error) {
	rows, err := stmt.QueryxContext(ctx, params...)
	if err != nil {
		return nil, WrapError(err, "executing query")
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, WrapError(err, "scanning row")
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "reading rows")
	}
	return results, nil
}

// recordQueryLog appends the bound query to the connection's log and
// fires the configured callback. Does nothing unless logging is on.
func (db *DB) recordQueryLog(query string, params []any, elapsed time.Duration) {
	if !db.config.Logging {
		return
	}
	bound := db.queryLog.Record(query, params)
	db.last.Set(bound)
	if db.config.Logger != nil {
		db.config.Logger(bound, elapsed)
	}
}

// cacheKey derives the result-cache key for a query. Named parameters
// key on their sorted name=value renderings so equal maps always land on
// the same entry.
func (db *DB) cacheKey(query string, params []any, named map[string]any, table string) string {
	keyParams := params
	if named != nil {
		keyParams = namedKeyParams(named)
	}
	if db.config.CacheKeyFunc != nil {
		return db.config.CacheKeyFunc(query, keyParams, table)
	}
	return cache.QueryKey(query, keyParams, table)
}

func namedKeyParams(named map[string]any) []any {
	keys := getKeys(named)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, named[k]))
	}
	return out
}
