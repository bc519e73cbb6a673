package core

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/coregx/tabula/internal/cache"
	"github.com/coregx/tabula/internal/dialects"
	"github.com/coregx/tabula/internal/logger"
	"github.com/coregx/tabula/internal/querylog"
	"github.com/coregx/tabula/internal/tracer"
)

// Aliases lift the internal collaborator types into the core API so the
// root package can re-export them without importing internals.
type (
	// Logger is the structured logging interface accepted by WithLogger.
	Logger = logger.Logger
	// Tracer is the tracing interface accepted by WithTracer.
	Tracer = tracer.Tracer
	// CacheStore is a pluggable query result store.
	CacheStore = cache.Store
	// CacheKeyFunc derives cache keys from a query and its parameters.
	CacheKeyFunc = cache.KeyFunc
	// CacheStats reports prepared statement cache counters.
	CacheStats = cache.Stats
)

// DB wraps a database handle with the dialect, configuration, caches and
// logging state that queries built through it share.
type DB struct {
	sqlx       *sqlx.DB
	driverName string
	dialect    *dialects.Dialect
	config     *Config

	stmtCache  *cache.StmtCache
	queryCache *cache.MemoryStore
	queryLog   *querylog.Log
	last       *querylog.LastPointer

	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer

	health         *healthChecker
	healthInterval time.Duration

	ctx context.Context
}

// Option configures a DB during Open or WrapDB.
type Option func(*DB)

// WithMaxOpenConns bounds the pool's open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) { db.sqlx.SetMaxOpenConns(n) }
}

// WithMaxIdleConns bounds the pool's idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) { db.sqlx.SetMaxIdleConns(n) }
}

// WithConnMaxLifetime bounds how long a pooled connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *DB) { db.sqlx.SetConnMaxLifetime(d) }
}

// WithStmtCacheCapacity sizes the prepared statement cache.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) { db.stmtCache = cache.NewStmtCache(capacity) }
}

// WithLogger installs a structured logger for query execution events.
func WithLogger(l Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithTracer installs a tracer that receives a span per executed query.
func WithTracer(t Tracer) Option {
	return func(db *DB) {
		if t != nil {
			db.tracer = t
		}
	}
}

// WithHealthCheck starts a background connectivity probe at the given
// interval once the connection is opened.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) { db.healthInterval = interval }
}

// NewSlogLogger adapts a *slog.Logger to the Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	return logger.NewSlogAdapter(l)
}

// NewOtelTracer adapts an OpenTelemetry tracer to the Tracer interface.
func NewOtelTracer(t oteltrace.Tracer) Tracer {
	return tracer.NewOtelTracer(t)
}

func newDB(driverName string, sdb *sqlx.DB) *DB {
	return &DB{
		sqlx:       sdb,
		driverName: driverName,
		dialect:    dialects.GetDialect(driverName),
		config:     defaultConfig(),
		stmtCache:  cache.NewStmtCache(0),
		queryCache: cache.NewMemoryStore(),
		queryLog:   querylog.New(),
		last:       querylog.NewLastPointer(),
		logger:     &logger.NoopLogger{},
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     &tracer.NoopTracer{},
	}
}

// Open opens a database connection for the given driver and DSN. The
// connection is lazy: no round-trip happens until the first query or an
// explicit Healthy check.
func Open(driverName, dataSourceName string, opts ...Option) (*DB, error) {
	sdb, err := sqlx.Open(driverName, dataSourceName)
	if err != nil {
		return nil, WrapError(err, "opening database")
	}
	db := newDB(driverName, sdb)
	for _, opt := range opts {
		opt(db)
	}
	db.startHealthChecker()
	return db, nil
}

// WrapDB adopts an already opened *sql.DB. The caller keeps ownership of
// the handle's lifetime unless Close is used.
func WrapDB(driverName string, sqlDB *sql.DB, opts ...Option) *DB {
	db := newDB(driverName, sqlx.NewDb(sqlDB, driverName))
	for _, opt := range opts {
		opt(db)
	}
	db.startHealthChecker()
	return db
}

func (db *DB) startHealthChecker() {
	if db.healthInterval <= 0 {
		return
	}
	db.health = newHealthChecker(db.sqlx.DB, db.logger, db.healthInterval)
	db.health.start()
}

// Table starts building a query against the given table.
func (db *DB) Table(table string) *Record {
	return &Record{
		db:                  db,
		table:               table,
		usingDefaultColumns: true,
		data:                make(map[string]any),
		dirty:               make(map[string]any),
	}
}

// WithContext returns a shallow copy of the connection whose queries run
// under ctx unless a record carries its own.
func (db *DB) WithContext(ctx context.Context) *DB {
	clone := *db
	clone.ctx = ctx
	return &clone
}

func (db *DB) context() context.Context {
	if db.ctx != nil {
		return db.ctx
	}
	return context.Background()
}

// Begin starts a transaction on the underlying pool.
func (db *DB) Begin(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := db.sqlx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, WrapError(err, "beginning transaction")
	}
	return tx, nil
}

// RawExecute runs a write statement outside the builder, with the same
// logging, tracing and statement caching as built queries.
func (db *DB) RawExecute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return db.runExec(ctx, "", query, args)
}

// DriverName reports the driver the connection was opened with.
func (db *DB) DriverName() string {
	return db.driverName
}

// Handle exposes the underlying sqlx handle for operations the builder
// does not cover.
func (db *DB) Handle() *sqlx.DB {
	return db.sqlx
}

// LastQuery returns the bound text of the most recent logged query. The
// second return is false when logging is off or nothing ran yet.
func (db *DB) LastQuery() (string, bool) {
	return db.queryLog.Last()
}

// QueryLog returns the bound text of every logged query, oldest first.
func (db *DB) QueryLog() []string {
	return db.queryLog.All()
}

// ClearQueryLog discards the connection's accumulated query log.
func (db *DB) ClearQueryLog() {
	db.queryLog.Reset()
}

// ClearCache drops every cached query result on this connection.
func (db *DB) ClearCache() {
	db.queryStore().Clear()
}

// StmtCacheStats reports hit and miss counters for the prepared
// statement cache.
func (db *DB) StmtCacheStats() CacheStats {
	return db.stmtCache.Stats()
}

// Healthy reports whether the connection can reach the database. With a
// background checker running it returns the latest probe result;
// otherwise it pings synchronously.
func (db *DB) Healthy() bool {
	if db.health != nil {
		return db.health.isHealthy()
	}
	return db.sqlx.Ping() == nil
}

// Close shuts down the health checker, releases cached statements and
// closes the underlying pool.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	db.stmtCache.Clear()
	return db.sqlx.Close()
}

func (db *DB) quoteChar() string {
	if db.config.QuoteChar != "" {
		return db.config.QuoteChar
	}
	return db.dialect.QuoteChar
}

func (db *DB) quote(identifier string) string {
	return dialects.QuoteIdentifier(db.quoteChar(), identifier)
}

func (db *DB) limitStyle() LimitStyle {
	if db.config.LimitStyle != LimitStyleAuto {
		return db.config.LimitStyle
	}
	if db.dialect.TopNLimit {
		return LimitTopN
	}
	return LimitSuffix
}

func (db *DB) queryStore() cache.Store {
	if db.config.CacheStore != nil {
		return db.config.CacheStore
	}
	return db.queryCache
}
