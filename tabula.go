// Package tabula provides a fluent SQL query builder and record mapper for Go
// with support for PostgreSQL, MySQL, SQLite, SQL Server and Firebird. Queries
// are built through chained calls on a Record bound to a table, rows hydrate
// back into Records with dirty-field change tracking, and each connection
// carries its own query cache, query log, prepared statement cache and
// OpenTelemetry tracing.
package tabula

import (
	"github.com/coregx/tabula/internal/core"
)

type (
	// DB represents one named database connection with its dialect,
	// configuration, caches and query log.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// Record is the fluent query builder and hydrated-row object.
	Record = core.Record
	// ResultSet is an ordered collection of Records with bulk accessors.
	ResultSet = core.ResultSet
	// Registry maps connection names to DB handles.
	Registry = core.Registry
	// Config holds one connection's settings.
	Config = core.Config
	// LimitStyle selects how a row limit is rendered.
	LimitStyle = core.LimitStyle
	// QueryLogger receives each logged query's bound text and elapsed time.
	QueryLogger = core.QueryLogger
	// Expr marks a string as raw SQL to be inlined rather than bound.
	Expr = core.Expr

	// Logger is the structured logging interface accepted by WithLogger.
	Logger = core.Logger
	// Tracer is the tracing interface accepted by WithTracer.
	Tracer = core.Tracer
	// CacheStore is a pluggable query result store.
	CacheStore = core.CacheStore
	// CacheKeyFunc derives cache keys from a query and its parameters.
	CacheKeyFunc = core.CacheKeyFunc
	// CacheStats reports prepared statement cache counters.
	CacheStats = core.CacheStats
)

const (
	// DefaultConnection is the registry name used when none is given.
	DefaultConnection = core.DefaultConnection

	// LimitStyleAuto resolves the limit style from the connection's dialect.
	LimitStyleAuto = core.LimitStyleAuto
	// LimitSuffix renders row limits as a trailing LIMIT (or ROWS) clause.
	LimitSuffix = core.LimitSuffix
	// LimitTopN renders row limits as a leading SELECT TOP n.
	LimitTopN = core.LimitTopN
)

// Predefined errors. They wrap through errors.Is, so callers can test a
// failure's kind regardless of added context.
var (
	ErrNotFound      = core.ErrNotFound
	ErrMissingID     = core.ErrMissingID
	ErrNoConnection  = core.ErrNoConnection
	ErrUnknownOption = core.ErrUnknownOption
	ErrOptionValue   = core.ErrOptionValue
	ErrNoTable       = core.ErrNoTable
)

// Re-export core functions.
var (
	Open        = core.Open
	WrapDB      = core.WrapDB
	NewRegistry = core.NewRegistry

	WithMaxOpenConns      = core.WithMaxOpenConns
	WithMaxIdleConns      = core.WithMaxIdleConns
	WithConnMaxLifetime   = core.WithConnMaxLifetime
	WithStmtCacheCapacity = core.WithStmtCacheCapacity
	WithLogger            = core.WithLogger
	WithTracer            = core.WithTracer
	WithHealthCheck       = core.WithHealthCheck

	NewSlogLogger = core.NewSlogLogger
	NewOtelTracer = core.NewOtelTracer

	// Default registry convenience functions. SetDB a connection once,
	// then build queries anywhere with ForTable.
	SetDB           = core.SetDB
	GetDB           = core.GetDB
	ResetDB         = core.ResetDB
	Reset           = core.Reset
	ConnectionNames = core.ConnectionNames
	ForTable        = core.ForTable
	Configure       = core.Configure
	ConfigureMap    = core.ConfigureMap
	LastQuery       = core.LastQuery
	QueryLog        = core.QueryLog
	ClearCache      = core.ClearCache
	RawExecute      = core.RawExecute
)
