package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/coregx/tabula/internal/cache"
)

// LimitStyle selects how a row limit is rendered.
type LimitStyle int

const (
	// LimitStyleAuto resolves the style from the connection's dialect.
	LimitStyleAuto LimitStyle = iota
	// LimitSuffix renders row limits as a trailing LIMIT (or ROWS) clause.
	LimitSuffix
	// LimitTopN renders row limits as a leading SELECT TOP n.
	LimitTopN
)

// QueryLogger receives the bound (placeholder-substituted) text of every
// logged query together with the time the driver round-trip took.
type QueryLogger func(query string, elapsed time.Duration)

// Config holds the per-connection settings of one DB. Every connection
// starts from defaultConfig; fields are mutated through Configure and
// ConfigureMap, never partially missing.
type Config struct {
	// QuoteChar overrides the identifier quote character. Empty means the
	// dialect's character is used.
	QuoteChar string

	// LimitStyle overrides how row limits are rendered. The zero value
	// defers to the dialect.
	LimitStyle LimitStyle

	// IDColumn is the default primary key column name.
	IDColumn string

	// IDColumnOverrides maps table names to their primary key columns.
	// More than one column describes a compound key, in order.
	IDColumnOverrides map[string][]string

	// Logging enables the per-connection query log.
	Logging bool

	// Logger is an optional callback invoked with each logged query.
	Logger QueryLogger

	// Caching caches read results per connection.
	Caching bool

	// CachingAutoClear clears the whole connection cache after every save.
	CachingAutoClear bool

	// CacheStore replaces the built-in in-memory result store.
	CacheStore cache.Store

	// CacheKeyFunc replaces the built-in SHA1 cache key derivation.
	CacheKeyFunc cache.KeyFunc
}

func defaultConfig() *Config {
	return &Config{
		IDColumn: "id",
	}
}

// Configure sets a single named configuration option on this connection.
// The recognized keys are:
//
//	identifier_quote_character  string
//	limit_clause_style          "limit", "top_n", or a LimitStyle value
//	id_column                   string
//	id_column_overrides         map of table to column name or names
//	logging                     bool
//	caching                     bool
//	caching_auto_clear          bool
//	logger                      QueryLogger
//	cache_store                 CacheStore
//	create_cache_key            CacheKeyFunc
//
// Unknown keys return ErrUnknownOption; values of the wrong type return
// ErrOptionValue.
func (db *DB) Configure(key string, value any) error {
	cfg := db.config
	switch key {
	case "identifier_quote_character":
		s, ok := value.(string)
		if !ok {
			return optionValueError(key, value)
		}
		cfg.QuoteChar = s

	case "limit_clause_style":
		switch v := value.(type) {
		case LimitStyle:
			cfg.LimitStyle = v
		case string:
			switch strings.ToLower(v) {
			case "limit":
				cfg.LimitStyle = LimitSuffix
			case "top_n":
				cfg.LimitStyle = LimitTopN
			default:
				return optionValueError(key, value)
			}
		default:
			return optionValueError(key, value)
		}

	case "id_column":
		s, ok := value.(string)
		if !ok || s == "" {
			return optionValueError(key, value)
		}
		cfg.IDColumn = s

	case "id_column_overrides":
		overrides, err := idColumnOverrides(value)
		if err != nil {
			return optionValueError(key, value)
		}
		cfg.IDColumnOverrides = overrides

	case "logging":
		b, ok := value.(bool)
		if !ok {
			return optionValueError(key, value)
		}
		cfg.Logging = b

	case "logger":
		switch v := value.(type) {
		case nil:
			cfg.Logger = nil
		case QueryLogger:
			cfg.Logger = v
		case func(string, time.Duration):
			cfg.Logger = v
		default:
			return optionValueError(key, value)
		}

	case "caching":
		b, ok := value.(bool)
		if !ok {
			return optionValueError(key, value)
		}
		cfg.Caching = b

	case "caching_auto_clear":
		b, ok := value.(bool)
		if !ok {
			return optionValueError(key, value)
		}
		cfg.CachingAutoClear = b

	case "cache_store":
		if value == nil {
			cfg.CacheStore = nil
			break
		}
		s, ok := value.(cache.Store)
		if !ok {
			return optionValueError(key, value)
		}
		cfg.CacheStore = s

	case "create_cache_key":
		switch v := value.(type) {
		case nil:
			cfg.CacheKeyFunc = nil
		case cache.KeyFunc:
			cfg.CacheKeyFunc = v
		case func(string, []any, string) string:
			cfg.CacheKeyFunc = v
		default:
			return optionValueError(key, value)
		}

	default:
		return WrapError(ErrUnknownOption, key)
	}
	return nil
}

// ConfigureMap applies every option in values, in sorted key order so
// failures are deterministic. The first failing option stops the walk.
func (db *DB) ConfigureMap(values map[string]any) error {
	for _, key := range getKeys(values) {
		if err := db.Configure(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// Config returns a copy of the connection's current configuration.
func (db *DB) Config() Config {
	return *db.config
}

// idColumnOverrides normalizes the accepted override shapes to the
// canonical table -> ordered column list form.
func idColumnOverrides(value any) (map[string][]string, error) {
	switch v := value.(type) {
	case map[string][]string:
		return v, nil
	case map[string]string:
		out := make(map[string][]string, len(v))
		for table, col := range v {
			out[table] = []string{col}
		}
		return out, nil
	case map[string]any:
		out := make(map[string][]string, len(v))
		for table, cols := range v {
			switch c := cols.(type) {
			case string:
				out[table] = []string{c}
			case []string:
				out[table] = c
			default:
				return nil, fmt.Errorf("unsupported override for table %q", table)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported overrides type %T", value)
	}
}

func optionValueError(key string, value any) error {
	return WrapError(ErrOptionValue, fmt.Sprintf("%s=%v", key, value))
}
