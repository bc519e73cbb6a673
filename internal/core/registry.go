package core

import (
	"database/sql"
	"sort"
	"sync"

	"github.com/coregx/tabula/internal/querylog"
)

// DefaultConnection is the registry name used when none is given.
const DefaultConnection = "default"

// Registry holds named connections so callers can address databases by
// name instead of threading *DB values around. The zero-argument form of
// every method targets DefaultConnection.
type Registry struct {
	mu   sync.RWMutex
	dbs  map[string]*DB
	last *querylog.LastPointer
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		dbs:  make(map[string]*DB),
		last: querylog.NewLastPointer(),
	}
}

func connectionName(name []string) string {
	if len(name) == 0 {
		return DefaultConnection
	}
	return name[0]
}

// SetDB registers a connection under the given name, replacing any
// previous one without closing it. Registered connections share the
// registry's last-query pointer so LastQuery spans all of them.
func (r *Registry) SetDB(db *DB, name ...string) {
	n := connectionName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if db != nil {
		db.last = r.last
	}
	r.dbs[n] = db
}

// GetDB returns the connection registered under the given name.
func (r *Registry) GetDB(name ...string) (*DB, error) {
	n := connectionName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.dbs[n]
	if !ok || db == nil {
		return nil, WrapError(ErrNoConnection, n)
	}
	return db, nil
}

// ResetDB forgets the named connection. The underlying pool stays open;
// closing it remains the caller's job.
func (r *Registry) ResetDB(name ...string) {
	n := connectionName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.dbs, n)
}

// Reset forgets every registered connection without closing any of them.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dbs = make(map[string]*DB)
}

// ConnectionNames lists the registered connection names in sorted order.
func (r *Registry) ConnectionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.dbs))
	for n := range r.dbs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ForTable starts building a query against a table on the named
// connection.
func (r *Registry) ForTable(table string, name ...string) (*Record, error) {
	db, err := r.GetDB(name...)
	if err != nil {
		return nil, err
	}
	return db.Table(table), nil
}

// Configure sets a configuration option on the named connection.
func (r *Registry) Configure(key string, value any, name ...string) error {
	db, err := r.GetDB(name...)
	if err != nil {
		return err
	}
	return db.Configure(key, value)
}

// ConfigureMap applies several options to the named connection.
func (r *Registry) ConfigureMap(values map[string]any, name ...string) error {
	db, err := r.GetDB(name...)
	if err != nil {
		return err
	}
	return db.ConfigureMap(values)
}

// LastQuery returns the bound text of the most recent logged query on
// any connection in this registry.
func (r *Registry) LastQuery() (string, bool) {
	return r.last.Get()
}

// QueryLog returns the named connection's query log, oldest first.
func (r *Registry) QueryLog(name ...string) ([]string, error) {
	db, err := r.GetDB(name...)
	if err != nil {
		return nil, err
	}
	return db.QueryLog(), nil
}

// ClearCache drops the cached query results of the named connection.
func (r *Registry) ClearCache(name ...string) error {
	db, err := r.GetDB(name...)
	if err != nil {
		return err
	}
	db.ClearCache()
	return nil
}

// RawExecute runs a write statement on the named connection.
func (r *Registry) RawExecute(query string, args []any, name ...string) (sql.Result, error) {
	db, err := r.GetDB(name...)
	if err != nil {
		return nil, err
	}
	return db.RawExecute(db.context(), query, args...)
}

// defaultRegistry backs the package-level convenience functions.
var defaultRegistry = NewRegistry()

// SetDB registers a connection in the default registry.
func SetDB(db *DB, name ...string) { defaultRegistry.SetDB(db, name...) }

// GetDB fetches a connection from the default registry.
func GetDB(name ...string) (*DB, error) { return defaultRegistry.GetDB(name...) }

// ResetDB forgets a connection in the default registry without closing it.
func ResetDB(name ...string) { defaultRegistry.ResetDB(name...) }

// Reset forgets every connection in the default registry.
func Reset() { defaultRegistry.Reset() }

// ConnectionNames lists the default registry's connections.
func ConnectionNames() []string { return defaultRegistry.ConnectionNames() }

// ForTable starts a query against a table on a default-registry connection.
func ForTable(table string, name ...string) (*Record, error) {
	return defaultRegistry.ForTable(table, name...)
}

// Configure sets an option on a default-registry connection.
func Configure(key string, value any, name ...string) error {
	return defaultRegistry.Configure(key, value, name...)
}

// ConfigureMap applies several options to a default-registry connection.
func ConfigureMap(values map[string]any, name ...string) error {
	return defaultRegistry.ConfigureMap(values, name...)
}

// LastQuery returns the most recent logged query across the default
// registry's connections.
func LastQuery() (string, bool) { return defaultRegistry.LastQuery() }

// QueryLog returns a default-registry connection's query log.
func QueryLog(name ...string) ([]string, error) { return defaultRegistry.QueryLog(name...) }

// ClearCache drops a default-registry connection's cached query results.
func ClearCache(name ...string) error { return defaultRegistry.ClearCache(name...) }

// RawExecute runs a write statement on a default-registry connection.
func RawExecute(query string, args []any, name ...string) (sql.Result, error) {
	return defaultRegistry.RawExecute(query, args, name...)
}
