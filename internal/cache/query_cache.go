package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// Store is a pluggable backend for per-connection query result caching.
// Implementations must be safe for concurrent use. Rows handed to Set may be
// returned from Get as-is; the execution engine clones rows at the cache
// boundary.
type Store interface {
	Get(key string) ([]map[string]any, bool)
	Set(key string, rows []map[string]any)
	Clear()
}

// KeyFunc derives a cache key from a compiled query. The table name is
// supplied so custom backends can key by table.
type KeyFunc func(query string, params []any, table string) string

// QueryKey is the default KeyFunc: the SHA1 hex digest of the SQL text
// joined to its comma-separated parameter values.
func QueryKey(query string, params []any, _ string) string {
	var b strings.Builder
	b.WriteString(query)
	b.WriteByte(':')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v", p)
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// MemoryStore is the built-in Store: a mutex-guarded map that lives as long
// as the connection, with no eviction beyond Clear.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string][]map[string]any
}

// NewMemoryStore creates an empty in-memory result store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string][]map[string]any)}
}

// Get returns the rows cached under key.
func (s *MemoryStore) Get(key string) ([]map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.rows[key]
	return rows, ok
}

// Set caches rows under key, replacing any previous entry.
func (s *MemoryStore) Set(key string, rows []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = rows
}

// Clear drops every cached result.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[string][]map[string]any)
}

// CloneRows copies cached rows so callers can mutate hydrated data without
// corrupting the cache.
func CloneRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v
		}
		out[i] = m
	}
	return out
}
