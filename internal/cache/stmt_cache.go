// Package cache provides the two per-connection caches: an LRU cache of
// prepared statements and a pluggable store for query results.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
)

// DefaultStmtCacheCapacity is the maximum number of cached prepared
// statements when no capacity is configured.
const DefaultStmtCacheCapacity = 1000

// StmtCache stores prepared statements with LRU eviction.
type StmtCache struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	lruList  *list.List

	// Metrics use atomics for lock-free reads.
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// stmtEntry is a single cached prepared statement keyed by its SQL text.
type stmtEntry struct {
	key  string
	stmt *sqlx.Stmt
}

// NewStmtCache creates a prepared statement cache. Capacities of zero or
// less select DefaultStmtCacheCapacity.
func NewStmtCache(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultStmtCacheCapacity
	}
	return &StmtCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lruList:  list.New(),
	}
}

// Get retrieves a prepared statement by SQL text and marks it most
// recently used.
func (sc *StmtCache) Get(key string) (*sqlx.Stmt, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	elem, exists := sc.items[key]
	if !exists {
		sc.misses.Add(1)
		return nil, false
	}

	sc.lruList.MoveToFront(elem)
	sc.hits.Add(1)

	return elem.Value.(*stmtEntry).stmt, true
}

// Set stores a prepared statement under its SQL text. At capacity the least
// recently used statement is evicted and closed.
func (sc *StmtCache) Set(key string, stmt *sqlx.Stmt) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if elem, exists := sc.items[key]; exists {
		sc.lruList.MoveToFront(elem)
		entry := elem.Value.(*stmtEntry)
		_ = entry.stmt.Close()
		entry.stmt = stmt
		return
	}

	if sc.lruList.Len() >= sc.capacity {
		sc.evictOldest()
	}

	elem := sc.lruList.PushFront(&stmtEntry{key: key, stmt: stmt})
	sc.items[key] = elem
}

// evictOldest removes and closes the least recently used statement.
// Must be called with the lock held.
func (sc *StmtCache) evictOldest() {
	elem := sc.lruList.Back()
	if elem == nil {
		return
	}

	sc.lruList.Remove(elem)
	entry := elem.Value.(*stmtEntry)
	delete(sc.items, entry.key)

	_ = entry.stmt.Close()
	sc.evictions.Add(1)
}

// Clear closes and removes all cached prepared statements.
func (sc *StmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for elem := sc.lruList.Front(); elem != nil; elem = elem.Next() {
		_ = elem.Value.(*stmtEntry).stmt.Close()
	}

	sc.items = make(map[string]*list.Element, sc.capacity)
	sc.lruList.Init()
}

// Stats holds statement cache metrics.
type Stats struct {
	Size      int     // Current number of cached statements.
	Capacity  int     // Maximum capacity.
	Hits      uint64  // Successful lookups.
	Misses    uint64  // Failed lookups.
	Evictions uint64  // Statements closed by LRU eviction.
	HitRate   float64 // Hits / total lookups.
}

// Stats returns a snapshot of the cache metrics.
func (sc *StmtCache) Stats() Stats {
	sc.mu.RLock()
	size := sc.lruList.Len()
	sc.mu.RUnlock()

	hits := sc.hits.Load()
	misses := sc.misses.Load()

	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      size,
		Capacity:  sc.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: sc.evictions.Load(),
		HitRate:   hitRate,
	}
}
