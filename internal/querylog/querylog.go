// Package querylog records a human-readable history of executed statements:
// per-connection bound-query logs and the most recent query across
// connections. Bound text is for reading only and is never executed.
package querylog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Log is one connection's append-only history of bound queries.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// New creates an empty query log.
func New() *Log {
	return &Log{}
}

// Record binds params into query for readability, appends the result, and
// returns it. Queries with no positional params are recorded verbatim;
// named-parameter queries must be recorded with nil params since positional
// substitution cannot align with them.
func (l *Log) Record(query string, params []any) string {
	bound := BindQuery(query, params)

	l.mu.Lock()
	l.entries = append(l.entries, bound)
	l.mu.Unlock()

	return bound
}

// Last returns the most recent entry on this connection.
func (l *Log) Last() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return "", false
	}
	return l.entries[len(l.entries)-1], true
}

// All returns a copy of every recorded entry in execution order.
func (l *Log) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of recorded entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset drops all recorded entries.
func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// LastPointer tracks the most recent bound query across a set of
// connections.
type LastPointer struct {
	mu    sync.Mutex
	query string
	ok    bool
}

// NewLastPointer creates an unset pointer.
func NewLastPointer() *LastPointer {
	return &LastPointer{}
}

// Set records query as the most recent.
func (p *LastPointer) Set(query string) {
	p.mu.Lock()
	p.query = query
	p.ok = true
	p.mu.Unlock()
}

// Get returns the most recent query, if any was recorded.
func (p *LastPointer) Get() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query, p.ok
}

// BindQuery substitutes each ? placeholder outside quoted substrings with
// the rendered literal of the corresponding parameter. A query with no
// params is returned unchanged. Placeholders inside single- or double-quoted
// chunks are left alone; backslash escapes inside quoted chunks are honored.
func BindQuery(query string, params []any) string {
	if len(params) == 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16*len(params))

	next := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(query) {
				i++
				b.WriteByte(query[i])
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == '?' && next < len(params):
			b.WriteString(RenderValue(params[next]))
			next++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// RenderValue renders one parameter the way it would look inlined in SQL:
// strings single-quoted with embedded quotes doubled, nil as NULL, bools as
// TRUE/FALSE, times in datetime form, numbers bare.
func RenderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return quoteLiteral(t)
	case []byte:
		return quoteLiteral(string(t))
	case time.Time:
		return "'" + t.Format("2006-01-02 15:04:05") + "'"
	case fmt.Stringer:
		return quoteLiteral(t.String())
	default:
		return fmt.Sprintf("%v", t)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
