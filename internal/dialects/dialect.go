// Package dialects describes driver-specific SQL rendering: identifier
// quoting, row-limit style, placeholder binding, and generated-key retrieval.
package dialects

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect describes how one driver family renders SQL. Queries are always
// compiled against canonical ? placeholders; Rebind converts them to the
// driver's bind var form at execution time.
type Dialect struct {
	// Name is the driver name the dialect was registered under.
	Name string

	// QuoteChar wraps identifiers; an embedded occurrence is doubled.
	QuoteChar string

	// TopNLimit renders row limits as SELECT TOP n instead of a trailing
	// LIMIT clause.
	TopNLimit bool

	// LimitKeyword introduces the row limit ("LIMIT", Firebird "ROWS").
	LimitKeyword string

	// OffsetKeyword introduces the offset ("OFFSET", Firebird "TO").
	OffsetKeyword string

	// InsertReturning appends RETURNING <id columns> to INSERT statements
	// and reads generated keys from the returned row.
	InsertReturning bool

	// BindType is the sqlx bind var style used by Rebind.
	BindType int
}

// QuoteIdentifier quotes an identifier using the dialect's quote character.
func (d *Dialect) QuoteIdentifier(s string) string {
	return QuoteIdentifier(d.QuoteChar, s)
}

// Rebind converts canonical ? placeholders to the driver's bind var form.
// Question-style drivers get the query back unchanged.
func (d *Dialect) Rebind(query string) string {
	if d.BindType == sqlx.QUESTION || d.BindType == sqlx.UNKNOWN {
		return query
	}
	return sqlx.Rebind(d.BindType, query)
}

// QuoteIdentifier quotes a possibly dotted identifier with ch. Each dotted
// part is quoted on its own so "t.col" becomes `t`.`col`; a * part passes
// through unquoted.
func QuoteIdentifier(ch, s string) string {
	if !strings.Contains(s, ".") {
		return quotePart(ch, s)
	}
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = quotePart(ch, p)
	}
	return strings.Join(parts, ".")
}

// QuoteIdentifiers quotes each identifier and joins them with ", ".
func QuoteIdentifiers(ch string, ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = QuoteIdentifier(ch, id)
	}
	return strings.Join(quoted, ", ")
}

func quotePart(ch, part string) string {
	if part == "*" {
		return part
	}
	return ch + strings.ReplaceAll(part, ch, ch+ch) + ch
}

var dialects = make(map[string]*Dialect)

// RegisterDialect registers a dialect by driver name.
func RegisterDialect(name string, d *Dialect) {
	dialects[name] = d
}

// GetDialect retrieves the dialect registered for a driver name. Unknown
// drivers fall back to the standard dialect rather than failing: backtick
// quoting with a plain LIMIT/OFFSET suffix covers most engines.
func GetDialect(name string) *Dialect {
	if d, ok := dialects[name]; ok {
		return d
	}
	return standard
}

func bindTypeFor(driver string) int {
	if bt := sqlx.BindType(driver); bt != sqlx.UNKNOWN {
		return bt
	}
	return sqlx.QUESTION
}
