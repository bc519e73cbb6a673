package dialects

import "github.com/jmoiron/sqlx"

var standard = &Dialect{
	Name:          "standard",
	QuoteChar:     "`",
	LimitKeyword:  "LIMIT",
	OffsetKeyword: "OFFSET",
	BindType:      sqlx.QUESTION,
}

// Standard returns the fallback dialect used for unregistered drivers.
func Standard() *Dialect {
	return standard
}
