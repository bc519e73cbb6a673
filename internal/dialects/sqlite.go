package dialects

func init() {
	for _, name := range []string{"sqlite", "sqlite3"} {
		RegisterDialect(name, &Dialect{
			Name:          name,
			QuoteChar:     "`",
			LimitKeyword:  "LIMIT",
			OffsetKeyword: "OFFSET",
			BindType:      bindTypeFor(name),
		})
	}
}
