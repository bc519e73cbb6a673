package dialects

// Firebird spells row limits ROWS n and offsets TO n.
func init() {
	for _, name := range []string{"firebird", "firebirdsql"} {
		RegisterDialect(name, &Dialect{
			Name:          name,
			QuoteChar:     `"`,
			LimitKeyword:  "ROWS",
			OffsetKeyword: "TO",
			BindType:      bindTypeFor(name),
		})
	}
}
