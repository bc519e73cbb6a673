package dialects

// The TDS family quotes with double quotes and renders row limits as
// SELECT TOP n. Sybase shares the quoting but keeps the LIMIT suffix form.
func init() {
	for _, name := range []string{"sqlserver", "mssql", "dblib", "azuresql"} {
		RegisterDialect(name, &Dialect{
			Name:          name,
			QuoteChar:     `"`,
			TopNLimit:     true,
			LimitKeyword:  "LIMIT",
			OffsetKeyword: "OFFSET",
			BindType:      bindTypeFor(name),
		})
	}
	RegisterDialect("sybase", &Dialect{
		Name:          "sybase",
		QuoteChar:     `"`,
		LimitKeyword:  "LIMIT",
		OffsetKeyword: "OFFSET",
		BindType:      bindTypeFor("sybase"),
	})
}
