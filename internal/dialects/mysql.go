package dialects

func init() {
	RegisterDialect("mysql", &Dialect{
		Name:          "mysql",
		QuoteChar:     "`",
		LimitKeyword:  "LIMIT",
		OffsetKeyword: "OFFSET",
		BindType:      bindTypeFor("mysql"),
	})
}
