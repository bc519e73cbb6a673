package dialects

// PostgreSQL reports generated keys through INSERT ... RETURNING rather than
// sql.Result.LastInsertId, so InsertReturning is set for the whole family.
func init() {
	for _, name := range []string{"postgres", "postgresql", "pgsql", "pgx"} {
		RegisterDialect(name, &Dialect{
			Name:            name,
			QuoteChar:       `"`,
			LimitKeyword:    "LIMIT",
			OffsetKeyword:   "OFFSET",
			InsertReturning: true,
			BindType:        bindTypeFor(name),
		})
	}
}
