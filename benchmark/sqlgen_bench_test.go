package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/coregx/tabula/internal/cache"
	"github.com/coregx/tabula/internal/dialects"
	"github.com/coregx/tabula/internal/querylog"
)

// These benchmarks measure SQL text generation, not DB execution: identifier
// quoting, placeholder rebinding, log substitution and cache key derivation.

func BenchmarkQuoteIdentifier(b *testing.B) {
	dialect := dialects.GetDialect("mysql")

	b.Run("Simple", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = dialect.QuoteIdentifier("widget")
		}
	})

	b.Run("Dotted", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = dialect.QuoteIdentifier("main.widget.name")
		}
	})

	b.Run("EmbeddedQuote", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = dialect.QuoteIdentifier("odd`name")
		}
	})

	b.Run("Star", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = dialect.QuoteIdentifier("*")
		}
	})
}

func BenchmarkRebind(b *testing.B) {
	query := "SELECT * FROM widget WHERE a = ? AND b = ? AND c IN (?, ?, ?, ?, ?, ?, ?, ?)"

	b.Run("PostgresDollar", func(b *testing.B) {
		dialect := dialects.GetDialect("postgres")
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = dialect.Rebind(query)
		}
	})

	b.Run("MySQLPassthrough", func(b *testing.B) {
		dialect := dialects.GetDialect("mysql")
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = dialect.Rebind(query)
		}
	})
}

func BenchmarkBindQuery(b *testing.B) {
	b.Run("MixedParams", func(b *testing.B) {
		query := "SELECT * FROM widget WHERE name = ? AND age > ? AND active = ?"
		params := []any{"Fred", 20, true}
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = querylog.BindQuery(query, params)
		}
	})

	b.Run("QuotedLiteral", func(b *testing.B) {
		// The ? inside the string literal must survive substitution.
		query := "SELECT * FROM widget WHERE note = 'what?' AND name = ?"
		params := []any{"Fred"}
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = querylog.BindQuery(query, params)
		}
	})

	b.Run("ManyParams", func(b *testing.B) {
		marks := make([]string, 50)
		params := make([]any, 50)
		for i := range params {
			marks[i] = "?"
			params[i] = i
		}
		query := "SELECT * FROM widget WHERE id IN (" + strings.Join(marks, ", ") + ")"
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = querylog.BindQuery(query, params)
		}
	})
}

func BenchmarkQueryKey(b *testing.B) {
	b.Run("ShortQuery", func(b *testing.B) {
		params := []any{5}
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = cache.QueryKey("SELECT * FROM widget WHERE id = ?", params, "widget")
		}
	})

	b.Run("ManyParams", func(b *testing.B) {
		params := make([]any, 100)
		for i := range params {
			params[i] = fmt.Sprintf("value-%d", i)
		}
		query := "SELECT * FROM widget WHERE name IN (" + strings.Repeat("?, ", 99) + "?)"
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = cache.QueryKey(query, params, "widget")
		}
	})
}
