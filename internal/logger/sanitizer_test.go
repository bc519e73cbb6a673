package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_MaskParams_DefaultFields(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		params []any
		want   []any
	}{
		{
			name:   "password field",
			sql:    "UPDATE `account` SET `password` = ? WHERE `id` = ?",
			params: []any{"secret123", 1},
			want:   []any{"***REDACTED***", "***REDACTED***"},
		},
		{
			name:   "token field",
			sql:    "INSERT INTO `session` (`account_id`, `token`) VALUES (?, ?)",
			params: []any{123, "abc-xyz-token"},
			want:   []any{"***REDACTED***", "***REDACTED***"},
		},
		{
			name:   "api key field",
			sql:    "SELECT * FROM `integration` WHERE `api_key` = ?",
			params: []any{"sk_test_123456"},
			want:   []any{"***REDACTED***"},
		},
		{
			name:   "no sensitive fields",
			sql:    "SELECT * FROM `widget` WHERE `id` = ? AND `name` = ?",
			params: []any{1, "sprocket"},
			want:   []any{1, "sprocket"},
		},
		{
			name:   "case insensitive",
			sql:    "UPDATE `account` SET PASSWORD = ? WHERE `id` = ?",
			params: []any{"secret", 1},
			want:   []any{"***REDACTED***", "***REDACTED***"},
		},
	}

	sanitizer := NewSanitizer(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizer.MaskParams(tt.sql, tt.params))
		})
	}
}

func TestSanitizer_MaskParams_CustomFields(t *testing.T) {
	sanitizer := NewSanitizer([]string{"secret_key", "private_data"})

	got := sanitizer.MaskParams("UPDATE `config` SET `secret_key` = ? WHERE `id` = ?", []any{"mySecret", 1})
	assert.Equal(t, []any{"***REDACTED***", "***REDACTED***"}, got)

	// Default fields are replaced, not extended.
	got = sanitizer.MaskParams("UPDATE `account` SET `password` = ?", []any{"plain"})
	assert.Equal(t, []any{"plain"}, got)
}

func TestSanitizer_FormatParams(t *testing.T) {
	sanitizer := NewSanitizer(nil)

	tests := []struct {
		name   string
		params []any
		want   string
	}{
		{"empty", []any{}, "[]"},
		{"single", []any{123}, "[123]"},
		{"mixed types", []any{1, "test", nil, true, 3.14}, "[1, test, NULL, true, 3.14]"},
		{
			"long string truncation",
			[]any{strings.Repeat("a", 150)},
			"[" + strings.Repeat("a", 100) + "...]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizer.FormatParams(tt.params))
		})
	}
}

func TestSanitizer_FormatParams_AfterMasking(t *testing.T) {
	sanitizer := NewSanitizer(nil)

	sql := "UPDATE `account` SET `password` = ? WHERE `id` = ?"
	masked := sanitizer.MaskParams(sql, []any{"secretPassword123", 1})
	formatted := sanitizer.FormatParams(masked)

	assert.Equal(t, "[***REDACTED***, ***REDACTED***]", formatted)
	assert.NotContains(t, formatted, "secretPassword123")
}

func BenchmarkSanitizer_MaskParams_NonSensitive(b *testing.B) {
	sanitizer := NewSanitizer(nil)
	sql := "SELECT * FROM `widget` WHERE `id` = ? AND `name` = ?"
	params := []any{123, "sprocket"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sanitizer.MaskParams(sql, params)
	}
}
