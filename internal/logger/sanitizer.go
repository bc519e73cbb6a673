package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// Sanitizer masks sensitive values in query parameters so secrets never
// reach structured logs. Detection is by column-name patterns in the SQL
// text: coarse on purpose, since a false positive only hides a value from a
// log while a false negative leaks one.
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
	patterns        []*regexp.Regexp
}

// NewSanitizer creates a sanitizer for the given sensitive field names.
// With no fields a default set of common secret-bearing column names is
// used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(field) + `\b`)
		patterns = append(patterns, pattern)
	}

	return &Sanitizer{
		sensitiveFields: sensitiveFields,
		maskValue:       "***REDACTED***",
		patterns:        patterns,
	}
}

// MaskParams returns params with every value masked when the SQL text
// mentions a sensitive field. The original slice is not modified.
func (s *Sanitizer) MaskParams(sql string, params []any) []any {
	if len(params) == 0 {
		return params
	}

	if !s.containsSensitivePattern(strings.ToLower(sql)) {
		return params
	}

	masked := make([]any, len(params))
	for i := range params {
		masked[i] = s.maskValue
	}
	return masked
}

// containsSensitivePattern checks if SQL mentions any sensitive field.
func (s *Sanitizer) containsSensitivePattern(sql string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(sql) {
			return true
		}
	}
	return false
}

// FormatParams converts parameters to a compact string for logging. Mask
// sensitive values with MaskParams first.
func (s *Sanitizer) FormatParams(params []any) string {
	if len(params) == 0 {
		return "[]"
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = s.formatValue(p)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// formatValue formats a single parameter, truncating very long values to
// keep log lines readable.
func (s *Sanitizer) formatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
