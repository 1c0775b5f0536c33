// Package quoting provides SQL quoting helpers for rendered output.
package quoting

import "strings"

// DoubleQuote quotes an identifier with double quotes, doubling any internal
// double quotes.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EscapeString escapes a string literal body by doubling single quotes, the
// standard SQL escape. Used when dumping rows as INSERT statements.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
