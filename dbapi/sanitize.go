package dbapi

import "regexp"

// Regex patterns for statement sanitization.
var (
	// stringLiteralRegex matches single-quoted strings, handling escaped quotes.
	stringLiteralRegex = regexp.MustCompile(`'(?:[^'\\]|\\.)*'`)

	// numericLiteralRegex matches numeric literals (integers and floats).
	numericLiteralRegex = regexp.MustCompile(`\b\d+\.?\d*\b`)

	// hexLiteralRegex matches hex literals.
	hexLiteralRegex = regexp.MustCompile(`0[xX][0-9a-fA-F]+`)
)

// DefaultQuerySanitizer is a basic statement sanitizer that replaces
// literal values with placeholders to keep sensitive data out of traces.
//
// What it sanitizes:
//   - String literals: 'john' → '?'
//   - Numeric literals: 123, 45.67 → ?
//   - Hex literals: 0xDEADBEEF → ?
//
// Note: this is a simple regex-based implementation. For production use
// with complex queries, consider using a proper SQL parser.
func DefaultQuerySanitizer(statement string) string {
	statement = stringLiteralRegex.ReplaceAllString(statement, "'?'")
	statement = numericLiteralRegex.ReplaceAllString(statement, "?")
	statement = hexLiteralRegex.ReplaceAllString(statement, "?")
	return statement
}
