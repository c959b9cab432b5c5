// Package normalize provides canonical forms for user-entered identity fields.
package normalize

import "strings"

// Email trims whitespace and lowercases. Emails are compared and stored in
// this form so the unique index behaves case-insensitively.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
