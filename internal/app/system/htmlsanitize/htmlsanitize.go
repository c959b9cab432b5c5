// Package htmlsanitize strips markup from user-entered text before it is
// echoed into server-rendered pages (opportunity fields, profile names,
// query-string messages).
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// Text removes all HTML elements and attributes, leaving plain text.
func Text(s string) string {
	return strict.Sanitize(s)
}

// Slice applies Text to every element and returns a new slice.
func Slice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Text(s)
	}
	return out
}
