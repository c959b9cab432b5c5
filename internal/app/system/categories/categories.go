// Package categories holds the fixed enumeration of volunteering categories
// and the validator applied to every opportunity write.
package categories

// All is the fixed allow-list. Opportunities and volunteer preferences may
// only use these labels.
var All = []string{
	"Education",
	"Environment",
	"Animal Welfare",
	"Community Support",
	"Healthcare",
	"Technology",
	"Arts & Culture",
}

var allowed = func() map[string]struct{} {
	m := make(map[string]struct{}, len(All))
	for _, c := range All {
		m[c] = struct{}{}
	}
	return m
}()

// IsValid reports whether a single label is in the enumeration.
func IsValid(label string) bool {
	_, ok := allowed[label]
	return ok
}

// Invalid returns the labels from candidates that are not in the enumeration,
// in input order. An empty result means every candidate is valid.
func Invalid(candidates []string) []string {
	var bad []string
	for _, c := range candidates {
		if !IsValid(c) {
			bad = append(bad, c)
		}
	}
	return bad
}
