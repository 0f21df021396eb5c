package form

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalizer rewrites a field value before validation and submission.
type Normalizer func(string) string

// Trim removes surrounding whitespace.
func Trim(v string) string {
	return strings.TrimSpace(v)
}

// FoldEmail trims and case folds an email address.
func FoldEmail(v string) string {
	return cases.Fold().String(strings.TrimSpace(v))
}

// FoldIdentifier trims a login identifier and case folds it when it is an
// email address. User IDs keep their case.
func FoldIdentifier(v string) string {
	v = strings.TrimSpace(v)
	if strings.Contains(v, "@") {
		return cases.Fold().String(v)
	}
	return v
}
