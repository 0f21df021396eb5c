package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RuleKind is the check a Rule performs.
type RuleKind int

const (
	RuleRequired RuleKind = iota + 1
	RuleEmail
	RuleMinLength
	RuleMaxLength
	RuleMatches
)

// Rule is one validation check on one field.
type Rule struct {
	Kind    RuleKind
	Field   string
	Length  int    // MinLength / MaxLength bound
	Other   string // Matches: the field that must hold the same value
	Message string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required fails on an empty or all-whitespace value.
func Required(field, message string) Rule {
	return Rule{Kind: RuleRequired, Field: field, Message: message}
}

// Email fails on a non-empty value that is not shaped like an address.
func Email(field, message string) Rule {
	if message == "" {
		message = "Please enter a valid email address."
	}
	return Rule{Kind: RuleEmail, Field: field, Message: message}
}

// MinLength fails on a value shorter than n characters.
func MinLength(field, label string, n int) Rule {
	return Rule{
		Kind:    RuleMinLength,
		Field:   field,
		Length:  n,
		Message: fmt.Sprintf("%s must be at least %d characters long", label, n),
	}
}

// MaxLength fails on a value longer than n characters.
func MaxLength(field, label string, n int) Rule {
	return Rule{
		Kind:    RuleMaxLength,
		Field:   field,
		Length:  n,
		Message: fmt.Sprintf("%s must be at most %d characters long", label, n),
	}
}

// Matches fails when field and other differ.
func Matches(field, other, message string) Rule {
	return Rule{Kind: RuleMatches, Field: field, Other: other, Message: message}
}

func (r Rule) check(fields map[string]string) bool {
	v := fields[r.Field]
	switch r.Kind {
	case RuleRequired:
		return strings.TrimSpace(v) != ""
	case RuleEmail:
		return v == "" || emailPattern.MatchString(v)
	case RuleMinLength:
		return utf8.RuneCountInString(v) >= r.Length
	case RuleMaxLength:
		return utf8.RuneCountInString(v) <= r.Length
	case RuleMatches:
		return v == fields[r.Other]
	default:
		return true
	}
}

// Validate runs rules in order. The first failing rule of each field sets
// its message.
func Validate(rules []Rule, fields map[string]string) map[string]string {
	errs := make(map[string]string)
	for _, r := range rules {
		if _, failed := errs[r.Field]; failed {
			continue
		}
		if !r.check(fields) {
			errs[r.Field] = r.Message
		}
	}
	return errs
}
