// Package validate provides field-level input validation with errors that
// map directly to form fields, plus input normalization helpers.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Permissive on purpose: the mail server is the final authority, this only
// rejects obviously malformed addresses.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError represents a single validation failure attached to a named field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is a collection of field errors that satisfies the error interface.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns field name to messages, in the shape API handlers expose.
func (e Errors) Fields() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Rule is a validation check returning a zero FieldError when the value passes.
type Rule func() (FieldError, bool)

// Apply runs all rules and returns the accumulated Errors, or nil if every
// rule passed.
func Apply(rules ...Rule) error {
	var errs Errors
	for _, rule := range rules {
		if fe, ok := rule(); !ok {
			errs = append(errs, fe)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Required fails when the trimmed value is empty.
func Required(field, value string) Rule {
	return func() (FieldError, bool) {
		if strings.TrimSpace(value) == "" {
			return FieldError{Field: field, Message: "is required"}, false
		}
		return FieldError{}, true
	}
}

// ValidEmail fails when the value is not a plausible email address.
func ValidEmail(field, value string) Rule {
	return func() (FieldError, bool) {
		if !emailRegex.MatchString(value) {
			return FieldError{Field: field, Message: "must be a valid email address"}, false
		}
		return FieldError{}, true
	}
}

// MinLen fails when the value is shorter than min bytes.
func MinLen(field, value string, min int) Rule {
	return func() (FieldError, bool) {
		if len(value) < min {
			return FieldError{Field: field, Message: fmt.Sprintf("must be at least %d characters", min)}, false
		}
		return FieldError{}, true
	}
}

// MaxLen fails when the value exceeds max bytes. Guards against bcrypt's
// 72-byte input limit among other things.
func MaxLen(field, value string, max int) Rule {
	return func() (FieldError, bool) {
		if len(value) > max {
			return FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}, false
		}
		return FieldError{}, true
	}
}

// NormalizeEmail lowercases and trims an email address. Uniqueness checks and
// lookups must always go through this so the same mailbox cannot register
// twice with different casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
