// Package validate normalizes and checks user-supplied form fields.
package validate

import "fmt"

// ValidationError reports input that is malformed or out of policy.
// Code is a stable snake_case identifier; Reason is meant for humans.
type ValidationError struct {
	Field  string
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Errorf builds a ValidationError with a formatted reason.
func Errorf(field, code, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Reason: fmt.Sprintf(format, args...)}
}
