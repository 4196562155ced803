// Package calcerr defines the error kinds returned by the calculators.
package calcerr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports an input that breaks a geometric or numeric invariant.
// The caller can retry with corrected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DomainError reports an evaluation that is undefined for the given input,
// such as a ratio against a zero base.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func Undefined(op, format string, args ...any) error {
	return &DomainError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsDomain(err error) bool {
	var d *DomainError
	return errors.As(err, &d)
}

// Status maps a calculator error to the HTTP status the handlers reply with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsDomain(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteHTTP replies with the status for err and its message.
func WriteHTTP(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
