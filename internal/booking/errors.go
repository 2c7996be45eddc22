package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the acting role may not perform the
	// requested lifecycle operation.
	ErrUnauthorized = errors.New("booking: unauthorized")
	// ErrInvalidTransition is returned when the booking is not in a state
	// the requested transition starts from. Re-approving a confirmed
	// booking fails with this error rather than silently re-confirming.
	ErrInvalidTransition = errors.New("booking: invalid status transition")
)

// ValidationError carries field-level validation issues the API surfaces to
// the form that submitted them.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) hasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}
