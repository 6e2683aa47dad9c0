package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is wrapped by every FieldError.
var ErrInvalidFilter = errors.New("filter: invalid filter")

// FieldError describes a recognised filter field that failed its domain check.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("filter: %s %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidFilter.
func (e *FieldError) Unwrap() error {
	return ErrInvalidFilter
}
