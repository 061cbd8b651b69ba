package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure returned by a store wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	// ErrStoreUnavailable means the store could not be opened or the schema
	// could not be created. Only initialisation returns it, and it is fatal.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrValidation means caller-supplied data was malformed.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateKey means a uniqueness constraint was violated.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound means a referenced identifier does not exist.
	ErrNotFound = errors.New("not found")
)

// FieldError describes one rejected field.
type FieldError struct {
	Field string // json name of the field, e.g. "dob"
	Tag   string // failed rule, e.g. "required", "datetime", "oneof"
	Param string // rule parameter, e.g. "Present Absent"
}

// ValidationError lists every field that failed validation.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", f.Field, f.Tag, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Tag))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
