package service

import (
	"fmt"
	"strings"

	"subscription-tracker/internal/repository"
)

var (
	ErrNotFound = repository.ErrNotFound
	ErrConflict = repository.ErrDuplicate
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors collects every problem found in one request.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Err returns nil for an empty list so callers can `return errs.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
