// Package types provides shared type definitions used across screengrab.
package types

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`   // TOML path to the field (e.g., "defaults.audio_channels")
	Message string `json:"message"` // Human-readable error message
	Value   any    `json:"value"`   // The invalid value that was provided
}

// ValidationError collects multiple field validation errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError creates a new empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{
		Errors: make([]FieldError, 0),
	}
}

// Add adds a field error to the collection.
func (v *ValidationError) Add(field, message string, value any) {
	v.Errors = append(v.Errors, FieldError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// HasErrors reports whether any field errors were collected.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// ErrOrNil returns v as an error when it holds field errors, and nil otherwise.
func (v *ValidationError) ErrOrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Error joins the field errors into a single line.
func (v *ValidationError) Error() string {
	parts := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		if e.Field == "" {
			parts[i] = e.Message
			continue
		}
		parts[i] = fmt.Sprintf("%s %s", e.Field, e.Message)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}
