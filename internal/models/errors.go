package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every schema check failure.
	ErrValidation = errors.New("validation error")
	// ErrInvalidStatusTransition is returned when a status would move backwards.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// FieldError describes why a single field failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func fieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// NewFieldError reports an invalid input field.
func NewFieldError(field, message string) error {
	return fieldError(field, message)
}
