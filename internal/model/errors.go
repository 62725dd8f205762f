package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Friend errors
	ErrFriendNotFound = errors.New("friend not found")
	ErrEmailExists    = errors.New("email already exists")

	// Position errors
	ErrPositionNotFound = errors.New("position not found")

	// Access errors
	ErrUnauthorized = errors.New("not authorized")
)

// ValidationError reports the first input field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
