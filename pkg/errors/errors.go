package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures a deployment document field that failed
// validation. Value holds the offending input when it is worth echoing.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// NewValueError constructs a ValidationError that echoes the rejected value.
func NewValueError(field, message string, value interface{}) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Value != nil {
		msg = fmt.Sprintf("%s, got: %v", msg, e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, msg)
	}
	return fmt.Sprintf("validation error: %s", msg)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
