package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Caller-input faults: never retried, always surfaced as a rejection
	// naming the offending field.
	ErrTypeUnknownTable    ErrorType = "unknown_table"
	ErrTypeInvalidColumn   ErrorType = "invalid_column"
	ErrTypeInvalidFilter   ErrorType = "invalid_filter"
	ErrTypeUnsupportedTool ErrorType = "unsupported_tool"

	// Infrastructure faults.
	ErrTypeDataStoreUnavailable ErrorType = "datastore_unavailable"
	ErrTypeQueryExecution       ErrorType = "query_execution"

	// Ambient faults.
	ErrTypeConfig   ErrorType = "config"
	ErrTypeLLM      ErrorType = "llm"
	ErrTypeInternal ErrorType = "internal"
)

// Error represents a structured error with type and optional suggestions
type Error struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// IsCallerFault reports whether the error is a caller-input fault that must
// not be retried.
func IsCallerFault(err error) bool {
	switch GetType(err) {
	case ErrTypeUnknownTable, ErrTypeInvalidColumn, ErrTypeInvalidFilter, ErrTypeUnsupportedTool:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether the error represents a transient infrastructure
// fault that is safe to retry a bounded number of times.
func IsRetryable(err error) bool {
	return GetType(err) == ErrTypeDataStoreUnavailable
}
