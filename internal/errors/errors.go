package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindLoad        Kind = "LOAD"
	KindValidation  Kind = "VALIDATION"
	KindUnsupported Kind = "UNSUPPORTED"
	KindConfig      Kind = "CONFIG"
	KindNotFound    Kind = "NOT_FOUND"
)

// ErrUnsupported marks operations that exist in the configuration model but have no implementation.
var ErrUnsupported = errors.New("not supported")

// AppError represents an application-specific error
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new application error
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewLoadError creates a dataset load error
func NewLoadError(message string, cause error) *AppError {
	return New(KindLoad, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return New(KindValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return New(KindConfig, message, cause)
}

// NewUnsupportedError creates an error wrapping ErrUnsupported
func NewUnsupportedError(message string) *AppError {
	return New(KindUnsupported, message, ErrUnsupported)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// KindOf returns the Kind of the first AppError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
