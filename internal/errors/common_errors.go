package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

// ErrTypeRender marks a chart, workbook or PDF that could not be produced
const ErrTypeRender ErrorType = "RENDER"

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewRenderError creates a chart or document rendering error
func NewRenderError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeRender,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}
