// Package mcperrors defines the structured error model shared by all
// analysis operations. Errors are reported to the orchestrator as data,
// never raised across the MCP boundary, so every error carries a code the
// caller can branch on and a suggestion it can relay to the end user.
package mcperrors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCategory classifies the type of error
type ErrorCategory string

const (
	// ClientError indicates the error was caused by the caller's input
	ClientError ErrorCategory = "CLIENT_ERROR"
	// ServerError indicates an internal failure
	ServerError ErrorCategory = "SERVER_ERROR"
	// ExternalError indicates a failure in an external resource (catalog, data file)
	ExternalError ErrorCategory = "EXTERNAL_ERROR"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Client errors
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	CodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// Server errors
	CodeInternalError ErrorCode = "INTERNAL_ERROR"

	// External errors
	CodeConfigError ErrorCode = "CONFIG_ERROR"
	CodeParseError  ErrorCode = "PARSE_ERROR"
)

// StructuredError represents a detailed error with category, code, and recovery suggestion
type StructuredError struct {
	Code       ErrorCode     `json:"code"`
	Category   ErrorCategory `json:"category"`
	Message    string        `json:"message"`
	Details    interface{}   `json:"details,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// ToJSON converts the error to JSON string
func (e *StructuredError) ToJSON() string {
	bytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"code":"%s","category":"%s","message":"%s"}`, e.Code, e.Category, e.Message)
	}
	return string(bytes)
}

// New creates a new structured error
func New(code ErrorCode, category ErrorCategory, message string) *StructuredError {
	return &StructuredError{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// WithDetails adds details to the error
func (e *StructuredError) WithDetails(details interface{}) *StructuredError {
	e.Details = details
	return e
}

// WithSuggestion adds a recovery suggestion to the error
func (e *StructuredError) WithSuggestion(suggestion string) *StructuredError {
	e.Suggestion = suggestion
	return e
}

// Common error constructors

// NewInvalidInput creates a validation error for malformed or out-of-range input
func NewInvalidInput(message string) *StructuredError {
	return New(CodeInvalidInput, ClientError, message).
		WithSuggestion("Correct the input values and try again")
}

// NewInvalidInputf creates a validation error with a formatted message
func NewInvalidInputf(format string, args ...interface{}) *StructuredError {
	return NewInvalidInput(fmt.Sprintf(format, args...))
}

// NewMissingParameter creates a missing parameter error
func NewMissingParameter(param string) *StructuredError {
	return New(CodeMissingParameter, ClientError, fmt.Sprintf("Required parameter '%s' is missing", param)).
		WithSuggestion(fmt.Sprintf("Provide the '%s' parameter", param))
}

// NewNotFound creates a not-found error for a referenced identifier
func NewNotFound(resourceType, id string) *StructuredError {
	return New(CodeResourceNotFound, ClientError, fmt.Sprintf("%s with ID '%s' not found", resourceType, id)).
		WithSuggestion("Verify the ID and try again")
}

// NewConfigError creates an error for a missing or malformed external resource
func NewConfigError(message string) *StructuredError {
	return New(CodeConfigError, ExternalError, message).
		WithSuggestion("Check the resource path and file contents")
}

// NewParseError creates an error for unparsable file or timestamp data
func NewParseError(message string) *StructuredError {
	return New(CodeParseError, ClientError, message).
		WithSuggestion("Check the data format and column mapping")
}

// NewParseErrorf creates a parse error with a formatted message
func NewParseErrorf(format string, args ...interface{}) *StructuredError {
	return NewParseError(fmt.Sprintf(format, args...))
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *StructuredError {
	return New(CodeInternalError, ServerError, message).
		WithSuggestion("Try again or report the issue if it persists")
}

// CodeOf returns the structured code of err, or CodeInternalError for
// unclassified errors.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternalError
}

// IsValidation reports whether err is a caller-correctable input error.
func IsValidation(err error) bool {
	c := CodeOf(err)
	return c == CodeInvalidInput || c == CodeMissingParameter
}

// IsNotFound reports whether err refers to a missing identifier.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeResourceNotFound
}
