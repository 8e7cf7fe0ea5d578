// Package errors provides structured error types for flowatlas.
//
// Error codes let the CLI and the HTTP API report failures consistently:
//   - INVALID_*: input, schema, or configuration problems
//   - *_NOT_FOUND: missing files or resources
//   - NETWORK_* / TIMEOUT: remote dataset fetch failures
//   - INTERNAL_*: unexpected internal errors
//
// Data-quality problems inside a dataset (missing fields, unparseable
// numbers, unknown country names) are not errors. They degrade to "no data"
// in the binner and to zero-valued links in the flow builder.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSchema, "column %q not found", name)
//	if errors.Is(err, errors.ErrCodeInvalidSchema) {
//	    // Handle schema error
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidYear   Code = "INVALID_YEAR"
	ErrCodeInvalidScale  Code = "INVALID_SCALE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values,
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code onto the HTTP status the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSchema, ErrCodeInvalidFormat,
		ErrCodeInvalidYear, ErrCodeInvalidScale, ErrCodeInvalidPath:
		return 400
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return 404
	case ErrCodeUnsupported:
		return 501
	case ErrCodeNetwork, ErrCodeTimeout:
		return 502
	default:
		return 500
	}
}

// Process exit statuses, following the BSD sysexits convention.
const (
	ExitFailure     = 1
	ExitUsage       = 64
	ExitDataErr     = 65
	ExitNoInput     = 66
	ExitUnavailable = 69
	ExitConfig      = 78
)

// ExitCode maps an error onto the status the CLI exits with.
func ExitCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidYear, ErrCodeInvalidScale, ErrCodeInvalidPath:
		return ExitUsage
	case ErrCodeInvalidSchema, ErrCodeInvalidFormat:
		return ExitDataErr
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return ExitNoInput
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeUnsupported:
		return ExitUnavailable
	case ErrCodeInvalidConfig:
		return ExitConfig
	default:
		return ExitFailure
	}
}
