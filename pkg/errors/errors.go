// Package errors provides structured error types for mdmerge.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the merge library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidExportTarget, "unsupported export extension %q", ext)
//	if errors.Is(err, errors.ErrCodeInvalidExportTarget) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "cannot open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// ErrCodeCircularInclude marks a cyclic include target detected on
	// the ancestry chain. Always fatal; aborts the run.
	ErrCodeCircularInclude Code = "CIRCULAR_INCLUDE"

	// ErrCodeFileNotFound marks an input or include target that could
	// not be opened.
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// ErrCodeInvalidExportTarget marks an unrecognized export target or
	// extension, rejected before any scanning begins.
	ErrCodeInvalidExportTarget Code = "INVALID_EXPORT_TARGET"

	// ErrCodeInvalidInput marks bad command-line or configuration input.
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// ErrCodeInvalidPath marks a path that exists but cannot serve its
	// role (not a regular file, missing parent directory).
	ErrCodeInvalidPath Code = "INVALID_PATH"

	// ErrCodeInternal marks unexpected internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
