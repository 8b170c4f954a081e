// Package errors provides structured error types for tipscan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Model construction failures carry one of the configuration codes
// ([ErrCodeUnknownSite], [ErrCodeLeadMismatch], [ErrCodeIncompleteModel]).
// Failures returned by a transport solver are wrapped with
// [ErrCodeSolverFailure]; the solver's own error stays reachable through
// Unwrap.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "divisor must be positive, got %g", d)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSolverFailure, origErr, "solve at Vg=%g", vg)
//
// Two *Error values with the same code compare equal under the standard
// library's errors.Is, so package-level sentinels built with [New] match any
// error of their code anywhere in a wrapped or joined chain.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Model construction errors
	ErrCodeUnknownSite     Code = "UNKNOWN_SITE"
	ErrCodeLeadMismatch    Code = "LEAD_MISMATCH"
	ErrCodeIncompleteModel Code = "INCOMPLETE_MODEL"

	// Query errors
	ErrCodeSolverFailure    Code = "SOLVER_FAILURE"
	ErrCodeMissingParameter Code = "MISSING_PARAMETER"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
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

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
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

// Is reports whether err carries the given error code anywhere in its chain,
// including errors combined with errors.Join.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, &Error{Code: code})
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the chain holds no *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
