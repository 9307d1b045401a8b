// Package errors provides structured error types for mediatopo.
//
// Errors carry a machine-readable [Code] so the CLI and the HTTP server can
// tell an unreachable media device from a broken renderer without string
// matching.
//
// # Error Codes
//
//   - INVALID_*: bad flags, config or requested formats
//   - UPSTREAM_UNAVAILABLE: the topology dump could not be obtained
//   - RENDER_FAILED / RENDERER_MISSING: the layout engine failed or is absent
//   - FILE_NOT_FOUND, INTERNAL_ERROR
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeUpstreamUnavailable, cause, "media-ctl -d %s", dev)
//	if errors.Is(err, errors.ErrCodeUpstreamUnavailable) {
//	    // no topology to parse
//	}
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
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidEngine Code = "INVALID_ENGINE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeDeviceNotFound Code = "DEVICE_NOT_FOUND"

	// Collaborator errors
	ErrCodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	ErrCodeRenderFailed        Code = "RENDER_FAILED"
	ErrCodeRendererMissing     Code = "RENDERER_MISSING"
	ErrCodeTimeout             Code = "TIMEOUT"

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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the server responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidEngine, ErrCodeInvalidPath:
		return 400
	case ErrCodeFileNotFound, ErrCodeDeviceNotFound:
		return 404
	case ErrCodeUpstreamUnavailable, ErrCodeRendererMissing:
		return 503
	case ErrCodeTimeout:
		return 504
	case ErrCodeRenderFailed:
		return 502
	default:
		return 500
	}
}
