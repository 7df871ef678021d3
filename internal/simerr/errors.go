// Package simerr defines the structured error values surfaced at the
// simulation API boundaries. Internal packages return these instead of
// using panics for control flow.
package simerr

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	// INGEST_ - initial-conditions parsing errors
	ErrIngestOpen         ErrorCode = "INGEST_OPEN_FAILED"
	ErrIngestMissingCount ErrorCode = "INGEST_MISSING_COUNT"
	ErrIngestShortRecord  ErrorCode = "INGEST_SHORT_RECORD"

	// GEOMETRY_ - spatial-decomposition construction faults
	ErrGeometryInteractionTooClose ErrorCode = "GEOMETRY_INTERACTION_TOO_CLOSE"

	// BUILD_ - force-engine construction errors
	ErrBuildEmptyUniverse ErrorCode = "BUILD_EMPTY_UNIVERSE"
	ErrBuildBadParams     ErrorCode = "BUILD_BAD_PARAMS"
)

// Error is a coded error with optional detail fields.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	cause   error
}

// New creates a coded error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error with an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetails attaches detail fields to the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is supports errors.Is matching on the code of a template error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsCode reports whether err is a simerr.Error carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}
