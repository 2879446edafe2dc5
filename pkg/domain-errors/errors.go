// Package domainerrors provides coded errors for the service boundary.
//
// Services wrap sentinel errors (or raw infrastructure errors) with a Code so
// the HTTP layer can map causes to responses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers that need to branch on cause.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeValidation    Code = "validation_error"
	CodeUnauthorized  Code = "unauthorized"
	CodeNotFound      Code = "not_found"
	CodeQuotaExceeded Code = "quota_exceeded"
	CodeConfiguration Code = "configuration_error"
	CodeInternal      Code = "internal_error"
)

// Error carries a code alongside a human-readable message and an optional
// wrapped cause.
type Error struct {
	code    Code
	message string
	cause   error
}

// New constructs a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is / errors.As.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the error's classification.
func (e *Error) Code() Code { return e.code }

// Message returns the human-readable message without the wrapped cause.
func (e *Error) Message() string { return e.message }

// CodeOf extracts the Code from an error chain. Unclassified errors are
// treated as internal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}

// MessageOf extracts the message from the first coded error in the chain.
// Unclassified errors report a generic message so internals never leak.
func MessageOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.message
	}
	return "internal error"
}
