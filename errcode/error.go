// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package errcode

import (
	"errors"
	"fmt"
)

// Error is the structured error type for all communicator failures.
// Callers can use errors.As to extract the structured information:
//
//	var commErr *errcode.Error
//	if errors.As(err, &commErr) {
//	    if commErr.Code == errcode.AuthFailed { ... }
//	}
type Error struct {
	// Code classifies the failure.
	Code Code

	// Message is the human-readable description.
	Message string

	// ServerErrorID is the chat server's own error identifier
	// (e.g., "api.user.login.invalid_credentials"), when the error
	// originated from an API response. Empty otherwise.
	ServerErrorID string

	// RequestID is the request ID from the server's response headers,
	// for correlating with server-side logs. Empty when unavailable.
	RequestID string

	// HTTPStatus is the HTTP status code of the failing response, or
	// zero when the error did not come from an HTTP exchange.
	HTTPStatus int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, walking wrapped chains. A nil
// error maps to Success; an error with no *Error in its chain maps to
// Unknown.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var commErr *Error
	if errors.As(err, &commErr) {
		return commErr.Code
	}
	return Unknown
}

// Is reports whether err carries the given code. Shorthand for
// CodeOf(err) == code that reads well in call sites and tests.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
