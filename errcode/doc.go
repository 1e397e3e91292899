// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package errcode defines the error taxonomy shared by every fallible
// operation in the communicator library.
//
// Every error that crosses a package boundary is (or wraps) an [*Error]
// carrying a stable [Code] plus a human-readable message. Errors raised
// by the remote chat service additionally carry the server's own error
// identifier (e.g., "api.user.login.invalid_credentials"), the request
// ID echoed in the response headers, and the HTTP status. These are
// useful for diagnostics; none of them is required for control flow.
//
// Callers branch on codes, not on message text:
//
//	if errcode.CodeOf(err) == errcode.NotFound { ... }
//
// or extract the structured error with errors.As:
//
//	var commErr *errcode.Error
//	if errors.As(err, &commErr) { ... }
//
// [CodeOf] walks wrapped error chains, so intermediate layers are free
// to add context with fmt.Errorf("...: %w", err) without losing the code.
package errcode
