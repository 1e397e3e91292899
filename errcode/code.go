// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package errcode

// Code classifies an error for callers that branch on failure kind
// rather than message text. The numeric values are part of the
// library's stable surface (they are reported verbatim across the
// boundary layer) and must not be reordered.
type Code int32

const (
	// Success means no error. It is never carried by an *Error; it is
	// the value an error channel reports when nothing is pending.
	Success Code = 0

	// Unknown is the escape hatch for failures that fit no other code.
	Unknown Code = 1

	// InvalidArgument means the caller supplied a value that fails
	// validation (empty required field, both or neither credential
	// form, malformed payload).
	InvalidArgument Code = 2

	// NullPointer means a required handle or reference was absent
	// entirely (as opposed to present but in the wrong state).
	NullPointer Code = 3

	// OutOfMemory means an allocation failed. Rare in practice; kept
	// for boundary-contract completeness.
	OutOfMemory Code = 4

	// InvalidUtf8 means text crossing the boundary was not valid UTF-8.
	InvalidUtf8 Code = 5

	// Network means a transport-level failure: connection refused,
	// reset, DNS failure, unexpected 5xx from the server.
	Network Code = 6

	// AuthFailed means credentials were rejected or a session token is
	// no longer valid.
	AuthFailed Code = 7

	// NotFound means the named resource does not exist.
	NotFound Code = 8

	// PermissionDenied means the authenticated user may not perform
	// the operation.
	PermissionDenied Code = 9

	// Timeout means the operation exceeded its deadline.
	Timeout Code = 10

	// InvalidState means the object exists but its lifecycle phase
	// forbids the call (e.g., connect while already connected, poll on
	// a destroyed handle).
	InvalidState Code = 11

	// Unsupported means the platform does not implement the requested
	// capability.
	Unsupported Code = 12

	// RateLimited means the server throttled the request.
	RateLimited Code = 13
)

// String returns the short human-readable name for the code.
func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case Unknown:
		return "unknown error"
	case InvalidArgument:
		return "invalid argument"
	case NullPointer:
		return "null pointer"
	case OutOfMemory:
		return "out of memory"
	case InvalidUtf8:
		return "invalid UTF-8"
	case Network:
		return "network error"
	case AuthFailed:
		return "authentication failed"
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case Timeout:
		return "timeout"
	case InvalidState:
		return "invalid state"
	case Unsupported:
		return "unsupported"
	case RateLimited:
		return "rate limited"
	default:
		return "unknown error"
	}
}
