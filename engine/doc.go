// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine is the boundary surface of the communicator library:
// handle-based object identity, per-caller error reporting, and the
// process lifecycle that host environments drive.
//
// An Engine hands out opaque handles for Contexts and Platforms
// instead of pointers, so a host that holds a handle after destroying
// the object gets a detectable error rather than a dangling reference.
// A Caller is the per-execution-context error channel: each calling
// goroutine keeps its own, and fallible operations record their
// outcome there without clobbering other callers.
package engine
