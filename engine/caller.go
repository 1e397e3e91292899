// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"sync"

	"github.com/bureau-foundation/communicator/errcode"
)

// Caller is an execution-context-scoped "last error" slot. Each
// calling goroutine owns one; two goroutines driving different handles
// concurrently never clobber each other's last-reported error. The
// slot holds at most one error: recording a new one replaces any prior
// uncleared one.
type Caller struct {
	mu      sync.Mutex
	code    errcode.Code
	message string
}

// NewCaller returns a Caller with no pending error.
func NewCaller() *Caller {
	return &Caller{code: errcode.Success}
}

// Report records err's code and message in the slot and returns err
// unchanged, so call sites can record and propagate in one expression.
// A nil err is returned as-is without touching the slot.
func (c *Caller) Report(err error) error {
	if err == nil {
		return nil
	}
	c.mu.Lock()
	c.code = errcode.CodeOf(err)
	c.message = err.Error()
	c.mu.Unlock()
	return err
}

// LastErrorCode returns the pending error's code, or Success when none
// is pending.
func (c *Caller) LastErrorCode() errcode.Code {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// LastErrorMessage returns a copy of the pending error's message, or
// "" when none is pending.
func (c *Caller) LastErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Clear resets the slot to the no-error state.
func (c *Caller) Clear() {
	c.mu.Lock()
	c.code = errcode.Success
	c.message = ""
	c.mu.Unlock()
}
