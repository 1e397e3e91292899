// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data:
// session tokens and passwords.
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (no swap), and marks it excluded
// from core dumps via madvise(MADV_DONTDUMP). Close zeroes, unlocks,
// and unmaps the region. Because the memory lives outside the Go heap,
// the garbage collector never copies or relocates it, so the secret
// does not linger in moved heap copies after Close.
package secret

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds sensitive bytes in mmap-backed memory that is locked
// against swapping, excluded from core dumps, and zeroed on Close.
//
// A Buffer must not be copied. After Close, accessors return empty
// values.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewFromBytes copies source into a protected buffer and zeroes the
// caller's slice in place, so the original no longer holds the secret.
// The caller must Close the returned buffer when done.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	data, err := unix.Mmap(-1, 0, len(source), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	copy(data, source)
	Zero(source)

	return &Buffer{data: data}, nil
}

// NewFromString copies s into a protected buffer. The source string
// itself cannot be zeroed (Go strings are immutable); the mmap buffer
// is the durable copy and the string is left to the garbage collector.
func NewFromString(s string) (*Buffer, error) {
	if s == "" {
		return nil, fmt.Errorf("secret: cannot create buffer from empty string")
	}
	// The intermediate []byte copy is zeroed by NewFromBytes.
	return NewFromBytes([]byte(s))
}

// String returns the secret as a heap string. Use only at boundaries
// that require a string (HTTP headers, JSON serialization); the copy
// is ordinary GC-managed memory. Returns "" after Close.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ""
	}
	return string(b.data)
}

// Len returns the secret's length in bytes, or zero after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return len(b.data)
}

// Close zeroes the buffer, unlocks it, and unmaps the region.
// Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)
	if err := unix.Munlock(b.data); err != nil {
		unix.Munmap(b.data)
		b.data = nil
		return fmt.Errorf("secret: munlock failed: %w", err)
	}
	err := unix.Munmap(b.data)
	b.data = nil
	if err != nil {
		return fmt.Errorf("secret: munmap failed: %w", err)
	}
	return nil
}

// Zero overwrites every byte of data with zero.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
