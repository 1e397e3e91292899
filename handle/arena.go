// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"sync"

	"github.com/bureau-foundation/communicator/errcode"
)

// Handle is an opaque reference to a value stored in an Arena. It
// encodes a slot index in the low 32 bits and the slot's generation
// in the high 32 bits. The zero value is the invalid sentinel.
type Handle uint64

// None is the invalid handle. Operations on it fail with
// errcode.NullPointer.
const None Handle = 0

// IsNone reports whether the handle is the invalid sentinel.
func (h Handle) IsNone() bool { return h == None }

func (h Handle) index() uint32      { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

func makeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Arena stores values of type T behind generation-tagged handles.
// The zero value is ready to use.
type Arena[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []uint32
}

type slot[T any] struct {
	// generation starts at 1 (so that the zero Handle can never match
	// a live slot) and is bumped on every Remove.
	generation uint32
	live       bool
	value      T
}

// Insert stores value and returns a handle for it.
func (a *Arena[T]) Insert(value T) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[index]
		s.live = true
		s.value = value
		return makeHandle(index, s.generation)
	}

	a.slots = append(a.slots, slot[T]{generation: 1, live: true, value: value})
	return makeHandle(uint32(len(a.slots)-1), 1)
}

// Get returns the value the handle refers to. A zero handle fails with
// errcode.NullPointer; a stale or never-issued handle fails with
// errcode.InvalidState.
func (a *Arena[T]) Get(h Handle) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Remove invalidates the handle and returns the value it referred to.
// The slot's generation is bumped so every outstanding copy of the
// handle becomes detectably stale; a second Remove on the same value
// reports errcode.InvalidState without touching live state.
func (a *Arena[T]) Remove(h Handle) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}

	value := s.value
	var zero T
	s.value = zero
	s.live = false
	s.generation++
	a.free = append(a.free, h.index())
	return value, nil
}

// Drain removes every live value and returns them. All outstanding
// handles become stale.
func (a *Arena[T]) Drain() []T {
	a.mu.Lock()
	defer a.mu.Unlock()

	var values []T
	for index := range a.slots {
		s := &a.slots[index]
		if !s.live {
			continue
		}
		values = append(values, s.value)
		var zero T
		s.value = zero
		s.live = false
		s.generation++
		a.free = append(a.free, uint32(index))
	}
	return values
}

// Len returns the number of live values in the arena.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots) - len(a.free)
}

// lookup resolves a handle to its slot. Caller holds a.mu.
func (a *Arena[T]) lookup(h Handle) (*slot[T], error) {
	if h == None {
		return nil, errcode.New(errcode.NullPointer, "nil handle")
	}
	index := h.index()
	if int(index) >= len(a.slots) {
		return nil, errcode.New(errcode.InvalidState, "handle was never issued by this arena")
	}
	s := &a.slots[index]
	if !s.live || s.generation != h.generation() {
		return nil, errcode.New(errcode.InvalidState, "handle refers to a destroyed object")
	}
	return s, nil
}
