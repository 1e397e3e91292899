// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package handle provides generation-tagged opaque handles for engine
// objects that cross the library boundary by value.
//
// An [Arena] owns a set of slots; [Arena.Insert] stores a value and
// returns a [Handle] encoding the slot index and the slot's current
// generation. [Arena.Remove] invalidates the handle by bumping the
// generation, so any copy of the old handle held by a caller is
// detectably stale: Get and Remove on it fail with
// [errcode.InvalidState] instead of dereferencing freed state. A slot
// is only reissued under a new generation, never under a value any
// outstanding handle could still match.
//
// The zero Handle is the invalid sentinel and always fails with
// [errcode.NullPointer].
//
// Arenas are safe for concurrent use by multiple goroutines.
package handle
