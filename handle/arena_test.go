// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"sync"
	"testing"

	"github.com/bureau-foundation/communicator/errcode"
)

func TestInsertGetRemove(t *testing.T) {
	var arena Arena[string]

	h := arena.Insert("alpha")
	if h.IsNone() {
		t.Fatal("Insert returned the invalid sentinel")
	}

	value, err := arena.Get(h)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "alpha" {
		t.Errorf("Get = %q, want %q", value, "alpha")
	}

	removed, err := arena.Remove(h)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed != "alpha" {
		t.Errorf("Remove = %q, want %q", removed, "alpha")
	}
	if arena.Len() != 0 {
		t.Errorf("Len = %d after removal, want 0", arena.Len())
	}
}

func TestZeroHandleIsNullPointer(t *testing.T) {
	var arena Arena[int]
	if _, err := arena.Get(None); errcode.CodeOf(err) != errcode.NullPointer {
		t.Errorf("Get(None) code = %v, want NullPointer", errcode.CodeOf(err))
	}
	if _, err := arena.Remove(None); errcode.CodeOf(err) != errcode.NullPointer {
		t.Errorf("Remove(None) code = %v, want NullPointer", errcode.CodeOf(err))
	}
}

func TestStaleHandleDetected(t *testing.T) {
	var arena Arena[int]

	h := arena.Insert(7)
	if _, err := arena.Remove(h); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// Every operation on the dead handle must report InvalidState,
	// including a second destroy.
	if _, err := arena.Get(h); errcode.CodeOf(err) != errcode.InvalidState {
		t.Errorf("Get on stale handle code = %v, want InvalidState", errcode.CodeOf(err))
	}
	if _, err := arena.Remove(h); errcode.CodeOf(err) != errcode.InvalidState {
		t.Errorf("second Remove code = %v, want InvalidState", errcode.CodeOf(err))
	}
}

func TestRecycledSlotDoesNotResurrectOldHandle(t *testing.T) {
	var arena Arena[string]

	old := arena.Insert("first")
	if _, err := arena.Remove(old); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// The freed slot is reused, but under a new generation.
	fresh := arena.Insert("second")
	if fresh == old {
		t.Fatal("recycled slot reissued the old handle value")
	}
	if fresh.index() != old.index() {
		t.Fatal("expected the freed slot to be reused")
	}

	if _, err := arena.Get(old); errcode.CodeOf(err) != errcode.InvalidState {
		t.Errorf("old handle after recycle code = %v, want InvalidState", errcode.CodeOf(err))
	}
	value, err := arena.Get(fresh)
	if err != nil {
		t.Fatalf("Get on fresh handle failed: %v", err)
	}
	if value != "second" {
		t.Errorf("Get = %q, want %q", value, "second")
	}
}

func TestNeverIssuedHandle(t *testing.T) {
	var arena Arena[int]
	arena.Insert(1)

	bogus := makeHandle(41, 9)
	if _, err := arena.Get(bogus); errcode.CodeOf(err) != errcode.InvalidState {
		t.Errorf("Get on never-issued handle code = %v, want InvalidState", errcode.CodeOf(err))
	}
}

func TestConcurrentInsertRemove(t *testing.T) {
	var arena Arena[int]
	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h := arena.Insert(i)
				if _, err := arena.Get(h); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
				if _, err := arena.Remove(h); err != nil {
					t.Errorf("Remove failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if arena.Len() != 0 {
		t.Errorf("Len = %d after balanced insert/remove, want 0", arena.Len())
	}
}
