// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bureau-foundation/communicator/errcode"
	"github.com/bureau-foundation/communicator/handle"
	"github.com/bureau-foundation/communicator/platform"
)

func newInitializedEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(nil)
	e.Init()
	t.Cleanup(func() { e.Cleanup(context.Background()) })
	return e
}

func TestInitCleanupRefCounting(t *testing.T) {
	e := New(nil)

	if _, err := e.CreateContext(); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState before init, got %v", err)
	}

	e.Init()
	e.Init()

	h, err := e.CreateContext()
	if err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}

	// First cleanup keeps the engine alive.
	if err := e.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := e.Context(h); err != nil {
		t.Errorf("context destroyed by non-final cleanup: %v", err)
	}

	// Final cleanup tears everything down.
	if err := e.Cleanup(context.Background()); err != nil {
		t.Fatalf("final Cleanup failed: %v", err)
	}
	if _, err := e.Context(h); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected stale handle after final cleanup, got %v", err)
	}

	// Unbalanced cleanup is detected, not a crash.
	if err := e.Cleanup(context.Background()); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState for unbalanced cleanup, got %v", err)
	}
}

func TestVersionNumbers(t *testing.T) {
	e := New(nil)
	major, minor, patch := e.VersionNumbers()
	if want := fmt.Sprintf("%d.%d.%d", major, minor, patch); want != e.Version() {
		t.Errorf("version string %q does not match numbers %q", e.Version(), want)
	}
}

func TestContextHandleLifecycle(t *testing.T) {
	e := newInitializedEngine(t)

	h, err := e.CreateContext()
	if err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	ctx, err := e.Context(h)
	if err != nil {
		t.Fatalf("Context lookup failed: %v", err)
	}
	if ctx.ID() == "" {
		t.Error("context has no ID")
	}

	if err := e.DestroyContext(h); err != nil {
		t.Fatalf("DestroyContext failed: %v", err)
	}
	if _, err := e.Context(h); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState on destroyed handle, got %v", err)
	}
	if err := e.DestroyContext(h); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState on double destroy, got %v", err)
	}
	if _, err := e.Context(handle.None); !errcode.Is(err, errcode.NullPointer) {
		t.Errorf("expected NullPointer on nil handle, got %v", err)
	}
}

func TestPlatformHandleLifecycle(t *testing.T) {
	e := newInitializedEngine(t)

	h, err := e.CreatePlatform(platform.Options{})
	if err != nil {
		t.Fatalf("CreatePlatform failed: %v", err)
	}
	p, err := e.Platform(h)
	if err != nil {
		t.Fatalf("Platform lookup failed: %v", err)
	}
	if p.IsConnected() {
		t.Error("fresh platform reports connected")
	}

	if err := e.DestroyPlatform(context.Background(), h); err != nil {
		t.Fatalf("DestroyPlatform failed: %v", err)
	}
	if _, err := e.Platform(h); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState on destroyed handle, got %v", err)
	}
}

func TestCallerIsolation(t *testing.T) {
	first := NewCaller()
	second := NewCaller()

	if first.LastErrorCode() != errcode.Success {
		t.Errorf("fresh caller has pending error: %v", first.LastErrorCode())
	}

	first.Report(errcode.New(errcode.NotFound, "missing thing"))
	second.Report(errcode.New(errcode.AuthFailed, "bad token"))

	if first.LastErrorCode() != errcode.NotFound {
		t.Errorf("first caller clobbered: %v", first.LastErrorCode())
	}
	if second.LastErrorCode() != errcode.AuthFailed {
		t.Errorf("second caller clobbered: %v", second.LastErrorCode())
	}

	// A new error replaces the prior one.
	first.Report(errcode.New(errcode.Timeout, "too slow"))
	if first.LastErrorCode() != errcode.Timeout {
		t.Errorf("replacement failed: %v", first.LastErrorCode())
	}
	if first.LastErrorMessage() != "timeout: too slow" {
		t.Errorf("unexpected message: %q", first.LastErrorMessage())
	}

	first.Clear()
	if first.LastErrorCode() != errcode.Success || first.LastErrorMessage() != "" {
		t.Error("Clear did not reset the slot")
	}
}

func TestCallerConcurrentUse(t *testing.T) {
	callers := make([]*Caller, 8)
	var wg sync.WaitGroup
	for i := range callers {
		callers[i] = NewCaller()
		wg.Add(1)
		go func(c *Caller, n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Report(errcode.Newf(errcode.Unknown, "caller %d iteration %d", n, j))
				if c.LastErrorCode() != errcode.Unknown {
					t.Errorf("caller %d saw foreign code %v", n, c.LastErrorCode())
					return
				}
			}
		}(callers[i], i)
	}
	wg.Wait()
}
