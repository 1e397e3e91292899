// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/communicator/errcode"
	"github.com/bureau-foundation/communicator/handle"
	"github.com/bureau-foundation/communicator/lib/version"
	"github.com/bureau-foundation/communicator/platform"
)

// Engine owns the handle registries and the process-wide lifecycle.
// Init and Cleanup are reference-counted: hosts that initialize twice
// must clean up twice, and the final Cleanup tears down every object
// still registered. All methods are safe for concurrent use.
type Engine struct {
	logger *slog.Logger

	mu        sync.Mutex
	refs      int
	contexts  handle.Arena[*Context]
	platforms handle.Arena[*platform.Platform]
}

// New creates an uninitialized Engine. A nil logger means
// slog.Default().
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Init brings the engine up. Safe to call repeatedly; each call must
// be paired with a Cleanup.
func (e *Engine) Init() {
	e.mu.Lock()
	e.refs++
	first := e.refs == 1
	e.mu.Unlock()
	if first {
		e.logger.Info("engine initialized", "version", version.Version)
	}
}

// Cleanup undoes one Init. The final Cleanup disconnects and destroys
// every live Platform and Context; their handles become stale.
// Cleanup without a matching Init is InvalidState, not a crash.
func (e *Engine) Cleanup(ctx context.Context) error {
	e.mu.Lock()
	if e.refs == 0 {
		e.mu.Unlock()
		return errcode.New(errcode.InvalidState, "engine: cleanup without matching init")
	}
	e.refs--
	last := e.refs == 0
	e.mu.Unlock()
	if !last {
		return nil
	}

	platforms := e.platforms.Drain()
	contexts := e.contexts.Drain()
	for _, p := range platforms {
		if err := p.Close(ctx); err != nil {
			e.logger.Warn("closing platform during cleanup", "error", err)
		}
	}
	e.logger.Info("engine cleaned up",
		"platforms_destroyed", len(platforms),
		"contexts_destroyed", len(contexts),
	)
	return nil
}

// Version returns the library's semantic version string.
func (e *Engine) Version() string { return version.Version }

// VersionNumbers returns the major, minor, and patch components.
func (e *Engine) VersionNumbers() (major, minor, patch int) {
	return version.Numbers()
}

// requireInit guards operations that need an initialized engine.
func (e *Engine) requireInit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.refs == 0 {
		return errcode.New(errcode.InvalidState, "engine: not initialized")
	}
	return nil
}

// CreateContext allocates a Context and returns its handle.
func (e *Engine) CreateContext() (handle.Handle, error) {
	if err := e.requireInit(); err != nil {
		return handle.None, err
	}
	return e.contexts.Insert(newContext(e.logger)), nil
}

// Context resolves a context handle. A nil handle is NullPointer; a
// stale one is InvalidState.
func (e *Engine) Context(h handle.Handle) (*Context, error) {
	return e.contexts.Get(h)
}

// DestroyContext invalidates the handle and releases the Context. A
// second destroy of the same handle is InvalidState and leaves live
// state untouched.
func (e *Engine) DestroyContext(h handle.Handle) error {
	_, err := e.contexts.Remove(h)
	return err
}

// CreatePlatform allocates a disconnected Platform and returns its
// handle. The platform logs through the engine's logger unless the
// options carry their own.
func (e *Engine) CreatePlatform(options platform.Options) (handle.Handle, error) {
	if err := e.requireInit(); err != nil {
		return handle.None, err
	}
	if options.Logger == nil {
		options.Logger = e.logger
	}
	return e.platforms.Insert(platform.New(options)), nil
}

// Platform resolves a platform handle.
func (e *Engine) Platform(h handle.Handle) (*platform.Platform, error) {
	return e.platforms.Get(h)
}

// DestroyPlatform invalidates the handle and releases the Platform. A
// connected platform is disconnected first so its transport and
// session token are not leaked.
func (e *Engine) DestroyPlatform(ctx context.Context, h handle.Handle) error {
	p, err := e.platforms.Remove(h)
	if err != nil {
		return err
	}
	return p.Close(ctx)
}
