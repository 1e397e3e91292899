// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/communicator/errcode"
)

// LogSink receives leveled text notifications from a Context. The sink
// is invoked synchronously at lifecycle points and by the Context's
// Logger; it must not call back into the engine.
type LogSink func(level slog.Level, message string, userData any)

type contextState int

const (
	contextCreated contextState = iota
	contextInitialized
	contextShutdown
)

func (s contextState) String() string {
	switch s {
	case contextCreated:
		return "created"
	case contextInitialized:
		return "initialized"
	case contextShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Context is a general-purpose engine object: an identifier, a string
// configuration map, an initialization flag, and at most one log sink.
// Lifecycle: created, initialized, shut down, then destroyed through
// the Engine. Config mutations are legal in every non-destroyed state.
type Context struct {
	id     string
	logger *slog.Logger

	mu       sync.Mutex
	state    contextState
	config   map[string]string
	sink     LogSink
	sinkData any
}

func newContext(logger *slog.Logger) *Context {
	return &Context{
		id:     uuid.NewString(),
		logger: logger,
		config: make(map[string]string),
	}
}

// ID returns the context's unique identifier.
func (c *Context) ID() string { return c.id }

// Initialize moves the context from created to initialized. Any other
// starting state is InvalidState.
func (c *Context) Initialize() error {
	c.mu.Lock()
	if c.state != contextCreated {
		current := c.state
		c.mu.Unlock()
		return errcode.Newf(errcode.InvalidState,
			"engine: context %s cannot initialize from state %s", c.id, current)
	}
	c.state = contextInitialized
	c.mu.Unlock()
	c.emit(slog.LevelInfo, "context initialized")
	return nil
}

// IsInitialized reports whether the context has been initialized and
// not yet shut down.
func (c *Context) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == contextInitialized
}

// Shutdown moves the context from initialized to shutdown. The context
// remains destroyable and may still emit log events.
func (c *Context) Shutdown() error {
	c.mu.Lock()
	if c.state != contextInitialized {
		current := c.state
		c.mu.Unlock()
		return errcode.Newf(errcode.InvalidState,
			"engine: context %s cannot shut down from state %s", c.id, current)
	}
	c.state = contextShutdown
	c.mu.Unlock()
	c.emit(slog.LevelInfo, "context shut down")
	return nil
}

// SetConfig stores a key/value pair. Legal in every state.
func (c *Context) SetConfig(key, value string) error {
	if key == "" {
		return errcode.New(errcode.InvalidArgument, "engine: config key must not be empty")
	}
	c.mu.Lock()
	c.config[key] = value
	c.mu.Unlock()
	return nil
}

// Config returns the value stored under key, or a NotFound error for
// an unset key.
func (c *Context) Config(key string) (string, error) {
	c.mu.Lock()
	value, ok := c.config[key]
	c.mu.Unlock()
	if !ok {
		return "", errcode.Newf(errcode.NotFound, "engine: config key %q is not set", key)
	}
	return value, nil
}

// SetLogSink registers the context's log sink, replacing any previous
// one. A nil sink unregisters. userData is handed back opaquely on
// every invocation.
func (c *Context) SetLogSink(sink LogSink, userData any) {
	c.mu.Lock()
	c.sink = sink
	c.sinkData = userData
	c.mu.Unlock()
}

// Logger returns a slog.Logger that writes to the engine's logger and
// mirrors every record to the registered log sink.
func (c *Context) Logger() *slog.Logger {
	return slog.New(&sinkHandler{context: c, base: c.logger.Handler()})
}

// emit sends a lifecycle notification to both the engine logger and
// the sink, if one is registered.
func (c *Context) emit(level slog.Level, message string) {
	c.logger.Log(context.Background(), level, message, "context_id", c.id)
	c.mu.Lock()
	sink := c.sink
	userData := c.sinkData
	c.mu.Unlock()
	if sink != nil {
		sink(level, message, userData)
	}
}
