// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/bureau-foundation/communicator/errcode"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	e := newInitializedEngine(t)
	h, err := e.CreateContext()
	if err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	ctx, err := e.Context(h)
	if err != nil {
		t.Fatalf("Context lookup failed: %v", err)
	}
	return ctx
}

func TestContextLifecycle(t *testing.T) {
	ctx := newTestContext(t)

	if ctx.IsInitialized() {
		t.Error("fresh context reports initialized")
	}
	if err := ctx.Shutdown(); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState shutting down a created context, got %v", err)
	}

	if err := ctx.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !ctx.IsInitialized() {
		t.Error("IsInitialized false after Initialize")
	}
	if err := ctx.Initialize(); !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState on double initialize, got %v", err)
	}

	if err := ctx.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if ctx.IsInitialized() {
		t.Error("IsInitialized true after Shutdown")
	}
}

func TestContextConfig(t *testing.T) {
	ctx := newTestContext(t)

	if err := ctx.SetConfig("endpoint", "https://chat.example.com"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	value, err := ctx.Config("endpoint")
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if value != "https://chat.example.com" {
		t.Errorf("round trip mismatch: %q", value)
	}

	// Overwrite is legal in any state.
	if err := ctx.SetConfig("endpoint", "https://other.example.com"); err != nil {
		t.Fatalf("SetConfig overwrite failed: %v", err)
	}
	if value, _ := ctx.Config("endpoint"); value != "https://other.example.com" {
		t.Errorf("overwrite lost: %q", value)
	}

	if _, err := ctx.Config("missing"); !errcode.Is(err, errcode.NotFound) {
		t.Errorf("expected NotFound on unset key, got %v", err)
	}
	if err := ctx.SetConfig("", "value"); !errcode.Is(err, errcode.InvalidArgument) {
		t.Errorf("expected InvalidArgument on empty key, got %v", err)
	}
}

func TestContextLogSink(t *testing.T) {
	ctx := newTestContext(t)

	type logLine struct {
		level    slog.Level
		message  string
		userData any
	}
	var lines []logLine
	marker := &struct{ name string }{name: "opaque"}
	ctx.SetLogSink(func(level slog.Level, message string, userData any) {
		lines = append(lines, logLine{level, message, userData})
	}, marker)

	if err := ctx.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 sink line after initialize, got %d", len(lines))
	}
	if lines[0].message != "context initialized" || lines[0].level != slog.LevelInfo {
		t.Errorf("unexpected lifecycle line: %+v", lines[0])
	}
	if lines[0].userData != marker {
		t.Error("user data not passed through opaquely")
	}

	// The bridged logger mirrors records to the sink with attrs
	// rendered inline.
	ctx.Logger().Warn("stream hiccup", "attempt", 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 sink lines, got %d", len(lines))
	}
	if lines[1].level != slog.LevelWarn {
		t.Errorf("unexpected level: %v", lines[1].level)
	}
	if !strings.Contains(lines[1].message, "stream hiccup") || !strings.Contains(lines[1].message, "attempt=2") {
		t.Errorf("unexpected rendered message: %q", lines[1].message)
	}

	// Unregistering stops delivery.
	ctx.SetLogSink(nil, nil)
	ctx.Logger().Info("quiet")
	if len(lines) != 2 {
		t.Errorf("sink invoked after unregistration: %d lines", len(lines))
	}
}
