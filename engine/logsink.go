// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"log/slog"
	"strings"
)

// sinkHandler is a slog.Handler that forwards records to the base
// handler and mirrors them, rendered as text, to the Context's log
// sink. The sink is looked up per record so registering or replacing
// it takes effect immediately.
type sinkHandler struct {
	context *Context
	base    slog.Handler
	attrs   []slog.Attr
	group   string
}

func (h *sinkHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// The sink sees every level; the base handler filters for itself
	// inside Handle.
	return true
}

func (h *sinkHandler) Handle(ctx context.Context, record slog.Record) error {
	var baseErr error
	if h.base.Enabled(ctx, record.Level) {
		baseErr = h.base.Handle(ctx, record.Clone())
	}

	h.context.mu.Lock()
	sink := h.context.sink
	userData := h.context.sinkData
	h.context.mu.Unlock()
	if sink != nil {
		sink(record.Level, h.render(record), userData)
	}
	return baseErr
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.base = h.base.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.base = h.base.WithGroup(name)
	if name != "" {
		if clone.group != "" {
			clone.group += "."
		}
		clone.group += name
	}
	return &clone
}

// render flattens a record into the single text line the sink
// receives.
func (h *sinkHandler) render(record slog.Record) string {
	var b strings.Builder
	b.WriteString(record.Message)
	writeAttr := func(attr slog.Attr) {
		b.WriteByte(' ')
		if h.group != "" {
			b.WriteString(h.group)
			b.WriteByte('.')
		}
		b.WriteString(attr.Key)
		b.WriteByte('=')
		b.WriteString(attr.Value.String())
	}
	for _, attr := range h.attrs {
		writeAttr(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(attr)
		return true
	})
	return b.String()
}
