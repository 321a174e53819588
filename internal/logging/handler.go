// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging sets up slog for the service and the console.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug, info, warn and error to slog levels.
// Anything else yields info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New creates a text logger writing to w at level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ComponentHandler is a slog.Handler that stamps a component attribute onto
// every record before passing it to the wrapped handler.
type ComponentHandler struct {
	inner     slog.Handler
	component string
}

// NewComponentHandler wraps inner.
func NewComponentHandler(inner slog.Handler, component string) *ComponentHandler {
	return &ComponentHandler{inner: inner, component: component}
}

// Enabled implements slog.Handler.
func (h *ComponentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(slog.String("component", h.component))
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ComponentHandler{inner: h.inner.WithAttrs(attrs), component: h.component}
}

// WithGroup implements slog.Handler.
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{inner: h.inner.WithGroup(name), component: h.component}
}

// Component returns a logger derived from base that tags records with name.
func Component(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.New(NewComponentHandler(base.Handler(), name))
}
