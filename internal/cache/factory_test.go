// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNew_MemoryByDefault(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute}, nil)
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New() = %T, want *MemoryCache", c)
	}
}

func TestNew_UnreachableRedisFallsBack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(Config{RedisURL: "redis://127.0.0.1:1/0"}, logger)
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New() = %T, want *MemoryCache fallback", c)
	}
}
