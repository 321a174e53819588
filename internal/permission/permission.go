// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package permission exposes the capability oracle host screens consult
// before offering edit or delete actions.
package permission

import (
	"sort"
	"strings"
)

// Capability names
const (
	ContentEdit   = "content.edit"
	ContentDelete = "content.delete"
)

// Oracle answers capability questions. The editor core never enforces them.
type Oracle interface {
	HasCapability(name string) bool
}

// Static is a fixed capability set.
type Static map[string]bool

// NewStatic builds a Static from names. "*" grants everything.
func NewStatic(names ...string) Static {
	s := make(Static, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			s[n] = true
		}
	}
	return s
}

// HasCapability reports whether name is granted.
func (s Static) HasCapability(name string) bool {
	return s["*"] || s[name]
}

// Names returns the granted capabilities, sorted.
func (s Static) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AllowAll grants every capability.
type AllowAll struct{}

// HasCapability always returns true.
func (AllowAll) HasCapability(string) bool { return true }
