// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"reflect"
	"time"
)

// Data maps field names to values. Keys absent from the current schema are
// orphaned legacy data and are carried through unchanged.
type Data map[string]any

// Clone returns a deep copy of d. Nested maps and slices decoded from JSON are
// copied too.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Data:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	}
	return v
}

// Equal reports whether d and other hold deeply equal values. A nil map
// equals an empty one.
func (d Data) Equal(other Data) bool {
	if len(d) != len(other) {
		return false
	}
	for k, v := range d {
		ov, ok := other[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// ContentItem is one record conforming to a collection schema.
type ContentItem struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId"`
	Slug         string    `json:"slug"`
	Data         Data      `json:"data"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Payload is the body of a create or update request. Nil pointers and an
// empty CollectionID are left out; Data, when present, is the full merged map.
type Payload struct {
	CollectionID string  `json:"collectionId,omitempty"`
	Data         Data    `json:"data,omitempty"`
	IsPublished  *bool   `json:"isPublished,omitempty"`
	Slug         *string `json:"slug,omitempty"`
}
