// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the collection schema and content item types shared by
// the console core and the persistence service.
package model

import (
	"fmt"
	"regexp"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/fieldtype"
)

// CollectionType is the cardinality policy of a collection.
type CollectionType string

// Collection types
const (
	CollectionRepeatable CollectionType = "repeatable"
	CollectionSingleton  CollectionType = "singleton"
)

// fieldNamePattern is the shape of a data map key.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FieldDefinition declares one typed field of a collection.
// Name is the stable key into ContentItem.Data; Label is for display only.
type FieldDefinition struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Label    string              `json:"label"`
	Type     fieldtype.FieldType `json:"type"`
	Required bool                `json:"required"`
}

// DisplayLabel returns Label, falling back to Name.
func (f FieldDefinition) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Collection is a server-declared content type. Field order is presentation order.
type Collection struct {
	ID     string            `json:"id"`
	Slug   string            `json:"slug"`
	Name   string            `json:"name"`
	Type   CollectionType    `json:"type"`
	Fields []FieldDefinition `json:"fields"`

	// DefaultPublished is the initial isPublished of new items; nil means true.
	DefaultPublished *bool `json:"defaultPublished,omitempty"`
}

// IsSingleton returns true if the collection holds at most one item.
func (c *Collection) IsSingleton() bool {
	return c.Type == CollectionSingleton
}

// PublishedByDefault returns the initial isPublished value for new items.
func (c *Collection) PublishedByDefault() bool {
	if c.DefaultPublished == nil {
		return true
	}
	return *c.DefaultPublished
}

// Field returns the definition named name.
func (c *Collection) Field(name string) (FieldDefinition, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldNames returns the declared field names in order.
func (c *Collection) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks the collection type, field types and field name uniqueness.
// It does not look at item data: schema and data are allowed to drift.
func (c *Collection) Validate() error {
	switch c.Type {
	case CollectionRepeatable, CollectionSingleton:
	default:
		return &apperr.SchemaError{Collection: c.Slug, Message: fmt.Sprintf("unknown collection type %q", c.Type)}
	}

	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if !fieldNamePattern.MatchString(f.Name) {
			return &apperr.SchemaError{Collection: c.Slug, Field: f.Name, Message: "invalid field name"}
		}
		if seen[f.Name] {
			return &apperr.SchemaError{Collection: c.Slug, Field: f.Name, Message: "duplicate field name"}
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return &apperr.SchemaError{Collection: c.Slug, Field: f.Name, Message: fmt.Sprintf("unknown field type %s", f.Type)}
		}
	}
	return nil
}
