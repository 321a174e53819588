// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the error taxonomy shared by the schema resolver,
// the entity store adapters and the editor session.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaError reports a malformed schema or an unknown field type.
// It is fatal for session initialization.
type SchemaError struct {
	Collection string
	Field      string
	Message    string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Collection != "" && e.Field != "":
		return fmt.Sprintf("schema %s: field %s: %s", e.Collection, e.Field, e.Message)
	case e.Collection != "":
		return fmt.Sprintf("schema %s: %s", e.Collection, e.Message)
	case e.Field != "":
		return fmt.Sprintf("schema: field %s: %s", e.Field, e.Message)
	}
	return "schema: " + e.Message
}

// NotFoundError reports a missing collection or item.
type NotFoundError struct {
	Resource string // "collection" or "item"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ValidationError carries per-field messages. The key "" holds messages
// that are not tied to a field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// FieldNames returns the names of the fields with messages, sorted.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.FieldNames() {
		if name == "" {
			parts = append(parts, e.Fields[name])
			continue
		}
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NetworkError reports a transport failure or a server fault.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the operation may succeed if repeated.
func (e *NetworkError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsSchema reports whether err is or wraps a SchemaError.
func IsSchema(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}
