// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want func(error) bool
	}{
		{"not found", &NotFoundError{Resource: "item", ID: "x"}, IsNotFound},
		{"wrapped not found", fmt.Errorf("loading: %w", &NotFoundError{Resource: "item", ID: "x"}), IsNotFound},
		{"validation", NewValidationError("title", "is required"), IsValidation},
		{"network", &NetworkError{Op: "get", Err: errors.New("refused")}, IsNetwork},
		{"schema", &SchemaError{Message: "bad"}, IsSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.want(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
		})
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain error must not be NotFound")
	}
}

func TestValidationError_Message(t *testing.T) {
	e := &ValidationError{}
	if !e.Empty() {
		t.Fatal("new error should be empty")
	}
	e.Add("title", "is required")
	e.Add("body", "is required")

	want := "validation failed: body: is required; title: is required"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestNetworkError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{500, true},
		{503, true},
		{409, false},
	}
	for _, tt := range tests {
		e := &NetworkError{Op: "update", StatusCode: tt.status, Err: errors.New("x")}
		if e.Retryable() != tt.want {
			t.Errorf("status %d: Retryable() = %v, want %v", tt.status, e.Retryable(), tt.want)
		}
	}
	inner := errors.New("boom")
	if !errors.Is(&NetworkError{Op: "get", Err: inner}, inner) {
		t.Error("NetworkError must unwrap")
	}
}
