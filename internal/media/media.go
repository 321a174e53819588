// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media defines how the editor obtains URLs for image and file fields.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/olegiv/ocms-editor/internal/fieldtype"
)

// ErrCancelled is returned when the operator closes the picker without choosing.
var ErrCancelled = errors.New("media: selection cancelled")

// Request describes the field a URL is picked for.
type Request struct {
	Field   string
	Label   string
	Type    fieldtype.FieldType
	Current string
}

// Picker presents a selection UI and returns one URL. The editor treats the
// result as an opaque string.
type Picker interface {
	Pick(ctx context.Context, req Request) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context, req Request) (string, error)

// Pick calls f.
func (f PickerFunc) Pick(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// LineReader reads one line of operator input.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// URLPrompt is a Picker that asks the operator to type a URL.
// An empty answer cancels.
type URLPrompt struct {
	In LineReader
}

// Pick prompts for an absolute http(s) URL or a root-relative path.
func (p URLPrompt) Pick(ctx context.Context, req Request) (string, error) {
	prompt := fmt.Sprintf("%s URL for %s", req.Type, req.Label)
	if req.Current != "" {
		prompt += fmt.Sprintf(" [%s]", req.Current)
	}

	line, err := p.In.ReadLine(ctx, prompt+": ")
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrCancelled
	}
	if err := ValidateURL(line); err != nil {
		return "", err
	}
	return line, nil
}

// ValidateURL accepts absolute http(s) URLs and root-relative paths.
func ValidateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid media URL: %w", err)
	}
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return nil
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return nil
	}
	return fmt.Errorf("invalid media URL %q: want http(s) or a /path", s)
}
