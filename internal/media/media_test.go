// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/olegiv/ocms-editor/internal/fieldtype"
)

type scripted struct {
	line    string
	err     error
	prompts []string
}

func (s *scripted) ReadLine(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.line, s.err
}

func TestURLPrompt(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		wantErr error
		anyErr  bool
	}{
		{"absolute", "https://cdn.example.com/a.png\n", "https://cdn.example.com/a.png", nil, false},
		{"root relative", " /uploads/a.pdf ", "/uploads/a.pdf", nil, false},
		{"blank cancels", "   ", "", ErrCancelled, false},
		{"ftp rejected", "ftp://example.com/a", "", nil, true},
		{"protocol relative rejected", "//evil.example.com/a", "", nil, true},
		{"bare word rejected", "picture", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &scripted{line: tt.line}
			p := URLPrompt{In: in}

			got, err := p.Pick(context.Background(), Request{Field: "cover", Label: "Cover", Type: fieldtype.Image})
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Pick() = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestURLPrompt_ShowsCurrent(t *testing.T) {
	in := &scripted{line: "/b.png"}
	p := URLPrompt{In: in}

	_, err := p.Pick(context.Background(), Request{Label: "Logo", Type: fieldtype.Image, Current: "/a.png"})
	if err != nil {
		t.Fatal(err)
	}
	if len(in.prompts) != 1 || !strings.Contains(in.prompts[0], "[/a.png]") {
		t.Errorf("prompts = %q, want current value shown", in.prompts)
	}
}

func TestURLPrompt_ReaderError(t *testing.T) {
	readErr := errors.New("eof")
	p := URLPrompt{In: &scripted{err: readErr}}

	if _, err := p.Pick(context.Background(), Request{}); !errors.Is(err, readErr) {
		t.Errorf("err = %v, want %v", err, readErr)
	}
}

func TestPickerFunc(t *testing.T) {
	var p Picker = PickerFunc(func(_ context.Context, req Request) (string, error) {
		return "/" + req.Field, nil
	})
	got, err := p.Pick(context.Background(), Request{Field: "x"})
	if err != nil || got != "/x" {
		t.Errorf("Pick() = %q, %v", got, err)
	}
}
