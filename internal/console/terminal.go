// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/olegiv/ocms-editor/internal/guard"
	"github.com/olegiv/ocms-editor/internal/screen"
)

// ErrInputClosed is returned when the operator's input ends.
var ErrInputClosed = errors.New("console: input closed")

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgGreen)
	faintColor   = color.New(color.Faint)
	titleColor   = color.New(color.Bold, color.Underline)
	dirtyColor   = color.New(color.FgHiYellow)
	retryColor   = color.New(color.FgMagenta)
	choiceLabels = map[guard.Choice]string{
		guard.SaveAndExit: "[s]ave & exit",
		guard.Discard:     "[d]iscard & exit",
		guard.KeepEditing: "[k]eep editing",
	}
)

// Terminal reads operator input line by line and writes colored output.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and returns the next line without its newline.
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = promptColor.Fprint(t.out, prompt)

	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Prompt implements guard.Prompter on the terminal. It asks again until the
// answer matches one of the offered choices.
func (t *Terminal) Prompt(ctx context.Context, destination string, choices []guard.Choice) (guard.Choice, error) {
	labels := make([]string, 0, len(choices))
	for _, c := range choices {
		labels = append(labels, choiceLabels[c])
	}

	_, _ = warnColor.Fprintf(t.out, "You have unsaved changes (leaving for %s).\n", destination)
	for {
		line, err := t.ReadLine(ctx, strings.Join(labels, ", ")+"? ")
		if err != nil {
			return guard.KeepEditing, err
		}
		if c, ok := parseChoice(line); ok {
			for _, offered := range choices {
				if offered == c {
					return c, nil
				}
			}
		}
		_, _ = errorColor.Fprintln(t.out, "Please answer with one of the offered letters.")
	}
}

func parseChoice(s string) (guard.Choice, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "save":
		return guard.SaveAndExit, true
	case "d", "discard":
		return guard.Discard, true
	case "k", "keep", "":
		return guard.KeepEditing, true
	}
	return guard.KeepEditing, false
}

// Notify implements screen.Notifier.
func (t *Terminal) Notify(n screen.Notice) {
	switch n.Level {
	case screen.LevelInfo:
		_, _ = infoColor.Fprintln(t.out, n.Message)
	case screen.LevelRetryable:
		_, _ = retryColor.Fprintln(t.out, n.Message)
	default:
		_, _ = errorColor.Fprintln(t.out, n.Message)
	}
}
