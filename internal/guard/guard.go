// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard implements the navigation arbiter that keeps unsaved edits
// from being dropped by a screen transition.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Choice is the operator's answer to the unsaved-changes prompt.
type Choice int

// Prompt choices
const (
	KeepEditing Choice = iota
	SaveAndExit
	Discard
)

func (c Choice) String() string {
	switch c {
	case SaveAndExit:
		return "save"
	case Discard:
		return "discard"
	case KeepEditing:
		return "keep"
	}
	return fmt.Sprintf("Choice(%d)", int(c))
}

// ErrNoPrompter is returned when navigation needs a prompt but none is set.
var ErrNoPrompter = errors.New("guard: no prompter configured")

// SaveFunc persists the live editor. It returns nil on success.
type SaveFunc func(ctx context.Context) error

// Prompter asks the operator what to do with unsaved changes. choices is
// ordered and never offers SaveAndExit when no save handler is registered.
type Prompter interface {
	Prompt(ctx context.Context, destination string, choices []Choice) (Choice, error)
}

// Navigator performs screen transitions.
type Navigator interface {
	Navigate(ctx context.Context, destination string) error
	Back(ctx context.Context) error
}

// Owner identifies the editor holding the registration.
type Owner string

// NewOwner returns a fresh owner token.
func NewOwner() Owner {
	return Owner(uuid.NewString())
}

// Outcome reports what a navigation request did.
type Outcome int

// Navigation outcomes
const (
	Navigated Outcome = iota + 1
	Stayed
	SaveFailed
)

func (o Outcome) String() string {
	switch o {
	case Navigated:
		return "navigated"
	case Stayed:
		return "stayed"
	case SaveFailed:
		return "save_failed"
	}
	return "unknown"
}

// registration is the single live slot.
type registration struct {
	owner Owner
	dirty bool
	save  SaveFunc
}

// Arbiter holds one registration at a time. The last Register wins.
type Arbiter struct {
	mu       sync.Mutex
	reg      registration
	prompter Prompter
	nav      Navigator
	logger   *slog.Logger
}

// New creates an Arbiter.
func New(nav Navigator, prompter Prompter, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{nav: nav, prompter: prompter, logger: logger}
}

// Register installs the live editor's state, replacing any previous owner.
// A nil save means "Save & Exit" is not offered.
func (a *Arbiter) Register(owner Owner, dirty bool, save SaveFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reg.owner != "" && a.reg.owner != owner {
		a.logger.Debug("guard registration replaced", "previous", a.reg.owner, "owner", owner)
	}
	a.reg = registration{owner: owner, dirty: dirty, save: save}
}

// SetDirty updates the dirty flag if owner still holds the slot.
func (a *Arbiter) SetDirty(owner Owner, dirty bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reg.owner == owner {
		a.reg.dirty = dirty
	}
}

// Release clears the slot if owner still holds it. A stale owner releasing
// after a newer editor registered is ignored.
func (a *Arbiter) Release(owner Owner) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reg.owner == owner {
		a.reg = registration{}
	}
}

// Clear resets the slot regardless of owner.
func (a *Arbiter) Clear() {
	a.mu.Lock()
	a.reg = registration{}
	a.mu.Unlock()
}

// Dirty reports whether the live registration has unsaved changes.
func (a *Arbiter) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reg.dirty
}

// HasSaveHandler reports whether a save handler is registered.
func (a *Arbiter) HasSaveHandler() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reg.save != nil
}

// RequestNavigation moves to destination, prompting first when the live
// editor is dirty. On SaveFailed the save error is returned and no
// transition happens.
func (a *Arbiter) RequestNavigation(ctx context.Context, destination string) (Outcome, error) {
	return a.request(ctx, destination, func(ctx context.Context) error {
		return a.nav.Navigate(ctx, destination)
	})
}

// Back goes to the previous screen under the same rules as RequestNavigation.
func (a *Arbiter) Back(ctx context.Context) (Outcome, error) {
	return a.request(ctx, "back", a.nav.Back)
}

func (a *Arbiter) request(ctx context.Context, destination string, move func(context.Context) error) (Outcome, error) {
	a.mu.Lock()
	reg := a.reg
	a.mu.Unlock()

	if !reg.dirty {
		a.logger.Debug("navigation allowed", "destination", destination)
		return a.move(ctx, move)
	}

	if a.prompter == nil {
		return Stayed, ErrNoPrompter
	}

	choices := []Choice{Discard, KeepEditing}
	if reg.save != nil {
		choices = []Choice{SaveAndExit, Discard, KeepEditing}
	}

	choice, err := a.prompter.Prompt(ctx, destination, choices)
	if err != nil {
		return Stayed, fmt.Errorf("prompting for unsaved changes: %w", err)
	}
	if !offered(choices, choice) {
		return Stayed, fmt.Errorf("choice %s was not offered", choice)
	}
	a.logger.Debug("unsaved changes prompt answered", "destination", destination, "choice", choice)

	switch choice {
	case SaveAndExit:
		// The save runs without the lock: it re-registers through the
		// editor's observer when it completes.
		if err := reg.save(ctx); err != nil {
			a.logger.Warn("save before navigation failed", "destination", destination, "error", err)
			return SaveFailed, err
		}
		a.SetDirty(reg.owner, false)
		return a.move(ctx, move)
	case Discard:
		a.SetDirty(reg.owner, false)
		return a.move(ctx, move)
	}
	return Stayed, nil
}

func (a *Arbiter) move(ctx context.Context, move func(context.Context) error) (Outcome, error) {
	if err := move(ctx); err != nil {
		return Stayed, fmt.Errorf("navigating: %w", err)
	}
	return Navigated, nil
}

func offered(choices []Choice, c Choice) bool {
	for _, o := range choices {
		if o == c {
			return true
		}
	}
	return false
}
