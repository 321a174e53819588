// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import "github.com/olegiv/ocms-editor/internal/model"

// Redirect is where the list screen of a singleton collection sends the operator.
type Redirect int

// Redirect targets
const (
	RedirectCreate Redirect = iota + 1
	RedirectEdit
)

func (r Redirect) String() string {
	switch r {
	case RedirectCreate:
		return "create"
	case RedirectEdit:
		return "edit"
	}
	return "unknown"
}

// SingletonDecision is the single outcome of loading a singleton's list screen.
type SingletonDecision struct {
	Target Redirect

	// ItemID is set for RedirectEdit.
	ItemID string

	// Surplus counts items beyond the first. It is non-zero only when the
	// store broke the at-most-one rule.
	Surplus int
}

// DecideSingleton picks the editor a singleton collection opens: the first
// item in list order when any exist, the create editor otherwise.
func DecideSingleton(items []model.ContentItem) SingletonDecision {
	if len(items) == 0 {
		return SingletonDecision{Target: RedirectCreate}
	}
	return SingletonDecision{
		Target:  RedirectEdit,
		ItemID:  items[0].ID,
		Surplus: len(items) - 1,
	}
}
