// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

// EventKind names a session state change.
type EventKind string

// Event kinds
const (
	EventDirty      EventKind = "dirty"
	EventSaving     EventKind = "saving"
	EventSaved      EventKind = "saved"
	EventSaveFailed EventKind = "save_failed"
)

// Event is published after every mutation and save transition.
type Event struct {
	Kind   EventKind
	Mode   Mode
	ItemID string
	Dirty  bool

	// Err is set for EventSaveFailed.
	Err error
}

// Observer receives session events. It is called without the session lock
// held and may call back into the session.
type Observer interface {
	SessionEvent(s *Session, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s *Session, e Event)

// SessionEvent calls f.
func (f ObserverFunc) SessionEvent(s *Session, e Event) { f(s, e) }

func (s *Session) eventLocked(kind EventKind) Event {
	return Event{
		Kind:   kind,
		Mode:   s.mode,
		ItemID: s.itemID,
		Dirty:  !s.working.Equal(s.snapshot),
	}
}

func (s *Session) notify(e Event) {
	if s.observer != nil {
		s.observer.SessionEvent(s, e)
	}
}
