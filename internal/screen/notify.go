// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"errors"
	"strings"

	"github.com/olegiv/ocms-editor/internal/apperr"
)

// Level is the severity of a notice.
type Level string

// Notice levels
const (
	LevelInfo      Level = "info"
	LevelError     Level = "error"
	LevelRetryable Level = "retryable"
)

// Notice is a toast-style message for the operator.
type Notice struct {
	Level   Level
	Message string

	// Fields lists the fields to highlight for validation failures.
	Fields []string
}

// Notifier displays notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// NoticeFor turns an error into the notice shown to the operator.
func NoticeFor(err error) Notice {
	var (
		ve *apperr.ValidationError
		ne *apperr.NetworkError
		nf *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		fields := ve.FieldNames()
		named := make([]string, 0, len(fields))
		for _, f := range fields {
			if f != "" {
				named = append(named, f)
			}
		}
		msg := "Please fix the highlighted fields"
		if len(named) == 0 {
			msg = ve.Error()
		} else {
			msg += ": " + strings.Join(named, ", ")
		}
		return Notice{Level: LevelError, Message: msg, Fields: named}
	case errors.As(err, &ne) && ne.Retryable():
		return Notice{Level: LevelRetryable, Message: "Could not reach the server. Your changes are kept; try saving again."}
	case errors.As(err, &nf):
		return Notice{Level: LevelError, Message: "Not found: " + nf.Error()}
	}
	return Notice{Level: LevelError, Message: err.Error()}
}
