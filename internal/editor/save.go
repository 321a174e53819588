// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"fmt"

	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/util"
)

// Save validates the working copy and persists it: create in ModeCreate,
// update in ModeUpdate. On success the snapshot becomes the state that was
// sent and a new item switches to ModeUpdate. On failure the working copy is
// untouched, the session stays dirty and the error is returned and published
// as EventSaveFailed.
//
// Edits made while the request is in flight stay in the working copy and
// keep the session dirty; they go out with the next save. A second Save
// during the first returns ErrSaveInProgress.
//
// A retried Save in ModeCreate after a lost response may create a duplicate
// item; there is no idempotency key.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
	case StateSaving:
		s.mu.Unlock()
		return ErrSaveInProgress
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	default:
		s.mu.Unlock()
		return ErrNotReady
	}

	if ve := s.validateLocked(); ve != nil {
		s.lastErr = ve
		ev := s.eventLocked(EventSaveFailed)
		ev.Err = ve
		s.mu.Unlock()

		s.logger.Warn("save blocked by validation", "item_id", ev.ItemID, "fields", ve.FieldNames())
		s.notify(ev)
		return ve
	}

	sent := s.working.clone()
	payload := s.payloadLocked(sent)
	mode, itemID, collectionID := s.mode, s.itemID, s.collection.ID
	s.state = StateSaving
	saving := s.eventLocked(EventSaving)
	s.mu.Unlock()

	s.notify(saving)

	var (
		item *model.ContentItem
		err  error
	)
	if mode == ModeCreate {
		item, err = s.store.Create(ctx, collectionID, payload)
	} else {
		item, err = s.store.Update(ctx, itemID, payload)
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		s.logger.Debug("discarding save response for closed session", "item_id", itemID)
		return ErrSessionClosed
	}

	if err != nil {
		s.state = StateReady
		s.lastErr = fmt.Errorf("saving item: %w", err)
		ev := s.eventLocked(EventSaveFailed)
		ev.Err = s.lastErr
		s.mu.Unlock()

		s.logger.Warn("save failed", "item_id", itemID, "mode", mode, "error", err)
		s.notify(ev)
		return ev.Err
	}

	if s.working.Slug == sent.Slug {
		s.working.Slug = item.Slug
	}
	sent.Slug = item.Slug
	s.snapshot = sent
	s.item = item
	s.itemID = item.ID
	s.mode = ModeUpdate
	s.state = StateReady
	s.lastErr = nil
	ev := s.eventLocked(EventSaved)
	s.mu.Unlock()

	s.logger.Info("item saved", "item_id", item.ID, "mode", mode, "dirty", ev.Dirty)
	s.notify(ev)
	return nil
}

// payloadLocked builds the request body. An empty slug is derived from the
// title field once more; if that is empty too the slug is left out and the
// server picks one.
func (s *Session) payloadLocked(w WorkingCopy) model.Payload {
	published := w.IsPublished
	p := model.Payload{
		Data:        w.Data.Clone(),
		IsPublished: &published,
	}
	if s.mode == ModeCreate {
		p.CollectionID = s.collection.ID
	}

	slug := w.Slug
	if slug == "" && s.titleField != "" {
		if title, ok := w.Data[s.titleField].(string); ok {
			slug = util.DeriveSlug(title)
		}
	}
	if slug != "" {
		p.Slug = &slug
	}
	return p
}
