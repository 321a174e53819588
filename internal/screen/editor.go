// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/editor"
	"github.com/olegiv/ocms-editor/internal/guard"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/permission"
)

// ErrForbidden is returned for actions the permission oracle does not grant.
var ErrForbidden = errors.New("screen: action not permitted")

// EditorScreen hosts one editor session and keeps the guard registration in
// step with it while mounted.
type EditorScreen struct {
	route   Route
	shell   *Shell
	owner   guard.Owner
	session *editor.Session
}

// Route implements Screen.
func (e *EditorScreen) Route() Route { return e.route }

// Session returns the hosted session.
func (e *EditorScreen) Session() *editor.Session { return e.session }

// CanEdit reports whether the operator may change and save the item.
func (e *EditorScreen) CanEdit() bool {
	return e.shell.deps.Oracle.HasCapability(permission.ContentEdit)
}

// CanDelete reports whether the delete action is offered.
func (e *EditorScreen) CanDelete() bool {
	return e.session.Mode() == editor.ModeUpdate &&
		e.shell.deps.Oracle.HasCapability(permission.ContentDelete)
}

func (e *EditorScreen) saveHandler() guard.SaveFunc {
	if !e.CanEdit() {
		return nil
	}
	return e.session.Save
}

// Save saves the session. Failures are also reported through the notifier.
func (e *EditorScreen) Save(ctx context.Context) error {
	if !e.CanEdit() {
		return ErrForbidden
	}
	return e.session.Save(ctx)
}

// Delete removes the item, drops the guard registration and returns to the
// collection's list.
func (e *EditorScreen) Delete(ctx context.Context) error {
	if !e.CanDelete() {
		return ErrForbidden
	}
	id := e.session.ItemID()
	if err := e.shell.deps.Store.Delete(ctx, id); err != nil {
		e.shell.deps.Notifier.Notify(NoticeFor(err))
		return fmt.Errorf("deleting item %s: %w", id, err)
	}

	e.shell.logger.Info("item deleted", "item_id", id, "collection", e.route.Collection)
	e.shell.deps.Notifier.Notify(Notice{Level: LevelInfo, Message: "Deleted"})
	e.unmount()
	_, err := e.shell.guard.RequestNavigation(ctx, ListPath(e.route.Collection))
	return err
}

// sessionEvent keeps the guard registration current and reports save results.
func (e *EditorScreen) sessionEvent(s *editor.Session, ev editor.Event) {
	e.shell.guard.Register(e.owner, ev.Dirty, e.saveHandler())

	switch ev.Kind {
	case editor.EventSaved:
		if e.route.Kind == RouteCreate {
			e.route = Route{Kind: RouteEdit, Collection: e.route.Collection, ItemID: ev.ItemID}
			if e.shell.current == e {
				e.shell.rewriteTop(e.route.Path())
			}
		}
		e.shell.deps.Notifier.Notify(Notice{Level: LevelInfo, Message: "Saved"})
	case editor.EventSaveFailed:
		if staleSchema(s.Collection(), ev.Err) {
			e.shell.invalidate(context.Background(), e.route.Collection)
		}
		e.shell.deps.Notifier.Notify(NoticeFor(ev.Err))
	}
}

// staleSchema reports whether a save failure means the server's schema no
// longer matches the cached one: a schema error, or a rejected field the
// cached schema does not declare.
func staleSchema(c *model.Collection, err error) bool {
	if apperr.IsSchema(err) {
		return true
	}
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	for _, name := range ve.FieldNames() {
		if name == "" || name == "slug" {
			continue
		}
		if _, ok := c.Field(name); !ok {
			return true
		}
	}
	return false
}

func (e *EditorScreen) unmount() {
	e.shell.guard.Release(e.owner)
	e.session.Close()
}

func (s *Shell) mountEditor(ctx context.Context, route Route) error {
	c, err := s.deps.Resolver.ResolveCollection(ctx, route.Collection)
	if err != nil {
		return err
	}

	es := &EditorScreen{route: route, shell: s, owner: guard.NewOwner()}
	opts := editor.Options{
		TitleFields:      s.deps.TitleFields,
		DefaultPublished: s.deps.DefaultPublished,
		Picker:           s.deps.Picker,
		Observer:         editor.ObserverFunc(es.sessionEvent),
		Logger:           s.logger,
	}

	var sess *editor.Session
	if route.Kind == RouteCreate {
		sess, err = editor.NewCreate(c, s.deps.Store, opts)
	} else {
		sess, err = editor.Load(ctx, c, s.deps.Store, route.ItemID, opts)
	}
	if err != nil {
		return err
	}

	if sess.Missing() {
		sess.Close()
		if c.IsSingleton() {
			s.logger.Debug("singleton item missing, redirecting to create", "collection", c.Slug)
			return s.Replace(ctx, CreatePath(c.Slug))
		}
		return &apperr.NotFoundError{Resource: "item", ID: route.ItemID}
	}

	es.session = sess
	s.guard.Register(es.owner, false, es.saveHandler())
	s.current = es
	return nil
}
