// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-editor/internal/guard"
	"github.com/olegiv/ocms-editor/internal/media"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/permission"
	"github.com/olegiv/ocms-editor/internal/schema"
)

// Store is the entity store the screens read and write through.
type Store interface {
	ListCollections(ctx context.Context) ([]model.Collection, error)
	GetCollection(ctx context.Context, idOrSlug string) (*model.Collection, error)
	Get(ctx context.Context, itemID string) (*model.ContentItem, error)
	List(ctx context.Context, collectionID string) ([]model.ContentItem, error)
	Create(ctx context.Context, collectionID string, p model.Payload) (*model.ContentItem, error)
	Update(ctx context.Context, itemID string, p model.Payload) (*model.ContentItem, error)
	Delete(ctx context.Context, itemID string) error
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Store    Store
	Resolver *schema.Resolver
	Oracle   permission.Oracle
	Notifier Notifier
	Picker   media.Picker

	// TitleFields drive slug derivation; nil uses the editor default.
	TitleFields []string

	// DefaultPublished overrides each collection's default when set.
	DefaultPublished *bool

	Logger *slog.Logger
}

// Screen is a mounted screen.
type Screen interface {
	Route() Route
}

// CollectionsScreen lists every collection.
type CollectionsScreen struct {
	Collections []model.Collection
}

// Route implements Screen.
func (*CollectionsScreen) Route() Route { return Route{Kind: RouteCollections} }

// ErrorScreen is shown when a screen could not load.
type ErrorScreen struct {
	route Route
	Err   error
}

// Route implements Screen.
func (e *ErrorScreen) Route() Route { return e.route }

// Shell owns the screen history and the one mounted screen. It is the
// guard's Navigator; every operator transition goes through Go or GoBack so
// the guard sees it first. A Shell is not safe for concurrent use.
type Shell struct {
	deps    Deps
	guard   *guard.Arbiter
	logger  *slog.Logger
	history []string
	current Screen
}

// NewShell creates a Shell and its guard.
func NewShell(deps Deps, prompter guard.Prompter) *Shell {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = discardNotifier{}
	}
	if deps.Oracle == nil {
		deps.Oracle = permission.NewStatic()
	}
	if deps.Resolver == nil {
		deps.Resolver = schema.NewResolver(deps.Store, nil, 0, deps.Logger)
	}
	s := &Shell{deps: deps, logger: deps.Logger}
	s.guard = guard.New(s, prompter, deps.Logger)
	return s
}

// Guard returns the shell's navigation guard.
func (s *Shell) Guard() *guard.Arbiter { return s.guard }

// Current returns the mounted screen.
func (s *Shell) Current() Screen { return s.current }

// History returns the visited destinations, oldest first.
func (s *Shell) History() []string {
	return append([]string(nil), s.history...)
}

// Start mounts the collections screen.
func (s *Shell) Start(ctx context.Context) error {
	s.history = nil
	return s.show(ctx, CollectionsPath, push)
}

// Go asks the guard to move to dest.
func (s *Shell) Go(ctx context.Context, dest string) (guard.Outcome, error) {
	if _, err := ParseRoute(dest); err != nil {
		return guard.Stayed, err
	}
	return s.guard.RequestNavigation(ctx, dest)
}

// GoBack asks the guard to return to the previous screen.
func (s *Shell) GoBack(ctx context.Context) (guard.Outcome, error) {
	return s.guard.Back(ctx)
}

// Navigate implements guard.Navigator. Callers outside the guard use Go.
func (s *Shell) Navigate(ctx context.Context, dest string) error {
	return s.show(ctx, dest, push)
}

// Back implements guard.Navigator.
func (s *Shell) Back(ctx context.Context) error {
	if len(s.history) <= 1 {
		s.history = nil
		return s.show(ctx, CollectionsPath, push)
	}
	s.history = s.history[:len(s.history)-1]
	return s.show(ctx, s.history[len(s.history)-1], stay)
}

// Replace swaps the current destination for dest without adding a history
// entry. Screens use it for redirects, so going back skips the redirecting
// screen.
func (s *Shell) Replace(ctx context.Context, dest string) error {
	return s.show(ctx, dest, replace)
}

// Refresh drops every cached schema and reloads the current screen. A
// mounted editor keeps its session; the new schema applies when the item
// is next opened.
func (s *Shell) Refresh(ctx context.Context) error {
	if err := s.deps.Resolver.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("refreshing schemas: %w", err)
	}
	if _, ok := s.current.(*EditorScreen); ok || len(s.history) == 0 {
		return nil
	}
	return s.show(ctx, s.history[len(s.history)-1], stay)
}

// invalidate drops the cached schema of one collection.
func (s *Shell) invalidate(ctx context.Context, collection string) {
	if err := s.deps.Resolver.Invalidate(ctx, collection); err != nil {
		s.logger.Warn("schema cache invalidation failed", "collection", collection, "error", err)
		return
	}
	s.logger.Info("schema cache invalidated", "collection", collection)
}

type historyOp int

const (
	push historyOp = iota
	replace
	stay
)

func (s *Shell) show(ctx context.Context, dest string, op historyOp) error {
	route, err := ParseRoute(dest)
	if err != nil {
		return err
	}
	path := route.Path()

	s.unmount()
	switch {
	case op == push:
		s.history = append(s.history, path)
	case op == replace && len(s.history) > 0:
		s.history[len(s.history)-1] = path
	case op == replace:
		s.history = []string{path}
	}
	s.logger.Debug("screen mounted", "route", path, "kind", route.Kind)

	switch route.Kind {
	case RouteCollections:
		cols, err := s.deps.Store.ListCollections(ctx)
		if err != nil {
			s.fail(route, fmt.Errorf("listing collections: %w", err))
			return nil
		}
		s.current = &CollectionsScreen{Collections: cols}
	case RouteList:
		ls := &ListScreen{route: route}
		if err := ls.load(ctx, s); err != nil {
			s.fail(route, err)
			return nil
		}
		if !ls.redirected {
			s.current = ls
		}
	case RouteCreate, RouteEdit:
		if err := s.mountEditor(ctx, route); err != nil {
			s.fail(route, err)
		}
	}
	return nil
}

// rewriteTop renames the current history entry without remounting.
func (s *Shell) rewriteTop(path string) {
	if len(s.history) > 0 {
		s.history[len(s.history)-1] = path
	}
}

func (s *Shell) fail(route Route, err error) {
	s.logger.Error("screen failed to load", "route", route.Path(), "error", err)
	s.deps.Notifier.Notify(NoticeFor(err))
	s.current = &ErrorScreen{route: route, Err: err}
}

func (s *Shell) unmount() {
	if es, ok := s.current.(*EditorScreen); ok {
		es.unmount()
	}
	s.current = nil
}
