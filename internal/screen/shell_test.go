// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/cache"
	"github.com/olegiv/ocms-editor/internal/editor"
	"github.com/olegiv/ocms-editor/internal/guard"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/permission"
	"github.com/olegiv/ocms-editor/internal/schema"
	"github.com/olegiv/ocms-editor/internal/testutil"
)

// spyStore wraps the seeded SQLite store to count list calls and inject
// failures.
type spyStore struct {
	Store

	mu            sync.Mutex
	listCalls     int
	schemaFetches int
	extraItems    []model.ContentItem
	failUpdate    error
}

func (s *spyStore) GetCollection(ctx context.Context, idOrSlug string) (*model.Collection, error) {
	s.mu.Lock()
	s.schemaFetches++
	s.mu.Unlock()
	return s.Store.GetCollection(ctx, idOrSlug)
}

func (s *spyStore) fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaFetches
}

func (s *spyStore) List(ctx context.Context, collectionID string) ([]model.ContentItem, error) {
	s.mu.Lock()
	s.listCalls++
	extra := s.extraItems
	s.mu.Unlock()

	items, err := s.Store.List(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return append(items, extra...), nil
}

func (s *spyStore) Update(ctx context.Context, id string, p model.Payload) (*model.ContentItem, error) {
	if s.failUpdate != nil {
		return nil, s.failUpdate
	}
	return s.Store.Update(ctx, id, p)
}

type scriptedPrompter struct {
	answers []guard.Choice
	asked   int
}

func (p *scriptedPrompter) Prompt(_ context.Context, _ string, choices []guard.Choice) (guard.Choice, error) {
	if p.asked >= len(p.answers) {
		return guard.KeepEditing, nil
	}
	c := p.answers[p.asked]
	p.asked++
	return c, nil
}

type noticeLog struct{ notices []Notice }

func (n *noticeLog) Notify(x Notice) { n.notices = append(n.notices, x) }

func (n *noticeLog) last() Notice {
	if len(n.notices) == 0 {
		return Notice{}
	}
	return n.notices[len(n.notices)-1]
}

type fixture struct {
	shell    *Shell
	store    *spyStore
	prompter *scriptedPrompter
	notices  *noticeLog
}

func newFixture(t *testing.T, caps ...string) *fixture {
	t.Helper()
	if caps == nil {
		caps = []string{permission.ContentEdit, permission.ContentDelete}
	}
	f := &fixture{
		store:    &spyStore{Store: testutil.SeededStore(t)},
		prompter: &scriptedPrompter{},
		notices:  &noticeLog{},
	}
	schemaCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = schemaCache.Close() })

	f.shell = NewShell(Deps{
		Store:    f.store,
		Resolver: schema.NewResolver(f.store, schemaCache, time.Minute, testutil.TestLoggerSilent()),
		Oracle:   permission.NewStatic(caps...),
		Notifier: f.notices,
		Logger:   testutil.TestLoggerSilent(),
	}, f.prompter)
	require.NoError(t, f.shell.Start(context.Background()))
	return f
}

func (f *fixture) createItem(t *testing.T, collection string, data model.Data) *model.ContentItem {
	t.Helper()
	it, err := f.store.Store.Create(context.Background(), collection, model.Payload{Data: data})
	require.NoError(t, err)
	return it
}

func (f *fixture) visit(t *testing.T, dest string) guard.Outcome {
	t.Helper()
	out, err := f.shell.Go(context.Background(), dest)
	require.NoError(t, err)
	return out
}

func (f *fixture) editor(t *testing.T) *EditorScreen {
	t.Helper()
	es, ok := f.shell.Current().(*EditorScreen)
	require.True(t, ok, "current screen is %T", f.shell.Current())
	return es
}

func TestStart_Collections(t *testing.T) {
	f := newFixture(t)

	cs, ok := f.shell.Current().(*CollectionsScreen)
	require.True(t, ok)
	assert.Len(t, cs.Collections, 3)
	assert.Equal(t, []string{CollectionsPath}, f.shell.History())
}

func TestSingletonRedirect_NoItems(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, guard.Navigated, f.visit(t, ListPath("about")))

	es := f.editor(t)
	assert.Equal(t, RouteCreate, es.Route().Kind)
	assert.Equal(t, editor.ModeCreate, es.Session().Mode())
	assert.Equal(t, 1, f.store.listCalls, "existence check runs once")
	assert.Equal(t, []string{CollectionsPath, CreatePath("about")}, f.shell.History())
}

func TestSingletonRedirect_OneItem(t *testing.T) {
	f := newFixture(t)
	it := f.createItem(t, "about", model.Data{"heading": "About us"})

	f.visit(t, ListPath("about"))

	es := f.editor(t)
	assert.Equal(t, RouteEdit, es.Route().Kind)
	assert.Equal(t, editor.ModeUpdate, es.Session().Mode())
	assert.Equal(t, it.ID, es.Session().ItemID())
	assert.Equal(t, 1, f.store.listCalls)
}

func TestSingletonRedirect_SurplusOpensFirst(t *testing.T) {
	f := newFixture(t)
	it := f.createItem(t, "about", model.Data{"heading": "About us"})
	f.store.extraItems = []model.ContentItem{{ID: "stray"}}

	f.visit(t, ListPath("about"))

	assert.Equal(t, it.ID, f.editor(t).Session().ItemID())
}

func TestSingletonRedirect_BackSkipsList(t *testing.T) {
	f := newFixture(t)
	f.visit(t, ListPath("about"))

	out, err := f.shell.GoBack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Navigated, out)

	_, ok := f.shell.Current().(*CollectionsScreen)
	assert.True(t, ok)
	assert.Equal(t, 1, f.store.listCalls, "going back does not re-run the redirect")
}

func TestListScreen_Repeatable(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, "posts", model.Data{"title": "First"})
	f.createItem(t, "posts", model.Data{"title": ""})

	f.visit(t, ListPath("posts"))

	ls, ok := f.shell.Current().(*ListScreen)
	require.True(t, ok)
	rows := ls.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "First", rows[0].Title)
	assert.Equal(t, rows[1].Slug, rows[1].Title, "untitled items show their slug")
}

func TestUnknownCollection(t *testing.T) {
	f := newFixture(t)

	f.visit(t, ListPath("nope"))

	es, ok := f.shell.Current().(*ErrorScreen)
	require.True(t, ok)
	assert.True(t, apperr.IsNotFound(es.Err))
	assert.Equal(t, LevelError, f.notices.last().Level)
}

func TestMissingItem(t *testing.T) {
	f := newFixture(t)

	f.visit(t, EditPath("posts", "ghost"))

	es, ok := f.shell.Current().(*ErrorScreen)
	require.True(t, ok)
	assert.True(t, apperr.IsNotFound(es.Err))
	assert.False(t, f.shell.Guard().Dirty())
}

func TestMissingSingletonItemRedirectsToCreate(t *testing.T) {
	f := newFixture(t)

	f.visit(t, EditPath("about", "ghost"))

	assert.Equal(t, RouteCreate, f.editor(t).Route().Kind)
}

func TestGuard_TracksEditorDirtiness(t *testing.T) {
	f := newFixture(t)
	f.visit(t, CreatePath("posts"))
	es := f.editor(t)
	g := f.shell.Guard()

	assert.False(t, g.Dirty())
	assert.True(t, g.HasSaveHandler())

	require.NoError(t, es.Session().SetField("title", "Draft"))
	assert.True(t, g.Dirty())

	require.NoError(t, es.Session().SetField("title", ""))
	assert.False(t, g.Dirty())
}

func TestGuard_KeepEditingStays(t *testing.T) {
	f := newFixture(t)
	f.prompter.answers = []guard.Choice{guard.KeepEditing}
	f.visit(t, CreatePath("posts"))
	es := f.editor(t)
	require.NoError(t, es.Session().SetField("title", "Draft"))

	assert.Equal(t, guard.Stayed, f.visit(t, CollectionsPath))
	assert.Same(t, es, f.shell.Current())
	assert.True(t, f.shell.Guard().Dirty())
}

func TestGuard_DiscardLeaves(t *testing.T) {
	f := newFixture(t)
	f.prompter.answers = []guard.Choice{guard.Discard}
	f.visit(t, CreatePath("posts"))
	require.NoError(t, f.editor(t).Session().SetField("title", "Draft"))

	out, err := f.shell.GoBack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Navigated, out)

	_, ok := f.shell.Current().(*CollectionsScreen)
	assert.True(t, ok)
	assert.False(t, f.shell.Guard().Dirty())

	items, err := f.store.Store.List(context.Background(), "posts")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGuard_SaveAndExit(t *testing.T) {
	f := newFixture(t)
	f.prompter.answers = []guard.Choice{guard.SaveAndExit}
	f.visit(t, CreatePath("posts"))
	require.NoError(t, f.editor(t).Session().SetField("title", "Saved on exit"))

	assert.Equal(t, guard.Navigated, f.visit(t, ListPath("posts")))

	ls, ok := f.shell.Current().(*ListScreen)
	require.True(t, ok)
	require.Len(t, ls.Items, 1)
	assert.Equal(t, "saved-on-exit", ls.Items[0].Slug)
	assert.False(t, f.shell.Guard().Dirty())
}

func TestGuard_SaveAndExitFailureStays(t *testing.T) {
	f := newFixture(t)
	it := f.createItem(t, "posts", model.Data{"title": "Original"})
	f.store.failUpdate = &apperr.NetworkError{Op: "update item", StatusCode: 503, Err: errors.New("unavailable")}
	f.prompter.answers = []guard.Choice{guard.SaveAndExit}

	f.visit(t, EditPath("posts", it.ID))
	es := f.editor(t)
	require.NoError(t, es.Session().SetField("title", "Changed"))

	out, err := f.shell.Go(context.Background(), CollectionsPath)

	assert.Error(t, err)
	assert.Equal(t, guard.SaveFailed, out)
	assert.Same(t, es, f.shell.Current())
	assert.True(t, f.shell.Guard().Dirty())
	assert.Equal(t, "Changed", es.Session().WorkingCopy().Data["title"])
	assert.Equal(t, LevelRetryable, f.notices.last().Level)
}

func TestRefresh_ReloadsSchemas(t *testing.T) {
	f := newFixture(t)
	f.visit(t, ListPath("posts"))
	f.visit(t, CreatePath("posts"))
	require.Equal(t, 1, f.store.fetches(), "schema is cached between screens")

	f.visit(t, ListPath("posts"))
	require.NoError(t, f.shell.Refresh(context.Background()))

	assert.Equal(t, 2, f.store.fetches())
	_, ok := f.shell.Current().(*ListScreen)
	assert.True(t, ok)
	assert.Equal(t, ListPath("posts"), f.shell.History()[len(f.shell.History())-1])
}

func TestRefresh_KeepsEditorSession(t *testing.T) {
	f := newFixture(t)
	f.visit(t, CreatePath("posts"))
	es := f.editor(t)
	require.NoError(t, es.Session().SetField("title", "Draft"))

	require.NoError(t, f.shell.Refresh(context.Background()))

	assert.Same(t, es, f.shell.Current())
	assert.True(t, f.shell.Guard().Dirty())
}

func TestSave_StaleSchemaInvalidated(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"schema error", &apperr.SchemaError{Message: "unknown field type"}},
		{"undeclared field rejected", apperr.NewValidationError("subtitle", "is required")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			it := f.createItem(t, "posts", model.Data{"title": "Original"})
			f.store.failUpdate = tt.err

			f.visit(t, EditPath("posts", it.ID))
			require.NoError(t, f.editor(t).Session().SetField("title", "Changed"))
			require.Error(t, f.editor(t).Save(context.Background()))
			before := f.store.fetches()

			f.prompter.answers = []guard.Choice{guard.Discard}
			f.visit(t, ListPath("posts"))

			assert.Equal(t, before+1, f.store.fetches(), "schema is fetched again")
		})
	}
}

func TestSave_DeclaredFieldRejectionKeepsCache(t *testing.T) {
	f := newFixture(t)
	it := f.createItem(t, "posts", model.Data{"title": "Original"})
	f.store.failUpdate = apperr.NewValidationError("title", "is taken")

	f.visit(t, EditPath("posts", it.ID))
	require.NoError(t, f.editor(t).Session().SetField("title", "Changed"))
	require.Error(t, f.editor(t).Save(context.Background()))
	before := f.store.fetches()

	f.prompter.answers = []guard.Choice{guard.Discard}
	f.visit(t, ListPath("posts"))

	assert.Equal(t, before, f.store.fetches())
}

func TestSave_CreateRouteBecomesEditRoute(t *testing.T) {
	f := newFixture(t)
	f.visit(t, CreatePath("posts"))
	es := f.editor(t)

	require.NoError(t, es.Session().SetField("title", "Hello"))
	require.NoError(t, es.Save(context.Background()))

	assert.Equal(t, RouteEdit, es.Route().Kind)
	assert.Equal(t, EditPath("posts", es.Session().ItemID()), f.shell.History()[len(f.shell.History())-1])
	assert.Equal(t, LevelInfo, f.notices.last().Level)
}

func TestSave_ValidationNotice(t *testing.T) {
	f := newFixture(t)
	f.visit(t, CreatePath("posts"))
	es := f.editor(t)

	err := es.Save(context.Background())

	assert.True(t, apperr.IsValidation(err))
	n := f.notices.last()
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, []string{"title"}, n.Fields)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	it := f.createItem(t, "posts", model.Data{"title": "Doomed"})
	f.visit(t, EditPath("posts", it.ID))
	es := f.editor(t)
	require.True(t, es.CanDelete())

	// Unsaved edits do not block leaving after a delete.
	require.NoError(t, es.Session().SetField("title", "edited"))
	require.NoError(t, es.Delete(context.Background()))

	ls, ok := f.shell.Current().(*ListScreen)
	require.True(t, ok)
	assert.Empty(t, ls.Items)
	assert.Zero(t, f.prompter.asked)
	assert.False(t, f.shell.Guard().Dirty())
}

func TestDelete_RequiresCapability(t *testing.T) {
	f := newFixture(t, permission.ContentEdit)
	it := f.createItem(t, "posts", model.Data{"title": "Kept"})
	f.visit(t, EditPath("posts", it.ID))
	es := f.editor(t)

	assert.False(t, es.CanDelete())
	assert.ErrorIs(t, es.Delete(context.Background()), ErrForbidden)

	_, err := f.store.Store.Get(context.Background(), it.ID)
	assert.NoError(t, err)
}

func TestReadOnlyEditorOffersNoSave(t *testing.T) {
	f := newFixture(t, "none")
	f.visit(t, CreatePath("posts"))
	es := f.editor(t)

	assert.False(t, f.shell.Guard().HasSaveHandler())
	assert.ErrorIs(t, es.Save(context.Background()), ErrForbidden)
	assert.False(t, es.CanDelete())
}

func TestGo_InvalidRoute(t *testing.T) {
	f := newFixture(t)

	_, err := f.shell.Go(context.Background(), "/nowhere")
	assert.Error(t, err)
	_, ok := f.shell.Current().(*CollectionsScreen)
	assert.True(t, ok)
}
