// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/cache"
	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/model"
)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	byKey map[string]*model.Collection
}

func newFakeSource(cs ...model.Collection) *fakeSource {
	s := &fakeSource{byKey: make(map[string]*model.Collection)}
	for i := range cs {
		c := cs[i]
		s.byKey[c.ID] = &c
		s.byKey[c.Slug] = &c
	}
	return s
}

func (s *fakeSource) GetCollection(_ context.Context, idOrSlug string) (*model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	c, ok := s.byKey[idOrSlug]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "collection", ID: idOrSlug}
	}
	cp := *c
	cp.Fields = append([]model.FieldDefinition(nil), c.Fields...)
	return &cp, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func everyType() model.Collection {
	c := model.Collection{ID: "c-all", Slug: "all", Name: "All", Type: model.CollectionRepeatable}
	for _, ft := range fieldtype.All {
		c.Fields = append(c.Fields, model.FieldDefinition{Name: "f_" + ft.String(), Type: ft})
	}
	return c
}

func newMemCache(t *testing.T) cache.Cache {
	t.Helper()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestResolveCollection(t *testing.T) {
	src := newFakeSource(everyType())
	r := NewResolver(src, nil, 0, nil)

	c, err := r.ResolveCollection(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, "c-all", c.ID)
	assert.Len(t, c.Fields, len(fieldtype.All))

	for i, ft := range fieldtype.All {
		if c.Fields[i].Type != ft {
			t.Errorf("field %d type = %s, want %s (order must be preserved)", i, c.Fields[i].Type, ft)
		}
	}
}

func TestResolveCollection_NotFound(t *testing.T) {
	r := NewResolver(newFakeSource(), nil, 0, nil)

	for _, key := range []string{"missing", ""} {
		_, err := r.ResolveCollection(context.Background(), key)
		if !apperr.IsNotFound(err) {
			t.Errorf("ResolveCollection(%q) error = %v, want NotFoundError", key, err)
		}
	}
}

func TestResolveCollection_MalformedSchema(t *testing.T) {
	bad := model.Collection{
		ID: "c-bad", Slug: "bad", Type: model.CollectionRepeatable,
		Fields: []model.FieldDefinition{{Name: "a", Type: fieldtype.Text}, {Name: "a", Type: fieldtype.Number}},
	}
	r := NewResolver(newFakeSource(bad), newMemCache(t), 0, nil)

	_, err := r.ResolveCollection(context.Background(), "bad")
	assert.True(t, apperr.IsSchema(err))
}

func TestResolveCollection_Cache(t *testing.T) {
	src := newFakeSource(everyType())
	r := NewResolver(src, newMemCache(t), time.Minute, nil)
	ctx := context.Background()

	first, err := r.ResolveCollection(ctx, "all")
	require.NoError(t, err)

	byID, err := r.ResolveCollection(ctx, "c-all")
	require.NoError(t, err)
	again, err := r.ResolveCollection(ctx, "all")
	require.NoError(t, err)

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, first.Fields, byID.Fields)
	assert.Equal(t, first.Fields, again.Fields)

	// Cached values are decoded per call; mutating one does not leak.
	again.Fields[0].Label = "changed"
	fresh, err := r.ResolveCollection(ctx, "all")
	require.NoError(t, err)
	assert.Empty(t, fresh.Fields[0].Label)

	require.NoError(t, r.Invalidate(ctx, "all"))
	_, err = r.ResolveCollection(ctx, "c-all")
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())

	require.NoError(t, r.InvalidateAll(ctx))
	_, err = r.ResolveCollection(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, 3, src.callCount())
}

func TestDefaultData_KeySetMatchesSchema(t *testing.T) {
	tests := []model.Collection{
		everyType(),
		{Slug: "empty", Type: model.CollectionSingleton},
		{Slug: "one", Type: model.CollectionRepeatable, Fields: []model.FieldDefinition{{Name: "title", Type: fieldtype.Text}}},
	}

	for _, c := range tests {
		t.Run(c.Slug, func(t *testing.T) {
			data, err := DefaultData(&c)
			require.NoError(t, err)
			assert.ElementsMatch(t, c.FieldNames(), keys(data))

			for _, f := range c.Fields {
				want, _ := fieldtype.DefaultValueFor(f.Type)
				if !reflect.DeepEqual(data[f.Name], want) {
					t.Errorf("data[%s] = %#v, want %#v", f.Name, data[f.Name], want)
				}
			}
		})
	}
}

func TestDefaultData_UnknownType(t *testing.T) {
	c := model.Collection{Slug: "x", Fields: []model.FieldDefinition{{Name: "f", Type: fieldtype.FieldType(99)}}}

	_, err := DefaultData(&c)
	var se *apperr.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "f", se.Field)
}

func keys(d model.Data) []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	return out
}
