// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contentapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/testutil"
	"github.com/olegiv/ocms-editor/internal/version"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(testutil.SeededStore(t), testutil.TestLoggerSilent(), version.Info{Version: "test"})
	srv := httptest.NewServer(h.Routes(0))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, HealthResponse{Status: "ok", Version: "test"}, decode[HealthResponse](t, resp))
}

func TestCollections(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/collections", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	colls := decode[[]model.Collection](t, resp)
	assert.Len(t, colls, 3)

	resp = doJSON(t, http.MethodGet, srv.URL+"/collections/about", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	about := decode[model.Collection](t, resp)
	assert.True(t, about.IsSingleton())

	resp = doJSON(t, http.MethodGet, srv.URL+"/collections/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, resp).Error.Code)
}

func TestCreateCollection(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/collections", map[string]any{
		"slug": "events", "name": "Events", "type": "repeatable",
		"fields": []map[string]any{{"name": "title", "label": "Title", "type": "text", "required": true}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	coll := decode[model.Collection](t, resp)
	assert.NotEmpty(t, coll.ID)
	assert.NotEmpty(t, coll.Fields[0].ID)

	resp = doJSON(t, http.MethodPost, srv.URL+"/collections", map[string]any{
		"slug": "bad", "name": "Bad", "type": "repeatable",
		"fields": []map[string]any{{"name": "x", "type": "hologram"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemCRUD(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/content-items", map[string]any{
		"collectionId": "posts",
		"data": map[string]any{
			"title":    "Hello",
			"body":     `<p>hi</p><script>alert(1)</script>`,
			"legacy":   "orphan",
			"featured": true,
		},
		"isPublished": false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[model.ContentItem](t, resp)
	assert.Equal(t, "hello", item.Slug)
	assert.Equal(t, "<p>hi</p>", item.Data["body"], "rich text sanitized")
	assert.Equal(t, "orphan", item.Data["legacy"])
	assert.False(t, item.IsPublished)

	resp = doJSON(t, http.MethodGet, srv.URL+"/content-items?collectionId=posts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.ContentItem](t, resp), 1)

	data := item.Data.Clone()
	data["title"] = "Hello again"
	resp = doJSON(t, http.MethodPatch, srv.URL+"/content-items/"+item.ID, map[string]any{"data": data})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.ContentItem](t, resp)
	assert.Equal(t, "Hello again", updated.Data["title"])
	assert.Equal(t, "orphan", updated.Data["legacy"])
	assert.False(t, updated.IsPublished)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/content-items/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/content-items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateItem_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing collection id", map[string]any{"data": map[string]any{}}, "collectionId"},
		{"required title missing", map[string]any{"collectionId": "posts", "data": map[string]any{}}, "title"},
		{"required title blank", map[string]any{"collectionId": "posts", "data": map[string]any{"title": ""}}, "title"},
		{"wrong type", map[string]any{"collectionId": "posts", "data": map[string]any{"title": "x", "reading_time": "five"}}, "reading_time"},
		{"bad slug", map[string]any{"collectionId": "posts", "slug": "has space", "data": map[string]any{"title": "x"}}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/content-items", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			errResp := decode[ErrorResponse](t, resp)
			assert.Equal(t, "validation_error", errResp.Error.Code)
			assert.Contains(t, errResp.Error.Details, tt.field)
		})
	}
}

func TestCreateItem_SingletonConflict(t *testing.T) {
	srv := newTestServer(t)
	body := map[string]any{"collectionId": "about", "data": map[string]any{"heading": "About"}}

	resp := doJSON(t, http.MethodPost, srv.URL+"/content-items", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/content-items", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListItems_RequiresCollection(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/content-items", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateItem_DriftedValueKept(t *testing.T) {
	st := testutil.SeededStore(t)
	srv := httptest.NewServer(NewHandler(st, testutil.TestLoggerSilent(), version.Info{}).Routes(0))
	t.Cleanup(srv.Close)

	// Stored before reading_time became a number field.
	item, err := st.Create(t.Context(), "posts", model.Payload{Data: model.Data{"title": "Old", "reading_time": "12 min"}})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/content-items/"+item.ID,
		map[string]any{"data": map[string]any{"title": "Renamed", "reading_time": "12 min"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.ContentItem](t, resp)
	assert.Equal(t, "12 min", updated.Data["reading_time"])
	assert.Equal(t, "Renamed", updated.Data["title"])

	resp = doJSON(t, http.MethodPatch, srv.URL+"/content-items/"+item.ID,
		map[string]any{"data": map[string]any{"title": "Renamed", "reading_time": "13 min"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Contains(t, body.Error.Details, "reading_time")
}
