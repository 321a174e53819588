// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contentapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-editor/internal/model"
)

// ListCollections handles GET /collections.
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	colls, err := h.store.ListCollections(r.Context())
	if err != nil {
		h.writeStoreError(w, r, "list collections", err)
		return
	}
	if colls == nil {
		colls = []model.Collection{}
	}
	WriteJSON(w, http.StatusOK, colls)
}

// GetCollection handles GET /collections/{idOrSlug}.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	coll, err := h.store.GetCollection(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.writeStoreError(w, r, "retrieve collection", err)
		return
	}
	WriteJSON(w, http.StatusOK, coll)
}

// CreateCollection handles POST /collections. It is an admin seeding
// endpoint; the console itself never declares schemas.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req model.Collection
	if !decodeBody(w, r, &req) {
		return
	}

	coll, err := h.store.CreateCollection(r.Context(), req)
	if err != nil {
		h.writeStoreError(w, r, "create collection", err)
		return
	}

	h.logger.Info("collection created", "collection_id", coll.ID, "slug", coll.Slug)
	WriteJSON(w, http.StatusCreated, coll)
}
