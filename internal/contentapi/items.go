// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contentapi

import (
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/util"
)

// ListItems handles GET /content-items?collectionId=.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	collectionID := r.URL.Query().Get("collectionId")
	if collectionID == "" {
		WriteBadRequest(w, "collectionId is required")
		return
	}

	items, err := h.store.List(r.Context(), collectionID)
	if err != nil {
		h.writeStoreError(w, r, "list items", err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// GetItem handles GET /content-items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, "retrieve item", err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /content-items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req model.Payload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CollectionID == "" {
		WriteValidationError(w, map[string]string{"collectionId": "is required"})
		return
	}
	if req.Data == nil {
		req.Data = model.Data{}
	}

	coll, err := h.store.GetCollection(r.Context(), req.CollectionID)
	if err != nil {
		h.writeStoreError(w, r, "retrieve collection", err)
		return
	}

	if errs := h.preparePayload(coll, &req, nil); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	item, err := h.store.Create(r.Context(), coll.ID, req)
	if err != nil {
		h.writeStoreError(w, r, "create item", err)
		return
	}

	h.logger.Info("item created", "item_id", item.ID, "collection_id", item.CollectionID, "slug", item.Slug)
	WriteJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PATCH /content-items/{id}. Only the top-level members
// present in the body change; data replaces the stored map as a whole.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.Payload
	if !decodeBody(w, r, &req) {
		return
	}

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "retrieve item", err)
		return
	}
	coll, err := h.store.GetCollection(r.Context(), existing.CollectionID)
	if err != nil {
		h.writeStoreError(w, r, "retrieve collection", err)
		return
	}

	if errs := h.preparePayload(coll, &req, existing.Data); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	item, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		h.writeStoreError(w, r, "update item", err)
		return
	}

	h.logger.Info("item updated", "item_id", item.ID, "collection_id", item.CollectionID)
	WriteJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /content-items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "delete item", err)
		return
	}

	h.logger.Info("item deleted", "item_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// preparePayload validates the payload against the collection schema and
// sanitizes rich text in place. Orphaned keys are passed through unchecked,
// and so is a declared value that equals what is already stored.
func (h *Handler) preparePayload(coll *model.Collection, p *model.Payload, stored model.Data) map[string]string {
	errs := map[string]string{}

	if p.Slug != nil && *p.Slug != "" && !util.IsEditorSlug(*p.Slug) {
		errs["slug"] = "may only contain letters, digits, underscores and hyphens"
	}

	if p.Data == nil {
		return errs
	}

	for _, f := range coll.Fields {
		v, present := p.Data[f.Name]
		if !present {
			if f.Required {
				errs[f.Name] = "is required"
			}
			continue
		}
		if old, ok := stored[f.Name]; ok && reflect.DeepEqual(v, old) {
			continue
		}
		if !fieldtype.Conforms(f.Type, v) {
			errs[f.Name] = "must be a " + f.Type.String()
			continue
		}
		if f.Required && isBlank(v) {
			errs[f.Name] = "is required"
			continue
		}
		if f.Type == fieldtype.RichText {
			p.Data[f.Name] = h.policy.Sanitize(v.(string))
		}
	}
	return errs
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && s == ""
}
