// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store holds the entity store contract and its SQLite implementation
// used by the persistence service.
package store

import (
	"context"

	"github.com/olegiv/ocms-editor/internal/model"
)

// Adapter is the entity store contract. Every call is a single
// request/response; failures are *apperr.NotFoundError, *apperr.ValidationError
// or *apperr.NetworkError, never silent defaults.
//
// Update takes a partial payload. When Data is set it is the full merged map;
// keys missing from it are not deletions inferred by the store, the caller
// has already merged.
type Adapter interface {
	ListCollections(ctx context.Context) ([]model.Collection, error)
	GetCollection(ctx context.Context, idOrSlug string) (*model.Collection, error)

	Get(ctx context.Context, itemID string) (*model.ContentItem, error)
	List(ctx context.Context, collectionID string) ([]model.ContentItem, error)
	Create(ctx context.Context, collectionID string, p model.Payload) (*model.ContentItem, error)
	Update(ctx context.Context, itemID string, p model.Payload) (*model.ContentItem, error)
	Delete(ctx context.Context, itemID string) error
}
