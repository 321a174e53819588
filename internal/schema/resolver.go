// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema resolves collection schemas and derives the state an editor
// starts from.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/cache"
	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/model"
)

// keyPrefix namespaces collection entries in the shared cache.
const keyPrefix = "collection:"

// DefaultTTL is used when NewResolver gets a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// Source fetches a collection by id or slug.
type Source interface {
	GetCollection(ctx context.Context, idOrSlug string) (*model.Collection, error)
}

// Resolver resolves collections through an optional cache.
type Resolver struct {
	source Source
	cache  *cache.TypedCache[model.Collection]
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil cache disables caching.
func NewResolver(source Source, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Resolver{source: source, logger: logger}
	if c != nil {
		r.cache = cache.NewTypedCache[model.Collection](c, ttl)
	}
	return r
}

// ResolveCollection returns the collection identified by slugOrID.
// It fails with *apperr.NotFoundError when the collection does not exist and
// with *apperr.SchemaError when its schema is malformed.
func (r *Resolver) ResolveCollection(ctx context.Context, slugOrID string) (*model.Collection, error) {
	if slugOrID == "" {
		return nil, &apperr.NotFoundError{Resource: "collection"}
	}

	if r.cache != nil {
		if c, ok := r.cache.Get(ctx, keyPrefix+slugOrID); ok {
			r.logger.Debug("schema cache hit", "collection", slugOrID)
			return c, nil
		}
	}

	c, err := r.source.GetCollection(ctx, slugOrID)
	if err != nil {
		return nil, fmt.Errorf("resolving collection %s: %w", slugOrID, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if r.cache != nil {
		for _, key := range cacheKeys(c) {
			if err := r.cache.Set(ctx, key, c); err != nil {
				r.logger.Warn("failed to cache collection", "collection_id", c.ID, "error", err)
				break
			}
		}
	}
	return c, nil
}

// Invalidate drops the cached schema for slugOrID, under both its id and slug.
func (r *Resolver) Invalidate(ctx context.Context, slugOrID string) error {
	if r.cache == nil {
		return nil
	}
	keys := []string{keyPrefix + slugOrID}
	if c, ok := r.cache.Get(ctx, keyPrefix+slugOrID); ok {
		keys = cacheKeys(c)
	}
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("invalidating %s: %w", key, err)
		}
	}
	return nil
}

// InvalidateAll drops every cached schema.
func (r *Resolver) InvalidateAll(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.DeleteByPrefix(ctx, keyPrefix)
}

func cacheKeys(c *model.Collection) []string {
	keys := []string{keyPrefix + c.ID}
	if c.Slug != "" && c.Slug != c.ID {
		keys = append(keys, keyPrefix+c.Slug)
	}
	return keys
}

// DefaultData builds the initial data map of a new item: every declared
// field holds its type's default, so no field is ever absent.
func DefaultData(c *model.Collection) (model.Data, error) {
	data := make(model.Data, len(c.Fields))
	for _, f := range c.Fields {
		v, err := fieldtype.DefaultValueFor(f.Type)
		if err != nil {
			return nil, &apperr.SchemaError{Collection: c.Slug, Field: f.Name, Message: err.Error()}
		}
		data[f.Name] = v
	}
	return data, nil
}
