// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/util"
)

// timeLayout is the stored timestamp format. It sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore persists collections and content items in SQLite.
// It assigns ids, timestamps and fallback slugs, and refuses a second item in
// a singleton collection.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore creates a store on an already migrated database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ Adapter = (*SQLStore)(nil)

// CreateCollection stores a new collection. Missing collection and field ids
// are generated.
func (s *SQLStore) CreateCollection(ctx context.Context, c model.Collection) (*model.Collection, error) {
	if c.Slug == "" {
		c.Slug = util.Slugify(c.Name)
	}
	if !util.IsValidSlug(c.Slug) {
		return nil, apperr.NewValidationError("slug", "must be lowercase letters, digits and hyphens")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	for i := range c.Fields {
		if c.Fields[i].ID == "" {
			c.Fields[i].ID = uuid.NewString()
		}
	}
	if c.Fields == nil {
		c.Fields = []model.FieldDefinition{}
	}

	fields, err := json.Marshal(c.Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}

	var defaultPublished sql.NullBool
	if c.DefaultPublished != nil {
		defaultPublished = sql.NullBool{Bool: *c.DefaultPublished, Valid: true}
	}

	now := s.now().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (id, slug, name, type, fields, default_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Name, string(c.Type), string(fields), defaultPublished, now, now)
	if err != nil {
		if exists, _ := s.collectionExists(ctx, c.Slug); exists {
			return nil, apperr.NewValidationError("slug", "slug already exists")
		}
		return nil, fmt.Errorf("inserting collection: %w", err)
	}

	return &c, nil
}

// ListCollections returns all collections ordered by name.
func (s *SQLStore) ListCollections(ctx context.Context) ([]model.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, name, type, fields, default_published FROM collections ORDER BY name, slug`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetCollection looks a collection up by id or slug.
func (s *SQLStore) GetCollection(ctx context.Context, idOrSlug string) (*model.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, type, fields, default_published FROM collections WHERE id = ? OR slug = ? LIMIT 1`,
		idOrSlug, idOrSlug)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Resource: "collection", ID: idOrSlug}
	}
	return c, err
}

func (s *SQLStore) collectionExists(ctx context.Context, idOrSlug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections WHERE id = ? OR slug = ?`, idOrSlug, idOrSlug).Scan(&n)
	return n > 0, err
}

// Get returns one item.
func (s *SQLStore) Get(ctx context.Context, itemID string) (*model.ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, collection_id, slug, data, is_published, created_at, updated_at
		 FROM content_items WHERE id = ?`, itemID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Resource: "item", ID: itemID}
	}
	return item, err
}

// List returns the items of a collection in creation order.
func (s *SQLStore) List(ctx context.Context, collectionID string) ([]model.ContentItem, error) {
	coll, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection_id, slug, data, is_published, created_at, updated_at
		 FROM content_items WHERE collection_id = ? ORDER BY created_at, rowid`, coll.ID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.ContentItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// Create inserts an item. An omitted slug is replaced by a fallback derived
// from the item's title-like fields or its id.
func (s *SQLStore) Create(ctx context.Context, collectionID string, p model.Payload) (*model.ContentItem, error) {
	coll, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if coll.IsSingleton() {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM content_items WHERE collection_id = ?`, coll.ID).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting items: %w", err)
		}
		if n > 0 {
			return nil, apperr.NewValidationError("", fmt.Sprintf("collection %s is a singleton and already has an item", coll.Slug))
		}
	}

	now := s.now()
	item := &model.ContentItem{
		ID:           uuid.NewString(),
		CollectionID: coll.ID,
		Data:         p.Data.Clone(),
		IsPublished:  coll.PublishedByDefault(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.Data == nil {
		item.Data = model.Data{}
	}
	if p.IsPublished != nil {
		item.IsPublished = *p.IsPublished
	}
	if p.Slug != nil {
		item.Slug = *p.Slug
	}
	if item.Slug == "" {
		item.Slug = FallbackSlug(item.Data, item.ID)
	}

	data, err := json.Marshal(item.Data)
	if err != nil {
		return nil, apperr.NewValidationError("data", "cannot be encoded: "+err.Error())
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO content_items (id, collection_id, slug, data, is_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.CollectionID, item.Slug, string(data), item.IsPublished,
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}
	return item, nil
}

// Update applies the fields present in p. Data, when set, replaces the stored
// map as a whole.
func (s *SQLStore) Update(ctx context.Context, itemID string, p model.Payload) (*model.ContentItem, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if p.Data != nil {
		item.Data = p.Data.Clone()
	}
	if p.IsPublished != nil {
		item.IsPublished = *p.IsPublished
	}
	if p.Slug != nil && *p.Slug != "" {
		item.Slug = *p.Slug
	}
	item.UpdatedAt = s.now()

	data, err := json.Marshal(item.Data)
	if err != nil {
		return nil, apperr.NewValidationError("data", "cannot be encoded: "+err.Error())
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE content_items SET slug = ?, data = ?, is_published = ?, updated_at = ? WHERE id = ?`,
		item.Slug, string(data), item.IsPublished, item.UpdatedAt.Format(timeLayout), item.ID)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &apperr.NotFoundError{Resource: "item", ID: itemID}
	}
	return item, nil
}

// Delete removes an item.
func (s *SQLStore) Delete(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return &apperr.NotFoundError{Resource: "item", ID: itemID}
	}
	return nil
}

// titleKeys are the data keys tried, in order, for a fallback slug.
var titleKeys = []string{"title", "name", "heading"}

// FallbackSlug derives a slug for an item saved without one.
func FallbackSlug(data model.Data, id string) string {
	for _, k := range titleKeys {
		if v, ok := data[k].(string); ok {
			if slug := util.Slugify(v); slug != "" {
				return slug
			}
		}
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return "item-" + id
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(row scanner) (*model.Collection, error) {
	var (
		c                model.Collection
		typ, fields      string
		defaultPublished sql.NullBool
	)
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &typ, &fields, &defaultPublished); err != nil {
		return nil, err
	}
	c.Type = model.CollectionType(typ)
	if err := json.Unmarshal([]byte(fields), &c.Fields); err != nil {
		return nil, &apperr.SchemaError{Collection: c.Slug, Message: "stored fields are malformed: " + err.Error()}
	}
	if defaultPublished.Valid {
		v := defaultPublished.Bool
		c.DefaultPublished = &v
	}
	return &c, nil
}

func scanItem(row scanner) (*model.ContentItem, error) {
	var (
		item                 model.ContentItem
		data                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&item.ID, &item.CollectionID, &item.Slug, &data, &item.IsPublished, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &item.Data); err != nil {
		return nil, fmt.Errorf("decoding item %s data: %w", item.ID, err)
	}
	if item.Data == nil {
		item.Data = model.Data{}
	}

	var err error
	if item.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &item, nil
}
