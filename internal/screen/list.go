// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ocms-editor/internal/editor"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/schema"
)

// ListScreen shows the items of a repeatable collection. For a singleton it
// never becomes the current screen: loading it redirects to the editor.
type ListScreen struct {
	route      Route
	Collection *model.Collection
	Items      []model.ContentItem

	titleFields []string
	redirected  bool
}

// Route implements Screen.
func (l *ListScreen) Route() Route { return l.route }

// Row is one line of the list.
type Row struct {
	ID        string
	Title     string
	Slug      string
	Published bool
	UpdatedAt time.Time
}

// Rows returns the items in list order with a display title each.
func (l *ListScreen) Rows() []Row {
	rows := make([]Row, 0, len(l.Items))
	for _, it := range l.Items {
		rows = append(rows, Row{
			ID:        it.ID,
			Title:     displayTitle(it, l.titleFields),
			Slug:      it.Slug,
			Published: it.IsPublished,
			UpdatedAt: it.UpdatedAt,
		})
	}
	return rows
}

func displayTitle(it model.ContentItem, fields []string) string {
	for _, f := range fields {
		if v, ok := it.Data[f].(string); ok && v != "" {
			return v
		}
	}
	if it.Slug != "" {
		return it.Slug
	}
	return it.ID
}

func (l *ListScreen) load(ctx context.Context, s *Shell) error {
	c, err := s.deps.Resolver.ResolveCollection(ctx, l.route.Collection)
	if err != nil {
		return err
	}
	items, err := s.deps.Store.List(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("listing items of %s: %w", c.Slug, err)
	}

	l.Collection = c
	l.Items = items
	l.titleFields = s.deps.TitleFields
	if len(l.titleFields) == 0 {
		l.titleFields = editor.DefaultTitleFields
	}

	if !c.IsSingleton() || l.redirected {
		return nil
	}

	d := schema.DecideSingleton(items)
	if d.Surplus > 0 {
		s.logger.Warn("singleton collection holds more than one item, opening the first",
			"collection", c.Slug, "items", len(items), "item_id", d.ItemID)
	}
	dest := CreatePath(c.Slug)
	if d.Target == schema.RedirectEdit {
		dest = EditPath(c.Slug, d.ItemID)
	}

	l.redirected = true
	s.logger.Debug("singleton redirect", "collection", c.Slug, "target", d.Target, "destination", dest)
	return s.Replace(ctx, dest)
}
