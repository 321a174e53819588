// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/model"
)

// DemoCollections are the collections created by Seed.
func DemoCollections() []model.Collection {
	return []model.Collection{
		{
			Slug: "posts",
			Name: "Posts",
			Type: model.CollectionRepeatable,
			Fields: []model.FieldDefinition{
				{Name: "title", Label: "Title", Type: fieldtype.Text, Required: true},
				{Name: "body", Label: "Body", Type: fieldtype.RichText},
				{Name: "cover", Label: "Cover image", Type: fieldtype.Image},
				{Name: "reading_time", Label: "Reading time (min)", Type: fieldtype.Number},
				{Name: "featured", Label: "Featured", Type: fieldtype.Boolean},
			},
		},
		{
			Slug: "about",
			Name: "About page",
			Type: model.CollectionSingleton,
			Fields: []model.FieldDefinition{
				{Name: "heading", Label: "Heading", Type: fieldtype.Text, Required: true},
				{Name: "content", Label: "Content", Type: fieldtype.RichText},
				{Name: "contact_email", Label: "Contact email", Type: fieldtype.Email},
				{Name: "phone", Label: "Phone", Type: fieldtype.Tel},
			},
		},
		{
			Slug: "site-settings",
			Name: "Site settings",
			Type: model.CollectionSingleton,
			Fields: []model.FieldDefinition{
				{Name: "site_name", Label: "Site name", Type: fieldtype.Text, Required: true},
				{Name: "homepage", Label: "Homepage URL", Type: fieldtype.URL},
				{Name: "brand_color", Label: "Brand colour", Type: fieldtype.Color},
				{Name: "logo", Label: "Logo", Type: fieldtype.Image},
				{Name: "press_kit", Label: "Press kit", Type: fieldtype.File},
				{Name: "launch_date", Label: "Launch date", Type: fieldtype.Date},
			},
		},
	}
}

// Seed creates the demo collections that do not exist yet.
func Seed(ctx context.Context, s *SQLStore, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for _, c := range DemoCollections() {
		_, err := s.GetCollection(ctx, c.Slug)
		if err == nil {
			logger.Debug("collection already exists, skipping seed", "slug", c.Slug)
			continue
		}
		if !apperr.IsNotFound(err) {
			return fmt.Errorf("checking collection %s: %w", c.Slug, err)
		}

		created, err := s.CreateCollection(ctx, c)
		if err != nil {
			return fmt.Errorf("seeding collection %s: %w", c.Slug, err)
		}
		logger.Info("seeded collection", "slug", created.Slug, "id", created.ID, "type", created.Type)
	}
	return nil
}
