// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/olegiv/ocms-editor/internal/cache"
	"github.com/olegiv/ocms-editor/internal/config"
	"github.com/olegiv/ocms-editor/internal/logging"
	"github.com/olegiv/ocms-editor/internal/media"
	"github.com/olegiv/ocms-editor/internal/permission"
	"github.com/olegiv/ocms-editor/internal/schema"
	"github.com/olegiv/ocms-editor/internal/screen"
	"github.com/olegiv/ocms-editor/internal/store/httpstore"
)

// App is a wired console with the resources it must release.
type App struct {
	Console *Console
	Client  *httpstore.Client
	cache   cache.Cache
	logger  *slog.Logger
}

// Close releases the schema cache.
func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	st := a.cache.Stats()
	a.logger.Debug("schema cache closed", "hits", st.Hits, "misses", st.Misses, "sets", st.Sets)
	return a.cache.Close()
}

// Build wires the REST client, schema cache, guard and screens for cfg.
func Build(cfg *config.ConsoleConfig, in io.Reader, out io.Writer, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := httpstore.New(httpstore.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
		Logger:    logging.Component(logger, "store"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating store client: %w", err)
	}

	schemaCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxSize:    1000,
	}, logging.Component(logger, "cache"))

	term := NewTerminal(in, out)
	published := cfg.DefaultPublished
	shell := screen.NewShell(screen.Deps{
		Store:            client,
		Resolver:         schema.NewResolver(client, schemaCache, cfg.CacheTTL, logging.Component(logger, "schema")),
		Oracle:           permission.NewStatic(cfg.Capabilities...),
		Notifier:         term,
		Picker:           media.URLPrompt{In: term},
		TitleFields:      cfg.TitleFields,
		DefaultPublished: &published,
		Logger:           logging.Component(logger, "screen"),
	}, term)

	return &App{
		Console: New(shell, term, logger),
		Client:  client,
		cache:   schemaCache,
		logger:  logging.Component(logger, "cache"),
	}, nil
}
