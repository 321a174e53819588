// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/olegiv/ocms-editor/internal/config"
	"github.com/olegiv/ocms-editor/internal/logging"
	"github.com/olegiv/ocms-editor/internal/screen"
	"github.com/olegiv/ocms-editor/internal/version"
)

// rootOptions are flags shared by every command.
type rootOptions struct {
	apiURL  string
	noColor bool
	debug   bool
}

// NewCommand builds the ocms-console command tree.
func NewCommand(info version.Info) *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ocms-console",
		Short:         "Schema-driven content editor for oCMS collections.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if o.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.interactive(cmd, screen.CollectionsPath)
		},
	}
	cmd.PersistentFlags().StringVar(&o.apiURL, "api-url", "", "content service URL (overrides OCMS_API_URL)")
	cmd.PersistentFlags().BoolVar(&o.noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "log at debug level")

	addCollections(cmd, o)
	addOpen(cmd, o)
	addVersion(cmd, info)
	return cmd
}

func addCollections(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.build(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			cols, err := app.Client.ListCollections(cmd.Context())
			if err != nil {
				return err
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("SLUG", "NAME", "TYPE", "FIELDS")
			for _, c := range cols {
				tbl.AddRow(c.Slug, c.Name, string(c.Type), len(c.Fields))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addOpen(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "open <collection> [item-id]",
		Short: "Open a collection or an item in the interactive editor",
		Example: `
ocms-console open posts
ocms-console open about
ocms-console open posts 3f2a9c1e-...
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := screen.ListPath(args[0])
			if len(args) == 2 {
				dest = screen.EditPath(args[0], args[1])
			}
			return o.interactive(cmd, dest)
		},
	}
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command, info version.Info) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info.Long("ocms-console"))
		},
	})
}

func (o *rootOptions) load() (*config.ConsoleConfig, error) {
	if o.apiURL != "" {
		if err := os.Setenv("OCMS_API_URL", o.apiURL); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConsole()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func (o *rootOptions) build(cmd *cobra.Command) (*App, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)
	return Build(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

func (o *rootOptions) interactive(cmd *cobra.Command, dest string) error {
	app, err := o.build(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Console.Run(ctx, dest)
}

// Execute runs the command tree and reports errors on stderr.
func Execute(ctx context.Context, info version.Info, stderr io.Writer) int {
	cmd := NewCommand(info)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
