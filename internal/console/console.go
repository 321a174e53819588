// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console is the interactive terminal front end of the editor. It
// renders the mounted screen and turns operator commands into session
// mutations and guarded navigation.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olegiv/ocms-editor/internal/editor"
	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/guard"
	"github.com/olegiv/ocms-editor/internal/media"
	"github.com/olegiv/ocms-editor/internal/screen"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// Console runs the command loop over a Shell.
type Console struct {
	shell  *screen.Shell
	term   *Terminal
	out    io.Writer
	logger *slog.Logger
}

// New creates a Console. The shell must use term as its prompter and notifier.
func New(shell *screen.Shell, term *Terminal, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{shell: shell, term: term, out: term.out, logger: logger}
}

// Run starts at dest and reads commands until quit or end of input.
func (c *Console) Run(ctx context.Context, dest string) error {
	if err := c.shell.Start(ctx); err != nil {
		return err
	}
	if dest != "" && dest != screen.CollectionsPath {
		if _, err := c.shell.Go(ctx, dest); err != nil {
			return err
		}
	}
	c.render()

	for {
		line, err := c.term.ReadLine(ctx, c.promptText())
		if errors.Is(err, ErrInputClosed) {
			return c.quit(ctx)
		}
		if err != nil {
			return err
		}

		err = c.Exec(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			_, _ = errorColor.Fprintln(c.out, err)
		}
	}
}

func (c *Console) promptText() string {
	p := c.shell.Current().Route().Path()
	if es, ok := c.shell.Current().(*screen.EditorScreen); ok && es.Session().Dirty() {
		p += "*"
	}
	return p + "> "
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))

	switch cmd {
	case "help", "?":
		c.help()
		return nil
	case "quit", "exit":
		if err := c.quit(ctx); err != nil {
			return err
		}
		return errQuit
	case "show", "ls":
		c.render()
		return nil
	case "collections":
		return c.navigate(ctx, screen.CollectionsPath)
	case "go":
		if len(args) != 1 {
			return errors.New("usage: go <destination>")
		}
		return c.navigate(ctx, args[0])
	case "refresh":
		if err := c.shell.Refresh(ctx); err != nil {
			return err
		}
		_, _ = faintColor.Fprintln(c.out, "Schemas reloaded.")
		c.render()
		return nil
	case "back":
		out, err := c.shell.GoBack(ctx)
		return c.afterNavigation(out, err)
	case "open":
		return c.open(ctx, args)
	case "new":
		return c.newItem(ctx, args)
	}

	es, ok := c.shell.Current().(*screen.EditorScreen)
	if !ok {
		return fmt.Errorf("unknown command %q here; type help", cmd)
	}
	return c.execEditor(ctx, es, cmd, args, rest)
}

func (c *Console) execEditor(ctx context.Context, es *screen.EditorScreen, cmd string, args []string, rest string) error {
	s := es.Session()
	switch cmd {
	case "set":
		if len(args) < 1 {
			return errors.New("usage: set <field> <value>")
		}
		if !es.CanEdit() {
			return screen.ErrForbidden
		}
		value := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		return s.SetField(args[0], parseValue(s, args[0], value))
	case "slug":
		if !es.CanEdit() {
			return screen.ErrForbidden
		}
		return s.SetSlug(rest)
	case "publish":
		if len(args) != 1 {
			return errors.New("usage: publish on|off")
		}
		on, err := parseBool(args[0])
		if err != nil {
			return err
		}
		if !es.CanEdit() {
			return screen.ErrForbidden
		}
		return s.SetPublished(on)
	case "media":
		if len(args) != 1 {
			return errors.New("usage: media <field>")
		}
		if !es.CanEdit() {
			return screen.ErrForbidden
		}
		err := s.OpenMediaPicker(ctx, args[0])
		if errors.Is(err, media.ErrCancelled) {
			_, _ = faintColor.Fprintln(c.out, "No change.")
			return nil
		}
		return err
	case "revert":
		if len(args) != 1 {
			return errors.New("usage: revert <field>")
		}
		if !es.CanEdit() {
			return screen.ErrForbidden
		}
		return s.RevertField(args[0])
	case "save":
		err := es.Save(ctx)
		if err != nil && !errors.Is(err, screen.ErrForbidden) && !errors.Is(err, editor.ErrSaveInProgress) {
			// Already reported through the notifier.
			return nil
		}
		return err
	case "delete":
		return es.Delete(ctx)
	}
	return fmt.Errorf("unknown command %q; type help", cmd)
}

func (c *Console) open(ctx context.Context, args []string) error {
	if ls, ok := c.shell.Current().(*screen.ListScreen); ok && len(args) == 1 {
		rows := ls.Rows()
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 1 && n <= len(rows) {
			return c.navigate(ctx, screen.EditPath(ls.Collection.Slug, rows[n-1].ID))
		}
		for _, r := range rows {
			if r.ID == args[0] || r.Slug == args[0] {
				return c.navigate(ctx, screen.EditPath(ls.Collection.Slug, r.ID))
			}
		}
	}
	switch len(args) {
	case 1:
		return c.navigate(ctx, screen.ListPath(args[0]))
	case 2:
		return c.navigate(ctx, screen.EditPath(args[0], args[1]))
	}
	return errors.New("usage: open <collection> [item-id]")
}

func (c *Console) newItem(ctx context.Context, args []string) error {
	if len(args) == 1 {
		return c.navigate(ctx, screen.CreatePath(args[0]))
	}
	if ls, ok := c.shell.Current().(*screen.ListScreen); ok && len(args) == 0 {
		return c.navigate(ctx, screen.CreatePath(ls.Collection.Slug))
	}
	return errors.New("usage: new <collection>")
}

func (c *Console) navigate(ctx context.Context, dest string) error {
	out, err := c.shell.Go(ctx, dest)
	return c.afterNavigation(out, err)
}

func (c *Console) afterNavigation(out guard.Outcome, err error) error {
	switch out {
	case guard.Navigated:
		c.render()
	case guard.SaveFailed:
		// The notifier has shown why; the operator stays on the editor.
		return nil
	}
	return err
}

// quit leaves through the guard so unsaved edits get the same prompt.
func (c *Console) quit(ctx context.Context) error {
	if !c.shell.Guard().Dirty() {
		return nil
	}
	out, err := c.shell.Go(ctx, screen.CollectionsPath)
	if err != nil && !errors.Is(err, ErrInputClosed) {
		return err
	}
	if out != guard.Navigated {
		return errors.New("unsaved changes kept; not quitting")
	}
	return nil
}

// parseValue converts command text to the field's underlying type. Text
// that does not parse is kept as typed and rejected at save.
func parseValue(s *editor.Session, name, raw string) any {
	f, ok := s.Collection().Field(name)
	if !ok {
		return raw
	}
	switch f.Type {
	case fieldtype.Number:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case fieldtype.Boolean:
		if b, err := parseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "y", "true", "1":
		return true, nil
	case "off", "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
