// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/gosuri/uitable"

	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/screen"
)

const maxValueWidth = 60

func (c *Console) render() {
	switch s := c.shell.Current().(type) {
	case *screen.CollectionsScreen:
		c.renderCollections(s)
	case *screen.ListScreen:
		c.renderList(s)
	case *screen.EditorScreen:
		c.renderEditor(s)
	case *screen.ErrorScreen:
		_, _ = errorColor.Fprintf(c.out, "%s: %v\n", s.Route().Path(), s.Err)
	}
}

func (c *Console) renderCollections(s *screen.CollectionsScreen) {
	_, _ = titleColor.Fprintln(c.out, "Collections")
	if len(s.Collections) == 0 {
		_, _ = faintColor.Fprintln(c.out, " none")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("SLUG", "NAME", "TYPE", "FIELDS")
	for _, col := range s.Collections {
		tbl.AddRow(col.Slug, col.Name, string(col.Type), len(col.Fields))
	}
	_, _ = fmt.Fprintln(c.out, tbl)
}

func (c *Console) renderList(s *screen.ListScreen) {
	rows := s.Rows()
	_, _ = titleColor.Fprint(c.out, s.Collection.Name)
	_, _ = faintColor.Fprintf(c.out, " - %d items\n", len(rows))
	if len(rows) == 0 {
		_, _ = faintColor.Fprintln(c.out, " none; type new to create one")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxValueWidth
	tbl.AddRow("#", "TITLE", "SLUG", "PUBLISHED", "UPDATED")
	for i, r := range rows {
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		tbl.AddRow(i+1, r.Title, r.Slug, yesNo(r.Published), updated)
	}
	_, _ = fmt.Fprintln(c.out, tbl)
}

func (c *Console) renderEditor(s *screen.EditorScreen) {
	sess := s.Session()
	col := sess.Collection()
	w := sess.WorkingCopy()
	modified := sess.ModifiedFields()

	heading := "New " + col.Name
	if id := sess.ItemID(); id != "" {
		heading = col.Name + " " + id
	}
	_, _ = titleColor.Fprintln(c.out, heading)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxValueWidth
	for _, f := range col.Fields {
		v, _ := sess.Value(f.Name)
		tbl.AddRow(marker(slices.Contains(modified, f.Name)), label(f), f.Type.String(), formatValue(f.Type, v))
	}

	var orphans []string
	for k := range w.Data {
		if _, ok := col.Field(k); !ok {
			orphans = append(orphans, k)
		}
	}
	sort.Strings(orphans)
	for _, k := range orphans {
		tbl.AddRow(marker(slices.Contains(modified, k)), k, "(not in schema)", fmt.Sprint(w.Data[k]))
	}

	snap := sess.Snapshot()
	tbl.AddRow(marker(w.Slug != snap.Slug), "Slug", "", w.Slug)
	tbl.AddRow(marker(w.IsPublished != snap.IsPublished), "Published", "", yesNo(w.IsPublished))
	_, _ = fmt.Fprintln(c.out, tbl)

	if sess.Dirty() {
		_, _ = dirtyColor.Fprintln(c.out, "Unsaved changes.")
	}
	if !s.CanEdit() {
		_, _ = faintColor.Fprintln(c.out, "Read only.")
	}
}

func label(f model.FieldDefinition) string {
	if f.Required {
		return f.DisplayLabel() + " *"
	}
	return f.DisplayLabel()
}

func marker(changed bool) string {
	if changed {
		return "~"
	}
	return " "
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatValue(t fieldtype.FieldType, v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		if t == fieldtype.Number {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
	}
	return fmt.Sprint(v)
}

func (c *Console) help() {
	_, _ = titleColor.Fprintln(c.out, "Commands")
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, row := range [][2]string{
		{"collections", "list collections"},
		{"open <collection> [id]", "open a collection, or one item"},
		{"open <n|id|slug>", "open an item of the current list"},
		{"new [collection]", "create an item"},
		{"show", "redraw the current screen"},
		{"refresh", "reload collection schemas from the server"},
		{"set <field> <value>", "change a field"},
		{"slug <value>", "set the slug by hand"},
		{"publish on|off", "change publication"},
		{"media <field>", "pick a URL for an image or file field"},
		{"revert <field>", "undo changes to one field"},
		{"save", "save the item"},
		{"delete", "delete the item"},
		{"go <path>", "go to a route, e.g. /collections/posts"},
		{"back", "go to the previous screen"},
		{"quit", "leave the console"},
	} {
		tbl.AddRow(row[0], row[1])
	}
	_, _ = fmt.Fprintln(c.out, tbl)
}
