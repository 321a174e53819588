// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package screen hosts editor sessions: it mounts the list and editor
// screens behind routes and connects them to the navigation guard.
package screen

import (
	"fmt"
	"net/url"
	"strings"
)

// RouteKind identifies a screen.
type RouteKind int

// Route kinds
const (
	RouteCollections RouteKind = iota + 1
	RouteList
	RouteCreate
	RouteEdit
)

func (k RouteKind) String() string {
	switch k {
	case RouteCollections:
		return "collections"
	case RouteList:
		return "list"
	case RouteCreate:
		return "create"
	case RouteEdit:
		return "edit"
	}
	return "unknown"
}

// Route is a parsed destination.
type Route struct {
	Kind       RouteKind
	Collection string
	ItemID     string
}

// CollectionsPath is the home route.
const CollectionsPath = "/collections"

// ListPath returns the list route of a collection.
func ListPath(collection string) string {
	return CollectionsPath + "/" + url.PathEscape(collection)
}

// CreatePath returns the create-editor route of a collection.
func CreatePath(collection string) string {
	return ListPath(collection) + "/new"
}

// EditPath returns the editor route of an item.
func EditPath(collection, itemID string) string {
	return ListPath(collection) + "/items/" + url.PathEscape(itemID)
}

// Path renders r back into a destination string.
func (r Route) Path() string {
	switch r.Kind {
	case RouteList:
		return ListPath(r.Collection)
	case RouteCreate:
		return CreatePath(r.Collection)
	case RouteEdit:
		return EditPath(r.Collection, r.ItemID)
	}
	return CollectionsPath
}

// ParseRoute parses a destination such as /collections/posts/items/42.
func ParseRoute(dest string) (Route, error) {
	trimmed := strings.Trim(dest, "/")
	if trimmed == "" {
		return Route{Kind: RouteCollections}, nil
	}

	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		unescaped, err := url.PathUnescape(p)
		if err != nil || unescaped == "" {
			return Route{}, fmt.Errorf("invalid route %q", dest)
		}
		parts[i] = unescaped
	}
	if parts[0] != "collections" {
		return Route{}, fmt.Errorf("unknown route %q", dest)
	}

	switch {
	case len(parts) == 1:
		return Route{Kind: RouteCollections}, nil
	case len(parts) == 2:
		return Route{Kind: RouteList, Collection: parts[1]}, nil
	case len(parts) == 3 && parts[2] == "new":
		return Route{Kind: RouteCreate, Collection: parts[1]}, nil
	case len(parts) == 4 && parts[2] == "items":
		return Route{Kind: RouteEdit, Collection: parts[1], ItemID: parts[3]}, nil
	}
	return Route{}, fmt.Errorf("unknown route %q", dest)
}
