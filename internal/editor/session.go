// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor implements the editor session: the working copy of one
// content item, its dirtiness against the last persisted snapshot, and the
// save pipeline.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/fieldtype"
	"github.com/olegiv/ocms-editor/internal/media"
	"github.com/olegiv/ocms-editor/internal/model"
	"github.com/olegiv/ocms-editor/internal/schema"
	"github.com/olegiv/ocms-editor/internal/util"
)

// Session errors
var (
	ErrSaveInProgress = errors.New("editor: save already in progress")
	ErrSessionClosed  = errors.New("editor: session closed")
	ErrNotReady       = errors.New("editor: session not ready")
	ErrUnknownField   = errors.New("editor: unknown field")
	ErrNotMediaField  = errors.New("editor: not a media field")
	ErrNoPicker       = errors.New("editor: no media picker configured")
)

// DefaultTitleFields are the field names whose value drives slug derivation,
// in order of preference.
var DefaultTitleFields = []string{"title", "name", "heading"}

// Store is the part of the entity store a session needs.
type Store interface {
	Get(ctx context.Context, itemID string) (*model.ContentItem, error)
	Create(ctx context.Context, collectionID string, p model.Payload) (*model.ContentItem, error)
	Update(ctx context.Context, itemID string, p model.Payload) (*model.ContentItem, error)
}

// Mode tells whether the session edits a new or an existing item.
type Mode int

// Session modes
const (
	ModeCreate Mode = iota + 1
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	}
	return "unknown"
}

// State is the lifecycle state of a session.
type State int

// Session states
const (
	StateLoading State = iota
	StateReady
	StateSaving
	StateMissing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateMissing:
		return "missing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Options configures a session.
type Options struct {
	// TitleFields overrides DefaultTitleFields.
	TitleFields []string

	// DefaultPublished overrides the collection's default for new items.
	DefaultPublished *bool

	Picker   media.Picker
	Observer Observer
	Logger   *slog.Logger
}

// WorkingCopy is the editable part of an item.
type WorkingCopy struct {
	Data        model.Data
	IsPublished bool
	Slug        string
}

func (w WorkingCopy) clone() WorkingCopy {
	w.Data = w.Data.Clone()
	return w
}

// Equal reports structural equality.
func (w WorkingCopy) Equal(o WorkingCopy) bool {
	return w.IsPublished == o.IsPublished && w.Slug == o.Slug && w.Data.Equal(o.Data)
}

// Session owns the working copy of one item.
type Session struct {
	mu sync.Mutex

	store      Store
	collection *model.Collection
	picker     media.Picker
	observer   Observer
	logger     *slog.Logger
	titleField string

	mode       Mode
	state      State
	itemID     string
	item       *model.ContentItem
	working    WorkingCopy
	snapshot   WorkingCopy
	slugEdited bool
	lastErr    error
}

func newSession(c *model.Collection, st Store, opts Options) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	titles := opts.TitleFields
	if len(titles) == 0 {
		titles = DefaultTitleFields
	}
	return &Session{
		store:      st,
		collection: c,
		picker:     opts.Picker,
		observer:   opts.Observer,
		logger:     logger.With("collection", c.Slug),
		titleField: pickTitleField(c, titles),
		state:      StateLoading,
	}, nil
}

// pickTitleField returns the first candidate declared as a text field.
func pickTitleField(c *model.Collection, candidates []string) string {
	for _, name := range candidates {
		if f, ok := c.Field(name); ok && f.Type == fieldtype.Text {
			return name
		}
	}
	return ""
}

// NewCreate starts a session for a new item. Every declared field holds its
// type's default and the session is clean.
func NewCreate(c *model.Collection, st Store, opts Options) (*Session, error) {
	s, err := newSession(c, st, opts)
	if err != nil {
		return nil, err
	}
	data, err := schema.DefaultData(c)
	if err != nil {
		return nil, err
	}

	published := c.PublishedByDefault()
	if opts.DefaultPublished != nil {
		published = *opts.DefaultPublished
	}

	s.mode = ModeCreate
	s.working = WorkingCopy{Data: data, IsPublished: published}
	s.snapshot = s.working.clone()
	s.state = StateReady
	return s, nil
}

// Load starts a session for an existing item. A missing item is not an
// error: the session comes back in StateMissing for the host to handle.
// Any other failure aborts construction.
func Load(ctx context.Context, c *model.Collection, st Store, itemID string, opts Options) (*Session, error) {
	s, err := newSession(c, st, opts)
	if err != nil {
		return nil, err
	}
	s.mode = ModeUpdate
	s.itemID = itemID

	item, err := st.Get(ctx, itemID)
	switch {
	case apperr.IsNotFound(err):
		s.logger.Info("item not found", "item_id", itemID)
		s.state = StateMissing
		return s, nil
	case err != nil:
		s.logger.Error("failed to load item", "item_id", itemID, "error", err)
		return nil, fmt.Errorf("loading item %s: %w", itemID, err)
	}
	if item.CollectionID != "" && item.CollectionID != c.ID {
		s.logger.Warn("item belongs to another collection", "item_id", itemID, "collection_id", item.CollectionID)
		s.state = StateMissing
		return s, nil
	}

	s.item = item
	s.working = WorkingCopy{Data: item.Data.Clone(), IsPublished: item.IsPublished, Slug: item.Slug}
	if s.working.Data == nil {
		s.working.Data = model.Data{}
	}
	s.snapshot = s.working.clone()
	s.state = StateReady
	return s, nil
}

// Collection returns the schema the session edits against.
func (s *Session) Collection() *model.Collection { return s.collection }

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Missing reports whether the item to edit does not exist.
func (s *Session) Missing() bool { return s.State() == StateMissing }

// ItemID returns the id of the edited item, empty before the first save of
// a new item.
func (s *Session) ItemID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemID
}

// Item returns the last item returned by the store.
func (s *Session) Item() *model.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil {
		return nil
	}
	cp := *s.item
	cp.Data = s.item.Data.Clone()
	return &cp
}

// LastError returns the error of the most recent failed save.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// TitleField returns the field that drives slug derivation, if any.
func (s *Session) TitleField() string { return s.titleField }

// WorkingCopy returns a deep copy of the working copy.
func (s *Session) WorkingCopy() WorkingCopy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.clone()
}

// Snapshot returns a deep copy of the last persisted or initial state.
func (s *Session) Snapshot() WorkingCopy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.clone()
}

// Value returns the working value of a field, or its type's default when the
// item has no value for a declared field.
func (s *Session) Value(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.working.Data[name]; ok {
		return v, true
	}
	f, ok := s.collection.Field(name)
	if !ok {
		return nil, false
	}
	v, err := fieldtype.DefaultValueFor(f.Type)
	return v, err == nil
}

// Dirty reports whether the working copy differs from the snapshot.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.working.Equal(s.snapshot)
}

// ModifiedFields returns the data keys whose working value differs from the
// snapshot, sorted.
func (s *Session) ModifiedFields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for k, v := range s.working.Data {
		if old, ok := s.snapshot.Data[k]; !ok || !reflect.DeepEqual(v, old) {
			out = append(out, k)
		}
	}
	for k := range s.snapshot.Data {
		if _, ok := s.working.Data[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Session) checkMutable() error {
	switch s.state {
	case StateReady, StateSaving:
		return nil
	case StateClosed:
		return ErrSessionClosed
	}
	return ErrNotReady
}

// SetField replaces one declared field's value and leaves every other key,
// orphans included, untouched. Values are not validated until save; numbers
// are stored as float64.
func (s *Session) SetField(name string, value any) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	f, ok := s.collection.Field(name)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if f.Type == fieldtype.Number {
		if n, err := fieldtype.Normalize(f.Type, value); err == nil {
			value = n
		}
	}

	s.working.Data[name] = value
	if name == s.titleField && s.mode == ModeCreate && !s.slugEdited {
		if title, ok := value.(string); ok {
			s.working.Slug = util.DeriveSlug(title)
		}
	}
	ev := s.eventLocked(EventDirty)
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// SetSlug sets the slug by hand. Automatic derivation stops for the rest of
// the session.
func (s *Session) SetSlug(slug string) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.slugEdited = true
	s.working.Slug = slug
	ev := s.eventLocked(EventDirty)
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Slug returns the working slug.
func (s *Session) Slug() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Slug
}

// SetPublished sets the publication flag.
func (s *Session) SetPublished(published bool) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.working.IsPublished = published
	ev := s.eventLocked(EventDirty)
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// IsPublished returns the working publication flag.
func (s *Session) IsPublished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.IsPublished
}

// RevertField restores one key to its snapshot value, removing it when the
// snapshot has none.
func (s *Session) RevertField(name string) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	if old, ok := s.snapshot.Data[name]; ok {
		s.working.Data[name] = model.Data{name: old}.Clone()[name]
	} else {
		delete(s.working.Data, name)
	}
	ev := s.eventLocked(EventDirty)
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// OpenMediaPicker asks the picker for a URL and stores it like any other
// edit. A cancelled pick returns media.ErrCancelled and changes nothing.
func (s *Session) OpenMediaPicker(ctx context.Context, name string) error {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return err
	}
	f, ok := s.collection.Field(name)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !f.Type.IsMedia() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrNotMediaField, name, f.Type)
	}
	if s.picker == nil {
		s.mu.Unlock()
		return ErrNoPicker
	}
	current, _ := s.working.Data[name].(string)
	picker := s.picker
	s.mu.Unlock()

	url, err := picker.Pick(ctx, media.Request{Field: name, Label: f.DisplayLabel(), Type: f.Type, Current: current})
	if err != nil {
		return err
	}
	return s.SetField(name, url)
}

// Close ends the session. Responses of requests still in flight are
// discarded when they arrive.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
}

// validateLocked checks required fields, value types and the slug.
// Undeclared keys are never checked, and the type of a declared field is
// only checked once it differs from the snapshot, so values that drifted
// from a later schema change are saved back as they were loaded.
func (s *Session) validateLocked() *apperr.ValidationError {
	ve := &apperr.ValidationError{}
	for _, f := range s.collection.Fields {
		v, present := s.working.Data[f.Name]
		if f.Required && (!present || isBlank(v)) {
			ve.Add(f.Name, "is required")
			continue
		}
		old, had := s.snapshot.Data[f.Name]
		if had && reflect.DeepEqual(v, old) {
			continue
		}
		if present && !fieldtype.Conforms(f.Type, v) {
			ve.Add(f.Name, "must be a "+f.Type.String())
		}
	}
	if s.working.Slug != "" && !util.IsEditorSlug(s.working.Slug) {
		ve.Add("slug", "may only contain letters, digits, '-' and '_'")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}
