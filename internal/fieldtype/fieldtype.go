// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fieldtype declares the closed set of field kinds a collection schema
// may use, together with their default values and presentation widgets.
package fieldtype

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/olegiv/ocms-editor/internal/apperr"
)

// FieldType is a supported field kind. The set is closed: every switch over
// FieldType in this package is exhaustive.
type FieldType int

// Supported field types.
const (
	Text FieldType = iota + 1
	RichText
	Number
	Date
	URL
	Email
	Tel
	Color
	Image
	File
	Boolean
)

// DefaultColor is the initial value of color fields.
const DefaultColor = "#000000"

// All lists every field type in declaration order.
var All = []FieldType{Text, RichText, Number, Date, URL, Email, Tel, Color, Image, File, Boolean}

// Kind is the underlying value type of a field.
type Kind int

// Underlying value kinds.
const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// Widget is a presentation tag. It carries no meaning for data integrity.
type Widget string

// Widget tags.
const (
	WidgetTextInput   Widget = "text-input"
	WidgetEditor      Widget = "rich-editor"
	WidgetNumberInput Widget = "number-input"
	WidgetDatePicker  Widget = "date-picker"
	WidgetURLInput    Widget = "url-input"
	WidgetEmailInput  Widget = "email-input"
	WidgetTelInput    Widget = "tel-input"
	WidgetColorPicker Widget = "color-picker"
	WidgetMediaPicker Widget = "media-picker"
	WidgetFilePicker  Widget = "file-picker"
	WidgetToggle      Widget = "toggle"
)

// String returns the wire name of the type.
func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case RichText:
		return "richText"
	case Number:
		return "number"
	case Date:
		return "date"
	case URL:
		return "url"
	case Email:
		return "email"
	case Tel:
		return "tel"
	case Color:
		return "color"
	case Image:
		return "image"
	case File:
		return "file"
	case Boolean:
		return "boolean"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Parse returns the FieldType for a wire name.
func Parse(name string) (FieldType, error) {
	for _, t := range All {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, &apperr.SchemaError{Field: "", Message: fmt.Sprintf("unknown field type %q", name)}
}

// Valid reports whether t is one of the declared types.
func (t FieldType) Valid() bool {
	return t >= Text && t <= Boolean
}

// Kind returns the underlying value kind of t.
func (t FieldType) Kind() (Kind, error) {
	switch t {
	case Text, RichText, Date, URL, Email, Tel, Color, Image, File:
		return KindString, nil
	case Number:
		return KindNumber, nil
	case Boolean:
		return KindBool, nil
	}
	return 0, unknown(t)
}

// DefaultValueFor returns the initial value of a field of type t.
func DefaultValueFor(t FieldType) (any, error) {
	switch t {
	case Text, RichText, Date, URL, Email, Tel, Image, File:
		return "", nil
	case Color:
		return DefaultColor, nil
	case Number:
		return float64(0), nil
	case Boolean:
		return false, nil
	}
	return nil, unknown(t)
}

// WidgetKindFor returns the presentation widget for t.
func WidgetKindFor(t FieldType) (Widget, error) {
	switch t {
	case Text:
		return WidgetTextInput, nil
	case RichText:
		return WidgetEditor, nil
	case Number:
		return WidgetNumberInput, nil
	case Date:
		return WidgetDatePicker, nil
	case URL:
		return WidgetURLInput, nil
	case Email:
		return WidgetEmailInput, nil
	case Tel:
		return WidgetTelInput, nil
	case Color:
		return WidgetColorPicker, nil
	case Image:
		return WidgetMediaPicker, nil
	case File:
		return WidgetFilePicker, nil
	case Boolean:
		return WidgetToggle, nil
	}
	return "", unknown(t)
}

// IsMedia reports whether values of t are picked through the media collaborator.
func (t FieldType) IsMedia() bool {
	return t == Image || t == File
}

// Conforms reports whether v holds a value of t's underlying type.
// Any Go numeric type is accepted for number fields.
func Conforms(t FieldType, v any) bool {
	k, err := t.Kind()
	if err != nil {
		return false
	}
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindNumber:
		_, ok := toFloat(v)
		return ok
	}
	return false
}

// Normalize converts v to the canonical representation of t: float64 for
// numbers, string and bool otherwise. It fails when v does not conform.
func Normalize(t FieldType, v any) (any, error) {
	if !Conforms(t, v) {
		return nil, fmt.Errorf("value %v (%T) is not a %s", v, v, t)
	}
	if t == Number {
		f, _ := toFloat(v)
		return f, nil
	}
	return v, nil
}

// toFloat accepts finite numbers only; NaN and infinities have no JSON form.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case float32:
		return float64(n), finite(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && finite(f)
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, unknown(t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FieldType) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func unknown(t FieldType) error {
	return &apperr.SchemaError{Message: fmt.Sprintf("unknown field type %s", t)}
}
