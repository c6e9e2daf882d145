/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain holds the scene data model shared by every editor component.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Creation defaults and interaction constants.
const (
	MinSize         = 40
	DefaultSize     = 250
	NudgeStep       = 5
	PlacementMargin = 10
	DefaultOpacity  = 100
)

// ErrUnknownKind is returned when an element kind outside the closed set is requested.
var ErrUnknownKind = errors.New("unknown element kind")

// Kind identifies one of the three primitive element types.
type Kind string

const (
	KindRectangle Kind = "rect"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
)

// Kinds lists the closed set in creation-menu order.
var Kinds = []Kind{KindRectangle, KindCircle, KindText}

// ParseKind accepts the persisted name or the display label, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rect", "rectangle":
		return KindRectangle, nil
	case "circle":
		return KindCircle, nil
	case "text":
		return KindText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindRectangle || k == KindCircle || k == KindText
}

// Label is the human-readable name used by the layer list.
func (k Kind) Label() string {
	switch k {
	case KindRectangle:
		return "Rectangle"
	case KindCircle:
		return "Circle"
	case KindText:
		return "Text"
	}
	return string(k)
}

// HasCornerRadius reports whether the corner radius is editable for the kind.
// Circles keep their fixed 50% rounding.
func (k Kind) HasCornerRadius() bool { return k == KindRectangle }

// HasText reports whether the kind carries content and a text color.
func (k Kind) HasText() bool { return k == KindText }

// Radius is a corner rounding expressed either in pixels or as a percentage of the box.
type Radius struct {
	Value   float64
	Percent bool
}

// Px returns a pixel radius.
func Px(v float64) Radius { return Radius{Value: v} }

// Percent returns a percentage radius.
func Percent(v float64) Radius { return Radius{Value: v, Percent: true} }

// ParseRadius accepts "12", "12px" or "50%".
func ParseRadius(s string) (Radius, error) {
	t := strings.TrimSpace(strings.ToLower(s))
	pct := false
	switch {
	case strings.HasSuffix(t, "%"):
		pct = true
		t = strings.TrimSuffix(t, "%")
	case strings.HasSuffix(t, "px"):
		t = strings.TrimSuffix(t, "px")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return Radius{}, fmt.Errorf("invalid corner radius %q", s)
	}
	if v < 0 {
		return Radius{}, fmt.Errorf("corner radius must not be negative: %q", s)
	}
	return Radius{Value: v, Percent: pct}, nil
}

func (r Radius) String() string {
	v := strconv.FormatFloat(r.Value, 'f', -1, 64)
	if r.Percent {
		return v + "%"
	}
	return v
}

// Pixels resolves the radius against a box, capped at half the shorter side.
func (r Radius) Pixels(w, h int) float64 {
	short := float64(w)
	if h < w {
		short = float64(h)
	}
	v := r.Value
	if r.Percent {
		v = short * r.Value / 100
	}
	if v > short/2 {
		v = short / 2
	}
	if v < 0 {
		v = 0
	}
	return v
}

// MarshalJSON writes pixel radii as numbers and percentages as "n%".
func (r Radius) MarshalJSON() ([]byte, error) {
	if r.Percent {
		return []byte(strconv.Quote(r.String())), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or a string understood by ParseRadius.
func (r *Radius) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*r = Radius{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		uq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = uq
	}
	v, err := ParseRadius(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Element is one shape or text box on the canvas.
type Element struct {
	ID           int    `json:"id"`
	Kind         Kind   `json:"kind"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ZIndex       int    `json:"zIndex"`
	Opacity      int    `json:"opacity"`
	Rotation     int    `json:"rotation"`
	CornerRadius Radius `json:"cornerRadius"`
	Fill         string `json:"fill"`
	TextColor    string `json:"textColor,omitempty"`
	Content      string `json:"content,omitempty"`
}

// Scene is the aggregate root: all live elements in insertion order plus the weak selection reference.
type Scene struct {
	Elements   []Element
	SelectedID *int
}

// Clone returns a deep copy.
func (s Scene) Clone() Scene {
	out := Scene{Elements: append([]Element(nil), s.Elements...)}
	if s.SelectedID != nil {
		id := *s.SelectedID
		out.SelectedID = &id
	}
	return out
}

// Find returns the index of the element with the given id, or -1.
func (s Scene) Find(id int) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Canvas is the bounded drawing surface.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultCanvas is 1000x800.
func DefaultCanvas() Canvas { return Canvas{Width: 1000, Height: 800} }
