/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Style is the per-kind creation default.
type Style struct {
	Width        int
	Height       int
	Fill         string
	TextColor    string
	CornerRadius Radius
	Content      string
	Opacity      int
	Rotation     int
}

// DefaultStyle returns the built-in creation defaults for kind.
func DefaultStyle(kind Kind) (Style, error) {
	st := Style{Width: DefaultSize, Height: DefaultSize, Opacity: DefaultOpacity}
	switch kind {
	case KindRectangle:
		st.Fill = "red"
		st.CornerRadius = Px(30)
	case KindCircle:
		st.Fill = "blue"
		st.CornerRadius = Percent(50)
	case KindText:
		st.Fill = "transparent"
		st.TextColor = "#000000"
		st.Content = "some text"
	default:
		return Style{}, ErrUnknownKind
	}
	return st, nil
}

// Styles maps kinds to their creation defaults.
type Styles map[Kind]Style

// DefaultStyles returns the built-in table for every kind.
func DefaultStyles() Styles {
	out := make(Styles, len(Kinds))
	for _, k := range Kinds {
		out[k], _ = DefaultStyle(k)
	}
	return out
}

// For returns the style of kind, falling back to the built-in default when the table has none.
func (s Styles) For(kind Kind) (Style, error) {
	if st, ok := s[kind]; ok {
		return st, nil
	}
	return DefaultStyle(kind)
}

// NewElement materializes a style into an element with the given id; placement is left to the caller.
func (st Style) NewElement(id int, kind Kind) Element {
	e := Element{
		ID:       id,
		Kind:     kind,
		Width:    st.Width,
		Height:   st.Height,
		Opacity:  st.Opacity,
		Rotation: st.Rotation,
		Fill:     st.Fill,
	}
	if kind.HasCornerRadius() || kind == KindCircle {
		e.CornerRadius = st.CornerRadius
	}
	if kind.HasText() {
		e.TextColor = st.TextColor
		e.Content = st.Content
	}
	return e
}
