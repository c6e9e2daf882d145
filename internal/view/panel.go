/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "goscene/internal/domain"

// Neutral panel values shown when nothing is selected.
const (
	NeutralColor = "#ffffff"
)

// PanelState is what the property panel displays and which inputs accept edits.
type PanelState struct {
	Enabled             bool
	ContentEnabled      bool
	TextColorEnabled    bool
	CornerRadiusEnabled bool

	X, Y          int
	Width, Height int
	Opacity       int
	Rotation      int
	CornerRadius  string
	Fill          string
	TextColor     string
	Content       string
}

// Panel populates the panel from the selection, or neutral defaults for nil.
func Panel(selected *domain.Element) PanelState {
	if selected == nil {
		return PanelState{Fill: NeutralColor, TextColor: NeutralColor}
	}
	e := selected
	ps := PanelState{
		Enabled:             true,
		ContentEnabled:      e.Kind.HasText(),
		TextColorEnabled:    e.Kind.HasText(),
		CornerRadiusEnabled: e.Kind.HasCornerRadius(),
		X:                   e.X,
		Y:                   e.Y,
		Width:               e.Width,
		Height:              e.Height,
		Opacity:             e.Opacity,
		Rotation:            e.Rotation,
		CornerRadius:        e.CornerRadius.String(),
		Fill:                e.Fill,
		TextColor:           NeutralColor,
		Content:             e.Content,
	}
	if e.Kind.HasText() {
		ps.TextColor = e.TextColor
	}
	return ps
}
