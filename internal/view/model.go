/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"goscene/internal/scene"
	"goscene/internal/textlayout"
)

// Renderer draws a full frame. Implementations may diff against the previous frame.
type Renderer interface {
	Render(f Frame)
}

// Frame is everything the views show for one sync event.
type Frame struct {
	Nodes  []Node
	Layers []LayerRow
	Panel  PanelState
}

// Model recomputes the frame on every sync event and hands it to the renderer.
type Model struct {
	provider textlayout.Provider
	renderer Renderer
	last     Frame
	frames   int
}

// NewModel returns a model; r may be nil when only the last frame is of interest.
func NewModel(p textlayout.Provider, r Renderer) *Model {
	if p == nil {
		p = textlayout.BasicProvider{}
	}
	return &Model{provider: p, renderer: r}
}

// Apply is a scene.Listener.
func (m *Model) Apply(ev scene.SyncEvent) {
	m.last = Frame{
		Nodes:  Nodes(m.provider, ev.Elements, ev.SelectedID),
		Layers: Layers(ev.Elements, ev.SelectedID),
		Panel:  Panel(ev.Selected),
	}
	m.frames++
	if m.renderer != nil {
		m.renderer.Render(m.last)
	}
}

// Last returns the most recent frame.
func (m *Model) Last() Frame { return m.last }

// Frames counts sync events seen.
func (m *Model) Frames() int { return m.frames }
