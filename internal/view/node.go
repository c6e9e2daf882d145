/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"goscene/internal/domain"
	"goscene/internal/scene"
	"goscene/internal/textlayout"
)

// Node is the positioned visual a Renderer draws for one element.
type Node struct {
	ID         int         `json:"id"`
	Kind       domain.Kind `json:"kind"`
	X          int         `json:"x"`
	Y          int         `json:"y"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	ZIndex     int         `json:"zIndex"`
	Background string      `json:"background"`
	Opacity    float64     `json:"opacity"`
	Rotation   int         `json:"rotation"`
	Rounding   float64     `json:"rounding"`
	Text       []string    `json:"text,omitempty"`
	TextColor  string      `json:"textColor,omitempty"`
	Selected   bool        `json:"selected,omitempty"`
}

// NodeFor builds the node of e. Text nodes are sized to their wrapped content.
func NodeFor(p textlayout.Provider, e domain.Element, selected bool) Node {
	n := Node{
		ID:         e.ID,
		Kind:       e.Kind,
		X:          e.X,
		Y:          e.Y,
		Width:      e.Width,
		Height:     e.Height,
		ZIndex:     e.ZIndex,
		Background: e.Fill,
		Opacity:    float64(e.Opacity) / 100,
		Rotation:   e.Rotation,
		Rounding:   e.CornerRadius.Pixels(e.Width, e.Height),
		Selected:   selected,
	}
	if e.Kind.HasText() {
		box := textlayout.Wrap(p, e.Content, float32(e.Width))
		n.Text = box.Lines
		n.TextColor = e.TextColor
		n.Width, n.Height = box.Extent()
	}
	return n
}

// Nodes builds the nodes of elems in paint order.
func Nodes(p textlayout.Provider, elems []domain.Element, selectedID *int) []Node {
	out := make([]Node, 0, len(elems))
	for _, e := range scene.PaintOrder(elems) {
		out = append(out, NodeFor(p, e, selectedID != nil && *selectedID == e.ID))
	}
	return out
}
