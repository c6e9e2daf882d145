/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package view turns scene sync events into what the canvas, the layer list and the
// property panel show. Drawing itself is left to a Renderer.
package view

import (
	"goscene/internal/domain"
	"goscene/internal/scene"
)

// LayerRow is one entry of the layer list.
type LayerRow struct {
	ID       int
	Label    string
	ZIndex   int
	Selected bool
}

// Layers lists elems topmost first. At most one row is marked selected.
func Layers(elems []domain.Element, selectedID *int) []LayerRow {
	sorted := scene.TopmostFirst(elems)
	rows := make([]LayerRow, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, LayerRow{
			ID:       e.ID,
			Label:    e.Kind.Label(),
			ZIndex:   e.ZIndex,
			Selected: selectedID != nil && *selectedID == e.ID,
		})
	}
	return rows
}
