/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"log/slog"
	"sort"

	"goscene/internal/domain"
)

// ZOrder reorders elements by swapping zIndex with an adjacent neighbour.
type ZOrder struct {
	store *Store
}

func NewZOrder(s *Store) *ZOrder { return &ZOrder{store: s} }

// Raise swaps id with the element directly above it. It reports false when id is unknown
// or already topmost.
func (z *ZOrder) Raise(id int) bool { return z.swap(id, +1) }

// Lower swaps id with the element directly below it.
func (z *ZOrder) Lower(id int) bool { return z.swap(id, -1) }

func (z *ZOrder) swap(id, dir int) bool {
	elems := z.store.scene.Elements
	i := z.store.scene.Find(id)
	if i < 0 {
		return false
	}
	want := elems[i].ZIndex + dir
	for j := range elems {
		if elems[j].ZIndex == want {
			elems[i].ZIndex, elems[j].ZIndex = elems[j].ZIndex, elems[i].ZIndex
			z.store.log.Debug("z-order swap", slog.Int("id", id), slog.Int("with", elems[j].ID), slog.Int("z", want))
			return true
		}
	}
	return false
}

// PaintOrder returns a copy of elems sorted bottom to top.
func PaintOrder(elems []domain.Element) []domain.Element {
	out := append([]domain.Element(nil), elems...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].ZIndex < out[b].ZIndex })
	return out
}

// TopmostFirst returns a copy of elems sorted top to bottom.
func TopmostFirst(elems []domain.Element) []domain.Element {
	out := append([]domain.Element(nil), elems...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].ZIndex > out[b].ZIndex })
	return out
}
