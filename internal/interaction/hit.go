/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"goscene/internal/domain"
	"goscene/internal/geometry"
	"goscene/internal/scene"
	"goscene/internal/textlayout"
)

// Footprint is the box e occupies on screen. Text is sized to its wrapped content, the way
// views draw it; every other kind uses its stored frame.
func Footprint(fonts textlayout.Provider, e domain.Element) geometry.Box {
	box := scene.BoxOf(e)
	if e.Kind.HasText() {
		box.W, box.H = textlayout.Wrap(fonts, e.Content, float32(e.Width)).Extent()
	}
	return box
}

// Shape returns the hit-test node of e, rotated about the centre of its footprint.
func Shape(fonts textlayout.Provider, e domain.Element) geometry.Node {
	box := Footprint(fonts, e)
	r := box.Rect()
	xf := geometry.RotateAbout(r.Center(), e.Rotation)
	switch e.Kind {
	case domain.KindCircle:
		return geometry.NewEllipse(r, xf)
	case domain.KindRectangle:
		return geometry.NewRoundedRect(r, float32(e.CornerRadius.Pixels(e.Width, e.Height)), xf)
	}
	return geometry.NewRect(r, xf)
}

// HitTest returns the topmost element whose shape contains p.
func HitTest(fonts textlayout.Provider, elems []domain.Element, p geometry.Pt) (domain.Element, bool) {
	for _, e := range scene.TopmostFirst(elems) {
		if Shape(fonts, e).Hit(p) {
			return e, true
		}
	}
	return domain.Element{}, false
}
