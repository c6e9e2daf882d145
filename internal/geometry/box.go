/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry computes element bounds from pointer deltas under canvas and minimum-size
// constraints, and provides the float transforms used for hit testing. Everything here is pure.
package geometry

import (
	"fmt"
	"strings"
)

// Box is an integer axis-aligned element frame in canvas coordinates.
type Box struct {
	X, Y int
	W, H int
}

// Right and Bottom return the exclusive far edges.
func (b Box) Right() int  { return b.X + b.W }
func (b Box) Bottom() int { return b.Y + b.H }

// Rect converts to the float rectangle used by nodes.
func (b Box) Rect() Rect { return R(float32(b.X), float32(b.Y), float32(b.W), float32(b.H)) }

// Limits are the constraints every box must satisfy.
type Limits struct {
	CanvasW, CanvasH int
	MinSize          int
}

// Fits reports whether b lies inside the canvas and respects the minimum size.
// Edges are compared by subtraction so huge coordinates cannot wrap around.
func (l Limits) Fits(b Box) bool {
	return b.W >= l.MinSize && b.H >= l.MinSize &&
		b.X >= 0 && b.Y >= 0 && b.W <= l.CanvasW-b.X && b.H <= l.CanvasH-b.Y
}

// Handle identifies the corner a resize gesture grabbed. None means the gesture moves the box.
type Handle int

const (
	None Handle = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

// Handles lists the four corner handles.
var Handles = []Handle{TopLeft, TopRight, BottomLeft, BottomRight}

func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return "none"
}

// ParseHandle accepts the String form and the short compass forms (nw, ne, sw, se, tl, tr, bl, br).
func ParseHandle(s string) (Handle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "top-left", "tl", "nw":
		return TopLeft, nil
	case "top-right", "tr", "ne":
		return TopRight, nil
	case "bottom-left", "bl", "sw":
		return BottomLeft, nil
	case "bottom-right", "br", "se":
		return BottomRight, nil
	}
	return None, fmt.Errorf("unknown handle %q", s)
}

func (h Handle) left() bool { return h == TopLeft || h == BottomLeft }
func (h Handle) top() bool  { return h == TopLeft || h == TopRight }

// Move shifts b by the delta. Each axis is applied only when the whole resulting span stays
// inside the canvas; otherwise that axis keeps its old value. Deltas are range-checked
// before any addition, so no input can overflow into an accepted position.
func Move(b Box, dx, dy int, lim Limits) Box {
	if within(dx, -b.X, lim.CanvasW-b.W-b.X) {
		b.X += dx
	}
	if within(dy, -b.Y, lim.CanvasH-b.H-b.Y) {
		b.Y += dy
	}
	return b
}

// within reports lo <= d <= hi.
func within(d, lo, hi int) bool { return d >= lo && d <= hi }

// Resize drags corner h by the delta. Left and top handles keep the opposite edge fixed.
// A dimension change is accepted only if the result is at least MinSize and stays on the
// canvas; the two axes are decided independently.
func Resize(b Box, h Handle, dx, dy int, lim Limits) Box {
	if h == None {
		return b
	}
	if h.left() {
		// the right edge stays put: x may go down to 0, width down to MinSize
		if within(dx, -b.X, b.W-lim.MinSize) {
			b.X, b.W = b.X+dx, b.W-dx
		}
	} else if within(dx, lim.MinSize-b.W, lim.CanvasW-b.X-b.W) {
		b.W += dx
	}
	if h.top() {
		if within(dy, -b.Y, b.H-lim.MinSize) {
			b.Y, b.H = b.Y+dy, b.H-dy
		}
	} else if within(dy, lim.MinSize-b.H, lim.CanvasH-b.Y-b.H) {
		b.H += dy
	}
	return b
}

// Apply dispatches to Move for None and Resize otherwise.
func Apply(b Box, h Handle, dx, dy int, lim Limits) Box {
	if h == None {
		return Move(b, dx, dy, lim)
	}
	return Resize(b, h, dx, dy, lim)
}

// Clamp normalizes any box so that Fits holds, shrinking to the canvas first and then
// sliding it back inside. A canvas smaller than MinSize wins over the minimum.
func Clamp(b Box, lim Limits) Box {
	b.W = clampInt(b.W, lim.MinSize, lim.CanvasW)
	b.H = clampInt(b.H, lim.MinSize, lim.CanvasH)
	b.X = clampInt(b.X, 0, lim.CanvasW-b.W)
	b.Y = clampInt(b.Y, 0, lim.CanvasH-b.H)
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// HandleAt returns the corner handle whose square of side size, centred on the corner,
// contains p. The point must be in the box's unrotated frame (see LocalPoint).
func HandleAt(b Box, p Pt, size int) Handle {
	half := float32(size) / 2
	corners := map[Handle]Pt{
		TopLeft:     {float32(b.X), float32(b.Y)},
		TopRight:    {float32(b.Right()), float32(b.Y)},
		BottomLeft:  {float32(b.X), float32(b.Bottom())},
		BottomRight: {float32(b.Right()), float32(b.Bottom())},
	}
	for _, h := range Handles {
		c := corners[h]
		if R(c.X-half, c.Y-half, 2*half, 2*half).Contains(p) {
			return h
		}
	}
	return None
}
