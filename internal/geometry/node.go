/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

// Node is a hit-testable shape with a transform, one per element kind.
type Node interface {
	Frame() Rect
	Transform() Affine2D
	Hit(p Pt) bool
}

type baseNode struct {
	rect Rect
	xf   Affine2D
}

func (b *baseNode) Frame() Rect         { return b.rect }
func (b *baseNode) Transform() Affine2D { return b.xf }

// local maps p into the untransformed frame.
func (b *baseNode) local(p Pt) Pt { return b.xf.Invert().Apply(p) }

// RectNode is a plain rectangle; text boxes use it.
type RectNode struct{ baseNode }

func NewRect(r Rect, xf Affine2D) *RectNode {
	return &RectNode{baseNode{rect: r, xf: xf}}
}

func (n *RectNode) Hit(p Pt) bool { return n.rect.Contains(n.local(p)) }

// EllipseNode is the ellipse inscribed in its frame.
type EllipseNode struct{ baseNode }

func NewEllipse(r Rect, xf Affine2D) *EllipseNode {
	return &EllipseNode{baseNode{rect: r, xf: xf}}
}

func (n *EllipseNode) Hit(p Pt) bool {
	q := n.local(p)
	rx, ry := n.rect.W/2, n.rect.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := n.rect.Center()
	dx := (q.X - c.X) / rx
	dy := (q.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// RoundedRectNode uses a uniform corner radius.
type RoundedRectNode struct {
	baseNode
	r float32
}

func NewRoundedRect(r Rect, radius float32, xf Affine2D) *RoundedRectNode {
	return &RoundedRectNode{baseNode: baseNode{rect: r, xf: xf}, r: radius}
}

func (n *RoundedRectNode) Hit(p Pt) bool {
	q := n.local(p)
	if !n.rect.Contains(q) {
		return false
	}
	if n.r <= 0 {
		return true
	}
	core := n.rect.Inset(n.r, n.r)
	if core.W < 0 || core.H < 0 {
		return true
	}
	// inside the cross formed by the core stretched along each axis
	if (q.X >= core.X && q.X <= core.X+core.W) || (q.Y >= core.Y && q.Y <= core.Y+core.H) {
		return true
	}
	cx := []float32{core.X, core.X + core.W}
	cy := []float32{core.Y, core.Y + core.H}
	r2 := n.r * n.r
	for _, x := range cx {
		for _, y := range cy {
			dx, dy := q.X-x, q.Y-y
			if dx*dx+dy*dy <= r2 {
				return true
			}
		}
	}
	return false
}
