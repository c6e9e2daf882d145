/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene owns the live element collection and the selection, and enforces the
// bounds, minimum-size and stacking invariants on every mutation.
//
// Nothing here is safe for concurrent use: the editor runs a single dispatch loop.
package scene

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"goscene/internal/domain"
	"goscene/internal/geometry"
	applog "goscene/internal/log"
)

// Options configure a Store. Zero values fall back to the built-in defaults.
type Options struct {
	Canvas  domain.Canvas
	MinSize int
	Margin  int
	Rand    *rand.Rand
	Styles  domain.Styles
}

func (o Options) withDefaults() Options {
	if o.Canvas.Width <= 0 || o.Canvas.Height <= 0 {
		o.Canvas = domain.DefaultCanvas()
	}
	if o.MinSize <= 0 {
		o.MinSize = domain.MinSize
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Styles == nil {
		o.Styles = domain.DefaultStyles()
	}
	return o
}

// Store is the element collection plus the selected id.
type Store struct {
	scene  *domain.Scene
	opts   Options
	lim    geometry.Limits
	nextID int
	log    *slog.Logger
}

// NewStore takes ownership of sc and hydrates it: invalid and duplicate ids are dropped,
// geometry is clamped, zIndex is renumbered to 1..N and a dangling selection is cleared.
func NewStore(sc *domain.Scene, opts Options) *Store {
	if sc == nil {
		sc = &domain.Scene{}
	}
	opts = opts.withDefaults()
	s := &Store{
		scene:  sc,
		opts:   opts,
		lim:    geometry.Limits{CanvasW: opts.Canvas.Width, CanvasH: opts.Canvas.Height, MinSize: opts.MinSize},
		nextID: 1,
		log:    applog.WithComponent("scene"),
	}
	s.Replace(*sc)
	return s
}

// Replace swaps in a new scene, normalizing it the same way NewStore does.
// Ids handed out earlier in the session are never reused.
func (s *Store) Replace(in domain.Scene) {
	seen := make(map[int]bool, len(in.Elements))
	elems := make([]domain.Element, 0, len(in.Elements))
	for _, e := range in.Elements {
		if e.ID <= 0 || seen[e.ID] || !e.Kind.Valid() {
			s.log.Warn("dropping invalid element", slog.Int("id", e.ID), slog.String("kind", string(e.Kind)))
			continue
		}
		seen[e.ID] = true
		elems = append(elems, s.normalize(e))
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	renumber(elems)
	s.scene.Elements = elems
	s.scene.SelectedID = nil
	if in.SelectedID != nil && seen[*in.SelectedID] {
		id := *in.SelectedID
		s.scene.SelectedID = &id
	}
}

// renumber assigns zIndex 1..N preserving relative order, ties broken by id.
func renumber(elems []domain.Element) {
	idx := make([]int, len(elems))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := elems[idx[a]], elems[idx[b]]
		if ea.ZIndex != eb.ZIndex {
			return ea.ZIndex < eb.ZIndex
		}
		return ea.ID < eb.ID
	})
	for z, i := range idx {
		elems[i].ZIndex = z + 1
	}
}

func (s *Store) normalize(e domain.Element) domain.Element {
	e = WithBox(e, geometry.Clamp(BoxOf(e), s.lim))
	e.Opacity = clampOpacity(e.Opacity)
	if !e.Kind.HasText() {
		e.TextColor, e.Content = "", ""
	}
	return e
}

func clampOpacity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// BoxOf returns the frame of e.
func BoxOf(e domain.Element) geometry.Box {
	return geometry.Box{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// WithBox returns e moved into b.
func WithBox(e domain.Element, b geometry.Box) domain.Element {
	e.X, e.Y, e.Width, e.Height = b.X, b.Y, b.W, b.H
	return e
}

// Limits are the constraints every element of this store satisfies.
func (s *Store) Limits() geometry.Limits { return s.lim }

// Canvas returns the configured drawing surface.
func (s *Store) Canvas() domain.Canvas { return s.opts.Canvas }

// Create adds an element of kind with the kind's default style at a random position,
// stacks it on top and selects it.
func (s *Store) Create(kind domain.Kind) (domain.Element, error) {
	if !kind.Valid() {
		return domain.Element{}, fmt.Errorf("create %q: %w", kind, domain.ErrUnknownKind)
	}
	st, err := s.opts.Styles.For(kind)
	if err != nil {
		return domain.Element{}, fmt.Errorf("create %q: %w", kind, err)
	}
	e := st.NewElement(s.nextID, kind)
	box := geometry.Clamp(BoxOf(e), s.lim)
	box.X = s.place(s.lim.CanvasW, box.W)
	box.Y = s.place(s.lim.CanvasH, box.H)
	e = WithBox(e, box)
	e.Opacity = clampOpacity(e.Opacity)
	e.ZIndex = len(s.scene.Elements) + 1

	s.nextID++
	s.scene.Elements = append(s.scene.Elements, e)
	id := e.ID
	s.scene.SelectedID = &id
	s.log.Debug("element created", slog.Int("id", e.ID), slog.String("kind", string(kind)), slog.Int("z", e.ZIndex))
	return e, nil
}

// place picks a uniform offset in [0, dim-size-margin], or 0 when that span is empty.
func (s *Store) place(dim, size int) int {
	span := dim - size - s.opts.Margin
	if span <= 0 {
		return 0
	}
	return s.opts.Rand.Intn(span + 1)
}

// Get returns a copy of the element with id.
func (s *Store) Get(id int) (domain.Element, bool) {
	if i := s.scene.Find(id); i >= 0 {
		return s.scene.Elements[i], true
	}
	return domain.Element{}, false
}

// Patch lists field changes; nil fields are left alone.
type Patch struct {
	X, Y          *int
	Width, Height *int
	Opacity       *int
	Rotation      *int
	CornerRadius  *domain.Radius
	Fill          *string
	TextColor     *string
	Content       *string
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }

// BoxPatch patches all four geometry fields.
func BoxPatch(b geometry.Box) Patch {
	return Patch{X: Ptr(b.X), Y: Ptr(b.Y), Width: Ptr(b.W), Height: Ptr(b.H)}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool { return p == Patch{} }

// Update applies p to the element with id. Fields that do not apply to the element's kind
// are ignored, geometry is re-clamped and opacity limited to 0..100.
// It reports false when id is unknown.
func (s *Store) Update(id int, p Patch) (domain.Element, bool) {
	i := s.scene.Find(id)
	if i < 0 {
		return domain.Element{}, false
	}
	e := s.scene.Elements[i]
	set(&e.X, p.X)
	set(&e.Y, p.Y)
	set(&e.Width, p.Width)
	set(&e.Height, p.Height)
	set(&e.Opacity, p.Opacity)
	set(&e.Rotation, p.Rotation)
	set(&e.Fill, p.Fill)
	if e.Kind.HasCornerRadius() {
		set(&e.CornerRadius, p.CornerRadius)
	}
	if e.Kind.HasText() {
		set(&e.TextColor, p.TextColor)
		set(&e.Content, p.Content)
	}
	e = s.normalize(e)
	s.scene.Elements[i] = e
	return e, true
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Delete removes the element with id, closes the zIndex gap it leaves and clears the
// selection if it pointed at it.
func (s *Store) Delete(id int) bool {
	i := s.scene.Find(id)
	if i < 0 {
		return false
	}
	z := s.scene.Elements[i].ZIndex
	s.scene.Elements = append(s.scene.Elements[:i], s.scene.Elements[i+1:]...)
	for j := range s.scene.Elements {
		if s.scene.Elements[j].ZIndex > z {
			s.scene.Elements[j].ZIndex--
		}
	}
	if sel := s.scene.SelectedID; sel != nil && *sel == id {
		s.scene.SelectedID = nil
	}
	s.log.Debug("element deleted", slog.Int("id", id))
	return true
}

// List returns the elements in insertion order.
func (s *Store) List() []domain.Element {
	return append([]domain.Element(nil), s.scene.Elements...)
}

func (s *Store) Len() int { return len(s.scene.Elements) }

// Snapshot returns a deep copy of the scene for persistence.
func (s *Store) Snapshot() domain.Scene { return s.scene.Clone() }
