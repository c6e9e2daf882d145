/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction turns pointer and keyboard events into geometry updates on the scene.
// A drag or resize session lives from pointer-down to pointer-up and is owned here.
package interaction

import (
	"context"
	"log/slog"
	"math"

	"goscene/internal/domain"
	"goscene/internal/geometry"
	applog "goscene/internal/log"
	"goscene/internal/scene"
	"goscene/internal/textlayout"
)

// SaveFunc flushes the scene to storage.
type SaveFunc func(ctx context.Context) error

// Options tune the controller. Zero values use the defaults.
type Options struct {
	NudgeStep  int
	HandleSize int
	Fonts      textlayout.Provider // measures text footprints
}

const DefaultHandleSize = 10

type session struct {
	id     int
	handle geometry.Handle
	lastX  int
	lastY  int
}

// Controller is the gesture state machine.
type Controller struct {
	store   *scene.Store
	sel     *scene.Selection
	save    SaveFunc
	opts    Options
	session *session
	dirty   bool
	log     *slog.Logger
}

func NewController(store *scene.Store, sel *scene.Selection, save SaveFunc, opts Options) *Controller {
	if opts.NudgeStep <= 0 {
		opts.NudgeStep = domain.NudgeStep
	}
	if opts.HandleSize <= 0 {
		opts.HandleSize = DefaultHandleSize
	}
	if opts.Fonts == nil {
		opts.Fonts = textlayout.BasicProvider{}
	}
	if save == nil {
		save = func(context.Context) error { return nil }
	}
	return &Controller{store: store, sel: sel, save: save, opts: opts, log: applog.WithComponent("interaction")}
}

// Handle processes one event to completion. Only save errors are returned.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case PointerDown:
		c.pointerDown(ev.X, ev.Y)
	case PointerMove:
		c.pointerMove(ev.X, ev.Y)
	case PointerUp:
		return c.pointerUp(ctx)
	case KeyPress:
		return c.key(ctx, ev.Key)
	}
	return nil
}

func (c *Controller) pointerDown(x, y int) {
	c.session = nil
	c.dirty = false
	p := geometry.P(x, y)
	if cur, ok := c.sel.Current(); ok {
		box := Footprint(c.opts.Fonts, cur)
		if h := geometry.HandleAt(box, geometry.LocalPoint(box, cur.Rotation, p), c.opts.HandleSize); h != geometry.None {
			c.session = &session{id: cur.ID, handle: h, lastX: x, lastY: y}
			c.log.Debug("resize started", slog.Int("id", cur.ID), slog.String("handle", h.String()))
			return
		}
	}
	prev, hadSel := c.sel.Current()
	hit, ok := HitTest(c.opts.Fonts, c.store.List(), p)
	if !ok {
		if hadSel {
			c.sel.Clear()
			c.dirty = true
			c.sel.Sync()
		}
		return
	}
	if !hadSel || prev.ID != hit.ID {
		c.sel.Select(hit.ID)
		c.dirty = true
		c.sel.Sync()
	}
	c.session = &session{id: hit.ID, handle: geometry.None, lastX: x, lastY: y}
	c.log.Debug("move started", slog.Int("id", hit.ID))
}

// delta returns to-from, saturating instead of wrapping.
func delta(to, from int) int {
	d := to - from
	if (to >= 0) != (from >= 0) && (d >= 0) != (to >= 0) {
		if to >= 0 {
			return math.MaxInt
		}
		return math.MinInt
	}
	return d
}

func (c *Controller) pointerMove(x, y int) {
	s := c.session
	if s == nil {
		return
	}
	e, ok := c.store.Get(s.id)
	if !ok {
		// element deleted mid-gesture
		c.session = nil
		return
	}
	dx, dy := delta(x, s.lastX), delta(y, s.lastY)
	s.lastX, s.lastY = x, y
	old := scene.BoxOf(e)
	box := geometry.Apply(old, s.handle, dx, dy, c.store.Limits())
	if box == old {
		return
	}
	c.store.Update(s.id, scene.BoxPatch(box))
	c.dirty = true
	c.sel.Sync()
}

func (c *Controller) pointerUp(ctx context.Context) error {
	c.session = nil
	if !c.dirty {
		return nil
	}
	c.dirty = false
	return c.save(ctx)
}

func (c *Controller) key(ctx context.Context, key string) error {
	cur, ok := c.sel.Current()
	if !ok {
		return nil
	}
	switch key {
	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight:
		dx, dy := arrowDelta(key, c.opts.NudgeStep)
		old := scene.BoxOf(cur)
		box := geometry.Move(old, dx, dy, c.store.Limits())
		if box == old {
			return nil
		}
		c.store.Update(cur.ID, scene.BoxPatch(box))
	case KeyDelete, KeyBackspace:
		c.store.Delete(cur.ID)
		if c.session != nil && c.session.id == cur.ID {
			c.session = nil
		}
	case KeyEscape:
		c.sel.Clear()
	default:
		return nil
	}
	c.sel.Sync()
	return c.save(ctx)
}

func arrowDelta(key string, step int) (int, int) {
	switch key {
	case KeyArrowUp:
		return 0, -step
	case KeyArrowDown:
		return 0, step
	case KeyArrowLeft:
		return -step, 0
	}
	return step, 0
}

// LayerClick selects id from the layer list; 0 means the empty area below the rows.
func (c *Controller) LayerClick(ctx context.Context, id int) error {
	prev := c.sel.Event().SelectedID
	if id == 0 {
		c.sel.Clear()
	} else {
		c.sel.Select(id)
	}
	c.sel.Sync()
	if sameID(prev, c.sel.Event().SelectedID) {
		return nil
	}
	return c.save(ctx)
}

func sameID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Reset drops any in-flight gesture.
func (c *Controller) Reset() {
	c.session = nil
	c.dirty = false
}

// Active reports the element and handle of the running gesture.
func (c *Controller) Active() (id int, h geometry.Handle, ok bool) {
	if c.session == nil {
		return 0, geometry.None, false
	}
	return c.session.id, c.session.handle, true
}
