/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the editing session: it hydrates the scene from storage, routes
// commands and input events to the scene components, and saves after every change.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"goscene/internal/domain"
	"goscene/internal/geometry"
	"goscene/internal/interaction"
	applog "goscene/internal/log"
	"goscene/internal/scene"
	"goscene/internal/storage"
)

// EventSink receives anonymous usage events. *telemetry.Client satisfies it.
type EventSink interface {
	Event(name string, props map[string]any)
}

type noEvents struct{}

func (noEvents) Event(string, map[string]any) {}

// Options configure a session.
type Options struct {
	Scene       scene.Options
	Interaction interaction.Options
	Events      EventSink
	Session     string // tags log records; usually the telemetry session id
}

// Editor owns one scene for the lifetime of a session. It is not safe for concurrent use.
type Editor struct {
	persist *storage.Persistence
	store   *scene.Store
	z       *scene.ZOrder
	sel     *scene.Selection
	ctl     *interaction.Controller
	events  EventSink
	loaded  bool
	session string
	log     *slog.Logger
}

// Open loads the stored scene and builds a session around it. Storage problems never fail
// Open: the session starts empty instead.
func Open(ctx context.Context, p *storage.Persistence, opts Options) *Editor {
	sc, ok := p.Load(ctx)
	store := scene.NewStore(&sc, opts.Scene)
	sel := scene.NewSelection(store)
	ed := &Editor{
		persist: p,
		store:   store,
		z:       scene.NewZOrder(store),
		sel:     sel,
		events:  opts.Events,
		loaded:  ok,
		session: opts.Session,
		log:     applog.WithComponent("editor"),
	}
	if ed.events == nil {
		ed.events = noEvents{}
	}
	ed.ctl = interaction.NewController(store, sel, ed.save, opts.Interaction)
	ed.log.InfoContext(ed.scope(ctx), "scene opened", slog.Bool("restored", ok), slog.Int("elements", store.Len()))
	return ed
}

// scope tags ctx with the session and scene key for logging.
func (ed *Editor) scope(ctx context.Context) context.Context {
	if ed.session != "" {
		ctx = applog.ContextWithSession(ctx, ed.session)
	}
	return applog.ContextWithScene(ctx, ed.persist.Key())
}

// Restored reports whether the last hydration found a stored scene.
func (ed *Editor) Restored() bool { return ed.loaded }

func (ed *Editor) save(ctx context.Context) error {
	if err := ed.persist.Save(ctx, ed.store.Snapshot()); err != nil {
		return fmt.Errorf("persist scene: %w", err)
	}
	return nil
}

// commit notifies listeners and saves.
func (ed *Editor) commit(ctx context.Context, op string) error {
	ed.sel.Sync()
	if err := ed.save(ctx); err != nil {
		applog.WithOperation(ed.log, op).ErrorContext(ed.scope(ctx), "save failed", slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (ed *Editor) track(ctx context.Context, op string, e domain.Element) {
	props := map[string]any{}
	if e.Kind != "" {
		props["kind"] = string(e.Kind)
		applog.WithElement(applog.WithOperation(ed.log, op), e.ID, string(e.Kind)).DebugContext(ed.scope(ctx), "scene changed")
	}
	ed.events.Event("scene."+op, props)
}

// Create adds a new element of kind on top of the stack and selects it.
func (ed *Editor) Create(ctx context.Context, kind domain.Kind) (domain.Element, error) {
	e, err := ed.store.Create(kind)
	if err != nil {
		return domain.Element{}, err
	}
	ed.track(ctx, "create", e)
	return e, ed.commit(ctx, "create")
}

// Select makes id the selection; an unknown id clears it. Nothing is saved when the
// selection did not change.
func (ed *Editor) Select(ctx context.Context, id int) (domain.Element, bool, error) {
	prev := ed.sel.Event().SelectedID
	e, ok := ed.sel.Select(id)
	if sameID(prev, ed.sel.Event().SelectedID) {
		ed.sel.Sync()
		return e, ok, nil
	}
	ed.track(ctx, "select", e)
	return e, ok, ed.commit(ctx, "select")
}

// ClearSelection drops the selection.
func (ed *Editor) ClearSelection(ctx context.Context) error {
	if _, ok := ed.sel.Current(); !ok {
		ed.sel.Sync()
		return nil
	}
	ed.sel.Clear()
	return ed.commit(ctx, "clear_selection")
}

// Update patches the element with id. It reports false for an unknown id.
func (ed *Editor) Update(ctx context.Context, id int, p scene.Patch) (domain.Element, bool, error) {
	before, ok := ed.store.Get(id)
	if !ok {
		return domain.Element{}, false, nil
	}
	after, _ := ed.store.Update(id, p)
	if after == before {
		return after, true, nil
	}
	ed.track(ctx, "update", after)
	return after, true, ed.commit(ctx, "update")
}

// Raise swaps id with the element directly above it. False means it already was on top
// or id is unknown.
func (ed *Editor) Raise(ctx context.Context, id int) (bool, error) {
	return ed.reorder(ctx, "raise", id, ed.z.Raise)
}

// Lower swaps id with the element directly below it.
func (ed *Editor) Lower(ctx context.Context, id int) (bool, error) {
	return ed.reorder(ctx, "lower", id, ed.z.Lower)
}

func (ed *Editor) reorder(ctx context.Context, op string, id int, fn func(int) bool) (bool, error) {
	if !fn(id) {
		return false, nil
	}
	e, _ := ed.store.Get(id)
	ed.track(ctx, op, e)
	return true, ed.commit(ctx, op)
}

// Delete removes the element with id.
func (ed *Editor) Delete(ctx context.Context, id int) (bool, error) {
	e, ok := ed.store.Get(id)
	if !ok || !ed.store.Delete(id) {
		return false, nil
	}
	ed.track(ctx, "delete", e)
	return true, ed.commit(ctx, "delete")
}

// DeleteSelected removes the selected element, if any.
func (ed *Editor) DeleteSelected(ctx context.Context) (bool, error) {
	cur, ok := ed.sel.Current()
	if !ok {
		return false, nil
	}
	return ed.Delete(ctx, cur.ID)
}

// Transform moves (h == geometry.None) or resizes the selected element by dx, dy under
// the same rules as a pointer gesture. It reports false when nothing is selected or the
// box did not change.
func (ed *Editor) Transform(ctx context.Context, h geometry.Handle, dx, dy int) (domain.Element, bool, error) {
	cur, ok := ed.sel.Current()
	if !ok {
		return domain.Element{}, false, nil
	}
	old := scene.BoxOf(cur)
	box := geometry.Apply(old, h, dx, dy, ed.store.Limits())
	if box == old {
		return cur, false, nil
	}
	e, _ := ed.store.Update(cur.ID, scene.BoxPatch(box))
	op := "move"
	if h != geometry.None {
		op = "resize"
	}
	ed.track(ctx, op, e)
	return e, true, ed.commit(ctx, op)
}

// Handle feeds one input event to the interaction controller.
func (ed *Editor) Handle(ctx context.Context, ev interaction.Event) error {
	if err := ed.ctl.Handle(ctx, ev); err != nil {
		applog.WithOperation(ed.log, "handle").ErrorContext(ed.scope(ctx), "event failed", slog.String("event", ev.String()), slog.Any("err", err))
		return fmt.Errorf("handle %s: %w", ev, err)
	}
	return nil
}

// LayerClick selects id from the layer list; 0 clears the selection.
func (ed *Editor) LayerClick(ctx context.Context, id int) error {
	if err := ed.ctl.LayerClick(ctx, id); err != nil {
		return fmt.Errorf("layer click: %w", err)
	}
	return nil
}

// Run dispatches events from src until it is drained or ctx is done. Each event is
// handled completely before the next one is read.
func (ed *Editor) Run(ctx context.Context, src interaction.InputSource) error {
	n := 0
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			ed.log.DebugContext(ed.scope(ctx), "input drained", slog.Int("events", n))
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := ed.Handle(ctx, ev); err != nil {
			return err
		}
		n++
	}
}

// Reload discards in-memory state, including any running gesture, and hydrates again
// from storage. It reports whether a stored scene was found.
func (ed *Editor) Reload(ctx context.Context) bool {
	sc, ok := ed.persist.Load(ctx)
	ed.ctl.Reset()
	ed.store.Replace(sc)
	ed.loaded = ok
	ed.sel.Sync()
	return ok
}

// Subscribe registers fn for sync events and replays the current state to it.
func (ed *Editor) Subscribe(fn scene.Listener) (cancel func()) {
	cancel = ed.sel.Subscribe(fn)
	fn(ed.sel.Event())
	return cancel
}

// Elements returns the elements in insertion order.
func (ed *Editor) Elements() []domain.Element { return ed.store.List() }

// Selected resolves the current selection.
func (ed *Editor) Selected() (domain.Element, bool) { return ed.sel.Current() }

// Scene returns a copy of the whole scene.
func (ed *Editor) Scene() domain.Scene { return ed.store.Snapshot() }

func (ed *Editor) Canvas() domain.Canvas { return ed.store.Canvas() }

func sameID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
