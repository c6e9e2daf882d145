/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"goscene/internal/domain"
)

// SyncEvent is the state every view redraws from. Selected is nil when nothing is selected.
type SyncEvent struct {
	SelectedID *int
	Selected   *domain.Element
	Elements   []domain.Element
}

// Listener consumes sync events.
type Listener func(SyncEvent)

type subscriber struct {
	id int
	fn Listener
}

// Selection tracks the selected element and notifies listeners.
type Selection struct {
	store *Store
	subs  []subscriber
	seq   int
}

func NewSelection(s *Store) *Selection { return &Selection{store: s} }

// Select makes id the selection. An id that does not resolve clears the selection instead.
func (sel *Selection) Select(id int) (domain.Element, bool) {
	e, ok := sel.store.Get(id)
	if !ok {
		sel.store.scene.SelectedID = nil
		return domain.Element{}, false
	}
	sel.store.scene.SelectedID = &id
	return e, true
}

// Clear drops the selection.
func (sel *Selection) Clear() { sel.store.scene.SelectedID = nil }

// Current resolves the selection; a dangling id is cleared on the way.
func (sel *Selection) Current() (domain.Element, bool) {
	id := sel.store.scene.SelectedID
	if id == nil {
		return domain.Element{}, false
	}
	e, ok := sel.store.Get(*id)
	if !ok {
		sel.store.scene.SelectedID = nil
	}
	return e, ok
}

// Subscribe registers fn; the returned func removes it.
func (sel *Selection) Subscribe(fn Listener) (cancel func()) {
	sel.seq++
	id := sel.seq
	sel.subs = append(sel.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range sel.subs {
			if s.id == id {
				sel.subs = append(sel.subs[:i], sel.subs[i+1:]...)
				return
			}
		}
	}
}

// Event builds the current sync event without emitting it.
func (sel *Selection) Event() SyncEvent {
	ev := SyncEvent{Elements: sel.store.List()}
	if e, ok := sel.Current(); ok {
		id := e.ID
		ev.SelectedID = &id
		ev.Selected = &e
	}
	return ev
}

// Sync emits the current state to every listener in subscription order.
func (sel *Selection) Sync() {
	ev := sel.Event()
	for _, s := range append([]subscriber(nil), sel.subs...) {
		s.fn(ev)
	}
}
