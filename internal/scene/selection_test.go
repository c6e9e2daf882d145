/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goscene/internal/domain"
)

func TestSelectResolvesOrClears(t *testing.T) {
	s := newTestStore(t, nil)
	sel := NewSelection(s)
	a, _ := s.Create(domain.KindRectangle)
	_, _ = s.Create(domain.KindCircle)

	got, ok := sel.Select(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)

	_, ok = sel.Select(99)
	assert.False(t, ok)
	_, ok = sel.Current()
	assert.False(t, ok, "unknown id clears the selection")
}

func TestSyncEventReflectsState(t *testing.T) {
	s := newTestStore(t, nil)
	sel := NewSelection(s)
	var events []SyncEvent
	cancel := sel.Subscribe(func(ev SyncEvent) { events = append(events, ev) })

	e, _ := s.Create(domain.KindText)
	sel.Sync()
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Selected)
	assert.Equal(t, e.ID, *events[0].SelectedID)
	assert.Equal(t, domain.KindText, events[0].Selected.Kind)
	assert.Len(t, events[0].Elements, 1)

	sel.Clear()
	sel.Sync()
	require.Len(t, events, 2)
	assert.Nil(t, events[1].SelectedID)
	assert.Nil(t, events[1].Selected)

	cancel()
	sel.Sync()
	assert.Len(t, events, 2, "cancelled listener receives nothing")
}

func TestDeletedSelectionDoesNotDangle(t *testing.T) {
	s := newTestStore(t, nil)
	sel := NewSelection(s)
	e, _ := s.Create(domain.KindRectangle)
	require.True(t, s.Delete(e.ID))
	_, ok := sel.Current()
	assert.False(t, ok)
	assert.Nil(t, sel.Event().SelectedID)
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	s := newTestStore(t, nil)
	sel := NewSelection(s)
	var order []string
	sel.Subscribe(func(SyncEvent) { order = append(order, "a") })
	cancelB := sel.Subscribe(func(SyncEvent) { order = append(order, "b") })
	sel.Subscribe(func(SyncEvent) { order = append(order, "c") })
	cancelB()
	sel.Sync()
	assert.Equal(t, []string{"a", "c"}, order)
}
