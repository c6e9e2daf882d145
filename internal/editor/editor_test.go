/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"goscene/internal/domain"
	"goscene/internal/geometry"
	"goscene/internal/interaction"
	applog "goscene/internal/log"
	"goscene/internal/scene"
	"goscene/internal/storage"
)

func TestMain(m *testing.M) { goleak.VerifyTestMain(m) }

type countingKV struct {
	*storage.MemoryKV
	sets int
	fail error
}

func (k *countingKV) Set(ctx context.Context, key string, v []byte) error {
	k.sets++
	if k.fail != nil {
		return k.fail
	}
	return k.MemoryKV.Set(ctx, key, v)
}

type recorder struct{ names []string }

func (r *recorder) Event(name string, props map[string]any) {
	if k, ok := props["kind"]; ok {
		name += ":" + k.(string)
	}
	r.names = append(r.names, name)
}

func options(rec *recorder) Options {
	o := Options{Scene: scene.Options{
		Canvas: domain.Canvas{Width: 1000, Height: 800},
		Margin: 10,
		Rand:   rand.New(rand.NewSource(11)),
	}}
	if rec != nil {
		o.Events = rec
	}
	return o
}

func open(t *testing.T, kv storage.KV, rec *recorder) *Editor {
	t.Helper()
	return Open(context.Background(), storage.NewPersistence(kv, ""), options(rec))
}

func place(t *testing.T, ed *Editor, id int, b geometry.Box) {
	t.Helper()
	_, ok, err := ed.Update(context.Background(), id, scene.BoxPatch(b))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOpenWithoutStoredScene(t *testing.T) {
	ed := open(t, storage.NewMemoryKV(), nil)
	assert.False(t, ed.Restored())
	assert.Empty(t, ed.Elements())
	_, ok := ed.Selected()
	assert.False(t, ok)
}

func TestOpenCorruptSceneStartsEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), storage.DefaultKey, []byte(`{"elements": 12`)))
	ed := open(t, kv, nil)
	assert.False(t, ed.Restored())
	assert.Empty(t, ed.Elements())
}

func TestCreatePersistsAndSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	rec := &recorder{}
	ed := open(t, kv, rec)

	e, err := ed.Create(ctx, domain.KindRectangle)
	require.NoError(t, err)
	assert.Equal(t, 1, e.ZIndex)
	assert.Equal(t, 250, e.Width)
	assert.True(t, e.X >= 0 && e.X+e.Width <= 1000)
	assert.True(t, e.Y >= 0 && e.Y+e.Height <= 800)
	sel, ok := ed.Selected()
	require.True(t, ok)
	assert.Equal(t, e.ID, sel.ID)
	assert.Equal(t, 1, kv.sets)
	assert.Equal(t, []string{"scene.create:rect"}, rec.names)

	_, err = ed.Create(ctx, domain.KindText)
	require.NoError(t, err)

	again := open(t, kv.MemoryKV, nil)
	assert.True(t, again.Restored())
	if diff := cmp.Diff(ed.Scene(), again.Scene()); diff != "" {
		t.Fatalf("reopened scene differs (-want +got):\n%s", diff)
	}
}

func TestCreateUnknownKind(t *testing.T) {
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	ed := open(t, kv, nil)
	_, err := ed.Create(context.Background(), domain.Kind("triangle"))
	require.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.Zero(t, kv.sets)
}

func TestRaiseSwapsThenNoOpOnTop(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	ed := open(t, kv, nil)
	a, err := ed.Create(ctx, domain.KindRectangle)
	require.NoError(t, err)
	b, err := ed.Create(ctx, domain.KindCircle)
	require.NoError(t, err)
	kv.sets = 0

	ok, err := ed.Raise(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	z := map[int]int{}
	for _, e := range ed.Elements() {
		z[e.ID] = e.ZIndex
	}
	assert.Equal(t, map[int]int{a.ID: 2, b.ID: 1}, z)

	ok, err = ed.Raise(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, kv.sets, "no-op raise must not save")

	ok, err = ed.Lower(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ed.Lower(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteClearsSelectionAndCompactsZ(t *testing.T) {
	ctx := context.Background()
	ed := open(t, storage.NewMemoryKV(), nil)
	a, _ := ed.Create(ctx, domain.KindRectangle)
	b, _ := ed.Create(ctx, domain.KindCircle)
	c, _ := ed.Create(ctx, domain.KindText)
	_, _, err := ed.Select(ctx, b.ID)
	require.NoError(t, err)

	ok, err := ed.DeleteSelected(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	_, selected := ed.Selected()
	assert.False(t, selected)

	got := map[int]int{}
	for _, e := range ed.Elements() {
		got[e.ID] = e.ZIndex
	}
	assert.Equal(t, map[int]int{a.ID: 1, c.ID: 2}, got)

	ok, err = ed.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectSavesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	ed := open(t, kv, nil)
	a, _ := ed.Create(ctx, domain.KindRectangle)
	kv.sets = 0

	_, ok, err := ed.Select(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, kv.sets)

	_, ok, err = ed.Select(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, kv.sets)
	_, selected := ed.Selected()
	assert.False(t, selected)

	require.NoError(t, ed.ClearSelection(ctx))
	assert.Equal(t, 1, kv.sets)
}

func TestUpdateClampsAndSkipsNoOps(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	ed := open(t, kv, nil)
	e, _ := ed.Create(ctx, domain.KindRectangle)
	kv.sets = 0

	got, ok, err := ed.Update(ctx, e.ID, scene.Patch{X: scene.Ptr(980), Width: scene.Ptr(10), Opacity: scene.Ptr(150)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, got.Width, 40)
	assert.LessOrEqual(t, got.X+got.Width, 1000)
	assert.Equal(t, 100, got.Opacity)
	assert.Equal(t, 1, kv.sets)

	_, ok, err = ed.Update(ctx, e.ID, scene.Patch{Opacity: scene.Ptr(100)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, kv.sets)

	_, ok, err = ed.Update(ctx, 77, scene.Patch{Opacity: scene.Ptr(1)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransformRejectsPerAxis(t *testing.T) {
	ctx := context.Background()
	ed := open(t, storage.NewMemoryKV(), nil)
	e, _ := ed.Create(ctx, domain.KindRectangle)
	place(t, ed, e.ID, geometry.Box{X: 750, Y: 100, W: 250, H: 250})

	got, changed, err := ed.Transform(ctx, geometry.None, 50, 10)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, 750, got.X)
	assert.Equal(t, 110, got.Y)

	place(t, ed, e.ID, geometry.Box{X: 100, Y: 100, W: 60, H: 200})
	got, changed, err = ed.Transform(ctx, geometry.BottomRight, -30, -50)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, 60, got.Width)
	assert.Equal(t, 150, got.Height)

	require.NoError(t, ed.ClearSelection(ctx))
	_, changed, err = ed.Transform(ctx, geometry.None, 5, 5)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTransformIgnoresOverflowingDeltas(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	ed := open(t, kv, nil)
	e, _ := ed.Create(ctx, domain.KindRectangle)
	place(t, ed, e.ID, geometry.Box{X: 306, Y: 100, W: 250, H: 250})
	kv.sets = 0

	for _, h := range []geometry.Handle{geometry.None, geometry.BottomRight, geometry.TopLeft} {
		got, changed, err := ed.Transform(ctx, h, math.MaxInt-575, 0)
		require.NoError(t, err)
		assert.False(t, changed, "handle %s", h)
		assert.Equal(t, 306, got.X)
		assert.Equal(t, 250, got.Width)
	}
	assert.Zero(t, kv.sets)
}

func TestRunDragGesture(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	ed := open(t, kv, nil)
	e, _ := ed.Create(ctx, domain.KindRectangle)
	place(t, ed, e.ID, geometry.Box{X: 100, Y: 100, W: 100, H: 100})
	kv.sets = 0

	var frames int
	cancel := ed.Subscribe(func(scene.SyncEvent) { frames++ })
	defer cancel()
	assert.Equal(t, 1, frames, "subscribe replays current state")

	src := interaction.NewSliceSource(
		interaction.Down(150, 150),
		interaction.Move(200, 150),
		interaction.Move(220, 170),
		interaction.Up(220, 170),
		interaction.Key(interaction.KeyArrowDown),
	)
	require.NoError(t, ed.Run(ctx, src))

	got, _ := ed.Selected()
	assert.Equal(t, 170, got.X)
	assert.Equal(t, 125, got.Y)
	assert.Equal(t, 2, kv.sets)
	assert.Equal(t, 4, frames)

	again := open(t, kv.MemoryKV, nil)
	stored := again.Elements()
	require.Len(t, stored, 1)
	assert.Equal(t, got, stored[0])
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ed := open(t, storage.NewMemoryKV(), nil)
	err := ed.Run(ctx, interaction.NewSliceSource(interaction.Key(interaction.KeyEscape)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestReloadDropsGestureAndState(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	ed := open(t, kv, nil)
	e, _ := ed.Create(ctx, domain.KindRectangle)
	place(t, ed, e.ID, geometry.Box{X: 100, Y: 100, W: 100, H: 100})

	require.NoError(t, ed.Handle(ctx, interaction.Down(150, 150)))
	assert.True(t, ed.Reload(ctx))
	require.NoError(t, ed.Handle(ctx, interaction.Move(300, 300)))
	got, ok := ed.Selected()
	require.True(t, ok)
	assert.Equal(t, 100, got.X)
}

func TestSaveErrorIsReturned(t *testing.T) {
	boom := errors.New("disk full")
	kv := &countingKV{MemoryKV: storage.NewMemoryKV(), fail: boom}
	ed := open(t, kv, nil)

	e, err := ed.Create(context.Background(), domain.KindCircle)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domain.KindCircle, e.Kind, "the scene keeps the element")
	assert.Len(t, ed.Elements(), 1)

	err = ed.Handle(context.Background(), interaction.Key(interaction.KeyEscape))
	require.ErrorIs(t, err, boom)
}

func TestRecordsCarrySessionSceneAndElement(t *testing.T) {
	var buf bytes.Buffer
	applog.Init(applog.Setup{Level: "debug", Out: &buf})
	t.Cleanup(func() { applog.Init(applog.Setup{Out: io.Discard}) })

	o := options(nil)
	o.Session = "s-9"
	ed := Open(context.Background(), storage.NewPersistence(storage.NewMemoryKV(), ""), o)
	_, err := ed.Create(context.Background(), domain.KindRectangle)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[editor] scene opened")
	assert.Contains(t, out, "op=create element.id=1 element.kind=rect session=s-9 scene=scene")
}
