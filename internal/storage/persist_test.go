/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goscene/internal/domain"
)

func sampleScene() domain.Scene {
	sel := 2
	return domain.Scene{
		Elements: []domain.Element{
			{ID: 1, Kind: domain.KindRectangle, X: 10, Y: 20, Width: 250, Height: 250, ZIndex: 2, Opacity: 100, Rotation: 0, CornerRadius: domain.Px(30), Fill: "red"},
			{ID: 2, Kind: domain.KindCircle, X: 300, Y: 40, Width: 120, Height: 80, ZIndex: 3, Opacity: 40, Rotation: -45, CornerRadius: domain.Percent(50), Fill: "blue"},
			{ID: 5, Kind: domain.KindText, X: 0, Y: 0, Width: 250, Height: 250, ZIndex: 1, Opacity: 100, Rotation: 370, Fill: "transparent", TextColor: "#000000", Content: ""},
		},
		SelectedID: &sel,
	}
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingKV) Set(context.Context, string, []byte) error         { return f.err }
func (f failingKV) Close() error                                      { return nil }

func TestSaveLoadRoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV { return NewMemoryKV() },
		"file": func(t *testing.T) KV {
			kv, err := OpenFileKV(t.TempDir())
			require.NoError(t, err)
			return kv
		},
		"sqlite": func(t *testing.T) KV {
			kv, err := OpenSQLiteKV(context.Background(), filepath.Join(t.TempDir(), "scene.db"))
			require.NoError(t, err)
			return kv
		},
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := NewPersistence(mk(t), "")
			defer p.Close()
			want := sampleScene()
			require.NoError(t, p.Save(ctx, want))
			got, ok := p.Load(ctx)
			require.True(t, ok)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeWireFormat(t *testing.T) {
	data, err := Encode(sampleScene())
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"selectedId":"2"`)
	assert.Contains(t, s, `"cornerRadius":"50%"`)
	assert.Contains(t, s, `"cornerRadius":30`)
	assert.Contains(t, s, `"zIndex":3`)

	empty, err := Encode(domain.Scene{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"elements":[],"selectedId":null}`, string(empty))
}

func TestLoadMissingOrCorruptYieldsEmptyScene(t *testing.T) {
	ctx := context.Background()
	cases := map[string][]byte{
		"garbage":        []byte("{not json"),
		"wrong shape":    []byte(`{"elements":"nope"}`),
		"unknown kind":   []byte(`{"elements":[{"id":1,"kind":"star","x":0,"y":0,"width":50,"height":50,"zIndex":1}],"selectedId":null}`),
		"missing fields": []byte(`{"elements":[{"id":1,"kind":"rect"}]}`),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(ctx, DefaultKey, payload))
			sc, ok := NewPersistence(kv, DefaultKey).Load(ctx)
			assert.False(t, ok)
			assert.Empty(t, sc.Elements)
			assert.Nil(t, sc.SelectedID)
		})
	}

	sc, ok := NewPersistence(NewMemoryKV(), "").Load(ctx)
	assert.False(t, ok, "absent key")
	assert.Empty(t, sc.Elements)

	sc, ok = NewPersistence(failingKV{err: errors.New("disk gone")}, "").Load(ctx)
	assert.False(t, ok, "read error")
	assert.Empty(t, sc.Elements)
}

func TestDecodeDropsBadSelection(t *testing.T) {
	base := `{"elements":[{"id":4,"kind":"rect","x":1.6,"y":2.4,"width":100,"height":99.5,"zIndex":1,"opacity":100,"rotation":0,"cornerRadius":"12px","fill":"red"}],"selectedId":%s}`
	cases := map[string]bool{
		`"4"`: true, `" 4 "`: true, `4`: true, `4.0`: true,
		`"abc"`: false, `"9"`: false, `9`: false, `null`: false,
		`4.5`: false, `true`: false, `{"id":4}`: false, `[4]`: false,
	}
	for sel, wantSel := range cases {
		sc, err := Decode([]byte(fmt.Sprintf(base, sel)))
		require.NoError(t, err, sel)
		assert.Equal(t, wantSel, sc.SelectedID != nil, sel)
		require.Len(t, sc.Elements, 1)
		e := sc.Elements[0]
		assert.Equal(t, 2, e.X)
		assert.Equal(t, 2, e.Y)
		assert.Equal(t, 100, e.Height, "fractional geometry is rounded")
		assert.Equal(t, domain.Px(12), e.CornerRadius)
	}
}

func TestLoadKeepsSceneWithNumericSelection(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	payload := `{"elements":[{"id":1,"kind":"rect","x":10,"y":10,"width":100,"height":100,"zIndex":1}],"selectedId":1}`
	require.NoError(t, kv.Set(ctx, DefaultKey, []byte(payload)))

	sc, ok := NewPersistence(kv, "").Load(ctx)
	require.True(t, ok)
	require.Len(t, sc.Elements, 1)
	require.NotNil(t, sc.SelectedID)
	assert.Equal(t, 1, *sc.SelectedID)

	// written back in the canonical string form
	data, err := Encode(sc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"selectedId":"1"`)
}

func TestSaveReturnsWrappedWriteError(t *testing.T) {
	boom := errors.New("read-only filesystem")
	err := NewPersistence(failingKV{err: boom}, "").Save(context.Background(), sampleScene())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
