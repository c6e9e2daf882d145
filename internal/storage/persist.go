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
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"

	"goscene/internal/domain"
	applog "goscene/internal/log"
)

// DefaultKey is the fixed key the scene blob lives under.
const DefaultKey = "scene"

//go:embed scene.schema.json
var sceneSchema []byte

var (
	json         = jsoniter.ConfigCompatibleWithStandardLibrary
	schemaLoader = gojsonschema.NewBytesLoader(sceneSchema)
)

// ErrInvalidScene wraps schema violations of a stored payload.
var ErrInvalidScene = errors.New("invalid scene payload")

// record is the persisted shape. Geometry is written as JSON numbers and read back
// as floats so payloads with fractional pixels still load.
type record struct {
	Elements   []elementRecord `json:"elements"`
	SelectedID *wireID         `json:"selectedId"`
}

// wireID is a selectedId as stored. It is written as a decimal string; on read a JSON
// number is accepted too, and any other value decodes to "no selection" rather than
// failing the whole payload.
type wireID struct {
	id    int
	valid bool
}

func (w wireID) MarshalJSON() ([]byte, error) {
	if !w.valid {
		return []byte("null"), nil
	}
	return json.Marshal(strconv.Itoa(w.id))
}

func (w *wireID) UnmarshalJSON(b []byte) error {
	*w = wireID{}
	switch v := json.Get(b); v.ValueType() {
	case jsoniter.StringValue:
		if id, err := strconv.Atoi(strings.TrimSpace(v.ToString())); err == nil {
			*w = wireID{id: id, valid: true}
		}
	case jsoniter.NumberValue:
		if f := v.ToFloat64(); f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			*w = wireID{id: int(f), valid: true}
		}
	}
	return nil
}

type elementRecord struct {
	ID           int           `json:"id"`
	Kind         string        `json:"kind"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	ZIndex       int           `json:"zIndex"`
	Opacity      int           `json:"opacity"`
	Rotation     int           `json:"rotation"`
	CornerRadius domain.Radius `json:"cornerRadius"`
	Fill         string        `json:"fill"`
	TextColor    string        `json:"textColor,omitempty"`
	Content      string        `json:"content,omitempty"`
}

// Encode serializes a scene into the persisted format.
func Encode(sc domain.Scene) ([]byte, error) {
	rec := record{Elements: make([]elementRecord, 0, len(sc.Elements))}
	for _, e := range sc.Elements {
		rec.Elements = append(rec.Elements, elementRecord{
			ID: e.ID, Kind: string(e.Kind),
			X: float64(e.X), Y: float64(e.Y), Width: float64(e.Width), Height: float64(e.Height),
			ZIndex: e.ZIndex, Opacity: e.Opacity, Rotation: e.Rotation,
			CornerRadius: e.CornerRadius, Fill: e.Fill, TextColor: e.TextColor, Content: e.Content,
		})
	}
	if sc.SelectedID != nil {
		rec.SelectedID = &wireID{id: *sc.SelectedID, valid: true}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return data, nil
}

// Decode validates data against the embedded schema and parses it. A selectedId that is
// neither an integer string nor an integer number, or names no decoded element, is dropped.
func Decode(data []byte) (domain.Scene, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.Scene{}, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return domain.Scene{}, fmt.Errorf("%w: %s", ErrInvalidScene, strings.Join(msgs, "; "))
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	sc := domain.Scene{Elements: make([]domain.Element, 0, len(rec.Elements))}
	for _, r := range rec.Elements {
		sc.Elements = append(sc.Elements, domain.Element{
			ID: r.ID, Kind: domain.Kind(r.Kind),
			X: round(r.X), Y: round(r.Y), Width: round(r.Width), Height: round(r.Height),
			ZIndex: r.ZIndex, Opacity: r.Opacity, Rotation: r.Rotation,
			CornerRadius: r.CornerRadius, Fill: r.Fill, TextColor: r.TextColor, Content: r.Content,
		})
	}
	if w := rec.SelectedID; w != nil && w.valid && sc.Find(w.id) >= 0 {
		id := w.id
		sc.SelectedID = &id
	}
	return sc, nil
}

func round(v float64) int { return int(math.Round(v)) }

// Persistence saves and loads the scene under one key of a KV.
type Persistence struct {
	kv  KV
	key string
	log *slog.Logger
}

func NewPersistence(kv KV, key string) *Persistence {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Persistence{kv: kv, key: key, log: applog.WithComponent("storage").With(slog.String("key", key))}
}

// Save writes the whole scene. Write errors are returned.
func (p *Persistence) Save(ctx context.Context, sc domain.Scene) error {
	data, err := Encode(sc)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, p.key, data); err != nil {
		p.log.ErrorContext(ctx, "save scene failed", slog.Any("err", err))
		return fmt.Errorf("save scene: %w", err)
	}
	p.log.DebugContext(ctx, "scene saved", slog.Int("elements", len(sc.Elements)), slog.Int("bytes", len(data)))
	return nil
}

// Load reads the scene. A missing key, a read error or an unparsable payload all yield an
// empty scene and false.
func (p *Persistence) Load(ctx context.Context) (domain.Scene, bool) {
	data, ok, err := p.kv.Get(ctx, p.key)
	switch {
	case err != nil:
		p.log.WarnContext(ctx, "load scene failed, starting empty", slog.Any("err", err))
		return domain.Scene{}, false
	case !ok:
		p.log.DebugContext(ctx, "no stored scene")
		return domain.Scene{}, false
	}
	sc, err := Decode(data)
	if err != nil {
		p.log.WarnContext(ctx, "stored scene unreadable, starting empty", slog.Any("err", err))
		return domain.Scene{}, false
	}
	return sc, true
}

// Key is the storage key the scene is saved under.
func (p *Persistence) Key() string { return p.key }

// Close releases the underlying store.
func (p *Persistence) Close() error { return p.kv.Close() }
