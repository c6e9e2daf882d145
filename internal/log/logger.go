/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger for goscene. Records go to a compact
// console line or JSON, optionally mirrored into a rotated JSON file, and pick up the
// editing session and scene key carried in the context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"goscene/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "GOSCENE_LOG_LEVEL"
	EnvFormat = "GOSCENE_LOG_FORMAT"
	EnvSource = "GOSCENE_LOG_SOURCE"
	EnvFile   = "GOSCENE_LOG_FILE"
)

// Setup mirrors the logging section of the config file.
type Setup struct {
	Level  string // debug, info, warn or error; anything else is info
	Format string // console or json
	Source bool
	File   string    // when set, JSON records are also appended here with rotation
	Out    io.Writer // console destination; stderr when nil
}

// FromEnv reads a Setup from the GOSCENE_LOG_* variables.
func FromEnv() Setup {
	s := Setup{Level: "info", Format: "console", File: strings.TrimSpace(os.Getenv(EnvFile))}
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		s.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		s.Format = v
	}
	s.Source = strings.EqualFold(strings.TrimSpace(os.Getenv(EnvSource)), "true")
	return s
}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the process logger, building it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Init(FromEnv())
}

// Init replaces the process logger (and slog.Default) and returns it.
func Init(s Setup) *slog.Logger {
	lvl := ParseLevel(s.Level)
	out := s.Out
	if out == nil {
		out = os.Stderr
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(s.Format), "json") {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: s.Source})
	} else {
		h = newConsole(out, lvl, s.Source)
	}
	if s.File != "" {
		rot := &lj.Logger{Filename: s.File, MaxSize: 5, MaxBackups: 5, MaxAge: 14, Compress: true}
		h = fanout{h, slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: lvl, AddSource: s.Source})}
	}

	l := slog.New(scoped{h}).With(slog.String("app", "goscene"), slog.String("ver", version.Version))

	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns the process logger tagged with component=name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with op=name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithElement tags l with the element a record is about.
func WithElement(l *slog.Logger, id int, kind string) *slog.Logger {
	return l.With(slog.Group("element", slog.Int("id", id), slog.String("kind", kind)))
}

type (
	sessionKey struct{}
	sceneKey   struct{}
)

// ContextWithSession tags ctx so records logged with it carry session=<id>.
func ContextWithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// ContextWithScene tags ctx with the storage key of the scene being edited.
func ContextWithScene(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sceneKey{}, key)
}

// scoped copies the session and scene from the context onto each record.
type scoped struct{ next slog.Handler }

func (s scoped) Enabled(ctx context.Context, l slog.Level) bool { return s.next.Enabled(ctx, l) }

func (s scoped) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		r = r.Clone()
		if id, _ := ctx.Value(sessionKey{}).(string); id != "" {
			r.AddAttrs(slog.String("session", id))
		}
		if key, _ := ctx.Value(sceneKey{}).(string); key != "" {
			r.AddAttrs(slog.String("scene", key))
		}
	}
	return s.next.Handle(ctx, r)
}

func (s scoped) WithAttrs(as []slog.Attr) slog.Handler { return scoped{s.next.WithAttrs(as)} }
func (s scoped) WithGroup(name string) slog.Handler    { return scoped{s.next.WithGroup(name)} }

// fanout sends every record to all of its handlers and reports the first error.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
