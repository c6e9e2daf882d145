/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"goscene/internal/config"
	"goscene/internal/domain"
	"goscene/internal/editor"
	"goscene/internal/interaction"
	applog "goscene/internal/log"
	"goscene/internal/scene"
	"goscene/internal/storage"
	"goscene/internal/telemetry"
	"goscene/internal/textlayout"
	"goscene/internal/view"
)

// app is the state shared by every command of one process, including REPL lines.
type app struct {
	configPath string
	backend    string
	path       string

	cfg     config.AppConfig
	persist *storage.Persistence
	tel     *telemetry.Client
	ed      *editor.Editor
	fonts   textlayout.Provider
	log     *slog.Logger
}

func newApp() *app {
	return &app{fonts: textlayout.BasicProvider{}, log: applog.WithComponent("cli")}
}

// loadConfig resolves the config file, then applies the command-line overrides.
func (a *app) loadConfig() (config.AppConfig, string, error) {
	var (
		cfg    config.AppConfig
		secret string
		err    error
	)
	if a.configPath != "" {
		cfg, secret, err = config.LoadFrom(a.configPath)
	} else {
		cfg, secret, err = config.Load()
	}
	if err != nil {
		return cfg, "", err
	}
	if a.backend != "" && a.backend != cfg.Storage.Backend {
		cfg.Storage.Backend = strings.ToLower(a.backend)
		if a.path == "" {
			dir := filepath.Dir(a.configPath)
			if a.configPath == "" {
				if dir, err = config.Dir(); err != nil {
					return cfg, "", err
				}
			}
			cfg.Storage.Path = config.DefaultStoragePath(cfg.Storage.Backend, dir)
		}
	}
	if a.path != "" {
		cfg.Storage.Path = a.path
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, secret, nil
}

// editor opens the session on first use and returns the same one afterwards.
func (a *app) editor(ctx context.Context) (*editor.Editor, error) {
	if a.ed != nil {
		return a.ed, nil
	}
	cfg, secret, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	applog.Init(applog.Setup{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Source: cfg.Logging.Source,
		File:   cfg.Logging.File,
	})
	a.log = applog.WithComponent("cli")
	styles, err := stylesFrom(cfg.Styles)
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(ctx, storage.Backend{
		Kind:     cfg.Storage.Backend,
		Path:     cfg.Storage.Path,
		DSN:      cfg.Storage.DSN,
		Password: secret,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	a.cfg = cfg
	a.persist = storage.NewPersistence(kv, cfg.Storage.Key)

	tc := telemetry.FromEnv()
	tc.OptIn = tc.OptIn || cfg.General.TelemetryOptIn
	a.tel = telemetry.NewDefault(tc)

	a.ed = editor.Open(ctx, a.persist, editor.Options{
		Scene: scene.Options{
			Canvas:  domain.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height},
			MinSize: cfg.Canvas.MinSize,
			Margin:  cfg.Canvas.PlacementMargin,
			Styles:  styles,
		},
		Interaction: interaction.Options{
			NudgeStep:  cfg.Canvas.NudgeStep,
			HandleSize: cfg.Canvas.HandleSize,
			Fonts:      a.fonts,
		},
		Events:      a.tel,
		Session:     a.tel.Session(),
	})
	a.log.Debug("session ready", slog.String("backend", cfg.Storage.Backend), slog.String("path", cfg.Storage.Path))
	return a.ed, nil
}

// frame renders the current scene the way the views see it.
func (a *app) frame() view.Frame {
	m := view.NewModel(a.fonts, nil)
	cancel := a.ed.Subscribe(m.Apply)
	cancel()
	return m.Last()
}

// Scene lets crash.Recover snapshot whatever session is open.
func (a *app) Scene() domain.Scene {
	if a.ed == nil {
		return domain.Scene{}
	}
	return a.ed.Scene()
}

func (a *app) crashDir() string {
	if dir, err := config.Dir(); err == nil {
		return filepath.Join(dir, "crash")
	}
	return ""
}

// close releases storage and telemetry. The editor stays readable for a crash snapshot.
func (a *app) close(ctx context.Context) {
	if a.tel != nil {
		a.tel.Flush(ctx)
		a.tel.Close()
	}
	if a.persist != nil {
		if err := a.persist.Close(); err != nil {
			a.log.Warn("close storage failed", slog.Any("err", err))
		}
	}
	a.persist, a.tel = nil, nil
}

// stylesFrom overlays the configured per-kind overrides on the built-in defaults.
func stylesFrom(sc config.StylesConfig) (domain.Styles, error) {
	out := domain.DefaultStyles()
	for kind, over := range map[domain.Kind]config.StyleConfig{
		domain.KindRectangle: sc.Rect,
		domain.KindCircle:    sc.Circle,
		domain.KindText:      sc.Text,
	} {
		st := out[kind]
		if over.Fill != "" {
			st.Fill = over.Fill
		}
		if over.TextColor != "" && kind.HasText() {
			st.TextColor = over.TextColor
		}
		if over.Content != "" && kind.HasText() {
			st.Content = over.Content
		}
		if over.CornerRadius != "" && kind.HasCornerRadius() {
			r, err := domain.ParseRadius(over.CornerRadius)
			if err != nil {
				return nil, fmt.Errorf("styles.%s.corner_radius: %w", kind, err)
			}
			st.CornerRadius = r
		}
		out[kind] = st
	}
	return out, nil
}
