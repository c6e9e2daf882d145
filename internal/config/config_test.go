/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AppData", home)
	return home
}

func TestEnvOverridesCanvas(t *testing.T) {
	isolate(t)
	t.Setenv(EnvCanvasWidth, "640")
	t.Setenv(EnvCanvasHeight, "480")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Canvas.Width != 640 || cfg.Canvas.Height != 480 {
		t.Fatalf("canvas = %dx%d, want 640x480", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if name, ok := EnvOverrideFor("canvas.width"); !ok || name != EnvCanvasWidth {
		t.Fatalf("EnvOverrideFor(canvas.width) = %q, %v", name, ok)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := AppConfig{}
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/goscene.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/goscene.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeKeepsCanvasDefaultsForZero(t *testing.T) {
	dst := Defaults()
	src := AppConfig{Canvas: CanvasConfig{Width: 1200}}
	mergeInto(&dst, &src)
	if dst.Canvas.Width != 1200 || dst.Canvas.Height != 800 || dst.Canvas.MinSize != 40 {
		t.Fatalf("unexpected canvas after merge: %#v", dst.Canvas)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/tmp/goscene.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/tmp/goscene.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestLoadFromFileAndDefaultPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("canvas:\n  width: 500\n  height: 400\nstorage:\n  backend: FILE\nstyles:\n  rect:\n    fill: green\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Canvas.Width != 500 || cfg.Canvas.Height != 400 {
		t.Fatalf("canvas = %#v", cfg.Canvas)
	}
	if cfg.Storage.Backend != "file" {
		t.Fatalf("backend = %q, want file", cfg.Storage.Backend)
	}
	if want := filepath.Join(dir, "scenes"); cfg.Storage.Path != want {
		t.Fatalf("path = %q, want %q", cfg.Storage.Path, want)
	}
	if cfg.Styles.Rect.Fill != "green" {
		t.Fatalf("rect style not loaded: %#v", cfg.Styles.Rect)
	}
}

func TestLoadFromRejectsMalformedYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("canvas: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveStoresPasswordInKeyring(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Storage.Backend = "postgres"
	cfg.Storage.DSN = "postgres://scene@localhost/scene"
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, secret, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if secret != "s3cret" {
		t.Fatalf("secret = %q, want s3cret", secret)
	}
	if got.Storage.DSN != cfg.Storage.DSN {
		t.Fatalf("dsn = %q", got.Storage.DSN)
	}
	path, _ := ConfigPath()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "s3cret") {
		t.Fatalf("password leaked into config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	small := Defaults()
	small.Canvas.Width = 20
	if err := small.Validate(); err == nil {
		t.Fatalf("expected error for canvas below min size")
	}
	pg := Defaults()
	pg.Storage.Backend = "postgres"
	if err := pg.Validate(); err == nil {
		t.Fatalf("expected error for postgres without dsn")
	}
	unknown := Defaults()
	unknown.Storage.Backend = "redis"
	if err := unknown.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
