/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Storage       StorageConfig `yaml:"storage"`
	Styles        StylesConfig  `yaml:"styles"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

// CanvasConfig holds the drawing surface bounds and the interaction tuning knobs.
type CanvasConfig struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	MinSize         int `yaml:"min_size"`
	NudgeStep       int `yaml:"nudge_step"`
	HandleSize      int `yaml:"handle_size"`
	PlacementMargin int `yaml:"placement_margin"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // memory | file | sqlite | postgres
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
	DSN     string `yaml:"dsn"`
	// Password is not stored on disk; it lives in the OS keychain.
}

// StyleConfig overrides the creation defaults of one element kind. Empty fields keep the built-in default.
type StyleConfig struct {
	Fill         string `yaml:"fill,omitempty"`
	TextColor    string `yaml:"text_color,omitempty"`
	CornerRadius string `yaml:"corner_radius,omitempty"`
	Content      string `yaml:"content,omitempty"`
}

type StylesConfig struct {
	Rect   StyleConfig `yaml:"rect"`
	Circle StyleConfig `yaml:"circle"`
	Text   StyleConfig `yaml:"text"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Canvas: CanvasConfig{
			Width:           1000,
			Height:          800,
			MinSize:         40,
			NudgeStep:       5,
			HandleSize:      10,
			PlacementMargin: 10,
		},
		Storage: StorageConfig{Backend: "sqlite", Path: "", Key: "scene"},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvTelemetryOptIn = "GOSCENE_TELEMETRY_OPT_IN"
	EnvCanvasWidth    = "GOSCENE_CANVAS_WIDTH"
	EnvCanvasHeight   = "GOSCENE_CANVAS_HEIGHT"
	EnvStorageBackend = "GOSCENE_STORAGE_BACKEND"
	EnvStoragePath    = "GOSCENE_STORAGE_PATH"
	EnvStorageKey     = "GOSCENE_STORAGE_KEY"
	EnvStorageDSN     = "GOSCENE_STORAGE_DSN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GOSCENE_LOG_LEVEL"
	EnvLogFormat = "GOSCENE_LOG_FORMAT"
	EnvLogSource = "GOSCENE_LOG_SOURCE"
	EnvLogFile   = "GOSCENE_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "goscene"
	keyringPassword = "postgres_password"
)

// secretStore abstracts keyring, so we can stub in tests.
var secretStore SecretStore = osKeyring{}

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// Dir returns the per-user config directory.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "goscene")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "goscene")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "goscene")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// The PostgreSQL password is read from the keyring and returned separately.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error.
func LoadFrom(path string) (AppConfig, string, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath(cfg.Storage.Backend, filepath.Dir(path))
	}
	secret, _ := secretStore.Get(keyringService, keyringPassword)
	return cfg, secret, nil
}

// Save writes the user config YAML and persists the password into the OS keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := secretStore.Set(keyringService, keyringPassword, password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	return nil
}

// Validate reports configurations the editor cannot work with.
func (c AppConfig) Validate() error {
	cv := c.Canvas
	if cv.MinSize <= 0 {
		return fmt.Errorf("canvas.min_size must be positive, got %d", cv.MinSize)
	}
	if cv.Width < cv.MinSize || cv.Height < cv.MinSize {
		return fmt.Errorf("canvas %dx%d is smaller than min_size %d", cv.Width, cv.Height, cv.MinSize)
	}
	if cv.NudgeStep <= 0 || cv.HandleSize <= 0 || cv.PlacementMargin < 0 {
		return errors.New("canvas nudge_step and handle_size must be positive, placement_margin non-negative")
	}
	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key must not be empty")
	}
	return nil
}

// DefaultStoragePath is where backend keeps its data under the config dir dir.
func DefaultStoragePath(backend, dir string) string {
	switch backend {
	case "sqlite":
		return filepath.Join(dir, "scene.db")
	case "file":
		return filepath.Join(dir, "scenes")
	}
	return ""
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	// canvas: zero means "keep default"
	mergeInt(&dst.Canvas.Width, src.Canvas.Width)
	mergeInt(&dst.Canvas.Height, src.Canvas.Height)
	mergeInt(&dst.Canvas.MinSize, src.Canvas.MinSize)
	mergeInt(&dst.Canvas.NudgeStep, src.Canvas.NudgeStep)
	mergeInt(&dst.Canvas.HandleSize, src.Canvas.HandleSize)
	mergeInt(&dst.Canvas.PlacementMargin, src.Canvas.PlacementMargin)
	// storage
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Backend)); v != "" {
		dst.Storage.Backend = v
	}
	if v := strings.TrimSpace(src.Storage.Path); v != "" {
		dst.Storage.Path = v
	}
	if v := strings.TrimSpace(src.Storage.Key); v != "" {
		dst.Storage.Key = v
	}
	if v := strings.TrimSpace(src.Storage.DSN); v != "" {
		dst.Storage.DSN = v
	}
	dst.Styles = src.Styles
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageKey)); v != "" {
		cfg.Storage.Key = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"canvas.width":             EnvCanvasWidth,
		"canvas.height":            EnvCanvasHeight,
		"storage.backend":          EnvStorageBackend,
		"storage.path":             EnvStoragePath,
		"storage.key":              EnvStorageKey,
		"storage.dsn":              EnvStorageDSN,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}
	name, ok := names[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
