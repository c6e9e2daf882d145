/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func quiet(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { Init(Setup{Out: io.Discard}) })
}

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines in %s", path)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	return m
}

func TestInit_FileCarriesSceneScope(t *testing.T) {
	quiet(t)
	// os.TempDir keeps the still-open rotated file out of t.TempDir cleanup.
	path := filepath.Join(os.TempDir(), fmt.Sprintf("goscene_log_%d.json", time.Now().UnixNano()))
	Init(Setup{Level: "debug", Format: "json", File: path, Out: io.Discard})

	ctx := ContextWithScene(ContextWithSession(context.Background(), "s-1"), "scene")
	l := WithElement(WithOperation(WithComponent("editor"), "move"), 7, "rect")
	l.InfoContext(ctx, "moved", slog.Int("dx", 5))

	m := lastJSONLine(t, path)
	if m["app"] != "goscene" || m["component"] != "editor" || m["op"] != "move" {
		t.Fatalf("static attrs: %v", m)
	}
	if m["session"] != "s-1" || m["scene"] != "scene" {
		t.Fatalf("context attrs: %v", m)
	}
	el, ok := m["element"].(map[string]any)
	if !ok || el["id"] != float64(7) || el["kind"] != "rect" {
		t.Fatalf("element group: %v", m["element"])
	}
	if m["msg"] != "moved" || m["dx"] != float64(5) {
		t.Fatalf("record: %v", m)
	}
}

func TestInit_ConsoleToOut(t *testing.T) {
	quiet(t)
	var buf bytes.Buffer
	Init(Setup{Level: "warn", Out: &buf})
	WithComponent("cli").Info("dropped")
	WithComponent("cli").Warn("slow save")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info written at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN [cli] slow save app=goscene ver=") {
		t.Fatalf("unexpected console line: %q", out)
	}
	if L() != slog.Default() {
		t.Fatalf("Init did not replace slog.Default")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "TRUE")
	t.Setenv(EnvFile, "")
	s := FromEnv()
	if s.Level != "warn" || s.Format != "json" || !s.Source || s.File != "" || s.Out != nil {
		t.Fatalf("FromEnv = %+v", s)
	}

	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvSource, "")
	if s := FromEnv(); s.Level != "info" || s.Format != "console" || s.Source {
		t.Fatalf("defaults = %+v", s)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "info": slog.LevelInfo, "loud": slog.LevelInfo, "": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestScoped_OnlyWithContextValues(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(scoped{newConsole(&buf, slog.LevelDebug, false)})
	l.InfoContext(ContextWithScene(ContextWithSession(context.Background(), "s-42"), "main"), "saved")
	if out := buf.String(); !strings.Contains(out, "saved session=s-42 scene=main") {
		t.Fatalf("scope attrs missing: %q", out)
	}
	buf.Reset()
	l.InfoContext(context.Background(), "plain")
	if strings.Contains(buf.String(), "session=") || strings.Contains(buf.String(), "scene=") {
		t.Fatalf("unexpected scope attrs: %q", buf.String())
	}
}

func TestFanout_RespectsEachLevel(t *testing.T) {
	var info, errs bytes.Buffer
	l := slog.New(fanout{newConsole(&info, slog.LevelInfo, false), newConsole(&errs, slog.LevelError, false)})
	l.Warn("disk nearly full")
	if !strings.Contains(info.String(), "disk nearly full") {
		t.Fatalf("info handler missed the record: %q", info.String())
	}
	if errs.Len() != 0 {
		t.Fatalf("error handler wrote a warning: %q", errs.String())
	}
	l.Error("disk full")
	if !strings.Contains(errs.String(), "ERR disk full") {
		t.Fatalf("error handler missed the record: %q", errs.String())
	}
}
