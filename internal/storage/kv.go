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
	"fmt"
	"strings"
	"sync"
)

// KV is the byte store a scene is persisted to. A missing key is reported through the bool,
// not as an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend selects and configures a KV implementation.
type Backend struct {
	Kind     string // memory | file | sqlite | postgres
	Path     string
	DSN      string
	Password string
}

// Open constructs the KV described by b.
func Open(ctx context.Context, b Backend) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(b.Kind)) {
	case "memory", "":
		return NewMemoryKV(), nil
	case "file":
		return OpenFileKV(b.Path)
	case "sqlite":
		return OpenSQLiteKV(ctx, b.Path)
	case "postgres":
		return OpenPostgresKV(ctx, b.DSN, b.Password)
	}
	return nil, fmt.Errorf("unknown storage backend %q", b.Kind)
}

// MemoryKV keeps values in process memory. Values are copied in and out.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{data: map[string][]byte{}} }

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
