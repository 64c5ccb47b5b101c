// Copyright 2026 The ScopeGuard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"fmt"
	"path"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is a bounded in-process cache backend. Invalidation is only
// visible within this instance, so it is suited to single-instance
// deployments and tests; multi-instance deployments should use Redis.
type Memory struct {
	entries *lru.Cache[string, memoryEntry]
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// DefaultMemorySize bounds the in-process backend. One entry per user
// plus one per (user, tenant) pair; eviction of a live entry only costs
// a recompute.
const DefaultMemorySize = 16384

// NewMemory creates an in-process backend holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Memory{entries: entries}, nil
}

// Get returns the value for key, expiring lazily on read.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	e, ok := m.entries.Get(key)
	if !ok {
		return "", false, nil
	}
	if time.Now().After(e.expiresAt) {
		m.entries.Remove(key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key with the given TTL.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.entries.Add(key, memoryEntry{value: value, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes the given keys.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.entries.Remove(key)
	}
	return nil
}

// DeleteMatching removes all keys matching a glob-style pattern.
func (m *Memory) DeleteMatching(_ context.Context, pattern string) error {
	for _, key := range m.entries.Keys() {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			m.entries.Remove(key)
		}
	}
	return nil
}

// Close is a no-op for the in-process backend.
func (m *Memory) Close() error {
	return nil
}
