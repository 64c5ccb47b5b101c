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
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/scopeguard/scopeguard/internal/membership"
	"github.com/scopeguard/scopeguard/internal/observability/logger"
)

// DefaultTTL is the staleness ceiling applied when no TTL is configured.
// Invalidation is the primary consistency mechanism; the TTL only bounds
// how long a missed invalidation can serve stale data.
const DefaultTTL = time.Hour

// Store is the pluggable cache backend. Entries are immutable values
// replaced wholesale on write; the backend only needs per-key atomicity.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteMatching removes all keys matching a glob-style pattern.
	DeleteMatching(ctx context.Context, pattern string) error

	// Close releases backend resources.
	Close() error
}

// Key scheme. Two independent key spaces:
//
//	authz:tenants:<user>          -> JSON list of tenant IDs
//	authz:perms:<user>:<tenant>   -> JSON list of permission codenames
func activeTenantsKey(userID string) string {
	return "authz:tenants:" + userID
}

func permissionSetKey(userID string, tenantID membership.TenantID) string {
	return fmt.Sprintf("authz:perms:%s:%d", userID, tenantID)
}

func tenantPermissionsPattern(tenantID membership.TenantID) string {
	return fmt.Sprintf("authz:perms:*:%d", tenantID)
}

// Layer is the typed two-tier cache consulted by the permission and
// tenant-context resolvers. It is constructed once at process start and
// injected everywhere it is needed.
//
// Backend read errors are degraded to cache misses: the resolvers then
// recompute from the membership store instead of failing the check.
type Layer struct {
	store Store
	ttl   time.Duration
}

// NewLayer creates a cache layer over a backend. A non-positive ttl
// falls back to DefaultTTL.
func NewLayer(store Store, ttl time.Duration) *Layer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Layer{store: store, ttl: ttl}
}

// TTL returns the configured entry lifetime.
func (l *Layer) TTL() time.Duration {
	return l.ttl
}

// ActiveTenants returns the cached active-tenant list for a user.
func (l *Layer) ActiveTenants(ctx context.Context, userID string) ([]membership.TenantID, bool) {
	var ids []membership.TenantID
	if !l.get(ctx, activeTenantsKey(userID), &ids) {
		return nil, false
	}
	return ids, true
}

// SetActiveTenants stores a user's active-tenant list.
func (l *Layer) SetActiveTenants(ctx context.Context, userID string, ids []membership.TenantID) {
	if ids == nil {
		ids = []membership.TenantID{}
	}
	l.set(ctx, activeTenantsKey(userID), ids)
}

// DeleteActiveTenants removes a user's active-tenant list entry.
func (l *Layer) DeleteActiveTenants(ctx context.Context, userID string) error {
	return l.store.Delete(ctx, activeTenantsKey(userID))
}

// PermissionSet returns the cached effective permission set for a
// (user, tenant) pair. An empty cached set is a valid hit: it records a
// confirmed "no access" and spares the store a repeat query.
func (l *Layer) PermissionSet(ctx context.Context, userID string, tenantID membership.TenantID) ([]string, bool) {
	var perms []string
	if !l.get(ctx, permissionSetKey(userID, tenantID), &perms) {
		return nil, false
	}
	return perms, true
}

// SetPermissionSet stores the effective permission set for a
// (user, tenant) pair, including empty sets.
func (l *Layer) SetPermissionSet(ctx context.Context, userID string, tenantID membership.TenantID, perms []string) {
	if perms == nil {
		perms = []string{}
	}
	l.set(ctx, permissionSetKey(userID, tenantID), perms)
}

// DeletePermissionSet removes the permission-set entry for one
// (user, tenant) pair.
func (l *Layer) DeletePermissionSet(ctx context.Context, userID string, tenantID membership.TenantID) error {
	return l.store.Delete(ctx, permissionSetKey(userID, tenantID))
}

// DeleteTenantPermissions removes every permission-set entry for a
// tenant, across all users.
func (l *Layer) DeleteTenantPermissions(ctx context.Context, tenantID membership.TenantID) error {
	return l.store.DeleteMatching(ctx, tenantPermissionsPattern(tenantID))
}

func (l *Layer) get(ctx context.Context, key string, out any) bool {
	raw, found, err := l.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed, treating as miss",
			logger.Component("cache"), logger.CacheKey(key), logger.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// Corrupt entry: drop it and recompute.
		_ = l.store.Delete(ctx, key)
		slog.WarnContext(ctx, "cache entry corrupt, deleted",
			logger.Component("cache"), logger.CacheKey(key), logger.Error(err))
		return false
	}
	return true
}

func (l *Layer) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed",
			logger.Component("cache"), logger.CacheKey(key), logger.Error(err))
		return
	}
	if err := l.store.Set(ctx, key, string(data), l.ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed",
			logger.Component("cache"), logger.CacheKey(key), logger.Error(err))
	}
}
