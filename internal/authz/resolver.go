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

package authz

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/metric"

	"github.com/scopeguard/scopeguard/internal/cache"
	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
	"github.com/scopeguard/scopeguard/internal/observability/logger"
	"github.com/scopeguard/scopeguard/internal/observability/metrics"
)

// Config holds resolver configuration.
type Config struct {
	// Prewarm populates per-tenant permission sets while the membership
	// rows are already loaded for the active-tenant list, avoiding a
	// query burst right after login. An optimization, not a correctness
	// requirement.
	Prewarm bool
}

// Service resolves permissions and tenant context for authenticated
// users, consulting the cache layer before the membership store. It is
// invoked synchronously within the request handler; it spawns nothing.
type Service struct {
	store   membership.Store
	cache   *cache.Layer
	prewarm bool

	checks      metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// NewService creates the resolver. The cache layer is injected with an
// explicit lifecycle: constructed at process start, never re-created.
func NewService(store membership.Store, cacheLayer *cache.Layer, cfg Config) *Service {
	meter := metrics.New("scopeguard/authz")
	checks, _ := meter.Counter("authz.permission_checks", "Permission checks resolved")
	hits, _ := meter.Counter("authz.cache_hits", "Permission checks served from cache")
	misses, _ := meter.Counter("authz.cache_misses", "Permission checks recomputed from the membership store")

	return &Service{
		store:       store,
		cache:       cacheLayer,
		prewarm:     cfg.Prewarm,
		checks:      checks,
		cacheHits:   hits,
		cacheMisses: misses,
	}
}

// HasPermission reports whether the user holds the permission codename
// within the referenced tenant. A deny is a return value, never an
// error: unauthenticated callers, unknown tenants, and indeterminable
// tenant references all resolve to false.
func (s *Service) HasPermission(ctx context.Context, user *identity.User, codename string, tenantRef any) bool {
	if !user.Authenticated() {
		return false
	}
	if user.Elevated {
		return true
	}

	tenantID, ok := TenantIDOf(tenantRef)
	if !ok {
		slog.WarnContext(ctx, "tenant context indeterminable, denying",
			logger.Component("authz"), logger.UserID(user.ID), logger.Codename(codename))
		return false
	}

	codename = StripNamespace(codename)
	s.count(ctx, s.checks)

	if perms, hit := s.cache.PermissionSet(ctx, user.ID, tenantID); hit {
		s.count(ctx, s.cacheHits)
		return slices.Contains(perms, codename)
	}
	s.count(ctx, s.cacheMisses)

	perms, cacheable := s.loadPermissionSet(ctx, user.ID, tenantID)
	if cacheable {
		// The empty set is cached too: "confirmed no access" spares the
		// store a repeat query for non-members.
		s.cache.SetPermissionSet(ctx, user.ID, tenantID, perms)
	}
	return slices.Contains(perms, codename)
}

// GetActiveTenants returns the tenant IDs the user actively belongs to
// and whether that list has exactly one member.
func (s *Service) GetActiveTenants(ctx context.Context, user *identity.User) ([]membership.TenantID, bool) {
	if !user.Authenticated() {
		return []membership.TenantID{}, false
	}

	if ids, hit := s.cache.ActiveTenants(ctx, user.ID); hit {
		return ids, len(ids) == 1
	}

	members, err := s.store.ActiveMembershipsForUser(ctx, user.ID)
	if err != nil {
		// Store failure: report no tenants but leave the cache alone so
		// the next call retries.
		slog.ErrorContext(ctx, "failed to load active memberships",
			logger.Component("authz"), logger.UserID(user.ID), logger.Error(err))
		return []membership.TenantID{}, false
	}

	ids := make([]membership.TenantID, 0, len(members))
	seen := make(map[membership.TenantID]bool, len(members))
	for _, m := range members {
		if !seen[m.TenantID] {
			seen[m.TenantID] = true
			ids = append(ids, m.TenantID)
		}
		if s.prewarm {
			s.cache.SetPermissionSet(ctx, user.ID, m.TenantID, m.EffectivePermissions())
		}
	}

	s.cache.SetActiveTenants(ctx, user.ID, ids)
	return ids, len(ids) == 1
}

// loadPermissionSet computes the effective permission set for a
// (user, tenant) pair from the membership store. The second return is
// false when the store failed and the result must not be cached.
func (s *Service) loadPermissionSet(ctx context.Context, userID string, tenantID membership.TenantID) ([]string, bool) {
	m, err := s.store.ActiveMembership(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return []string{}, true
		}
		slog.ErrorContext(ctx, "failed to load membership",
			logger.Component("authz"), logger.UserID(userID),
			logger.TenantID(int64(tenantID)), logger.Error(err))
		return []string{}, false
	}
	return m.EffectivePermissions(), true
}

func (s *Service) count(ctx context.Context, c metric.Int64Counter) {
	if c != nil {
		c.Add(ctx, 1)
	}
}
