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
	"log/slog"

	"github.com/scopeguard/scopeguard/internal/cache"
	"github.com/scopeguard/scopeguard/internal/membership"
	"github.com/scopeguard/scopeguard/internal/observability/logger"
)

// EventKind classifies a mutation affecting cached authorization data.
type EventKind string

const (
	// EventMembershipChanged covers membership create, role-set change,
	// activate/deactivate, and delete.
	EventMembershipChanged EventKind = "membership_changed"

	// EventRolePermissionsChanged covers codename additions/removals on
	// a role's permission set.
	EventRolePermissionsChanged EventKind = "role_permissions_changed"

	// EventOrganizationRemoved covers removal of a whole organization.
	EventOrganizationRemoved EventKind = "organization_removed"
)

// Event describes one committed mutation. The owning modules must call
// Invalidate after every write path that touches membership or role
// permission data, including administrative bulk edits.
type Event struct {
	Kind     EventKind
	UserID   string              // membership events
	TenantID membership.TenantID // 0 when unknown
	RoleID   string              // role events
}

// Invalidator deletes the cache entries a mutation made stale, so the
// next resolution recomputes from the membership store. All operations
// are best-effort: a failed invalidation is logged and never raised to
// the caller that triggered the mutation; briefly serving stale data
// is preferable to failing a business write. The TTL bounds the damage
// either way.
type Invalidator struct {
	cache *cache.Layer
	store membership.Store
}

// NewInvalidator creates an invalidator over the cache layer. The store
// is consulted to fan a role change out over its current memberships.
func NewInvalidator(cacheLayer *cache.Layer, store membership.Store) *Invalidator {
	return &Invalidator{cache: cacheLayer, store: store}
}

// Invalidate applies one mutation event to the cache.
func (i *Invalidator) Invalidate(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventMembershipChanged:
		i.MembershipChanged(ctx, ev.UserID, ev.TenantID)
	case EventRolePermissionsChanged:
		i.RolePermissionsChanged(ctx, ev.RoleID)
	case EventOrganizationRemoved:
		i.OrganizationRemoved(ctx, ev.TenantID)
	default:
		slog.WarnContext(ctx, "unknown invalidation event kind",
			logger.Component("authz"), logger.Operation(string(ev.Kind)))
	}
}

// MembershipChanged drops the user's active-tenant list and, when the
// tenant is known, the (user, tenant) permission set.
func (i *Invalidator) MembershipChanged(ctx context.Context, userID string, tenantID membership.TenantID) {
	if err := i.cache.DeleteActiveTenants(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate active-tenant cache",
			logger.Component("authz"), logger.UserID(userID), logger.Error(err))
	}
	if tenantID == 0 {
		return
	}
	if err := i.cache.DeletePermissionSet(ctx, userID, tenantID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate permission-set cache",
			logger.Component("authz"), logger.UserID(userID),
			logger.TenantID(int64(tenantID)), logger.Error(err))
	}
}

// RolePermissionsChanged fans out over every active membership
// referencing the role and drops each (user, tenant) permission set.
func (i *Invalidator) RolePermissionsChanged(ctx context.Context, roleID string) {
	members, err := i.store.ActiveMembershipsForRole(ctx, roleID)
	if err != nil {
		slog.WarnContext(ctx, "failed to list memberships for role invalidation",
			logger.Component("authz"), logger.RoleID(roleID), logger.Error(err))
		return
	}
	for _, m := range members {
		if err := i.cache.DeletePermissionSet(ctx, m.UserID, m.TenantID); err != nil {
			slog.WarnContext(ctx, "failed to invalidate permission-set cache",
				logger.Component("authz"), logger.UserID(m.UserID),
				logger.TenantID(int64(m.TenantID)), logger.Error(err))
		}
	}
}

// OrganizationRemoved drops every permission set cached for the tenant,
// across all users, in one pattern delete.
func (i *Invalidator) OrganizationRemoved(ctx context.Context, tenantID membership.TenantID) {
	if err := i.cache.DeleteTenantPermissions(ctx, tenantID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate tenant permission caches",
			logger.Component("authz"), logger.TenantID(int64(tenantID)), logger.Error(err))
	}
}
