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

package membership

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrMembershipAlreadyExists = errors.New("membership already exists")
	ErrRoleNotFound            = errors.New("role not found")
	ErrRoleAlreadyExists       = errors.New("role already exists")
	ErrOrganizationNotFound    = errors.New("organization not found")
)

// TenantID identifies one organization, the isolation boundary all
// access is evaluated within.
type TenantID int64

// Organization represents one tenant. Owned externally; read-only here.
type Organization struct {
	ID        TenantID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a named set of permission codenames. Codenames can be added
// and removed at any time; the cache layer reacts to that mutation.
type Role struct {
	ID          string
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership records that a user belongs to an organization with a set
// of roles. At most one row exists per (user, organization) pair.
// Removal deactivates the row rather than deleting it.
type Membership struct {
	ID        string
	UserID    string
	TenantID  TenantID
	Roles     []Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectivePermissions returns the union of permission codenames across
// all roles of the membership. An inactive membership grants nothing,
// regardless of its roles.
func (m *Membership) EffectivePermissions() []string {
	if !m.Active {
		return []string{}
	}

	seen := make(map[string]bool)
	perms := make([]string, 0)
	for _, role := range m.Roles {
		for _, p := range role.Permissions {
			if !seen[p] {
				seen[p] = true
				perms = append(perms, p)
			}
		}
	}
	return perms
}

// RoleIDs returns the IDs of all roles attached to the membership.
func (m *Membership) RoleIDs() []string {
	ids := make([]string, 0, len(m.Roles))
	for _, role := range m.Roles {
		ids = append(ids, role.ID)
	}
	return ids
}

// Store is the read-only view of membership data the authorization core
// consumes. All queries return memberships with their roles (and role
// permission sets) loaded.
type Store interface {
	// ActiveMembership returns the user's active membership in a tenant,
	// or ErrMembershipNotFound when the user has none.
	ActiveMembership(ctx context.Context, userID string, tenantID TenantID) (*Membership, error)

	// ActiveMembershipsForUser returns all active memberships of a user.
	ActiveMembershipsForUser(ctx context.Context, userID string) ([]*Membership, error)

	// ActiveMembershipsForRole returns every active membership that
	// references the role. Drives the fan-out cache invalidation when a
	// role's permission set changes.
	ActiveMembershipsForRole(ctx context.Context, roleID string) ([]*Membership, error)
}

// Repository is the full persistence interface for memberships,
// including the write paths owned by the administration service.
type Repository interface {
	Store

	Create(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id string) (*Membership, error)
	GetByUserAndTenant(ctx context.Context, userID string, tenantID TenantID) (*Membership, error)
	ListForTenant(ctx context.Context, tenantID TenantID) ([]*Membership, error)
	SetRoles(ctx context.Context, id string, roleIDs []string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines the interface for role persistence.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	SetPermissions(ctx context.Context, id string, permissions []string) error
	Delete(ctx context.Context, id string) error
}

// OrganizationRepository defines the interface for organization
// persistence.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id TenantID) (*Organization, error)
	List(ctx context.Context, limit, offset int) ([]*Organization, error)
	Delete(ctx context.Context, id TenantID) error
}
