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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scopeguard/scopeguard/internal/audit"
)

// Invalidator receives cache-invalidation callbacks. The service calls
// it synchronously after every committed write that changes who can do
// what; the callbacks themselves are best-effort and never fail the
// write. Every mutation path must go through this service: bulk edits
// that bypass it leave the cache stale until the TTL expires.
type Invalidator interface {
	MembershipChanged(ctx context.Context, userID string, tenantID TenantID)
	RolePermissionsChanged(ctx context.Context, roleID string)
	OrganizationRemoved(ctx context.Context, tenantID TenantID)
}

// Service owns membership, role and organization mutations. It is the
// single write path: persisting the change, firing the cache
// invalidation, and emitting the audit event belong together here.
type Service struct {
	repo        Repository
	roleRepo    RoleRepository
	orgRepo     OrganizationRepository
	invalidator Invalidator
	auditLogger audit.Logger
}

// NewService creates a membership administration service.
func NewService(repo Repository, roleRepo RoleRepository, orgRepo OrganizationRepository, invalidator Invalidator, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		roleRepo:    roleRepo,
		orgRepo:     orgRepo,
		invalidator: invalidator,
		auditLogger: auditLogger,
	}
}

// AddMember creates an active membership for a user in an organization
// with the given roles. A user has at most one membership per
// organization.
func (s *Service) AddMember(ctx context.Context, actorID string, tenantID TenantID, userID string, roleIDs []string) (*Membership, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if _, err := s.orgRepo.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByUserAndTenant(ctx, userID, tenantID); err == nil {
		return nil, ErrMembershipAlreadyExists
	} else if !errors.Is(err, ErrMembershipNotFound) {
		return nil, err
	}

	roles, err := s.loadRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m := &Membership{
		ID:        uuid.NewString(),
		UserID:    userID,
		TenantID:  tenantID,
		Roles:     roles,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.invalidator.MembershipChanged(ctx, userID, tenantID)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMembershipCreated,
		TenantID: int64(tenantID),
		ActorID:  actorID,
		Resource: m.ID,
		Metadata: map[string]any{"user_id": userID, "role_ids": roleIDs},
	})
	return m, nil
}

// SetMemberRoles replaces the role set of a membership.
func (s *Service) SetMemberRoles(ctx context.Context, actorID, membershipID string, roleIDs []string) error {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if _, err := s.loadRoles(ctx, roleIDs); err != nil {
		return err
	}
	if err := s.repo.SetRoles(ctx, membershipID, roleIDs); err != nil {
		return fmt.Errorf("failed to set membership roles: %w", err)
	}

	s.invalidator.MembershipChanged(ctx, m.UserID, m.TenantID)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMembershipRolesSet,
		TenantID: int64(m.TenantID),
		ActorID:  actorID,
		Resource: membershipID,
		Metadata: map[string]any{"user_id": m.UserID, "role_ids": roleIDs},
	})
	return nil
}

// SetMemberActive flips the active flag of a membership. Deactivation
// is the normal way a user is removed from an organization.
func (s *Service) SetMemberActive(ctx context.Context, actorID, membershipID string, active bool) error {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, membershipID, active); err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	s.invalidator.MembershipChanged(ctx, m.UserID, m.TenantID)
	eventType := audit.TypeMembershipDeactivated
	if active {
		eventType = audit.TypeMembershipActivated
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     eventType,
		TenantID: int64(m.TenantID),
		ActorID:  actorID,
		Resource: membershipID,
		Metadata: map[string]any{"user_id": m.UserID},
	})
	return nil
}

// RemoveMember hard-deletes a membership row.
func (s *Service) RemoveMember(ctx context.Context, actorID, membershipID string) error {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, membershipID); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	s.invalidator.MembershipChanged(ctx, m.UserID, m.TenantID)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMembershipDeleted,
		TenantID: int64(m.TenantID),
		ActorID:  actorID,
		Resource: membershipID,
		Metadata: map[string]any{"user_id": m.UserID},
	})
	return nil
}

// GetMembership retrieves one membership with its roles.
func (s *Service) GetMembership(ctx context.Context, id string) (*Membership, error) {
	return s.repo.GetByID(ctx, id)
}

// ListMembers lists all memberships of an organization.
func (s *Service) ListMembers(ctx context.Context, tenantID TenantID) ([]*Membership, error) {
	return s.repo.ListForTenant(ctx, tenantID)
}

// CreateRole creates a named role with an initial permission set.
func (s *Service) CreateRole(ctx context.Context, actorID, name string, permissions []string) (*Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	now := time.Now()
	role := &Role{
		ID:          uuid.NewString(),
		Name:        name,
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	// No invalidation: a brand-new role is attached to no membership yet.
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleCreated,
		ActorID:  actorID,
		Resource: role.ID,
		Metadata: map[string]any{"name": name, "permissions": permissions},
	})
	return role, nil
}

// SetRolePermissions replaces a role's permission codenames. Every
// active membership referencing the role has its cached permission set
// dropped.
func (s *Service) SetRolePermissions(ctx context.Context, actorID, roleID string, permissions []string) error {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return err
	}
	if err := s.roleRepo.SetPermissions(ctx, roleID, permissions); err != nil {
		return fmt.Errorf("failed to set role permissions: %w", err)
	}

	s.invalidator.RolePermissionsChanged(ctx, roleID)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRolePermissionsSet,
		ActorID:  actorID,
		Resource: roleID,
		Metadata: map[string]any{"permissions": permissions},
	})
	return nil
}

// DeleteRole removes a role. The memberships that referenced it are
// captured first so their cache entries can be dropped after the
// delete commits.
func (s *Service) DeleteRole(ctx context.Context, actorID, roleID string) error {
	members, err := s.repo.ActiveMembershipsForRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return err
	}

	for _, m := range members {
		s.invalidator.MembershipChanged(ctx, m.UserID, m.TenantID)
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleDeleted,
		ActorID:  actorID,
		Resource: roleID,
	})
	return nil
}

// GetRole retrieves a role by ID.
func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.roleRepo.GetByID(ctx, id)
}

// ListRoles lists all roles.
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.roleRepo.List(ctx)
}

// CreateOrganization creates a new organization.
func (s *Service) CreateOrganization(ctx context.Context, actorID, name string) (*Organization, error) {
	if name == "" {
		return nil, fmt.Errorf("organization name is required")
	}
	now := time.Now()
	org := &Organization{Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeOrganizationCreated,
		TenantID: int64(org.ID),
		ActorID:  actorID,
		Metadata: map[string]any{"name": name},
	})
	return org, nil
}

// GetOrganization retrieves an organization by ID.
func (s *Service) GetOrganization(ctx context.Context, id TenantID) (*Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

// ListOrganizations lists organizations with pagination.
func (s *Service) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, error) {
	return s.orgRepo.List(ctx, limit, offset)
}

// DeleteOrganization removes an organization and drops every cached
// permission set for it in one pattern delete. Stale active-tenant
// lists naming the removed organization age out within the TTL; checks
// against it recompute to the empty set either way.
func (s *Service) DeleteOrganization(ctx context.Context, actorID string, tenantID TenantID) error {
	if err := s.orgRepo.Delete(ctx, tenantID); err != nil {
		return err
	}

	s.invalidator.OrganizationRemoved(ctx, tenantID)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeOrganizationDeleted,
		TenantID: int64(tenantID),
		ActorID:  actorID,
	})
	return nil
}

func (s *Service) loadRoles(ctx context.Context, roleIDs []string) ([]Role, error) {
	roles := make([]Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		role, err := s.roleRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
