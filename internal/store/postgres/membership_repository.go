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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scopeguard/scopeguard/internal/membership"
)

// MembershipRepository implements membership.Repository
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create inserts a membership and its role links
func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO memberships (id, user_id, tenant_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.UserID, m.TenantID, m.Active, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	for _, role := range m.Roles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO membership_roles (membership_id, role_id) VALUES ($1, $2)
		`, m.ID, role.ID); err != nil {
			return fmt.Errorf("failed to link role: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a membership with its roles
func (r *MembershipRepository) GetByID(ctx context.Context, id string) (*membership.Membership, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, tenant_id, active, created_at, updated_at
		FROM memberships
		WHERE id = $1
	`, id)
}

// GetByUserAndTenant retrieves the membership for a (user, tenant) pair
// regardless of the active flag
func (r *MembershipRepository) GetByUserAndTenant(ctx context.Context, userID string, tenantID membership.TenantID) (*membership.Membership, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, tenant_id, active, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND tenant_id = $2
	`, userID, tenantID)
}

// ActiveMembership retrieves the active membership for a (user, tenant)
// pair with roles and permission sets loaded
func (r *MembershipRepository) ActiveMembership(ctx context.Context, userID string, tenantID membership.TenantID) (*membership.Membership, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, tenant_id, active, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND tenant_id = $2 AND active
	`, userID, tenantID)
}

// ActiveMembershipsForUser retrieves all active memberships of a user
func (r *MembershipRepository) ActiveMembershipsForUser(ctx context.Context, userID string) ([]*membership.Membership, error) {
	return r.list(ctx, `
		SELECT id, user_id, tenant_id, active, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND active
		ORDER BY tenant_id
	`, userID)
}

// ActiveMembershipsForRole retrieves every active membership that
// references a role
func (r *MembershipRepository) ActiveMembershipsForRole(ctx context.Context, roleID string) ([]*membership.Membership, error) {
	return r.list(ctx, `
		SELECT m.id, m.user_id, m.tenant_id, m.active, m.created_at, m.updated_at
		FROM memberships m
		INNER JOIN membership_roles mr ON m.id = mr.membership_id
		WHERE mr.role_id = $1 AND m.active
		ORDER BY m.tenant_id
	`, roleID)
}

// ListForTenant retrieves all memberships of an organization
func (r *MembershipRepository) ListForTenant(ctx context.Context, tenantID membership.TenantID) ([]*membership.Membership, error) {
	return r.list(ctx, `
		SELECT id, user_id, tenant_id, active, created_at, updated_at
		FROM memberships
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
}

// SetRoles replaces the role links of a membership
func (r *MembershipRepository) SetRoles(ctx context.Context, id string, roleIDs []string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM membership_roles WHERE membership_id = $1
	`, id); err != nil {
		return fmt.Errorf("failed to clear roles: %w", err)
	}
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO membership_roles (membership_id, role_id) VALUES ($1, $2)
		`, id, roleID); err != nil {
			return fmt.Errorf("failed to link role: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE memberships SET updated_at = $2 WHERE id = $1
	`, id, time.Now()); err != nil {
		return fmt.Errorf("failed to touch membership: %w", err)
	}

	return tx.Commit(ctx)
}

// SetActive flips the active flag of a membership
func (r *MembershipRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE memberships SET active = $2, updated_at = $3 WHERE id = $1
	`, id, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrMembershipNotFound
	}
	return nil
}

// Delete removes a membership row
func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM memberships WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrMembershipNotFound
	}
	return nil
}

func (r *MembershipRepository) getOne(ctx context.Context, query string, args ...any) (*membership.Membership, error) {
	var m membership.Membership
	err := r.db.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.UserID, &m.TenantID, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, membership.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if err := r.loadRoles(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) list(ctx context.Context, query string, args ...any) ([]*membership.Membership, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []*membership.Membership
	for rows.Next() {
		var m membership.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.TenantID, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	for _, m := range members {
		if err := r.loadRoles(ctx, m); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func (r *MembershipRepository) loadRoles(ctx context.Context, m *membership.Membership) error {
	rows, err := r.db.pool.Query(ctx, `
		SELECT r.id, r.name, r.permissions, r.created_at, r.updated_at
		FROM roles r
		INNER JOIN membership_roles mr ON r.id = mr.role_id
		WHERE mr.membership_id = $1
		ORDER BY r.name
	`, m.ID)
	if err != nil {
		return fmt.Errorf("failed to load membership roles: %w", err)
	}
	defer rows.Close()

	m.Roles = nil
	for rows.Next() {
		var role membership.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan role: %w", err)
		}
		m.Roles = append(m.Roles, role)
	}
	return rows.Err()
}
