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

// RoleRepository implements membership.RoleRepository
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create creates a new role
func (r *RoleRepository) Create(ctx context.Context, role *membership.Role) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO roles (id, name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, role.ID, role.Name, role.Permissions, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*membership.Role, error) {
	var role membership.Role
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name, permissions, created_at, updated_at
		FROM roles
		WHERE id = $1
	`, id).Scan(&role.ID, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, membership.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

// List retrieves all roles
func (r *RoleRepository) List(ctx context.Context) ([]*membership.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, permissions, created_at, updated_at
		FROM roles
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*membership.Role
	for rows.Next() {
		var role membership.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

// SetPermissions replaces a role's permission codenames
func (r *RoleRepository) SetPermissions(ctx context.Context, id string, permissions []string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE roles SET permissions = $2, updated_at = $3 WHERE id = $1
	`, id, permissions, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set role permissions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrRoleNotFound
	}
	return nil
}

// Delete removes a role
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM roles WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrRoleNotFound
	}
	return nil
}
