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

	"github.com/jackc/pgx/v5"

	"github.com/scopeguard/scopeguard/internal/membership"
)

// OrganizationRepository implements membership.OrganizationRepository
type OrganizationRepository struct {
	db *DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts an organization, assigning its ID
func (r *OrganizationRepository) Create(ctx context.Context, org *membership.Organization) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, org.Name, org.CreatedAt, org.UpdatedAt).Scan(&org.ID)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id membership.TenantID) (*membership.Organization, error) {
	var org membership.Organization
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, membership.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// List retrieves organizations with pagination
func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*membership.Organization, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM organizations
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*membership.Organization
	for rows.Next() {
		var org membership.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &org)
	}
	return orgs, rows.Err()
}

// Delete removes an organization; memberships and contacts cascade
func (r *OrganizationRepository) Delete(ctx context.Context, id membership.TenantID) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM organizations WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return membership.ErrOrganizationNotFound
	}
	return nil
}
