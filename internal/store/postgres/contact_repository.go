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

	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/contact"
)

// ContactRepository implements contact.Repository
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Query returns the unrestricted contact collection query
func (r *ContactRepository) Query() authz.Query {
	return NewSelectQuery("contacts", "tenant_id",
		"id", "tenant_id", "name", "email", "phone", "created_at", "updated_at",
	).OrderBy("created_at")
}

// List runs a (possibly tenant-restricted) contact query
func (r *ContactRepository) List(ctx context.Context, q authz.Query) ([]*contact.Contact, error) {
	sq, ok := q.(*SelectQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	if sq.Empty() {
		return []*contact.Contact{}, nil
	}

	sql, args := sq.SQL()
	rows, err := r.db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*contact.Contact, 0)
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*contact.Contact, error) {
	var c contact.Contact
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, email, phone, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`, id).Scan(&c.ID, &c.OrgID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, contact.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

// Create inserts a contact
func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO contacts (id, tenant_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.OrgID, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update modifies a contact's fields
func (r *ContactRepository) Update(ctx context.Context, c *contact.Contact) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE contacts SET name = $2, email = $3, phone = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Phone, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return contact.ErrContactNotFound
	}
	return nil
}

// Delete removes a contact
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM contacts WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return contact.ErrContactNotFound
	}
	return nil
}
