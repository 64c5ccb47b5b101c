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

package contact

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
)

const model = "contact"

// Input carries caller-supplied contact fields.
type Input struct {
	Name  string
	Email string
	Phone string
}

// Service provides contact business logic behind the authorization
// core. Collection reads are narrowed by the scoped-collection filter;
// creates resolve the target organization first and then check the
// permission there; object reads and writes check against the object's
// own organization.
type Service struct {
	repo     Repository
	resolver *authz.Service
	guard    *authz.Guard
}

// NewService creates a contact service.
func NewService(repo Repository, resolver *authz.Service, guard *authz.Guard) *Service {
	return &Service{repo: repo, resolver: resolver, guard: guard}
}

// List returns the contacts of every organization the user is an
// active member of. Elevated users see all contacts.
func (s *Service) List(ctx context.Context, user *identity.User) ([]*Contact, error) {
	if err := s.guard.AllowAction(ctx, user, authz.ActionList, model); err != nil {
		return nil, err
	}
	q, err := s.resolver.FilterByTenant(ctx, user, s.repo.Query())
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}

// Create adds a contact to the organization the request targets. The
// organization may be supplied explicitly or inferred for single-tenant
// users.
func (s *Service) Create(ctx context.Context, user *identity.User, orgID *membership.TenantID, in Input) (*Contact, error) {
	if err := s.guard.AllowAction(ctx, user, authz.ActionCreate, model); err != nil {
		return nil, err
	}
	tenantID, err := s.resolver.ResolveTargetTenant(ctx, user, orgID, true)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AllowObject(ctx, user, authz.ActionCreate, model, tenantID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Contact{
		ID:        uuid.NewString(),
		OrgID:     tenantID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one contact if the user may view it.
func (s *Service) Get(ctx context.Context, user *identity.User, id string) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AllowObject(ctx, user, authz.ActionRetrieve, model, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update modifies a contact if the user may change it.
func (s *Service) Update(ctx context.Context, user *identity.User, id string, in Input) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AllowObject(ctx, user, authz.ActionUpdate, model, c); err != nil {
		return nil, err
	}

	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a contact if the user may delete it.
func (s *Service) Delete(ctx context.Context, user *identity.User, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.AllowObject(ctx, user, authz.ActionDestroy, model, c); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
