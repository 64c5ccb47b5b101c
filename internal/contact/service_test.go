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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/cache"
	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// memberStore is a fixed-data membership.Store.
type memberStore struct {
	memberships []*membership.Membership
}

func (s *memberStore) ActiveMembership(_ context.Context, userID string, tenantID membership.TenantID) (*membership.Membership, error) {
	for _, m := range s.memberships {
		if m.UserID == userID && m.TenantID == tenantID && m.Active {
			return m, nil
		}
	}
	return nil, membership.ErrMembershipNotFound
}

func (s *memberStore) ActiveMembershipsForUser(_ context.Context, userID string) ([]*membership.Membership, error) {
	var out []*membership.Membership
	for _, m := range s.memberships {
		if m.UserID == userID && m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memberStore) ActiveMembershipsForRole(_ context.Context, roleID string) ([]*membership.Membership, error) {
	return nil, nil
}

// memQuery is an in-memory stand-in for the repository's select query.
type memQuery struct {
	tenants []membership.TenantID
	all     bool
}

func (q *memQuery) TenantColumn() string { return "tenant_id" }

func (q *memQuery) RestrictTo(ids []membership.TenantID) authz.Query {
	return &memQuery{tenants: ids}
}

func (q *memQuery) RestrictToNone() authz.Query {
	return &memQuery{}
}

// memRepo is an in-memory contact repository.
type memRepo struct {
	contacts map[string]*Contact
}

func newMemRepo() *memRepo {
	return &memRepo{contacts: make(map[string]*Contact)}
}

func (r *memRepo) Query() authz.Query { return &memQuery{all: true} }

func (r *memRepo) List(_ context.Context, q authz.Query) ([]*Contact, error) {
	mq := q.(*memQuery)
	var out []*Contact
	for _, c := range r.contacts {
		if mq.all {
			out = append(out, c)
			continue
		}
		for _, id := range mq.tenants {
			if c.OrgID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Contact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, ErrContactNotFound
	}
	return c, nil
}

func (r *memRepo) Create(_ context.Context, c *Contact) error {
	r.contacts[c.ID] = c
	return nil
}

func (r *memRepo) Update(_ context.Context, c *Contact) error {
	r.contacts[c.ID] = c
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.contacts, id)
	return nil
}

func contactRole(perms ...string) membership.Role {
	return membership.Role{ID: "r1", Name: "contact-admin", Permissions: perms}
}

func newTestService(t *testing.T, store *memberStore) (*Service, *memRepo) {
	t.Helper()
	mem, err := cache.NewMemory(0)
	require.NoError(t, err)
	layer := cache.NewLayer(mem, time.Minute)
	resolver := authz.NewService(store, layer, authz.Config{})
	repo := newMemRepo()
	return NewService(repo, resolver, authz.NewGuard(resolver)), repo
}

func member(userID string, tenantID membership.TenantID, roles ...membership.Role) *membership.Membership {
	return &membership.Membership{
		ID:       userID + "-m",
		UserID:   userID,
		TenantID: tenantID,
		Roles:    roles,
		Active:   true,
	}
}

func TestListScopedToActiveOrganizations(t *testing.T) {
	store := &memberStore{memberships: []*membership.Membership{
		member("u1", 1, contactRole("view_contact")),
	}}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	repo.contacts["c1"] = &Contact{ID: "c1", OrgID: 1, Name: "in"}
	repo.contacts["c2"] = &Contact{ID: "c2", OrgID: 2, Name: "out"}

	contacts, err := svc.List(ctx, &identity.User{ID: "u1"})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "c1", contacts[0].ID)
}

func TestListElevatedSeesEverything(t *testing.T) {
	svc, repo := newTestService(t, &memberStore{})
	ctx := context.Background()

	repo.contacts["c1"] = &Contact{ID: "c1", OrgID: 1}
	repo.contacts["c2"] = &Contact{ID: "c2", OrgID: 2}

	contacts, err := svc.List(ctx, &identity.User{ID: "op", Elevated: true})
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestListAnonymousRejected(t *testing.T) {
	svc, _ := newTestService(t, &memberStore{})

	_, err := svc.List(context.Background(), nil)
	assert.ErrorIs(t, err, authz.ErrUnauthorized)
}

func TestCreateInfersSingleTenant(t *testing.T) {
	store := &memberStore{memberships: []*membership.Membership{
		member("u1", 1, contactRole("add_contact")),
	}}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	// No organization supplied: the single active one is inferred.
	c, err := svc.Create(ctx, &identity.User{ID: "u1"}, nil, Input{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, membership.TenantID(1), c.OrgID)
	assert.NotEmpty(t, c.ID)
}

func TestCreateRequiresExplicitTenantForMultiTenantUser(t *testing.T) {
	store := &memberStore{memberships: []*membership.Membership{
		member("u1", 1, contactRole("add_contact")),
		member("u1", 2, contactRole("add_contact")),
	}}
	svc, _ := newTestService(t, store)
	ctx := context.Background()
	user := &identity.User{ID: "u1"}

	_, err := svc.Create(ctx, user, nil, Input{Name: "Ada"})
	assert.ErrorIs(t, err, authz.ErrInvalidInput)

	orgID := membership.TenantID(2)
	c, err := svc.Create(ctx, user, &orgID, Input{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, membership.TenantID(2), c.OrgID)
}

func TestCreateDeniedWithoutPermission(t *testing.T) {
	store := &memberStore{memberships: []*membership.Membership{
		member("u1", 1, contactRole("view_contact")),
	}}
	svc, _ := newTestService(t, store)

	_, err := svc.Create(context.Background(), &identity.User{ID: "u1"}, nil, Input{Name: "Ada"})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestGetDeniedAcrossTenants(t *testing.T) {
	store := &memberStore{memberships: []*membership.Membership{
		member("u1", 1, contactRole("view_contact")),
	}}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	repo.contacts["c1"] = &Contact{ID: "c1", OrgID: 1}
	repo.contacts["c2"] = &Contact{ID: "c2", OrgID: 2}

	c, err := svc.Get(ctx, &identity.User{ID: "u1"}, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	_, err = svc.Get(ctx, &identity.User{ID: "u1"}, "c2")
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestUpdateAndDeleteRequirePermissions(t *testing.T) {
	store := &memberStore{memberships: []*membership.Membership{
		member("u1", 1, contactRole("view_contact", "change_contact")),
	}}
	svc, repo := newTestService(t, store)
	ctx := context.Background()
	user := &identity.User{ID: "u1"}

	repo.contacts["c1"] = &Contact{ID: "c1", OrgID: 1, Name: "old"}

	c, err := svc.Update(ctx, user, "c1", Input{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", c.Name)

	// change_contact does not imply delete_contact.
	err = svc.Delete(ctx, user, "c1")
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestDeleteUnknownContact(t *testing.T) {
	svc, _ := newTestService(t, &memberStore{})

	err := svc.Delete(context.Background(), &identity.User{ID: "u1"}, "missing")
	assert.ErrorIs(t, err, ErrContactNotFound)
}
