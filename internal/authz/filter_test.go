package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// fakeQuery records how the scoped-collection filter restricted it.
type fakeQuery struct {
	tenantColumn string
	restricted   []membership.TenantID
	none         bool
}

func (q *fakeQuery) TenantColumn() string { return q.tenantColumn }

func (q *fakeQuery) RestrictTo(ids []membership.TenantID) Query {
	c := *q
	c.restricted = ids
	return &c
}

func (q *fakeQuery) RestrictToNone() Query {
	c := *q
	c.none = true
	return &c
}

func TestFilterByTenantAnonymous(t *testing.T) {
	svc, _, _ := newTestResolver(t, &fakeStore{}, Config{})

	q, err := svc.FilterByTenant(context.Background(), nil, &fakeQuery{tenantColumn: "tenant_id"})
	require.NoError(t, err)
	assert.True(t, q.(*fakeQuery).none)
}

func TestFilterByTenantElevatedUnrestricted(t *testing.T) {
	svc, _, _ := newTestResolver(t, &fakeStore{}, Config{})
	base := &fakeQuery{tenantColumn: "tenant_id"}

	q, err := svc.FilterByTenant(context.Background(), &identity.User{ID: "op", Elevated: true}, base)
	require.NoError(t, err)
	assert.Same(t, Query(base), q)
}

func TestFilterByTenantNoMemberships(t *testing.T) {
	svc, _, _ := newTestResolver(t, &fakeStore{}, Config{})

	q, err := svc.FilterByTenant(context.Background(), &identity.User{ID: "u1"}, &fakeQuery{tenantColumn: "tenant_id"})
	require.NoError(t, err)
	assert.True(t, q.(*fakeQuery).none)
}

func TestFilterByTenantRestrictsToActiveSet(t *testing.T) {
	store := &fakeStore{
		memberships: []*membership.Membership{
			activeMembership("u1", 1),
			activeMembership("u1", 4),
		},
	}
	svc, _, _ := newTestResolver(t, store, Config{})

	q, err := svc.FilterByTenant(context.Background(), &identity.User{ID: "u1"}, &fakeQuery{tenantColumn: "tenant_id"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []membership.TenantID{1, 4}, q.(*fakeQuery).restricted)
	assert.False(t, q.(*fakeQuery).none)
}

func TestFilterByTenantMisconfiguredEntity(t *testing.T) {
	svc, _, _ := newTestResolver(t, &fakeStore{}, Config{})

	// No tenant column means scoped filtering cannot apply; that is a
	// programming error, never silently unrestricted.
	_, err := svc.FilterByTenant(context.Background(), &identity.User{ID: "u1"}, &fakeQuery{})
	assert.Error(t, err)
}
