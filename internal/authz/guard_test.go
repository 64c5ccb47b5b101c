package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
)

func TestCodenameConvention(t *testing.T) {
	g := NewGuard(nil)

	tests := []struct {
		action   Action
		model    string
		expected string
	}{
		{ActionList, "contact", "view_contact"},
		{ActionRetrieve, "contact", "view_contact"},
		{ActionCreate, "contact", "add_contact"},
		{ActionUpdate, "contact", "change_contact"},
		{ActionPartialUpdate, "contact", "change_contact"},
		{ActionDestroy, "contact", "delete_contact"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			codename, err := g.Codename(tt.action, tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, codename)
		})
	}
}

func TestCodenameUnknownAction(t *testing.T) {
	g := NewGuard(nil)

	_, err := g.Codename(Action("export"), "contact")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCodenameOverride(t *testing.T) {
	g := NewGuard(nil)
	g.Override("report", ActionCreate, "generate_report")

	codename, err := g.Codename(ActionCreate, "report")
	require.NoError(t, err)
	assert.Equal(t, "generate_report", codename)

	// Other actions on the same model keep the convention.
	codename, err = g.Codename(ActionDestroy, "report")
	require.NoError(t, err)
	assert.Equal(t, "delete_report", codename)
}

func TestAllowAction(t *testing.T) {
	svc, _, _ := newTestResolver(t, &fakeStore{}, Config{})
	g := NewGuard(svc)
	ctx := context.Background()

	assert.ErrorIs(t, g.AllowAction(ctx, nil, ActionList, "contact"), ErrUnauthorized)
	assert.ErrorIs(t, g.AllowAction(ctx, &identity.User{ID: "u1"}, Action("export"), "contact"), ErrUnknownAction)
	assert.NoError(t, g.AllowAction(ctx, &identity.User{ID: "u1"}, ActionList, "contact"))
}

func TestAllowObject(t *testing.T) {
	store := &fakeStore{
		memberships: []*membership.Membership{
			activeMembership("u1", 1, membership.Role{ID: "r1", Permissions: []string{"view_contact"}}),
		},
	}
	svc, _, _ := newTestResolver(t, store, Config{})
	g := NewGuard(svc)
	ctx := context.Background()
	user := &identity.User{ID: "u1"}

	org := &membership.Organization{ID: 1}

	assert.NoError(t, g.AllowObject(ctx, user, ActionRetrieve, "contact", org))
	assert.ErrorIs(t, g.AllowObject(ctx, user, ActionDestroy, "contact", org), ErrForbidden)
	assert.ErrorIs(t, g.AllowObject(ctx, nil, ActionRetrieve, "contact", org), ErrUnauthorized)

	// Object in an organization the user does not belong to.
	other := &membership.Organization{ID: 2}
	assert.ErrorIs(t, g.AllowObject(ctx, user, ActionRetrieve, "contact", other), ErrForbidden)
}

func TestAllowObjectElevated(t *testing.T) {
	svc, _, _ := newTestResolver(t, &fakeStore{}, Config{})
	g := NewGuard(svc)

	op := &identity.User{ID: "op-1", Elevated: true}
	assert.NoError(t, g.AllowObject(context.Background(), op, ActionDestroy, "contact", &membership.Organization{ID: 99}))
}
