package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePermissionsUnion(t *testing.T) {
	m := &Membership{
		Active: true,
		Roles: []Role{
			{ID: "r1", Permissions: []string{"view_contact", "change_contact"}},
			{ID: "r2", Permissions: []string{"view_contact", "add_contact"}},
		},
	}

	perms := m.EffectivePermissions()
	assert.ElementsMatch(t, []string{"view_contact", "change_contact", "add_contact"}, perms)

	// Duplicates across roles appear once.
	count := 0
	for _, p := range perms {
		if p == "view_contact" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEffectivePermissionsInactive(t *testing.T) {
	m := &Membership{
		Active: false,
		Roles: []Role{
			{ID: "r1", Permissions: []string{"view_contact"}},
		},
	}

	// Inactive membership grants nothing, regardless of roles.
	assert.Empty(t, m.EffectivePermissions())
	assert.NotNil(t, m.EffectivePermissions())
}

func TestEffectivePermissionsNoRoles(t *testing.T) {
	m := &Membership{Active: true}
	assert.Empty(t, m.EffectivePermissions())
}

func TestRoleIDs(t *testing.T) {
	m := &Membership{
		Roles: []Role{{ID: "r1"}, {ID: "r2"}},
	}
	assert.Equal(t, []string{"r1", "r2"}, m.RoleIDs())
}
