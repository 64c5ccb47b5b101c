package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scopeguard/scopeguard/internal/membership"
)

func TestTenantIDOf(t *testing.T) {
	tests := []struct {
		name     string
		ref      any
		expected membership.TenantID
		ok       bool
	}{
		{"tenant id", membership.TenantID(3), 3, true},
		{"int64", int64(4), 4, true},
		{"int", 5, 5, true},
		{"organization", membership.Organization{ID: 6}, 6, true},
		{"organization pointer", &membership.Organization{ID: 7}, 7, true},
		{"nil organization pointer", (*membership.Organization)(nil), 0, false},
		{"membership", &membership.Membership{TenantID: 8}, 8, true},
		{"nil membership", (*membership.Membership)(nil), 0, false},
		{"string", "9", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := TenantIDOf(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}

type scopedThing struct {
	org membership.TenantID
}

func (s scopedThing) TenantID() membership.TenantID { return s.org }

func TestTenantIDOfTenantScoped(t *testing.T) {
	id, ok := TenantIDOf(scopedThing{org: 12})
	assert.True(t, ok)
	assert.Equal(t, membership.TenantID(12), id)
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, "add_contact", StripNamespace("crm.add_contact"))
	assert.Equal(t, "add_contact", StripNamespace("add_contact"))
	assert.Equal(t, "add_contact", StripNamespace("a.b.add_contact"))
	assert.Equal(t, "", StripNamespace("crm."))
}
