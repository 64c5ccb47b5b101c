package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeguard/scopeguard/internal/membership"
)

func TestSelectQueryUnrestricted(t *testing.T) {
	q := NewSelectQuery("contacts", "tenant_id", "id", "name")

	sql, args := q.SQL()
	assert.Equal(t, "SELECT id, name FROM contacts", sql)
	assert.Empty(t, args)
	assert.False(t, q.Empty())
	assert.Equal(t, "tenant_id", q.TenantColumn())
}

func TestSelectQueryRestrictTo(t *testing.T) {
	base := NewSelectQuery("contacts", "tenant_id", "id").OrderBy("created_at")

	restricted, ok := base.RestrictTo([]membership.TenantID{1, 2}).(*SelectQuery)
	require.True(t, ok)

	sql, args := restricted.SQL()
	assert.Equal(t, "SELECT id FROM contacts WHERE tenant_id = ANY($1) ORDER BY created_at", sql)
	require.Len(t, args, 1)
	assert.Equal(t, []int64{1, 2}, args[0])

	// The base query is untouched.
	sql, args = base.SQL()
	assert.Equal(t, "SELECT id FROM contacts ORDER BY created_at", sql)
	assert.Empty(t, args)
}

func TestSelectQueryRestrictToNone(t *testing.T) {
	base := NewSelectQuery("contacts", "tenant_id", "id")

	none, ok := base.RestrictToNone().(*SelectQuery)
	require.True(t, ok)
	assert.True(t, none.Empty())
	assert.False(t, base.Empty())
}

func TestSelectQueryNonTenantScoped(t *testing.T) {
	q := NewSelectQuery("settings", "", "key", "value")
	assert.Equal(t, "", q.TenantColumn())
}
