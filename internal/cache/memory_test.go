package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	mem, err := NewMemory(16)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, mem.Set(ctx, "k", "v", time.Minute))
	value, found, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)

	require.NoError(t, mem.Delete(ctx, "k"))
	_, found, err = mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryExpiry(t *testing.T) {
	mem, err := NewMemory(16)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryDeleteMatching(t *testing.T) {
	mem, err := NewMemory(16)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "authz:perms:u1:1", "a", time.Minute))
	require.NoError(t, mem.Set(ctx, "authz:perms:u2:1", "b", time.Minute))
	require.NoError(t, mem.Set(ctx, "authz:perms:u1:2", "c", time.Minute))
	require.NoError(t, mem.Set(ctx, "authz:tenants:u1", "d", time.Minute))

	require.NoError(t, mem.DeleteMatching(ctx, "authz:perms:*:1"))

	_, found, _ := mem.Get(ctx, "authz:perms:u1:1")
	assert.False(t, found)
	_, found, _ = mem.Get(ctx, "authz:perms:u2:1")
	assert.False(t, found)
	_, found, _ = mem.Get(ctx, "authz:perms:u1:2")
	assert.True(t, found)
	_, found, _ = mem.Get(ctx, "authz:tenants:u1")
	assert.True(t, found)
}

func TestMemoryBounded(t *testing.T) {
	mem, err := NewMemory(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mem.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, mem.Set(ctx, "c", "3", time.Minute))

	// Oldest entry evicted.
	_, found, _ := mem.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = mem.Get(ctx, "c")
	assert.True(t, found)
}
