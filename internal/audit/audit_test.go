package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureAudit(t *testing.T, event Event) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewSlogLogger().Log(context.Background(), event)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogEmitsEventFields(t *testing.T) {
	record := captureAudit(t, Event{
		Type:     TypeMembershipCreated,
		TenantID: 42,
		ActorID:  "admin-1",
		Resource: "membership/m-7",
		Metadata: map[string]any{"user_id": "u-9"},
	})

	assert.Equal(t, "AUDIT_EVENT", record["msg"])
	assert.Equal(t, "membership_created", record["audit_type"])
	assert.Equal(t, float64(42), record["tenant_id"])
	assert.Equal(t, "admin-1", record["actor_id"])
	assert.Equal(t, "membership/m-7", record["resource"])

	metadata, ok := record["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u-9", metadata["user_id"])
}

func TestLogRedactsSecretMetadata(t *testing.T) {
	record := captureAudit(t, Event{
		Type:     TypeRoleCreated,
		TenantID: 1,
		ActorID:  "admin-1",
		Resource: "role/r-1",
		Metadata: map[string]any{
			"api_token": "tok_live_abc",
			"role_name": "support",
		},
	})

	metadata, ok := record["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", metadata["api_token"])
	assert.Equal(t, "support", metadata["role_name"])
}

func TestLogDefaultsTimestamp(t *testing.T) {
	record := captureAudit(t, Event{Type: TypeOrganizationDeleted, TenantID: 3, ActorID: "admin-1"})

	raw, ok := record["timestamp"].(string)
	require.True(t, ok)
	ts, err := time.Parse(time.RFC3339Nano, raw)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestIsSecret(t *testing.T) {
	for key, want := range map[string]bool{
		"password":      true,
		"Authorization": true,
		"refresh_token": true,
		"api_key":       true,
		"password_hash": true,
		"user_id":       false,
		"tenant_id":     false,
		"role_ids":      false,
		"active":        false,
	} {
		assert.Equal(t, want, isSecret(key), "key %q", key)
	}
}
