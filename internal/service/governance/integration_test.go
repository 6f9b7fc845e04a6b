package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// TestLoggers_DuckDBRoundTrip appends through a real DuckDB session and
// reads the rows back.
func TestLoggers_DuckDBRoundTrip(t *testing.T) {
	ctx := adminCtx()
	client, err := warehouse.Open(context.Background(), warehouse.DriverDuckDB, "", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	names, err := warehouse.NewNames(client.Dialect(), warehouse.DefaultAuditDatabase, warehouse.DefaultAuditSchema)
	require.NoError(t, err)

	session, err := client.Session(ctx, domain.ContextPrincipal{Name: "alice", Role: "SYSADMIN"})
	require.NoError(t, err)
	defer session.Close() //nolint:errcheck
	require.NoError(t, warehouse.Bootstrap(ctx, session, client.Dialect(), names))

	logger := discardLogger()
	seq := NewSequenceAllocator(client.Dialect(), logger)
	audit := NewAuditLogger(NewIdentityResolver(client.Dialect(), logger), seq, names, logger)
	rh := NewRoleHierarchyLogger(seq, names, logger)

	first := audit.LogAuditEvent(ctx, session, domain.AuditEventInput{
		EventType:  domain.EventCreateDatabase,
		ObjectName: "ANALYTICS_DB",
		SQLCommand: "CREATE DATABASE ANALYTICS_DB",
		Status:     domain.StatusSuccess,
	})
	require.True(t, first.Logged(), "%v", first.Err)

	second := audit.LogAuditEvent(ctx, session, domain.AuditEventInput{
		EventType:  domain.EventProvisionRole,
		ObjectName: "APP_DEV_ADMIN",
		SQLCommand: "CREATE ROLE IF NOT EXISTS APP_DEV_ADMIN",
		Status:     domain.StatusFailed,
		Message:    "it's broken",
	})
	require.True(t, second.Logged(), "%v", second.Err)
	assert.Greater(t, *second.ID, *first.ID)

	in := provisionInput(second.ID)
	hier := rh.LogRoleHierarchyEvent(ctx, session, in)
	require.True(t, hier.Logged(), "%v", hier.Err)
	assert.Equal(t, int64(1), *hier.ID)

	orphan := rh.LogRoleHierarchyEvent(ctx, session, provisionInput(nil))
	require.True(t, orphan.Logged(), "%v", orphan.Err)

	q := NewAuditQuery(names)
	events, _, err := q.ListEvents(ctx, session, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	byID := map[int64]domain.AuditEvent{}
	for _, e := range events {
		byID[e.EventID] = e
	}
	stored := byID[*first.ID]
	assert.Equal(t, "alice", stored.InvokedBy)
	assert.Equal(t, "SYSADMIN", stored.InvokedByRole)
	assert.Equal(t, domain.StatusSuccess, stored.Status)
	assert.False(t, stored.EventTime.IsZero(), "event time is stamped by the store")
	assert.Equal(t, "it's broken", byID[*second.ID].Message)

	failed := domain.StatusFailed
	events, _, err = q.ListEvents(ctx, session, domain.AuditFilter{Status: &failed})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, *second.ID, events[0].EventID)

	hierEvents, _, err := q.ListRoleHierarchyEvents(ctx, session, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, hierEvents, 2)
	var correlated, uncorrelated int
	for _, e := range hierEvents {
		if e.AuditEventID == nil {
			uncorrelated++
			continue
		}
		correlated++
		assert.Equal(t, *second.ID, *e.AuditEventID)
	}
	assert.Equal(t, 1, correlated)
	assert.Equal(t, 1, uncorrelated)
}
