package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-console/internal/domain"
)

func openTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := Open(context.Background(), DriverDuckDB, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_SessionIdentityVariables(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	s, err := c.Session(ctx, domain.ContextPrincipal{Name: "alice", Role: "SECURITYADMIN"})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	rows, err := s.Query(ctx, c.Dialect().CurrentUserSQL())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].String("NAME"))

	rows, err = s.Query(ctx, c.Dialect().CurrentRoleSQL())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SECURITYADMIN", rows[0].String("NAME"))
}

func TestClient_SessionWithoutRoleReportsNull(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	s, err := c.Session(ctx, domain.ContextPrincipal{Name: "bob"})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	rows, err := s.Query(ctx, c.Dialect().CurrentRoleSQL())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["NAME"])
}

func TestBootstrap_SequencesAreMonotonic(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	n, err := NewNames(c.Dialect(), DefaultAuditDatabase, DefaultAuditSchema)
	require.NoError(t, err)

	s, err := c.Session(ctx, domain.ContextPrincipal{Name: "alice"})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	require.NoError(t, Bootstrap(ctx, s, c.Dialect(), n))
	// Idempotent.
	require.NoError(t, Bootstrap(ctx, s, c.Dialect(), n))

	var last int64
	for i := 0; i < 5; i++ {
		rows, err := s.Query(ctx, c.Dialect().NextValSQL(n.AuditSequence))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		id, ok := rows[0].Int64("ID")
		require.True(t, ok)
		assert.Greater(t, id, last)
		last = id
	}

	// Sequences are independent.
	rows, err := s.Query(ctx, c.Dialect().NextValSQL(n.RoleHierarchySequence))
	require.NoError(t, err)
	id, ok := rows[0].Int64("ID")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestConnSession_UnavailableAfterClose(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	s, err := c.Session(ctx, domain.ContextPrincipal{Name: "alice"})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Query(ctx, "SELECT 1")
	assert.True(t, errors.Is(err, domain.ErrSessionUnavailable))

	var nilSession *ConnSession
	_, err = nilSession.Query(ctx, "SELECT 1")
	assert.True(t, errors.Is(err, domain.ErrSessionUnavailable))
}

func TestClient_NilOrClosed(t *testing.T) {
	var c *Client
	_, err := c.Session(context.Background(), domain.ContextPrincipal{})
	assert.True(t, errors.Is(err, domain.ErrSessionUnavailable))

	closed := openTestClient(t)
	require.NoError(t, closed.Close())
	_, err = closed.Session(context.Background(), domain.ContextPrincipal{Name: "alice"})
	assert.True(t, errors.Is(err, domain.ErrSessionUnavailable))
}

func TestBootstrap_NilSession(t *testing.T) {
	n, err := NewNames(DuckDB, DefaultAuditDatabase, DefaultAuditSchema)
	require.NoError(t, err)
	err = Bootstrap(context.Background(), nil, DuckDB, n)
	assert.True(t, errors.Is(err, domain.ErrSessionUnavailable))
}
