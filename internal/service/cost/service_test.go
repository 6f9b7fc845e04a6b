package cost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-console/internal/domain"
	"prism-console/internal/testutil"
	"prism-console/internal/warehouse"
)

const gb = 1024 * 1024 * 1024

func operatorCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{Name: "alice", Role: "ACCOUNTADMIN"})
}

func telemetrySession() *testutil.FakeSession {
	h1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h2 := h1.Add(time.Hour)
	return testutil.NewFakeSession().
		Returns("SELECT WAREHOUSE_NAME",
			domain.Row{"WAREHOUSE_NAME": "WH_ETL", "HOUR": h1, "CREDITS_USED": 1.5},
			domain.Row{"WAREHOUSE_NAME": "WH_ETL", "HOUR": h2, "CREDITS_USED": 2.5},
			domain.Row{"WAREHOUSE_NAME": "WH_BI", "HOUR": h1, "CREDITS_USED": "0.333"},
		).
		Returns("SELECT DATABASE_NAME",
			domain.Row{"DATABASE_NAME": "SALES", "ACTIVE_BYTES": float64(3 * gb), "FAILSAFE_BYTES": float64(gb)},
		).
		Returns("SELECT DATE_TRUNC",
			domain.Row{"HOUR": h1, "WAREHOUSE_NAME": "WH_BI", "QUERY_COUNT": int64(12), "AVG_EXECUTION_TIME": 250.0, "CREDITS_USED": 0.01},
		)
}

func TestReport(t *testing.T) {
	provider := &testutil.MockSessionProvider{NewSession: telemetrySession}
	svc := NewService(provider, warehouse.Snowflake, nil)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	r, err := svc.Report(operatorCtx(), from, to)
	require.NoError(t, err)

	require.Len(t, provider.Sessions, 3, "one session per dataset")
	for _, s := range provider.Sessions {
		require.Len(t, s.Calls, 1)
		assert.Equal(t, []any{from, to}, s.Calls[0].Args)
		assert.True(t, s.Closed)
	}
	assert.Equal(t, "alice", provider.Opened[0].Name)

	assert.Len(t, r.Credits, 3)
	require.Len(t, r.Storage, 1)
	assert.InDelta(t, 3.0, r.Storage[0].ActiveGB, 1e-9)
	assert.InDelta(t, 4.0, r.Storage[0].TotalGB, 1e-9)
	require.Len(t, r.Queries, 1)
	assert.Equal(t, int64(12), r.Queries[0].QueryCount)

	assert.Equal(t, []WarehouseSummary{
		{Warehouse: "WH_BI", TotalCredits: 0.33, AvgCredits: 0.33, MaxCredits: 0.33},
		{Warehouse: "WH_ETL", TotalCredits: 4, AvgCredits: 2, MaxCredits: 2.5},
	}, r.Summary)

	require.Len(t, r.Figures, 5)
	for name, f := range r.Figures {
		assert.Equal(t, "plotly_dark", f.Layout.Template, name)
	}
	require.Len(t, r.Figures["credits"].Data, 2)
	assert.Equal(t, "WH_BI", r.Figures["credits"].Data[0].Name)
	assert.Equal(t, "stack", r.Figures["storage_breakdown"].Layout.BarMode)
}

func TestReport_DefaultWindow(t *testing.T) {
	provider := &testutil.MockSessionProvider{NewSession: testutil.NewFakeSession}
	svc := NewService(provider, warehouse.Snowflake, nil)
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	r, err := svc.Report(operatorCtx(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, now, r.To)
	assert.Equal(t, now.Add(-DefaultWindow), r.From)
	assert.Empty(t, r.Summary)
}

func TestReport_Errors(t *testing.T) {
	var validation *domain.ValidationError

	t.Run("unsupported_dialect", func(t *testing.T) {
		svc := NewService(&testutil.MockSessionProvider{}, warehouse.DuckDB, nil)
		_, err := svc.Report(operatorCtx(), time.Time{}, time.Time{})
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("inverted_range", func(t *testing.T) {
		svc := NewService(&testutil.MockSessionProvider{}, warehouse.Snowflake, nil)
		now := time.Now()
		_, err := svc.Report(operatorCtx(), now, now.Add(-time.Hour))
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := NewService(&testutil.MockSessionProvider{}, warehouse.Snowflake, nil)
		_, err := svc.Report(context.Background(), time.Time{}, time.Time{})
		var denied *domain.AccessDeniedError
		assert.True(t, errors.As(err, &denied))
	})

	t.Run("session_unavailable", func(t *testing.T) {
		svc := NewService(&testutil.MockSessionProvider{Err: domain.ErrSessionUnavailable}, warehouse.Snowflake, nil)
		_, err := svc.Report(operatorCtx(), time.Time{}, time.Time{})
		assert.True(t, errors.Is(err, domain.ErrSessionUnavailable))
	})

	t.Run("query_failure", func(t *testing.T) {
		boom := errors.New("Insufficient privileges to operate on schema 'ACCOUNT_USAGE'")
		provider := &testutil.MockSessionProvider{NewSession: func() *testutil.FakeSession {
			return testutil.NewFakeSession().Fails("SELECT DATABASE_NAME", boom)
		}}
		svc := NewService(provider, warehouse.Snowflake, nil)
		_, err := svc.Report(operatorCtx(), time.Time{}, time.Time{})
		assert.True(t, errors.Is(err, boom))
		assert.Contains(t, err.Error(), "storage usage")
	})
}
