package governance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-console/internal/domain"
	"prism-console/internal/testutil"
	"prism-console/internal/warehouse"
)

const auditSeq = "SECURITY.ACCESS_CONTROL.SEQ_AUDIT_LOG"

func TestSequenceAllocator_StrictlyIncreasing(t *testing.T) {
	s := testutil.NewFakeSession().WithSequences(101)
	a := NewSequenceAllocator(warehouse.Snowflake, discardLogger())
	ctx := context.Background()

	first, err := a.NextValue(ctx, s, auditSeq)
	require.NoError(t, err)
	second, err := a.NextValue(ctx, s, auditSeq)
	require.NoError(t, err)

	assert.Equal(t, int64(101), first)
	assert.Greater(t, second, first)
	assert.Equal(t, []string{
		"SELECT SECURITY.ACCESS_CONTROL.SEQ_AUDIT_LOG.NEXTVAL AS ID",
		"SELECT SECURITY.ACCESS_CONTROL.SEQ_AUDIT_LOG.NEXTVAL AS ID",
	}, s.Statements())
}

func TestSequenceAllocator_Failures(t *testing.T) {
	tests := []struct {
		name      string
		session   domain.Session
		sequence  string
		wantCause error
		wantMsg   string
	}{
		{
			name:      "nil_session",
			session:   nil,
			sequence:  auditSeq,
			wantCause: domain.ErrSessionUnavailable,
		},
		{
			name:      "query_error",
			session:   testutil.NewFakeSession().Fails("SELECT", errTest),
			sequence:  auditSeq,
			wantCause: errTest,
		},
		{
			name:     "no_row",
			session:  testutil.NewFakeSession(),
			sequence: auditSeq,
			wantMsg:  "no row",
		},
		{
			name:     "non_integer",
			session:  testutil.NewFakeSession().Returns("SELECT", domain.Row{"ID": "abc"}),
			sequence: auditSeq,
			wantMsg:  "non-integer",
		},
		{
			name:     "null_value",
			session:  testutil.NewFakeSession().Returns("SELECT", domain.Row{"ID": nil}),
			sequence: auditSeq,
			wantMsg:  "non-integer",
		},
		{
			name:     "invalid_name",
			session:  testutil.NewFakeSession().WithSequences(1),
			sequence: "SEQ; DROP TABLE AUDIT_LOG",
			wantMsg:  "invalid name part",
		},
	}

	a := NewSequenceAllocator(warehouse.Snowflake, discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.NextValue(context.Background(), tt.session, tt.sequence)
			require.Error(t, err)

			var allocErr *domain.AllocationError
			require.True(t, errors.As(err, &allocErr))
			assert.Equal(t, tt.sequence, allocErr.Sequence)
			if tt.wantCause != nil {
				assert.True(t, errors.Is(err, tt.wantCause))
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSequenceAllocator_StringValue(t *testing.T) {
	// Snowflake NUMBER columns scan as strings.
	s := testutil.NewFakeSession().Returns("SELECT", domain.Row{"ID": "42"})
	a := NewSequenceAllocator(warehouse.Snowflake, discardLogger())

	id, err := a.NextValue(context.Background(), s, auditSeq)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
