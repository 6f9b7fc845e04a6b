package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		// Valid cases
		{name: "simple", input: "ANALYTICS_DB"},
		{name: "underscore_prefix", input: "_temp"},
		{name: "mixed_case", input: "MyRole"},
		{name: "with_digits", input: "role1"},
		{name: "max_length", input: strings.Repeat("a", 255)},

		// Invalid cases
		{name: "empty", input: "", wantErr: "name is required"},
		{name: "too_long", input: strings.Repeat("a", 256), wantErr: "at most 255 characters"},
		{name: "starts_with_digit", input: "1db", wantErr: "must match"},
		{name: "contains_space", input: "my db", wantErr: "must match"},
		{name: "contains_hyphen", input: "my-db", wantErr: "must match"},
		{name: "contains_dot", input: "db.schema", wantErr: "must match"},
		{name: "contains_semicolon", input: "foo;bar", wantErr: "must match"},
		{name: "contains_quote", input: `foo"bar`, wantErr: "must match"},
		{name: "sql_injection", input: "foo; DROP DATABASE PROD", wantErr: "must match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateQualifiedName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "one_part", input: "AUDIT_LOG"},
		{name: "two_parts", input: "ACCESS_CONTROL.AUDIT_LOG"},
		{name: "three_parts", input: "SECURITY.ACCESS_CONTROL.AUDIT_LOG"},
		{name: "empty", input: "", wantErr: "name is required"},
		{name: "four_parts", input: "a.b.c.d", wantErr: "more than three parts"},
		{name: "empty_part", input: "a..c", wantErr: "invalid name part"},
		{name: "bad_part", input: "a.b-c", wantErr: "invalid name part"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQualifiedName(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQualify(t *testing.T) {
	got, err := Qualify("SECURITY", "ACCESS_CONTROL", "AUDIT_LOG")
	require.NoError(t, err)
	assert.Equal(t, "SECURITY.ACCESS_CONTROL.AUDIT_LOG", got)

	got, err = Qualify("", "ACCESS_CONTROL", "AUDIT_LOG")
	require.NoError(t, err)
	assert.Equal(t, "ACCESS_CONTROL.AUDIT_LOG", got)

	_, err = Qualify("", "")
	require.Error(t, err)

	_, err = Qualify("SECURITY", "bad name")
	require.Error(t, err)
}

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "hello", want: "'hello'"},
		{name: "with_single_quote", input: "it's", want: "'it''s'"},
		{name: "multiple_quotes", input: "a'b'c", want: "'a''b''c'"},
		{name: "empty", input: "", want: "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteLiteral(tt.input))
		})
	}
}

func TestValidateComment(t *testing.T) {
	require.NoError(t, ValidateComment("owned by the finance team"))
	require.Error(t, ValidateComment(strings.Repeat("x", 1025)))
	require.Error(t, ValidateComment("nul\x00byte"))
}
