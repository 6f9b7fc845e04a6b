package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	snowflake = Builder{BackslashEscapes: true}
	duckdb    = Builder{}
)

func TestCreateDatabase(t *testing.T) {
	tests := []struct {
		name    string
		b       Builder
		db      string
		clone   string
		comment string
		want    string
		wantErr string
	}{
		{name: "plain", b: snowflake, db: "ANALYTICS_DB", want: "CREATE DATABASE ANALYTICS_DB"},
		{name: "clone", b: snowflake, db: "ANALYTICS_DEV", clone: "ANALYTICS_DB", want: "CREATE DATABASE ANALYTICS_DEV CLONE ANALYTICS_DB"},
		{name: "comment_quoted", b: snowflake, db: "SALES", comment: "it's sales", want: "CREATE DATABASE SALES COMMENT = 'it''s sales'"},
		{name: "comment_backslash_snowflake", b: snowflake, db: "SALES", comment: `a\b`, want: `CREATE DATABASE SALES COMMENT = 'a\\b'`},
		{name: "comment_backslash_duckdb", b: duckdb, db: "SALES", comment: `a\b`, want: `CREATE DATABASE SALES COMMENT = 'a\b'`},
		{name: "comment_quoted_duckdb", b: duckdb, db: "SALES", comment: "it's", want: "CREATE DATABASE SALES COMMENT = 'it''s'"},
		{name: "bad_name", b: snowflake, db: "sales; DROP DATABASE PROD", wantErr: "invalid database name"},
		{name: "bad_clone", b: snowflake, db: "SALES", clone: "x y", wantErr: "invalid clone source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.b.CreateDatabase(tt.db, tt.clone, tt.comment)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDropDatabase(t *testing.T) {
	got, err := DropDatabase("OLD_DB")
	require.NoError(t, err)
	assert.Equal(t, "DROP DATABASE OLD_DB", got)

	_, err = DropDatabase("")
	require.Error(t, err)
}

func TestCreateWarehouse(t *testing.T) {
	tests := []struct {
		name    string
		spec    WarehouseSpec
		want    string
		wantErr string
	}{
		{
			name: "defaults",
			spec: WarehouseSpec{Name: "ETL_WH", Size: "xsmall", AutoResume: true},
			want: "CREATE WAREHOUSE ETL_WH WAREHOUSE_SIZE = XSMALL AUTO_SUSPEND = 300 AUTO_RESUME = TRUE SCALING_POLICY = STANDARD",
		},
		{
			name: "explicit",
			spec: WarehouseSpec{Name: "BI_WH", Size: "2XLARGE", AutoSuspend: 600, ScalingPolicy: "economy", Comment: "bi"},
			want: "CREATE WAREHOUSE BI_WH WAREHOUSE_SIZE = 2XLARGE AUTO_SUSPEND = 600 AUTO_RESUME = FALSE SCALING_POLICY = ECONOMY COMMENT = 'bi'",
		},
		{name: "bad_size", spec: WarehouseSpec{Name: "W", Size: "HUGE"}, wantErr: "invalid warehouse size"},
		{name: "suspend_low", spec: WarehouseSpec{Name: "W", Size: "SMALL", AutoSuspend: 59}, wantErr: "auto-suspend"},
		{name: "suspend_high", spec: WarehouseSpec{Name: "W", Size: "SMALL", AutoSuspend: 86401}, wantErr: "auto-suspend"},
		{name: "bad_policy", spec: WarehouseSpec{Name: "W", Size: "SMALL", ScalingPolicy: "FAST"}, wantErr: "invalid scaling policy"},
		{name: "bad_name", spec: WarehouseSpec{Name: "", Size: "SMALL"}, wantErr: "invalid warehouse name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snowflake.CreateWarehouse(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleStatements(t *testing.T) {
	got, err := snowflake.CreateRole("APP_DEV_ADMIN", "", false)
	require.NoError(t, err)
	assert.Equal(t, "CREATE ROLE APP_DEV_ADMIN", got)

	got, err = duckdb.CreateRole("APP_DEV_ADMIN", "admins", true)
	require.NoError(t, err)
	assert.Equal(t, "CREATE ROLE IF NOT EXISTS APP_DEV_ADMIN COMMENT = 'admins'", got)

	got, err = GrantRole("SYSADMIN", "APP_DEV_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "GRANT ROLE SYSADMIN TO ROLE APP_DEV_ADMIN", got)

	got, err = RevokeRole("SYSADMIN", "APP_DEV_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "REVOKE ROLE SYSADMIN FROM ROLE APP_DEV_ADMIN", got)

	got, err = GrantOwnershipOnRole("APP_DEV_ADMIN", "SYSADMIN")
	require.NoError(t, err)
	assert.Equal(t, "GRANT OWNERSHIP ON ROLE APP_DEV_ADMIN TO ROLE SYSADMIN COPY CURRENT GRANTS", got)

	_, err = GrantRole("SYSADMIN", "x;y")
	require.Error(t, err)
}

func TestGrantDatabasePrivilege(t *testing.T) {
	got, err := GrantDatabasePrivilege("create schema", "SALES", "ANALYST")
	require.NoError(t, err)
	assert.Equal(t, "GRANT CREATE SCHEMA ON DATABASE SALES TO ROLE ANALYST", got)

	_, err = GrantDatabasePrivilege("ALL; DROP", "SALES", "ANALYST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database privilege")
}

func TestGrantDatabaseRole(t *testing.T) {
	got, err := GrantDatabaseRole("SALES.DB_ADMIN", "APP_DEV_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "GRANT DATABASE ROLE SALES.DB_ADMIN TO ROLE APP_DEV_ADMIN", got)

	_, err = GrantDatabaseRole("DB_ADMIN", "APP_DEV_ADMIN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE.ROLE")
}

func TestEnvironmentRoleNames(t *testing.T) {
	got, err := EnvironmentRoleNames("app", "DEV")
	require.NoError(t, err)
	assert.Equal(t, []string{"APP_DEV_ADMIN", "APP_DEV_DEVELOPER", "APP_DEV_ANALYST", "APP_DEV_VIEWER"}, got)

	_, err = EnvironmentRoleNames("", "DEV")
	require.Error(t, err)
}

func TestBuilderLiteral(t *testing.T) {
	tests := []struct {
		name  string
		b     Builder
		value string
		want  string
	}{
		{name: "snowflake_plain", b: snowflake, value: "sales", want: `'sales'`},
		{name: "snowflake_backslash_and_quote", b: snowflake, value: `C:\data's`, want: `'C:\\data''s'`},
		{name: "duckdb_backslash_verbatim", b: duckdb, value: `C:\data's`, want: `'C:\data''s'`},
		{name: "snowflake_trailing_backslash", b: snowflake, value: `x\`, want: `'x\\'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.Literal(tt.value))
		})
	}
}
