// Package warehouse provides warehouse sessions, SQL dialects and the
// bootstrap of the audit log tables.
package warehouse

import (
	"fmt"
	"strings"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
)

// Supported driver names.
const (
	DriverSnowflake = "snowflake"
	DriverDuckDB    = "duckdb"
)

// Dialect renders the warehouse-specific statements the console needs.
// Statements that return a name column alias it as NAME.
type Dialect interface {
	Name() string

	// QualifiesDatabase reports whether object names include the database part.
	QualifiesDatabase() bool

	// SessionInit returns statements run when a session is pinned for p.
	SessionInit(p domain.ContextPrincipal) []string

	// Statements renders administrative statements with this warehouse's
	// string literal syntax.
	Statements() ddl.Builder

	CurrentUserSQL() string
	CurrentRoleSQL() string

	// NextValSQL returns a statement yielding one row with the next value of
	// sequence in column ID. sequence must be a validated qualified name.
	NextValSQL(sequence string) string

	// BootstrapSQL returns the statements that create the log objects.
	BootstrapSQL(n Names) []string

	ListDatabasesSQL() string
	ListSchemasSQL(database string) (string, []any)
	ListObjectsSQL(database, schema string) (string, []any)
	DescribeColumnsSQL(database, schema, object string) (string, []any)

	// ObjectGrantsSQL, ListRolesSQL and RoleGrantsSQL report false when the
	// warehouse has no such concept.
	ObjectGrantsSQL(objectType, database, schema, object string) (string, bool)
	ListRolesSQL() (string, bool)
	RoleGrantsSQL() (string, bool)

	// SupportsTelemetry reports whether account usage views are available.
	SupportsTelemetry() bool
}

// Dialects by driver name.
var (
	Snowflake Dialect = snowflakeDialect{}
	DuckDB    Dialect = duckDBDialect{}
)

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case DriverSnowflake:
		return Snowflake, nil
	case DriverDuckDB:
		return DuckDB, nil
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q: must be %q or %q", driver, DriverSnowflake, DriverDuckDB)
	}
}

// === Snowflake ===

type snowflakeDialect struct{}

func (snowflakeDialect) Name() string            { return DriverSnowflake }
func (snowflakeDialect) QualifiesDatabase() bool { return true }

// Snowflake sessions keep the DSN login; audit events take the operator
// from the authenticated principal instead.
func (snowflakeDialect) SessionInit(domain.ContextPrincipal) []string { return nil }
func (snowflakeDialect) Statements() ddl.Builder                      { return ddl.Builder{BackslashEscapes: true} }

func (snowflakeDialect) CurrentUserSQL() string { return "SELECT CURRENT_USER() AS NAME" }
func (snowflakeDialect) CurrentRoleSQL() string { return "SELECT CURRENT_ROLE() AS NAME" }

func (snowflakeDialect) NextValSQL(sequence string) string {
	return "SELECT " + sequence + ".NEXTVAL AS ID"
}

func (snowflakeDialect) BootstrapSQL(n Names) []string {
	return []string{
		"CREATE DATABASE IF NOT EXISTS " + n.Database,
		"CREATE SCHEMA IF NOT EXISTS " + n.Database + "." + n.Schema,
		// NOORDER is the account default; ids must increase.
		createSequence(n.AuditSequence) + " ORDER",
		createSequence(n.RoleHierarchySequence) + " ORDER",
		createAuditLog(n.AuditLog, "NUMBER", "TIMESTAMP_LTZ"),
		createRoleHierarchyLog(n.RoleHierarchyLog, "NUMBER", "TIMESTAMP_LTZ"),
	}
}

func (snowflakeDialect) ListDatabasesSQL() string { return "SHOW DATABASES" }

func (snowflakeDialect) ListSchemasSQL(database string) (string, []any) {
	return "SHOW SCHEMAS IN DATABASE " + database, nil
}

func (snowflakeDialect) ListObjectsSQL(database, schema string) (string, []any) {
	return `SELECT TABLE_NAME AS NAME, TABLE_TYPE AS TYPE, ROW_COUNT, COMMENT
FROM ` + database + `.INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME`, []any{schema}
}

func (snowflakeDialect) DescribeColumnsSQL(database, schema, object string) (string, []any) {
	return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COMMENT
FROM ` + database + `.INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, []any{schema, object}
}

func (snowflakeDialect) ObjectGrantsSQL(objectType, database, schema, object string) (string, bool) {
	return fmt.Sprintf("SHOW GRANTS ON %s %s.%s.%s", objectType, database, schema, object), true
}

func (snowflakeDialect) ListRolesSQL() (string, bool) { return "SHOW ROLES", true }

func (snowflakeDialect) RoleGrantsSQL() (string, bool) {
	return `SELECT GRANTEE_NAME AS ROLE_NAME, NAME AS GRANTED_ROLE
FROM SNOWFLAKE.ACCOUNT_USAGE.GRANTS_TO_ROLES
WHERE GRANTED_ON = 'ROLE' AND PRIVILEGE = 'USAGE' AND DELETED_ON IS NULL
AND GRANTEE_NAME != NAME
ORDER BY ROLE_NAME, GRANTED_ROLE`, true
}

func (snowflakeDialect) SupportsTelemetry() bool { return true }

// === DuckDB ===

// DuckDB has no login identity; the session emulates CURRENT_USER and
// CURRENT_ROLE with these variables.
const (
	userVariable = "prism_user"
	roleVariable = "prism_role"
)

type duckDBDialect struct{}

func (duckDBDialect) Name() string            { return DriverDuckDB }
func (duckDBDialect) QualifiesDatabase() bool { return false }
func (duckDBDialect) Statements() ddl.Builder { return ddl.Builder{} }

func (duckDBDialect) SessionInit(p domain.ContextPrincipal) []string {
	return []string{
		setVariable(userVariable, p.Name),
		setVariable(roleVariable, p.Role),
	}
}

func setVariable(name, value string) string {
	if value == "" {
		return "SET VARIABLE " + name + " = NULL"
	}
	return "SET VARIABLE " + name + " = " + ddl.QuoteLiteral(value)
}

func (duckDBDialect) CurrentUserSQL() string {
	return "SELECT getvariable('" + userVariable + "') AS NAME"
}

func (duckDBDialect) CurrentRoleSQL() string {
	return "SELECT getvariable('" + roleVariable + "') AS NAME"
}

func (duckDBDialect) NextValSQL(sequence string) string {
	return "SELECT nextval(" + ddl.QuoteLiteral(sequence) + ") AS ID"
}

func (duckDBDialect) BootstrapSQL(n Names) []string {
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + n.Schema,
		createSequence(n.AuditSequence),
		createSequence(n.RoleHierarchySequence),
		createAuditLog(n.AuditLog, "BIGINT", "TIMESTAMPTZ"),
		createRoleHierarchyLog(n.RoleHierarchyLog, "BIGINT", "TIMESTAMPTZ"),
	}
}

func (duckDBDialect) ListDatabasesSQL() string {
	return "SELECT database_name AS NAME FROM duckdb_databases() WHERE NOT internal ORDER BY database_name"
}

func (duckDBDialect) ListSchemasSQL(database string) (string, []any) {
	return `SELECT schema_name AS NAME FROM information_schema.schemata
WHERE catalog_name = ?
ORDER BY schema_name`, []any{database}
}

func (duckDBDialect) ListObjectsSQL(database, schema string) (string, []any) {
	return `SELECT table_name AS NAME, table_type AS TYPE
FROM information_schema.tables
WHERE table_catalog = ? AND table_schema = ?
ORDER BY table_name`, []any{database, schema}
}

func (duckDBDialect) DescribeColumnsSQL(database, schema, object string) (string, []any) {
	return `SELECT column_name AS COLUMN_NAME, data_type AS DATA_TYPE, is_nullable AS IS_NULLABLE, column_default AS COLUMN_DEFAULT
FROM information_schema.columns
WHERE table_catalog = ? AND table_schema = ? AND table_name = ?
ORDER BY ordinal_position`, []any{database, schema, object}
}

func (duckDBDialect) ObjectGrantsSQL(string, string, string, string) (string, bool) { return "", false }
func (duckDBDialect) ListRolesSQL() (string, bool)                                   { return "", false }
func (duckDBDialect) RoleGrantsSQL() (string, bool)                                  { return "", false }
func (duckDBDialect) SupportsTelemetry() bool                                        { return false }

// === shared DDL ===

func createSequence(name string) string {
	return "CREATE SEQUENCE IF NOT EXISTS " + name + " START WITH 1 INCREMENT BY 1"
}

func createAuditLog(table, intType, tsType string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
    EVENT_ID ` + intType + ` PRIMARY KEY,
    EVENT_TIME ` + tsType + `,
    INVOKED_BY VARCHAR,
    INVOKED_BY_ROLE VARCHAR,
    EVENT_TYPE VARCHAR,
    OBJECT_NAME VARCHAR,
    SQL_COMMAND VARCHAR,
    STATUS VARCHAR,
    MESSAGE VARCHAR
)`
}

func createRoleHierarchyLog(table, intType, tsType string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
    LOG_ID ` + intType + ` PRIMARY KEY,
    EVENT_TIME ` + tsType + `,
    AUDIT_EVENT_ID ` + intType + `,
    INVOKED_BY VARCHAR,
    ENVIRONMENT_NAME VARCHAR,
    CREATED_ROLE_NAME VARCHAR,
    CREATED_ROLE_TYPE VARCHAR,
    MAPPED_DATABASE_ROLE VARCHAR,
    PARENT_ACCOUNT_ROLE VARCHAR,
    SQL_COMMAND_CREATE_ROLE VARCHAR,
    SQL_COMMAND_GRANT_DB_ROLE VARCHAR,
    SQL_COMMAND_GRANT_OWNERSHIP VARCHAR,
    STATUS VARCHAR,
    MESSAGE VARCHAR
)`
}
