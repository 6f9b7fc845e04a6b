// Package ddl builds warehouse administrative statements for databases,
// warehouses, roles and grants. Every identifier is validated against an
// allow-list pattern before interpolation; free text is quoted as a literal.
package ddl

import (
	"fmt"
	"strings"
)

// Warehouse sizes accepted by CreateWarehouse.
var WarehouseSizes = []string{"XSMALL", "SMALL", "MEDIUM", "LARGE", "XLARGE", "2XLARGE", "3XLARGE", "4XLARGE"}

// Scaling policies accepted by CreateWarehouse.
var ScalingPolicies = []string{"STANDARD", "ECONOMY"}

// DatabasePrivileges lists the grantable database-scoped privileges.
var DatabasePrivileges = []string{"USAGE", "CREATE SCHEMA", "IMPORT SHARE", "MODIFY", "MONITOR", "OWNERSHIP", "REFERENCE_USAGE"}

// Auto-suspend bounds in seconds.
const (
	MinAutoSuspend     = 60
	MaxAutoSuspend     = 86400
	DefaultAutoSuspend = 300
)

// EnvironmentRoleSuffixes are the functional tiers created per environment.
var EnvironmentRoleSuffixes = []string{"ADMIN", "DEVELOPER", "ANALYST", "VIEWER"}

// WarehouseSpec describes a CREATE WAREHOUSE request.
type WarehouseSpec struct {
	Name          string
	Size          string
	AutoSuspend   int
	AutoResume    bool
	ScalingPolicy string
	Comment       string
}

// Builder renders the statements that embed free-text literals.
type Builder struct {
	// BackslashEscapes is set when a backslash inside a string literal
	// starts an escape sequence (Snowflake). DuckDB reads it verbatim.
	BackslashEscapes bool
}

// Literal quotes value as a string literal for the warehouse.
func (b Builder) Literal(value string) string {
	if b.BackslashEscapes {
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	return QuoteLiteral(value)
}

func (b Builder) withComment(stmt, comment string) (string, error) {
	if comment == "" {
		return stmt, nil
	}
	if err := ValidateComment(comment); err != nil {
		return "", err
	}
	return stmt + " COMMENT = " + b.Literal(comment), nil
}

func oneOf(value string, allowed []string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return a, true
		}
	}
	return "", false
}

// CreateDatabase returns: CREATE DATABASE <name> [CLONE <source>] [COMMENT = '<comment>'].
func (b Builder) CreateDatabase(name, cloneSource, comment string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid database name: %w", err)
	}
	stmt := "CREATE DATABASE " + name
	if cloneSource != "" {
		if err := ValidateIdentifier(cloneSource); err != nil {
			return "", fmt.Errorf("invalid clone source: %w", err)
		}
		stmt += " CLONE " + cloneSource
	}
	return b.withComment(stmt, comment)
}

// DropDatabase returns: DROP DATABASE <name>.
func DropDatabase(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid database name: %w", err)
	}
	return "DROP DATABASE " + name, nil
}

// CreateWarehouse returns a CREATE WAREHOUSE statement for spec. A zero
// AutoSuspend uses DefaultAutoSuspend; an empty ScalingPolicy uses STANDARD.
func (b Builder) CreateWarehouse(spec WarehouseSpec) (string, error) {
	if err := ValidateIdentifier(spec.Name); err != nil {
		return "", fmt.Errorf("invalid warehouse name: %w", err)
	}
	size, ok := oneOf(spec.Size, WarehouseSizes)
	if !ok {
		return "", fmt.Errorf("invalid warehouse size %q: must be one of %s", spec.Size, strings.Join(WarehouseSizes, ", "))
	}
	suspend := spec.AutoSuspend
	if suspend == 0 {
		suspend = DefaultAutoSuspend
	}
	if suspend < MinAutoSuspend || suspend > MaxAutoSuspend {
		return "", fmt.Errorf("auto-suspend must be between %d and %d seconds", MinAutoSuspend, MaxAutoSuspend)
	}
	policy := spec.ScalingPolicy
	if policy == "" {
		policy = "STANDARD"
	}
	policy, ok = oneOf(policy, ScalingPolicies)
	if !ok {
		return "", fmt.Errorf("invalid scaling policy %q: must be one of %s", spec.ScalingPolicy, strings.Join(ScalingPolicies, ", "))
	}
	stmt := fmt.Sprintf("CREATE WAREHOUSE %s WAREHOUSE_SIZE = %s AUTO_SUSPEND = %d AUTO_RESUME = %s SCALING_POLICY = %s",
		spec.Name, size, suspend, strings.ToUpper(fmt.Sprint(spec.AutoResume)), policy)
	return b.withComment(stmt, spec.Comment)
}

// CreateRole returns: CREATE ROLE [IF NOT EXISTS] <name> [COMMENT = '<comment>'].
func (b Builder) CreateRole(name, comment string, ifNotExists bool) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid role name: %w", err)
	}
	stmt := "CREATE ROLE "
	if ifNotExists {
		stmt += "IF NOT EXISTS "
	}
	return b.withComment(stmt+name, comment)
}

// GrantRole returns: GRANT ROLE <role> TO ROLE <grantee>.
func GrantRole(role, grantee string) (string, error) {
	if err := ValidateIdentifier(role); err != nil {
		return "", fmt.Errorf("invalid role name: %w", err)
	}
	if err := ValidateIdentifier(grantee); err != nil {
		return "", fmt.Errorf("invalid grantee role name: %w", err)
	}
	return fmt.Sprintf("GRANT ROLE %s TO ROLE %s", role, grantee), nil
}

// RevokeRole returns: REVOKE ROLE <role> FROM ROLE <grantee>.
func RevokeRole(role, grantee string) (string, error) {
	if err := ValidateIdentifier(role); err != nil {
		return "", fmt.Errorf("invalid role name: %w", err)
	}
	if err := ValidateIdentifier(grantee); err != nil {
		return "", fmt.Errorf("invalid grantee role name: %w", err)
	}
	return fmt.Sprintf("REVOKE ROLE %s FROM ROLE %s", role, grantee), nil
}

// GrantDatabasePrivilege returns: GRANT <privilege> ON DATABASE <db> TO ROLE <role>.
func GrantDatabasePrivilege(privilege, database, role string) (string, error) {
	priv, ok := oneOf(privilege, DatabasePrivileges)
	if !ok {
		return "", fmt.Errorf("invalid database privilege %q", privilege)
	}
	if err := ValidateIdentifier(database); err != nil {
		return "", fmt.Errorf("invalid database name: %w", err)
	}
	if err := ValidateIdentifier(role); err != nil {
		return "", fmt.Errorf("invalid role name: %w", err)
	}
	return fmt.Sprintf("GRANT %s ON DATABASE %s TO ROLE %s", priv, database, role), nil
}

// GrantDatabaseRole returns: GRANT DATABASE ROLE <dbRole> TO ROLE <role>, where
// dbRole is qualified as DATABASE.ROLE.
func GrantDatabaseRole(databaseRole, role string) (string, error) {
	parts := strings.Split(databaseRole, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("database role %q must be qualified as DATABASE.ROLE", databaseRole)
	}
	if err := ValidateQualifiedName(databaseRole); err != nil {
		return "", fmt.Errorf("invalid database role: %w", err)
	}
	if err := ValidateIdentifier(role); err != nil {
		return "", fmt.Errorf("invalid role name: %w", err)
	}
	return fmt.Sprintf("GRANT DATABASE ROLE %s TO ROLE %s", databaseRole, role), nil
}

// GrantOwnershipOnRole returns: GRANT OWNERSHIP ON ROLE <role> TO ROLE <owner> COPY CURRENT GRANTS.
func GrantOwnershipOnRole(role, owner string) (string, error) {
	if err := ValidateIdentifier(role); err != nil {
		return "", fmt.Errorf("invalid role name: %w", err)
	}
	if err := ValidateIdentifier(owner); err != nil {
		return "", fmt.Errorf("invalid owner role name: %w", err)
	}
	return fmt.Sprintf("GRANT OWNERSHIP ON ROLE %s TO ROLE %s COPY CURRENT GRANTS", role, owner), nil
}

// EnvironmentRoleNames returns {PREFIX}_{ENV}_{TIER} for every environment tier.
func EnvironmentRoleNames(prefix, environment string) ([]string, error) {
	if err := ValidateIdentifier(prefix); err != nil {
		return nil, fmt.Errorf("invalid role prefix: %w", err)
	}
	if err := ValidateIdentifier(environment); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	names := make([]string, 0, len(EnvironmentRoleSuffixes))
	for _, tier := range EnvironmentRoleSuffixes {
		names = append(names, strings.ToUpper(prefix+"_"+environment+"_"+tier))
	}
	return names, nil
}
