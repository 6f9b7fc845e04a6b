package warehouse

import (
	"fmt"

	"prism-console/internal/ddl"
)

// Unqualified names of the log objects.
const (
	AuditLogTable            = "AUDIT_LOG"
	RoleHierarchyLogTable    = "ROLE_HIERARCHY_LOG"
	AuditLogSequence         = "SEQ_AUDIT_LOG"
	RoleHierarchyLogSequence = "SEQ_ROLE_HIERARCHY_LOG"
	DefaultAuditDatabase     = "SECURITY"
	DefaultAuditSchema       = "ACCESS_CONTROL"
)

// Names holds the qualified names of the log tables and sequences.
type Names struct {
	Database              string
	Schema                string
	AuditLog              string
	RoleHierarchyLog      string
	AuditSequence         string
	RoleHierarchySequence string
}

// NewNames qualifies the log objects under database and schema for d.
// Every part is validated before it is interpolated into a statement.
func NewNames(d Dialect, database, schema string) (Names, error) {
	if err := ddl.ValidateIdentifier(database); err != nil {
		return Names{}, fmt.Errorf("invalid audit database: %w", err)
	}
	if err := ddl.ValidateIdentifier(schema); err != nil {
		return Names{}, fmt.Errorf("invalid audit schema: %w", err)
	}
	db := ""
	if d.QualifiesDatabase() {
		db = database
	}
	qualify := func(object string) string {
		name, _ := ddl.Qualify(db, schema, object)
		return name
	}
	return Names{
		Database:              database,
		Schema:                schema,
		AuditLog:              qualify(AuditLogTable),
		RoleHierarchyLog:      qualify(RoleHierarchyLogTable),
		AuditSequence:         qualify(AuditLogSequence),
		RoleHierarchySequence: qualify(RoleHierarchyLogSequence),
	}, nil
}
