package domain

import "time"

// RoleType classifies a provisioned account role.
type RoleType string

// Supported role types.
const (
	RoleTypeFunctional RoleType = "Functional"
	RoleTypeTechnical  RoleType = "Technical"
)

// RoleTypes lists the accepted role types in display order.
var RoleTypes = []RoleType{RoleTypeFunctional, RoleTypeTechnical}

// Valid reports whether t is a known role type.
func (t RoleType) Valid() bool {
	return t == RoleTypeFunctional || t == RoleTypeTechnical
}

// RoleHierarchyEvent records a role-provisioning action. AuditEventID is a
// plain correlating value; the referenced audit event may not exist.
type RoleHierarchyEvent struct {
	LogID                    int64
	EventTime                time.Time
	AuditEventID             *int64
	InvokedBy                string
	EnvironmentName          string
	CreatedRoleName          string
	CreatedRoleType          RoleType
	MappedDatabaseRole       string
	ParentAccountRole        string
	SQLCommandCreateRole     string
	SQLCommandGrantDBRole    string
	SQLCommandGrantOwnership string
	Status                   EventStatus
	Message                  string
}

// RoleHierarchyEventInput is what a caller supplies to log a provisioning action.
type RoleHierarchyEventInput struct {
	AuditEventID             *int64
	InvokedBy                string
	EnvironmentName          string
	CreatedRoleName          string
	CreatedRoleType          RoleType
	MappedDatabaseRole       string
	ParentAccountRole        string
	SQLCommandCreateRole     string
	SQLCommandGrantDBRole    string
	SQLCommandGrantOwnership string
	Status                   EventStatus
	Message                  string
}
