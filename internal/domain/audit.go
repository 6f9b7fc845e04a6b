package domain

import "time"

// EventStatus is the outcome recorded for an administrative action.
type EventStatus string

// Recorded action outcomes.
const (
	StatusSuccess EventStatus = "SUCCESS"
	StatusFailed  EventStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Well-known audit event types. The set is open: callers may log any tag.
const (
	EventCreateDatabase         = "CREATE_DATABASE"
	EventCloneDatabase          = "CLONE_DATABASE"
	EventDeleteDatabase         = "DELETE_DATABASE"
	EventCreateWarehouse        = "CREATE_WAREHOUSE"
	EventCreateRole             = "CREATE_ROLE"
	EventProvisionRole          = "PROVISION_ROLE"
	EventGrantRole              = "GRANT_ROLE"
	EventRevokeRole             = "REVOKE_ROLE"
	EventGrantDatabasePrivilege = "GRANT_DATABASE_PRIVILEGE"
	EventCreateEnvironmentRole  = "CREATE_ENVIRONMENT_ROLE"
)

// Attribution sentinels used when the session cannot report an identity.
const (
	UnknownUser = "UNKNOWN_USER"
	UnknownRole = "UNKNOWN_ROLE"
)

// AuditEvent is one append-only record of an administrative action attempt.
type AuditEvent struct {
	EventID       int64
	EventTime     time.Time // stamped by the store at insert time
	InvokedBy     string
	InvokedByRole string
	EventType     string
	ObjectName    string
	SQLCommand    string
	Status        EventStatus
	Message       string
}

// AuditEventInput is what a caller supplies to log an audit event.
// Nil actor fields are resolved from the active session.
type AuditEventInput struct {
	EventType     string
	ObjectName    string
	SQLCommand    string
	Status        EventStatus
	Message       string
	InvokedByRole *string
	InvokedByUser *string
}

// AuditFilter holds the review filters for listing audit events.
type AuditFilter struct {
	From       *time.Time
	To         *time.Time
	EventTypes []string
	Status     *EventStatus
	InvokedBy  *string
	Page       PageRequest
}
