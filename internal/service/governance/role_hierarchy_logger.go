package governance

import (
	"context"
	"errors"
	"log/slog"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// Compile-time check.
var _ domain.RoleHierarchyLogger = (*RoleHierarchyLogger)(nil)

const insertRoleHierarchyEventSQL = `INSERT INTO %s (
    LOG_ID, EVENT_TIME, AUDIT_EVENT_ID, INVOKED_BY, ENVIRONMENT_NAME,
    CREATED_ROLE_NAME, CREATED_ROLE_TYPE, MAPPED_DATABASE_ROLE,
    PARENT_ACCOUNT_ROLE, SQL_COMMAND_CREATE_ROLE, SQL_COMMAND_GRANT_DB_ROLE,
    SQL_COMMAND_GRANT_OWNERSHIP, STATUS, MESSAGE
) VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// RoleHierarchyLogger appends role provisioning records. AuditEventID is
// stored as given; whether the referenced audit event exists is not checked.
type RoleHierarchyLogger struct {
	seq    *SequenceAllocator
	names  warehouse.Names
	logger *slog.Logger
}

// NewRoleHierarchyLogger creates a new RoleHierarchyLogger.
func NewRoleHierarchyLogger(seq *SequenceAllocator, names warehouse.Names, logger *slog.Logger) *RoleHierarchyLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleHierarchyLogger{
		seq:    seq,
		names:  names,
		logger: logger.With("component", "role-hierarchy-logger"),
	}
}

// LogRoleHierarchyEvent appends in to the role hierarchy log. The result's
// ID is the allocated log id.
func (l *RoleHierarchyLogger) LogRoleHierarchyEvent(ctx context.Context, session domain.Session, in domain.RoleHierarchyEventInput) domain.LogResult {
	if session == nil {
		return l.dropped(in, domain.OutcomeSessionUnavailable, domain.ErrSessionUnavailable)
	}
	if !in.CreatedRoleType.Valid() {
		return l.dropped(in, domain.OutcomeInvalidInput,
			domain.ErrValidation("role type must be %q or %q", domain.RoleTypeFunctional, domain.RoleTypeTechnical))
	}
	if !in.Status.Valid() {
		return l.dropped(in, domain.OutcomeInvalidInput, domain.ErrValidation("invalid status %q", in.Status))
	}

	id, err := l.seq.NextValue(ctx, session, l.names.RoleHierarchySequence)
	if err != nil {
		if errors.Is(err, domain.ErrSessionUnavailable) {
			return l.dropped(in, domain.OutcomeSessionUnavailable, err)
		}
		return l.dropped(in, domain.OutcomeAllocationFailed, err)
	}

	var auditEventID any
	if in.AuditEventID != nil {
		auditEventID = *in.AuditEventID
	}
	_, err = session.Query(ctx, insertStatement(insertRoleHierarchyEventSQL, l.names.RoleHierarchyLog),
		id, auditEventID, in.InvokedBy, in.EnvironmentName, in.CreatedRoleName,
		string(in.CreatedRoleType), in.MappedDatabaseRole, in.ParentAccountRole,
		in.SQLCommandCreateRole, in.SQLCommandGrantDBRole, in.SQLCommandGrantOwnership,
		string(in.Status), in.Message)
	if err != nil {
		return l.dropped(in, domain.OutcomeInsertFailed, &domain.InsertError{Table: l.names.RoleHierarchyLog, ID: id, Err: err})
	}

	LogWritesTotal.WithLabelValues(logRoleHierarchy, string(domain.OutcomeLogged)).Inc()
	l.logger.Debug("role hierarchy event logged", "log_id", id, "role", in.CreatedRoleName, "audit_event_id", auditEventID)
	return domain.Logged(id)
}

func (l *RoleHierarchyLogger) dropped(in domain.RoleHierarchyEventInput, outcome domain.LogOutcome, err error) domain.LogResult {
	LogWritesTotal.WithLabelValues(logRoleHierarchy, string(outcome)).Inc()
	l.logger.Warn("role hierarchy event not logged",
		"outcome", outcome, "role", in.CreatedRoleName, "environment", in.EnvironmentName, "error", err)
	return domain.Dropped(outcome, err)
}
