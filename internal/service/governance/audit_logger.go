package governance

import (
	"context"
	"errors"
	"log/slog"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// Compile-time check.
var _ domain.AuditLogger = (*AuditLogger)(nil)

const insertAuditEventSQL = `INSERT INTO %s (
    EVENT_ID, EVENT_TIME, INVOKED_BY, INVOKED_BY_ROLE, EVENT_TYPE,
    OBJECT_NAME, SQL_COMMAND, STATUS, MESSAGE
) VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?)`

// AuditLogger appends one row per administrative action attempt to the
// audit log. Writes are best-effort: failures are reported in the returned
// domain.LogResult and never as a Go error or panic.
type AuditLogger struct {
	identity *IdentityResolver
	seq      *SequenceAllocator
	names    warehouse.Names
	logger   *slog.Logger
}

// NewAuditLogger creates a new AuditLogger writing to names.AuditLog with ids
// from names.AuditSequence.
func NewAuditLogger(identity *IdentityResolver, seq *SequenceAllocator, names warehouse.Names, logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		identity: identity,
		seq:      seq,
		names:    names,
		logger:   logger.With("component", "audit-logger"),
	}
}

// LogAuditEvent appends in to the audit log. Nil actor fields are resolved
// from session. On success the result carries the allocated event id; when
// the insert fails after allocation the id is not returned, since no row
// carries it.
func (l *AuditLogger) LogAuditEvent(ctx context.Context, session domain.Session, in domain.AuditEventInput) domain.LogResult {
	if session == nil {
		return l.dropped(in, domain.OutcomeSessionUnavailable, domain.ErrSessionUnavailable)
	}
	if in.EventType == "" {
		return l.dropped(in, domain.OutcomeInvalidInput, domain.ErrValidation("event type is required"))
	}
	if !in.Status.Valid() {
		return l.dropped(in, domain.OutcomeInvalidInput, domain.ErrValidation("invalid status %q", in.Status))
	}

	role := deref(in.InvokedByRole)
	if in.InvokedByRole == nil {
		role = l.identity.CurrentRole(ctx, session)
	}
	user := deref(in.InvokedByUser)
	if in.InvokedByUser == nil {
		user = l.identity.CurrentUser(ctx, session)
	}

	id, err := l.seq.NextValue(ctx, session, l.names.AuditSequence)
	if err != nil {
		if errors.Is(err, domain.ErrSessionUnavailable) {
			return l.dropped(in, domain.OutcomeSessionUnavailable, err)
		}
		return l.dropped(in, domain.OutcomeAllocationFailed, err)
	}

	_, err = session.Query(ctx, insertStatement(insertAuditEventSQL, l.names.AuditLog),
		id, user, role, in.EventType, in.ObjectName, in.SQLCommand, string(in.Status), in.Message)
	if err != nil {
		return l.dropped(in, domain.OutcomeInsertFailed, &domain.InsertError{Table: l.names.AuditLog, ID: id, Err: err})
	}

	LogWritesTotal.WithLabelValues(logAudit, string(domain.OutcomeLogged)).Inc()
	l.logger.Debug("audit event logged", "event_id", id, "event_type", in.EventType, "object", in.ObjectName)
	return domain.Logged(id)
}

func (l *AuditLogger) dropped(in domain.AuditEventInput, outcome domain.LogOutcome, err error) domain.LogResult {
	LogWritesTotal.WithLabelValues(logAudit, string(outcome)).Inc()
	l.logger.Warn("audit event not logged",
		"outcome", outcome, "event_type", in.EventType, "object", in.ObjectName, "error", err)
	return domain.Dropped(outcome, err)
}
