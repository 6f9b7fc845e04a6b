package governance

import (
	"context"
	"fmt"
	"strings"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// Compile-time check.
var _ domain.AuditReader = (*AuditQuery)(nil)

// AuditQuery reads the audit and role hierarchy logs for review.
type AuditQuery struct {
	names warehouse.Names
}

// NewAuditQuery creates a new AuditQuery.
func NewAuditQuery(names warehouse.Names) *AuditQuery {
	return &AuditQuery{names: names}
}

// ListEvents returns audit events matching filter, newest first. Requires
// admin privileges.
func (q *AuditQuery) ListEvents(ctx context.Context, session domain.Session, filter domain.AuditFilter) ([]domain.AuditEvent, string, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, "", err
	}
	if session == nil {
		return nil, "", domain.ErrSessionUnavailable
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, "", domain.ErrValidation("invalid status %q", *filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, "", domain.ErrValidation("end of range is before its start")
	}

	var where []string
	var args []any
	if filter.From != nil {
		where = append(where, "EVENT_TIME >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "EVENT_TIME <= ?")
		args = append(args, *filter.To)
	}
	if len(filter.EventTypes) > 0 {
		where = append(where, "EVENT_TYPE IN ("+placeholders(len(filter.EventTypes))+")")
		for _, et := range filter.EventTypes {
			args = append(args, et)
		}
	}
	if filter.Status != nil {
		where = append(where, "STATUS = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.InvokedBy != nil {
		where = append(where, "INVOKED_BY = ?")
		args = append(args, *filter.InvokedBy)
	}

	stmt := `SELECT EVENT_ID, EVENT_TIME, INVOKED_BY, INVOKED_BY_ROLE, EVENT_TYPE,
    OBJECT_NAME, SQL_COMMAND, STATUS, MESSAGE
FROM ` + q.names.AuditLog
	if len(where) > 0 {
		stmt += "\nWHERE " + strings.Join(where, " AND ")
	}
	offset, limit := filter.Page.Offset(), filter.Page.Limit()
	stmt += "\nORDER BY EVENT_TIME DESC, EVENT_ID DESC" + pageClause(offset, limit)

	rows, err := session.Query(ctx, stmt, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list audit events: %w", err)
	}

	rows, next := domain.TrimPage(filter.Page, rows)
	events := make([]domain.AuditEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, auditEventFromRow(r))
	}
	return events, next, nil
}

// ListRoleHierarchyEvents returns role hierarchy events, newest first.
// Requires admin privileges.
func (q *AuditQuery) ListRoleHierarchyEvents(ctx context.Context, session domain.Session, page domain.PageRequest) ([]domain.RoleHierarchyEvent, string, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, "", err
	}
	if session == nil {
		return nil, "", domain.ErrSessionUnavailable
	}

	offset, limit := page.Offset(), page.Limit()
	stmt := `SELECT LOG_ID, EVENT_TIME, AUDIT_EVENT_ID, INVOKED_BY, ENVIRONMENT_NAME,
    CREATED_ROLE_NAME, CREATED_ROLE_TYPE, MAPPED_DATABASE_ROLE, PARENT_ACCOUNT_ROLE,
    SQL_COMMAND_CREATE_ROLE, SQL_COMMAND_GRANT_DB_ROLE, SQL_COMMAND_GRANT_OWNERSHIP,
    STATUS, MESSAGE
FROM ` + q.names.RoleHierarchyLog + `
ORDER BY EVENT_TIME DESC, LOG_ID DESC` + pageClause(offset, limit)

	rows, err := session.Query(ctx, stmt)
	if err != nil {
		return nil, "", fmt.Errorf("list role hierarchy events: %w", err)
	}

	rows, next := domain.TrimPage(page, rows)
	events := make([]domain.RoleHierarchyEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, roleHierarchyEventFromRow(r))
	}
	return events, next, nil
}

// pageClause fetches one row beyond the page to detect a following page.
func pageClause(offset, limit int) string {
	return fmt.Sprintf("\nLIMIT %d OFFSET %d", limit+1, offset)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func auditEventFromRow(r domain.Row) domain.AuditEvent {
	id, _ := r.Int64("EVENT_ID")
	return domain.AuditEvent{
		EventID:       id,
		EventTime:     r.Time("EVENT_TIME"),
		InvokedBy:     r.String("INVOKED_BY"),
		InvokedByRole: r.String("INVOKED_BY_ROLE"),
		EventType:     r.String("EVENT_TYPE"),
		ObjectName:    r.String("OBJECT_NAME"),
		SQLCommand:    r.String("SQL_COMMAND"),
		Status:        domain.EventStatus(r.String("STATUS")),
		Message:       r.String("MESSAGE"),
	}
}

func roleHierarchyEventFromRow(r domain.Row) domain.RoleHierarchyEvent {
	id, _ := r.Int64("LOG_ID")
	e := domain.RoleHierarchyEvent{
		LogID:                    id,
		EventTime:                r.Time("EVENT_TIME"),
		InvokedBy:                r.String("INVOKED_BY"),
		EnvironmentName:          r.String("ENVIRONMENT_NAME"),
		CreatedRoleName:          r.String("CREATED_ROLE_NAME"),
		CreatedRoleType:          domain.RoleType(r.String("CREATED_ROLE_TYPE")),
		MappedDatabaseRole:       r.String("MAPPED_DATABASE_ROLE"),
		ParentAccountRole:        r.String("PARENT_ACCOUNT_ROLE"),
		SQLCommandCreateRole:     r.String("SQL_COMMAND_CREATE_ROLE"),
		SQLCommandGrantDBRole:    r.String("SQL_COMMAND_GRANT_DB_ROLE"),
		SQLCommandGrantOwnership: r.String("SQL_COMMAND_GRANT_OWNERSHIP"),
		Status:                   domain.EventStatus(r.String("STATUS")),
		Message:                  r.String("MESSAGE"),
	}
	if auditID, ok := r.Int64("AUDIT_EVENT_ID"); ok {
		e.AuditEventID = &auditID
	}
	return e
}
