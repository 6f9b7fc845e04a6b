// Package admin executes administrative actions against the warehouse:
// databases, warehouses, roles, grants and environment roles. Every action
// is attempted on the caller's session and recorded in the audit log,
// whether it succeeds or fails.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
)

// ActionResult reports one executed administrative action and the fate of
// its audit record. An audit failure never changes Status.
type ActionResult struct {
	Status       domain.EventStatus `json:"status"`
	Command      string             `json:"command"`
	Message      string             `json:"message"`
	AuditEventID *int64             `json:"audit_event_id"`
	AuditOutcome domain.LogOutcome  `json:"audit_outcome"`
}

// Failed reports whether the warehouse rejected the action.
func (r ActionResult) Failed() bool { return r.Status == domain.StatusFailed }

// BatchResult aggregates actions that run one statement per item. Status is
// FAILED when any item failed.
type BatchResult struct {
	Status  domain.EventStatus `json:"status"`
	Results []ActionResult     `json:"results"`
}

// Failed reports whether any item failed.
func (b BatchResult) Failed() bool { return b.Status == domain.StatusFailed }

func newBatch(results []ActionResult) *BatchResult {
	b := &BatchResult{Status: domain.StatusSuccess, Results: results}
	for _, r := range results {
		if r.Failed() {
			b.Status = domain.StatusFailed
			break
		}
	}
	return b
}

// ListCache holds warehouse listings that successful actions make stale.
type ListCache interface {
	InvalidateDatabases()
	InvalidateRoles()
}

// Service runs administrative actions. Every action requires an admin
// principal; statements render with stmts, the warehouse's literal syntax.
type Service struct {
	stmts     ddl.Builder
	audit     domain.AuditLogger
	hierarchy domain.RoleHierarchyLogger
	envs      domain.EnvironmentRepository
	lists     ListCache
	logger    *slog.Logger
}

// NewService creates a new admin Service.
func NewService(stmts ddl.Builder, audit domain.AuditLogger, hierarchy domain.RoleHierarchyLogger, envs domain.EnvironmentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stmts:     stmts,
		audit:     audit,
		hierarchy: hierarchy,
		envs:      envs,
		logger:    logger.With("component", "admin"),
	}
}

// SetListCache registers the listing cache cleared after successful actions.
func (s *Service) SetListCache(c ListCache) {
	s.lists = c
}

// requireAdmin rejects callers that are not admin principals. It runs before
// any statement is built, executed or logged.
func requireAdmin(ctx context.Context) error {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ErrAccessDenied("authentication required")
	}
	if !p.IsAdmin {
		return domain.ErrAccessDenied("admin privileges required")
	}
	return nil
}

// run executes stmts in order and stops at the first failure. It returns
// the statements that were attempted.
func run(ctx context.Context, session domain.Session, stmts ...string) ([]string, error) {
	attempted := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		attempted = append(attempted, stmt)
		if session == nil {
			return attempted, &domain.ActionError{Command: stmt, Err: domain.ErrSessionUnavailable}
		}
		if _, err := session.Query(ctx, stmt); err != nil {
			return attempted, &domain.ActionError{Command: stmt, Err: err}
		}
	}
	return attempted, nil
}

// execute runs stmts and audits the attempt as one event of eventType.
func (s *Service) execute(ctx context.Context, session domain.Session, eventType, object, success string, stmts ...string) ActionResult {
	attempted, err := run(ctx, session, stmts...)
	return s.record(ctx, session, eventType, object, success, attempted, err)
}

func (s *Service) record(ctx context.Context, session domain.Session, eventType, object, success string, attempted []string, err error) ActionResult {
	res := ActionResult{
		Status:  domain.StatusSuccess,
		Command: strings.Join(attempted, ";\n"),
		Message: success,
	}
	if err != nil {
		res.Status = domain.StatusFailed
		res.Message = causeMessage(err)
		s.logger.Warn("action failed", "event_type", eventType, "object", object, "error", err)
	}
	ActionsTotal.WithLabelValues(eventType, string(res.Status)).Inc()

	user, role := actor(ctx)
	logged := s.audit.LogAuditEvent(ctx, session, domain.AuditEventInput{
		EventType:     eventType,
		ObjectName:    object,
		SQLCommand:    res.Command,
		Status:        res.Status,
		Message:       messageFor(res),
		InvokedByUser: user,
		InvokedByRole: role,
	})
	res.AuditEventID = logged.ID
	res.AuditOutcome = logged.Outcome
	return res
}

// messageFor is the audit message: empty on success, the driver error on failure.
func messageFor(res ActionResult) string {
	if res.Failed() {
		return res.Message
	}
	return ""
}

// causeMessage unwraps an ActionError to the warehouse's own message.
func causeMessage(err error) string {
	var ae *domain.ActionError
	if errors.As(err, &ae) && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}

// actor is the operator recorded on audit events: the authenticated
// principal, not the warehouse login the session runs as. A nil field is
// resolved from the session.
func actor(ctx context.Context) (user, role *string) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil
	}
	if p.Name != "" {
		user = &p.Name
	}
	if p.Role != "" {
		role = &p.Role
	}
	return user, role
}

// invokedBy names the operator for role hierarchy events, matching the
// audit event's user.
func invokedBy(ctx context.Context) string {
	if user, _ := actor(ctx); user != nil {
		return *user
	}
	return domain.UnknownUser
}

func anySucceeded(results ...ActionResult) bool {
	for _, r := range results {
		if !r.Failed() {
			return true
		}
	}
	return false
}

func (s *Service) databasesChanged(results ...ActionResult) {
	if s.lists != nil && anySucceeded(results...) {
		s.lists.InvalidateDatabases()
	}
}

func (s *Service) rolesChanged(results ...ActionResult) {
	if s.lists != nil && anySucceeded(results...) {
		s.lists.InvalidateRoles()
	}
}

func validation(err error) error {
	return domain.ErrValidation("%s", err.Error())
}
