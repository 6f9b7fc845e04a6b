package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"prism-console/internal/chart"
	"prism-console/internal/domain"
	"prism-console/internal/service/governance"
)

// maxExportEvents caps how many events the CSV export and summary read.
const maxExportEvents = 50000

type auditEventResponse struct {
	EventID       int64     `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	InvokedBy     string    `json:"invoked_by"`
	InvokedByRole string    `json:"invoked_by_role"`
	EventType     string    `json:"event_type"`
	ObjectName    string    `json:"object_name"`
	SQLCommand    string    `json:"sql_command"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
}

type roleHierarchyEventResponse struct {
	LogID                    int64     `json:"log_id"`
	EventTime                time.Time `json:"event_time"`
	AuditEventID             *int64    `json:"audit_event_id"`
	InvokedBy                string    `json:"invoked_by"`
	EnvironmentName          string    `json:"environment_name"`
	CreatedRoleName          string    `json:"created_role_name"`
	CreatedRoleType          string    `json:"created_role_type"`
	MappedDatabaseRole       string    `json:"mapped_database_role"`
	ParentAccountRole        string    `json:"parent_account_role"`
	SQLCommandCreateRole     string    `json:"sql_command_create_role"`
	SQLCommandGrantDBRole    string    `json:"sql_command_grant_db_role"`
	SQLCommandGrantOwnership string    `json:"sql_command_grant_ownership"`
	Status                   string    `json:"status"`
	Message                  string    `json:"message"`
}

type listResponse[T any] struct {
	Data          []T    `json:"data"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

type auditSummaryResponse struct {
	governance.AuditSummary
	Figures map[string]*chart.Figure `json:"figures"`
}

func auditEventToAPI(e domain.AuditEvent) auditEventResponse {
	return auditEventResponse{
		EventID:       e.EventID,
		EventTime:     e.EventTime,
		InvokedBy:     e.InvokedBy,
		InvokedByRole: e.InvokedByRole,
		EventType:     e.EventType,
		ObjectName:    e.ObjectName,
		SQLCommand:    e.SQLCommand,
		Status:        string(e.Status),
		Message:       e.Message,
	}
}

func roleHierarchyEventToAPI(e domain.RoleHierarchyEvent) roleHierarchyEventResponse {
	return roleHierarchyEventResponse{
		LogID:                    e.LogID,
		EventTime:                e.EventTime,
		AuditEventID:             e.AuditEventID,
		InvokedBy:                e.InvokedBy,
		EnvironmentName:          e.EnvironmentName,
		CreatedRoleName:          e.CreatedRoleName,
		CreatedRoleType:          string(e.CreatedRoleType),
		MappedDatabaseRole:       e.MappedDatabaseRole,
		ParentAccountRole:        e.ParentAccountRole,
		SQLCommandCreateRole:     e.SQLCommandCreateRole,
		SQLCommandGrantDBRole:    e.SQLCommandGrantDBRole,
		SQLCommandGrantOwnership: e.SQLCommandGrantOwnership,
		Status:                   string(e.Status),
		Message:                  e.Message,
	}
}

// auditFilterFromQuery reads from, to, event_type, status, invoked_by and
// the page parameters.
func auditFilterFromQuery(r *http.Request) (domain.AuditFilter, error) {
	q := r.URL.Query()
	page, err := pageFromQuery(r)
	if err != nil {
		return domain.AuditFilter{}, err
	}
	f := domain.AuditFilter{EventTypes: multiValue(r, "event_type"), Page: page}
	if raw := q.Get("from"); raw != "" {
		t, err := parseTime(raw, false)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := parseTime(raw, true)
		if err != nil {
			return f, err
		}
		f.To = &t
	}
	if raw := q.Get("status"); raw != "" {
		s := domain.EventStatus(strings.ToUpper(raw))
		f.Status = &s
	}
	if raw := q.Get("invoked_by"); raw != "" {
		f.InvokedBy = &raw
	}
	return f, nil
}

// collectEvents reads every page of filter up to maxExportEvents.
func (h *Handler) collectEvents(r *http.Request, session domain.Session, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	filter.Page = domain.PageRequest{MaxResults: domain.MaxMaxResults}
	var out []domain.AuditEvent
	for {
		events, next, err := h.audit.ListEvents(r.Context(), session, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
		if next == "" || len(out) >= maxExportEvents {
			break
		}
		filter.Page.PageToken = next
	}
	if len(out) > maxExportEvents {
		out = out[:maxExportEvents]
	}
	return out, nil
}

// ListAuditEvents handles GET /v1/audit/events.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	events, next, err := h.audit.ListEvents(r.Context(), session, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventToAPI(e))
	}
	writeJSON(w, http.StatusOK, listResponse[auditEventResponse]{Data: out, NextPageToken: next})
}

// ExportAuditEvents handles GET /v1/audit/events.csv.
func (h *Handler) ExportAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	events, err := h.collectEvents(r, session, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("audit_log_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := governance.WriteCSV(w, events); err != nil {
		h.logger.Warn("audit csv export interrupted", "error", err)
	}
}

// AuditSummary handles GET /v1/audit/summary.
func (h *Handler) AuditSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	events, err := h.collectEvents(r, session, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sum := governance.Summarize(events)
	writeJSON(w, http.StatusOK, auditSummaryResponse{AuditSummary: sum, Figures: governance.SummaryFigures(sum)})
}

// ListRoleHierarchyEvents handles GET /v1/audit/role-hierarchy.
func (h *Handler) ListRoleHierarchyEvents(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	events, next, err := h.audit.ListRoleHierarchyEvents(r.Context(), session, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]roleHierarchyEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, roleHierarchyEventToAPI(e))
	}
	writeJSON(w, http.StatusOK, listResponse[roleHierarchyEventResponse]{Data: out, NextPageToken: next})
}
