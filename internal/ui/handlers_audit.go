package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prism-console/internal/domain"
	"prism-console/internal/service/governance"
)

const (
	auditPageSize = 50
	// maxChartEvents caps how many events feed the page's charts.
	maxChartEvents     = 5000
	maxExportEvents    = 50000
	defaultAuditWindow = 30 * 24 * time.Hour
)

var eventTypeOptions = []string{
	domain.EventCreateDatabase,
	domain.EventCloneDatabase,
	domain.EventDeleteDatabase,
	domain.EventCreateWarehouse,
	domain.EventCreateRole,
	domain.EventProvisionRole,
	domain.EventGrantRole,
	domain.EventRevokeRole,
	domain.EventGrantDatabasePrivilege,
	domain.EventCreateEnvironmentRole,
}

// auditQuery is the filter form as submitted. Dates are YYYY-MM-DD.
type auditQuery struct {
	From       string
	To         string
	EventTypes []string
	Status     string
}

// encode renders the filters as a query string for pagination links.
func (q auditQuery) encode() string {
	v := url.Values{}
	v.Set("from", q.From)
	v.Set("to", q.To)
	for _, t := range q.EventTypes {
		v.Add("event_type", t)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v.Encode()
}

// parseAuditQuery reads the filter form. The range defaults to the last
// thirty days and the end date covers its whole day.
func parseAuditQuery(r *http.Request, now time.Time) (auditQuery, domain.AuditFilter, error) {
	q := r.URL.Query()
	form := auditQuery{
		From:       strings.TrimSpace(q.Get("from")),
		To:         strings.TrimSpace(q.Get("to")),
		EventTypes: q["event_type"],
		Status:     strings.ToUpper(strings.TrimSpace(q.Get("status"))),
	}
	if form.To == "" {
		form.To = now.UTC().Format(time.DateOnly)
	}
	if form.From == "" {
		form.From = now.UTC().Add(-defaultAuditWindow).Format(time.DateOnly)
	}

	from, err := time.Parse(time.DateOnly, form.From)
	if err != nil {
		return form, domain.AuditFilter{}, domain.ErrValidation("invalid start date %q", form.From)
	}
	to, err := time.Parse(time.DateOnly, form.To)
	if err != nil {
		return form, domain.AuditFilter{}, domain.ErrValidation("invalid end date %q", form.To)
	}
	to = to.Add(24*time.Hour - time.Nanosecond)

	filter := domain.AuditFilter{
		From:       &from,
		To:         &to,
		EventTypes: form.EventTypes,
		Page:       pageFromRequest(r, auditPageSize),
	}
	if form.Status != "" {
		s := domain.EventStatus(form.Status)
		if !s.Valid() {
			return form, domain.AuditFilter{}, domain.ErrValidation("invalid status %q", form.Status)
		}
		filter.Status = &s
	}
	return form, filter, nil
}

// AuditLog renders the filterable audit table with its review charts.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	form, filter, err := parseAuditQuery(r, time.Now())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	session, err := h.openSession(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	defer h.closeSession(session)

	events, next, err := h.Audit.ListEvents(r.Context(), session, filter)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	all, err := h.collectEvents(r, session, filter, maxChartEvents)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	sum := governance.Summarize(all)
	figures, err := json.Marshal(governance.SummaryFigures(sum))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	renderHTML(w, http.StatusOK, auditPage(auditPageData{
		Principal: principalFromContext(r.Context()),
		CSRF:      csrfField(r),
		Query:     form,
		Events:    events,
		NextToken: next,
		Summary:   sum,
		Figures:   string(figures),
		Truncated: len(all) >= maxChartEvents,
	}))
}

// AuditExport streams the filtered events as CSV.
func (h *Handler) AuditExport(w http.ResponseWriter, r *http.Request) {
	_, filter, err := parseAuditQuery(r, time.Now())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	session, err := h.openSession(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	defer h.closeSession(session)

	events, err := h.collectEvents(r, session, filter, maxExportEvents)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	name := fmt.Sprintf("audit_log_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := governance.WriteCSV(w, events); err != nil {
		h.Logger.Warn("audit csv export interrupted", "error", err)
	}
}

// collectEvents reads the first limit events matching filter.
func (h *Handler) collectEvents(r *http.Request, session domain.Session, filter domain.AuditFilter, limit int) ([]domain.AuditEvent, error) {
	filter.Page = domain.PageRequest{MaxResults: domain.MaxMaxResults}
	var out []domain.AuditEvent
	for {
		events, next, err := h.Audit.ListEvents(r.Context(), session, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
		if next == "" || len(out) >= limit {
			break
		}
		filter.Page.PageToken = next
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RoleHierarchy renders the live role grant graph next to the recently
// provisioned roles.
func (h *Handler) RoleHierarchy(w http.ResponseWriter, r *http.Request) {
	session, err := h.openSession(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	defer h.closeSession(session)

	var unsupported string
	nodes, err := h.Roles.RoleHierarchy(r.Context(), session)
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		unsupported = validation.Error()
	} else if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	events, next, err := h.Audit.ListRoleHierarchyEvents(r.Context(), session, pageFromRequest(r, auditPageSize))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, roleHierarchyPage(roleHierarchyPageData{
		Principal:   principalFromContext(r.Context()),
		CSRF:        csrfField(r),
		Nodes:       nodes,
		Unsupported: unsupported,
		Events:      events,
		NextToken:   next,
	}))
}
