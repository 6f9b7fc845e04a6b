package ui

import (
	"errors"
	"net/http"

	"prism-console/internal/domain"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, overviewPage(principalFromContext(r.Context()), csrfField(r), []overviewCardData{
		{Title: "Audit Log", Description: "Review administrative actions with distributions by type, status, user and role.", Href: "/ui/audit", LinkLabel: "Open audit log ->"},
		{Title: "Role Hierarchy", Description: "Inspect role-to-role grants and recently provisioned roles.", Href: "/ui/roles/hierarchy", LinkLabel: "Open role hierarchy ->"},
		{Title: "API", Description: "Administrative actions are available under /v1 with a bearer token or API key.", Href: "/healthz", LinkLabel: "Check health ->"},
	}))
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &accessDenied) {
		status = http.StatusForbidden
		title = "Access Denied"
		message = accessDenied.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	} else if errors.As(err, &conflict) {
		status = http.StatusConflict
		title = "Conflict"
		message = conflict.Error()
	} else if errors.Is(err, domain.ErrSessionUnavailable) {
		status = http.StatusServiceUnavailable
		title = "Warehouse Unavailable"
		message = err.Error()
	} else {
		h.Logger.Error("page failed", "path", r.URL.Path, "error", err)
	}

	renderHTML(w, status, errorPage(title, message))
}
