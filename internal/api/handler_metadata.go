package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListDatabases handles GET /v1/metadata/databases.
func (h *Handler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	dbs, err := h.metadata.ListDatabases(r.Context(), session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": dbs})
}

// ListSchemas handles GET /v1/metadata/databases/{db}/schemas.
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	schemas, err := h.metadata.ListSchemas(r.Context(), session, chi.URLParam(r, "db"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": schemas})
}

// ListObjects handles GET /v1/metadata/databases/{db}/schemas/{schema}/objects.
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	objects, err := h.metadata.ListObjects(r.Context(), session, chi.URLParam(r, "db"), chi.URLParam(r, "schema"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": objects})
}

// DescribeObject handles GET /v1/metadata/databases/{db}/schemas/{schema}/objects/{object}?type=VIEW.
func (h *Handler) DescribeObject(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	detail, err := h.metadata.DescribeObject(r.Context(), session,
		chi.URLParam(r, "db"), chi.URLParam(r, "schema"), chi.URLParam(r, "object"), r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListRoles handles GET /v1/roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	roles, err := h.metadata.ListRoles(r.Context(), session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": roles})
}

// RoleHierarchy handles GET /v1/roles/hierarchy.
func (h *Handler) RoleHierarchy(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	nodes, err := h.metadata.RoleHierarchy(r.Context(), session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": nodes})
}
