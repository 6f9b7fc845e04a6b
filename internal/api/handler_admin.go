package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"prism-console/internal/ddl"
	"prism-console/internal/service/admin"
)

type cloneDatabaseRequest struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

type createWarehouseRequest struct {
	Name          string `json:"name"`
	Size          string `json:"size"`
	AutoSuspend   *int   `json:"auto_suspend,omitempty"`
	AutoResume    *bool  `json:"auto_resume,omitempty"`
	ScalingPolicy string `json:"scaling_policy,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

type rolesRequest struct {
	Roles []string `json:"roles"`
}

type databasePrivilegesRequest struct {
	Database   string   `json:"database"`
	Privileges []string `json:"privileges"`
}

type environmentRolesRequest struct {
	Prefix string `json:"prefix"`
}

type environmentResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// writeAction answers 201 for an executed action, 422 when the warehouse
// rejected it. The audit outcome never changes the status.
func (h *Handler) writeAction(w http.ResponseWriter, r *http.Request, res *admin.ActionResult, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Failed() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (h *Handler) writeBatch(w http.ResponseWriter, r *http.Request, res *admin.BatchResult, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Failed() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// CreateDatabase handles POST /v1/databases.
func (h *Handler) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	var req admin.CreateDatabaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.CreateDatabase(r.Context(), session, req)
	h.writeAction(w, r, res, err)
}

// CloneDatabase handles POST /v1/databases/{name}/clone.
func (h *Handler) CloneDatabase(w http.ResponseWriter, r *http.Request) {
	var req cloneDatabaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.CloneDatabase(r.Context(), session, chi.URLParam(r, "name"), req.Name, req.Comment)
	h.writeAction(w, r, res, err)
}

// DeleteDatabase handles DELETE /v1/databases/{name}?confirm=true.
func (h *Handler) DeleteDatabase(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.DeleteDatabase(r.Context(), session, chi.URLParam(r, "name"), confirm)
	if err == nil && !res.Failed() {
		writeJSON(w, http.StatusOK, res)
		return
	}
	h.writeAction(w, r, res, err)
}

// CreateWarehouse handles POST /v1/warehouses. Auto-suspend defaults to
// 300 seconds and auto-resume to true.
func (h *Handler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req createWarehouseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	spec := ddl.WarehouseSpec{
		Name:          req.Name,
		Size:          req.Size,
		AutoSuspend:   300,
		AutoResume:    true,
		ScalingPolicy: req.ScalingPolicy,
		Comment:       req.Comment,
	}
	if req.AutoSuspend != nil {
		spec.AutoSuspend = *req.AutoSuspend
	}
	if req.AutoResume != nil {
		spec.AutoResume = *req.AutoResume
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.CreateWarehouse(r.Context(), session, spec)
	h.writeAction(w, r, res, err)
}

// CreateRole handles POST /v1/roles.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req admin.CreateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.CreateRole(r.Context(), session, req)
	h.writeAction(w, r, res, err)
}

// ProvisionRole handles POST /v1/roles/provision.
func (h *Handler) ProvisionRole(w http.ResponseWriter, r *http.Request) {
	var req admin.ProvisionRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.ProvisionRole(r.Context(), session, req)
	h.writeAction(w, r, res, err)
}

// GrantRoles handles POST /v1/roles/{name}/grants.
func (h *Handler) GrantRoles(w http.ResponseWriter, r *http.Request) {
	var req rolesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.GrantRoles(r.Context(), session, chi.URLParam(r, "name"), req.Roles)
	h.writeBatch(w, r, res, err)
}

// RevokeRoles handles DELETE /v1/roles/{name}/grants.
func (h *Handler) RevokeRoles(w http.ResponseWriter, r *http.Request) {
	var req rolesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.RevokeRoles(r.Context(), session, chi.URLParam(r, "name"), req.Roles)
	h.writeBatch(w, r, res, err)
}

// GrantDatabasePrivileges handles POST /v1/roles/{name}/database-privileges.
func (h *Handler) GrantDatabasePrivileges(w http.ResponseWriter, r *http.Request) {
	var req databasePrivilegesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.GrantDatabasePrivileges(r.Context(), session, chi.URLParam(r, "name"), req.Database, req.Privileges)
	h.writeBatch(w, r, res, err)
}

// CreateEnvironmentRoles handles POST /v1/environments/{env}/roles.
func (h *Handler) CreateEnvironmentRoles(w http.ResponseWriter, r *http.Request) {
	var req environmentRolesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.admin.CreateEnvironmentRoles(r.Context(), session, chi.URLParam(r, "env"), req.Prefix)
	h.writeBatch(w, r, res, err)
}

// ListEnvironments handles GET /v1/environments.
func (h *Handler) ListEnvironments(w http.ResponseWriter, r *http.Request) {
	envs, err := h.envs.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]environmentResponse, 0, len(envs))
	for _, e := range envs {
		out = append(out, environmentResponse{Name: e.Name, Description: e.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}
