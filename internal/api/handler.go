// Package api provides the JSON and CSV HTTP API of the admin console.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
	"prism-console/internal/service/admin"
	"prism-console/internal/service/cost"
)

// adminService defines the administrative actions used by the API handler.
type adminService interface {
	CreateDatabase(ctx context.Context, session domain.Session, req admin.CreateDatabaseRequest) (*admin.ActionResult, error)
	CloneDatabase(ctx context.Context, session domain.Session, source, name, comment string) (*admin.ActionResult, error)
	DeleteDatabase(ctx context.Context, session domain.Session, name string, confirm bool) (*admin.ActionResult, error)
	CreateWarehouse(ctx context.Context, session domain.Session, spec ddl.WarehouseSpec) (*admin.ActionResult, error)
	CreateRole(ctx context.Context, session domain.Session, req admin.CreateRoleRequest) (*admin.ActionResult, error)
	ProvisionRole(ctx context.Context, session domain.Session, req admin.ProvisionRoleRequest) (*admin.ActionResult, error)
	GrantRoles(ctx context.Context, session domain.Session, target string, roles []string) (*admin.BatchResult, error)
	RevokeRoles(ctx context.Context, session domain.Session, target string, roles []string) (*admin.BatchResult, error)
	GrantDatabasePrivileges(ctx context.Context, session domain.Session, role, database string, privileges []string) (*admin.BatchResult, error)
	CreateEnvironmentRoles(ctx context.Context, session domain.Session, environment, prefix string) (*admin.BatchResult, error)
}

// metadataService defines the warehouse browsing operations used by the API handler.
type metadataService interface {
	ListDatabases(ctx context.Context, session domain.Session) ([]domain.WarehouseDatabase, error)
	ListSchemas(ctx context.Context, session domain.Session, database string) ([]domain.WarehouseSchema, error)
	ListObjects(ctx context.Context, session domain.Session, database, schema string) ([]domain.WarehouseObject, error)
	DescribeObject(ctx context.Context, session domain.Session, database, schema, object, objectType string) (*domain.ObjectDetail, error)
	ListRoles(ctx context.Context, session domain.Session) ([]domain.AccountRole, error)
	RoleHierarchy(ctx context.Context, session domain.Session) ([]domain.RoleHierarchyNode, error)
}

// costService defines the usage reporting used by the API handler.
type costService interface {
	Report(ctx context.Context, from, to time.Time) (*cost.Report, error)
}

// Handler serves the /v1 API. Every request that touches the warehouse gets
// one session pinned for its whole lifetime.
type Handler struct {
	sessions domain.SessionProvider
	admin    adminService
	metadata metadataService
	audit    domain.AuditReader
	cost     costService
	envs     domain.EnvironmentRepository
	apiKeys  apiKeyService
	logger   *slog.Logger
}

// NewHandler creates a new Handler with all required service dependencies.
func NewHandler(
	sessions domain.SessionProvider,
	adminSvc adminService,
	metadataSvc metadataService,
	audit domain.AuditReader,
	costSvc costService,
	envs domain.EnvironmentRepository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions: sessions,
		admin:    adminSvc,
		metadata: metadataSvc,
		audit:    audit,
		cost:     costSvc,
		envs:     envs,
		logger:   logger.With("component", "api"),
	}
}

// Routes registers the API routes on r. r must already authenticate.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.pinSession)

		r.Post("/databases", h.CreateDatabase)
		r.Post("/databases/{name}/clone", h.CloneDatabase)
		r.Delete("/databases/{name}", h.DeleteDatabase)
		r.Post("/warehouses", h.CreateWarehouse)

		r.Get("/roles", h.ListRoles)
		r.Post("/roles", h.CreateRole)
		r.Get("/roles/hierarchy", h.RoleHierarchy)
		r.Post("/roles/provision", h.ProvisionRole)
		r.Post("/roles/{name}/grants", h.GrantRoles)
		r.Delete("/roles/{name}/grants", h.RevokeRoles)
		r.Post("/roles/{name}/database-privileges", h.GrantDatabasePrivileges)
		r.Post("/environments/{env}/roles", h.CreateEnvironmentRoles)

		r.Get("/audit/events", h.ListAuditEvents)
		r.Get("/audit/events.csv", h.ExportAuditEvents)
		r.Get("/audit/summary", h.AuditSummary)
		r.Get("/audit/role-hierarchy", h.ListRoleHierarchyEvents)

		r.Get("/metadata/databases", h.ListDatabases)
		r.Get("/metadata/databases/{db}/schemas", h.ListSchemas)
		r.Get("/metadata/databases/{db}/schemas/{schema}/objects", h.ListObjects)
		r.Get("/metadata/databases/{db}/schemas/{schema}/objects/{object}", h.DescribeObject)
	})

	r.Get("/environments", h.ListEnvironments)
	r.Get("/cost", h.CostReport)
	if h.apiKeys != nil {
		r.Post("/api-keys", h.CreateAPIKey)
	}
}

// === Session pinning ===

type sessionKey struct{}

// lazySession opens the operator's session on first use and closes it when
// the request ends.
type lazySession struct {
	once    sync.Once
	open    func() (domain.SessionCloser, error)
	session domain.SessionCloser
	err     error
}

func (l *lazySession) get() (domain.Session, error) {
	l.once.Do(func() { l.session, l.err = l.open() })
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

func (h *Handler) pinSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		lazy := &lazySession{open: func() (domain.SessionCloser, error) {
			p, ok := domain.PrincipalFromContext(ctx)
			if !ok {
				return nil, domain.ErrAccessDenied("authentication required")
			}
			s, err := h.sessions.OpenSession(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
			}
			return s, nil
		}}
		defer func() {
			if lazy.session != nil {
				if err := lazy.session.Close(); err != nil {
					h.logger.Debug("close session", "error", err)
				}
			}
		}()
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey{}, lazy)))
	})
}

// session returns the request's pinned session, writing the error response
// when none can be opened.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	lazy, ok := r.Context().Value(sessionKey{}).(*lazySession)
	if !ok {
		h.writeError(w, r, domain.ErrSessionUnavailable)
		return nil, false
	}
	s, err := lazy.get()
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return s, true
}

// === Request helpers ===

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// parseTime accepts RFC 3339 timestamps and plain dates. A date as the end
// of a range covers the whole day.
func parseTime(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, domain.ErrValidation("invalid time %q: use RFC 3339 or YYYY-MM-DD", raw)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d, nil
}

func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	p := domain.PageRequest{PageToken: q.Get("page_token")}
	if raw := q.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, domain.ErrValidation("max_results must be a positive integer")
		}
		p.MaxResults = n
	}
	return p, p.Validate()
}

// multiValue reads a repeated or comma-separated query parameter.
func multiValue(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
