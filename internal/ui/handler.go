// Package ui serves the server-rendered console pages.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"prism-console/internal/config"
	"prism-console/internal/domain"

	gomponents "maragu.dev/gomponents"
)

// roleHierarchyReader reads the live role grant graph.
type roleHierarchyReader interface {
	RoleHierarchy(ctx context.Context, session domain.Session) ([]domain.RoleHierarchyNode, error)
}

type Handler struct {
	Sessions   domain.SessionProvider
	Roles      roleHierarchyReader
	Audit      domain.AuditReader
	Auth       config.AuthConfig
	Production bool
	Logger     *slog.Logger
}

func NewHandler(
	sessions domain.SessionProvider,
	roles roleHierarchyReader,
	audit domain.AuditReader,
	auth config.AuthConfig,
	production bool,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Sessions:   sessions,
		Roles:      roles,
		Audit:      audit,
		Auth:       auth,
		Production: production,
		Logger:     logger.With("component", "ui"),
	}
}

// openSession opens a warehouse session for the signed-in operator. The
// caller closes it.
func (h *Handler) openSession(r *http.Request) (domain.SessionCloser, error) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		return nil, domain.ErrAccessDenied("authentication required")
	}
	s, err := h.Sessions.OpenSession(r.Context(), p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
	}
	return s, nil
}

func (h *Handler) closeSession(s domain.SessionCloser) {
	if err := s.Close(); err != nil {
		h.Logger.Debug("close session", "error", err)
	}
}

func pageFromRequest(r *http.Request, defaultPageSize int) domain.PageRequest {
	maxResults := defaultPageSize
	if maxResults <= 0 {
		maxResults = 25
	}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			maxResults = parsed
		}
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 200 {
		maxResults = 200
	}
	return domain.PageRequest{
		MaxResults: maxResults,
		PageToken:  r.URL.Query().Get("page_token"),
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func principalFromContext(ctx context.Context) domain.ContextPrincipal {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{Name: "unknown", Type: "user"}
	}
	return p
}

func principalLabel(p domain.ContextPrincipal) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "unknown"
	}
	if p.Role != "" {
		return name + " (" + p.Role + ")"
	}
	return name
}
