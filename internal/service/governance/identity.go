// Package governance implements the audit trail: identity resolution,
// sequence allocation, the append-only audit and role hierarchy logs and
// their review queries.
package governance

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// IdentityResolver reports who is acting on a warehouse session. It never
// fails: any lookup problem yields domain.UnknownUser or domain.UnknownRole.
type IdentityResolver struct {
	dialect warehouse.Dialect
	logger  *slog.Logger
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(dialect warehouse.Dialect, logger *slog.Logger) *IdentityResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityResolver{dialect: dialect, logger: logger.With("component", "identity-resolver")}
}

// CurrentUser returns the session's user or domain.UnknownUser.
func (r *IdentityResolver) CurrentUser(ctx context.Context, session domain.Session) string {
	return r.lookup(ctx, session, r.dialect.CurrentUserSQL(), "user", domain.UnknownUser)
}

// CurrentRole returns the session's role or domain.UnknownRole.
func (r *IdentityResolver) CurrentRole(ctx context.Context, session domain.Session) string {
	return r.lookup(ctx, session, r.dialect.CurrentRoleSQL(), "role", domain.UnknownRole)
}

func (r *IdentityResolver) lookup(ctx context.Context, session domain.Session, stmt, kind, fallback string) string {
	name, err := r.query(ctx, session, stmt)
	if err != nil {
		r.logger.Debug("identity lookup fell back to sentinel", "kind", kind, "error", err)
		IdentityFallbackTotal.WithLabelValues(kind).Inc()
		return fallback
	}
	return name
}

var errNoIdentity = errors.New("no identity returned")

func (r *IdentityResolver) query(ctx context.Context, session domain.Session, stmt string) (string, error) {
	if session == nil {
		return "", domain.ErrSessionUnavailable
	}
	rows, err := session.Query(ctx, stmt)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", errNoIdentity
	}
	name := strings.TrimSpace(rows[0].String("NAME"))
	if name == "" {
		return "", errNoIdentity
	}
	return name, nil
}
