package governance

import (
	"context"
	"fmt"

	"prism-console/internal/domain"
)

// requireAdmin checks that the caller in context has admin privileges.
// Returns AccessDeniedError if not authenticated or not admin.
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

// insertStatement fills the table name into an INSERT template. The name
// comes from warehouse.Names and is already validated.
func insertStatement(tmpl, table string) string {
	return fmt.Sprintf(tmpl, table)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
