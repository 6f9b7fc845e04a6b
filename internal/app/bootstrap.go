package app

import (
	"context"
	"fmt"
	"log/slog"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// bootstrapPrincipal is the identity the bootstrap session runs as.
var bootstrapPrincipal = domain.ContextPrincipal{Name: "prism-bootstrap", IsAdmin: true, Type: "user"}

// BootstrapAuditObjects creates the audit schema, sequences and log tables
// named by names if they are missing.
func BootstrapAuditObjects(ctx context.Context, client *warehouse.Client, names warehouse.Names, logger *slog.Logger) error {
	session, err := client.Session(ctx, bootstrapPrincipal)
	if err != nil {
		return fmt.Errorf("bootstrap session: %w", err)
	}
	defer session.Close() //nolint:errcheck

	if err := warehouse.Bootstrap(ctx, session, client.Dialect(), names); err != nil {
		return err
	}
	logger.Info("audit log objects ready",
		"driver", client.Dialect().Name(),
		"audit_log", names.AuditLog,
		"role_hierarchy_log", names.RoleHierarchyLog)
	return nil
}
