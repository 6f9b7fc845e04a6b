package governance

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// adminCtx returns a context with an admin principal for testing.
func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "admin-user", IsAdmin: true, Type: "user",
	})
}

// nonAdminCtx returns a context with a non-admin principal for testing.
func nonAdminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "regular-user", IsAdmin: false, Type: "user",
	})
}

func snowflakeNames() warehouse.Names {
	n, err := warehouse.NewNames(warehouse.Snowflake, warehouse.DefaultAuditDatabase, warehouse.DefaultAuditSchema)
	if err != nil {
		panic(err)
	}
	return n
}

// newLoggers wires both loggers against the Snowflake dialect.
func newLoggers() (*AuditLogger, *RoleHierarchyLogger) {
	logger := discardLogger()
	names := snowflakeNames()
	identity := NewIdentityResolver(warehouse.Snowflake, logger)
	seq := NewSequenceAllocator(warehouse.Snowflake, logger)
	return NewAuditLogger(identity, seq, names, logger), NewRoleHierarchyLogger(seq, names, logger)
}
