package warehouse

import (
	"context"
	"fmt"

	"prism-console/internal/domain"
)

// Bootstrap creates the audit schema, both sequences and both log tables
// if they do not already exist.
func Bootstrap(ctx context.Context, session domain.Session, d Dialect, n Names) error {
	if session == nil {
		return domain.ErrSessionUnavailable
	}
	for _, stmt := range d.BootstrapSQL(n) {
		if _, err := session.Query(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap audit objects: %w", err)
		}
	}
	return nil
}
