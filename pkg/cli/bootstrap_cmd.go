package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"prism-console/internal/app"
	"prism-console/internal/warehouse"
)

func newBootstrapCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the audit schema, sequences and log tables in the warehouse",
		Long: "Creates the audit schema, the two event-id sequences and the two log tables\n" +
			"if they do not exist. Safe to run repeatedly.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := rt.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck

			names, err := warehouse.NewNames(client.Dialect(), rt.cfg.Warehouse.AuditDatabase, rt.cfg.Warehouse.AuditSchema)
			if err != nil {
				return err
			}
			if err := app.BootstrapAuditObjects(ctx, client, names, rt.logger); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), names)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Audit log:          %s (sequence %s)\n", names.AuditLog, names.AuditSequence)
			_, _ = fmt.Fprintf(out, "Role hierarchy log: %s (sequence %s)\n", names.RoleHierarchyLog, names.RoleHierarchySequence)
			return nil
		},
	}
}
