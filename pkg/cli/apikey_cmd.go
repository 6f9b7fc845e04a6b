package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prism-console/internal/db/repository"
	"prism-console/internal/domain"
	"prism-console/internal/service/apikey"
)

// cliPrincipal is the caller recorded for keys minted from the command line.
var cliPrincipal = domain.ContextPrincipal{Name: "prism-cli", IsAdmin: true, Type: "user"}

func newAPIKeyCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage operator API keys",
	}
	cmd.AddCommand(newAPIKeyCreateCmd(rt))
	return cmd
}

func newAPIKeyCreateCmd(rt *runtime) *cobra.Command {
	var (
		principal string
		name      string
		admin     bool
		expires   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key for an operator",
		Long:  "Creates an API key and prints it once. Only its hash is stored.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeDB, readDB, err := rt.openMetastore()
			if err != nil {
				return err
			}
			defer readDB.Close()  //nolint:errcheck
			defer writeDB.Close() //nolint:errcheck

			req := domain.CreateAPIKeyRequest{PrincipalName: principal, Name: name, IsAdmin: admin}
			if expires > 0 {
				at := time.Now().Add(expires).UTC()
				req.ExpiresAt = &at
			}
			svc := apikey.NewService(repository.NewAPIKeyRepo(writeDB), rt.logger)
			ctx := domain.WithPrincipal(cmd.Context(), cliPrincipal)
			raw, key, err := svc.Create(ctx, req)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"key":        raw,
					"id":         key.ID,
					"name":       key.Name,
					"principal":  key.PrincipalName,
					"admin":      key.IsAdmin,
					"expires_at": key.ExpiresAt,
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "API key for %s (%s): %s\n", key.PrincipalName, key.Name, raw)
			_, _ = fmt.Fprintf(out, "Send it in the %s header. It is not shown again.\n", rt.cfg.Auth.APIKeyHeader)
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "operator name the key authenticates as (required)")
	cmd.Flags().StringVar(&name, "name", "cli", "label for the key")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	cmd.Flags().DurationVar(&expires, "expires", 0, "lifetime of the key, e.g. 720h (default: never)")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}
