package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prism-console/internal/middleware"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue bearer tokens signed with JWT_SECRET",
	}
	cmd.AddCommand(newTokenCreateCmd(rt))
	return cmd
}

func newTokenCreateCmd(rt *runtime) *cobra.Command {
	var (
		subject string
		role    string
		admin   bool
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Sign an HS256 bearer token for an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := middleware.SignHS256(rt.cfg.Auth.JWTSecret, subject, role, admin, ttl)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"token":      token,
					"expires_at": time.Now().Add(ttl).UTC(),
				})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator name (required)")
	cmd.Flags().StringVar(&role, "role", "", "warehouse role claimed by the token")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
