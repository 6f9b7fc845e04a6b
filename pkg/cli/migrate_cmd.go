package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending console metastore migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeDB, readDB, err := rt.openMetastore()
			if err != nil {
				return err
			}
			_ = readDB.Close()
			_ = writeDB.Close()

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"status": "ok", "metastore": rt.cfg.MetaDBPath})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Metastore %s is up to date.\n", rt.cfg.MetaDBPath)
			return nil
		},
	}
}
