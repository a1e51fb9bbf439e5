package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database (host tables: %t)\n",
				opts.cfg.DB.Driver, opts.cfg.DB.MigrateHost)
			return nil
		},
	}
}
