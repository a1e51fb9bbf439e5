package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/issuebadge/issuebadge-service/internal/services"
)

func newBadgesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List the badge catalog of the IssueBadge service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := (&services.BadgeService{Client: a.client}).List(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Success {
				return fmt.Errorf("list badges: %s", out.Error)
			}
			return nil
		},
	}
}
