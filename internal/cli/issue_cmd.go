package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/issuebadge/issuebadge-service/internal/domain"
	"github.com/issuebadge/issuebadge-service/internal/services"
)

func newIssueCmd(opts *rootOptions) *cobra.Command {
	var req services.ManualIssueRequest

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a badge to a user and record the grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// actor 0 is reserved for automatic issuance
			if req.ActorID == domain.SystemIssuer {
				return errors.New("--actor must be a real user id")
			}
			a, err := openApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			svc := &services.IssuanceService{DB: a.db, Client: a.client, Events: a.bus()}
			out, err := svc.Issue(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Success {
				return fmt.Errorf("issue badge: %s", out.Error)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&req.UserID, "user", 0, "recipient user id")
	cmd.Flags().StringVar(&req.BadgeID, "badge", "", "badge id from the catalog")
	cmd.Flags().Int64Var(&req.CourseID, "course", 0, "course id (0 for site level)")
	cmd.Flags().Int64Var(&req.ActorID, "actor", 0, "acting user id recorded as the issuer")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("badge")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}
