package cli

import (
	"github.com/spf13/cobra"

	"github.com/issuebadge/issuebadge-service/internal/services"
)

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	var ev services.CourseCompleted

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Replay a course completion through automatic issuance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			auto := &services.AutoIssuer{
				DB:      a.db,
				Client:  a.client,
				Events:  a.bus(),
				Enabled: opts.cfg.IssueBadge.AutoIssue,
				Logger:  &a.log,
			}
			res, err := auto.HandleCourseCompleted(cmd.Context(), ev)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Int64Var(&ev.UserID, "user", 0, "user who completed the course")
	cmd.Flags().Int64Var(&ev.CourseID, "course", 0, "completed course id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}
