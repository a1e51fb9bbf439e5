package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/issuebadge/issuebadge-service/internal/repo"
)

func newCourseBadgeCmd(opts *rootOptions) *cobra.Command {
	var (
		courseID int64
		badgeID  string
		disable  bool
	)

	cmd := &cobra.Command{
		Use:   "course-badge",
		Short: "Configure the badge a course issues on completion",
		Long: `Writes the course_badges row used by automatic issuance. In production the
host platform owns this table; the command exists for standalone and
development deployments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if courseID <= 0 {
				return errors.New("--course must be a positive course id")
			}
			if badgeID == "" && !disable {
				return errors.New("--badge is required unless --disable is set")
			}
			a, err := openApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			name := "(not in course directory)"
			if c, err := repo.GetCourse(ctx, a.db, courseID); err == nil {
				name = c.FullName
			} else if !errors.Is(err, repo.ErrNotFound) {
				return err
			}

			if err := repo.UpsertCourseBadge(ctx, a.db, courseID, badgeID, !disable); err != nil {
				return err
			}
			state := "enabled"
			if disable {
				state = "disabled"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "course %d %s: badge %q %s\n", courseID, name, badgeID, state)
			return nil
		},
	}
	cmd.Flags().Int64Var(&courseID, "course", 0, "course id")
	cmd.Flags().StringVar(&badgeID, "badge", "", "badge id issued on completion")
	cmd.Flags().BoolVar(&disable, "disable", false, "turn automatic issuance off for the course")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}
