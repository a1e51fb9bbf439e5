package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/issuebadge/issuebadge-service/internal/http/middleware"
	"github.com/issuebadge/issuebadge-service/internal/utils"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		subject    int64
		caps       []string
		courseCaps []string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token signed with AUTH_JWT_SECRET",
		Long: `Mint an HS256 API token for development and integration tests.

Course capabilities are given as COURSE=CAP[,CAP...], for example
--course-cap 10=issuebadge:issue,issuebadge:manage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := opts.cfg.Auth.JWTSecret
			if secret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			if subject <= 0 {
				return errors.New("--sub must be a positive user id")
			}
			scoped, err := parseCourseCaps(courseCaps)
			if err != nil {
				return err
			}

			now := time.Now()
			claims := middleware.Claims{
				Caps:       caps,
				CourseCaps: scoped,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   strconv.FormatInt(subject, 10),
					Issuer:    opts.cfg.Auth.Issuer,
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				},
			}
			tok, err := middleware.SignToken(secret, claims)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&subject, "sub", 0, "user id carried as the subject")
	cmd.Flags().StringSliceVar(&caps, "cap", nil, "site-level capability (repeatable)")
	cmd.Flags().StringArrayVar(&courseCaps, "course-cap", nil, "course capabilities as COURSE=CAP[,CAP...] (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func parseCourseCaps(specs []string) (map[string][]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(specs))
	for _, s := range specs {
		course, list, ok := strings.Cut(s, "=")
		id, err := utils.ParseID(course, false)
		if !ok || err != nil {
			return nil, fmt.Errorf("invalid --course-cap %q: want COURSE=CAP[,CAP...]", s)
		}
		key := strconv.FormatInt(id, 10)
		for _, c := range strings.Split(list, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out[key] = append(out[key], c)
			}
		}
	}
	return out, nil
}
