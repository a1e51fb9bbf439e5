// Package services – AutoIssuer
//
// AutoIssuer reacts to course completion. When automatic issuance is enabled
// and the course has a badge configured, it grants that badge once per
// (user, course, badge). Completion handling must never fail because of the
// external service: client errors are logged and reported as StatusFailed.
//
// Duplicate protection works on two levels. Concurrent completions for the
// same triple inside this process share one in-flight attempt through a
// singleflight group. Across processes, the partial unique index on automatic
// grants rejects the losing insert, which is reported as StatusAlreadyIssued.

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
	"github.com/issuebadge/issuebadge-service/internal/domain"
	"github.com/issuebadge/issuebadge-service/internal/events"
	"github.com/issuebadge/issuebadge-service/internal/repo"
)

// AutoIssueStatus describes what HandleCourseCompleted did.
type AutoIssueStatus string

const (
	StatusDisabled      AutoIssueStatus = "disabled"
	StatusNotConfigured AutoIssueStatus = "not_configured"
	StatusAlreadyIssued AutoIssueStatus = "already_issued"
	StatusIssued        AutoIssueStatus = "issued"
	StatusFailed        AutoIssueStatus = "failed"
)

// CourseCompleted is the host's completion signal.
type CourseCompleted struct {
	UserID   int64 `json:"user_id"   binding:"required,gt=0"`
	CourseID int64 `json:"course_id" binding:"required,gt=0"`
}

// AutoIssueResult reports the outcome of one completion.
type AutoIssueResult struct {
	Status    AutoIssueStatus `json:"status"`
	BadgeID   string          `json:"badge_id,omitempty"`
	IssueID   string          `json:"issue_id,omitempty"`
	PublicURL string          `json:"public_url,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// AutoIssuer grants course badges on completion.
type AutoIssuer struct {
	DB      *gorm.DB
	Client  BadgeClient
	Events  events.Publisher
	Enabled bool

	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger

	group singleflight.Group
}

// HandleCourseCompleted runs the automatic issuance flow for ev.
//
// The only errors returned are ErrUserNotFound and persistence failures;
// every other outcome, including external service failures, is a status.
func (a *AutoIssuer) HandleCourseCompleted(ctx context.Context, ev CourseCompleted) (AutoIssueResult, error) {
	ctx, span := otel.Tracer("services/AutoIssuer").Start(ctx, "HandleCourseCompleted",
		trace.WithAttributes(
			attribute.Int64("user.id", ev.UserID),
			attribute.Int64("course.id", ev.CourseID),
		),
	)
	defer span.End()

	if !a.Enabled {
		return AutoIssueResult{Status: StatusDisabled}, nil
	}

	cfg, err := repo.GetCourseBadge(ctx, a.DB, ev.CourseID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AutoIssueResult{Status: StatusNotConfigured}, nil
		}
		return AutoIssueResult{}, err
	}
	if !cfg.Configured() {
		return AutoIssueResult{Status: StatusNotConfigured}, nil
	}
	span.SetAttributes(attribute.String("badge.id", cfg.BadgeID))

	key := fmt.Sprintf("%d/%d/%s", ev.UserID, ev.CourseID, cfg.BadgeID)
	// The shared attempt outlives any single caller: followers must not
	// fail because the first caller went away.
	shared := context.WithoutCancel(ctx)
	v, err, _ := a.group.Do(key, func() (any, error) {
		return a.issueOnce(shared, ev, cfg.BadgeID)
	})
	if err != nil {
		return AutoIssueResult{}, err
	}
	res := v.(AutoIssueResult)
	span.SetAttributes(attribute.String("status", string(res.Status)))
	return res, nil
}

func (a *AutoIssuer) issueOnce(ctx context.Context, ev CourseCompleted, badgeID string) (AutoIssueResult, error) {
	lg := a.logger().With().
		Int64("user_id", ev.UserID).
		Int64("course_id", ev.CourseID).
		Str("badge_id", badgeID).
		Logger()

	exists, err := repo.IssueExists(ctx, a.DB, ev.UserID, ev.CourseID, badgeID)
	if err != nil {
		return AutoIssueResult{}, err
	}
	if exists {
		return AutoIssueResult{Status: StatusAlreadyIssued, BadgeID: badgeID}, nil
	}

	user, err := lookupUser(ctx, a.DB, ev.UserID)
	if err != nil {
		return AutoIssueResult{}, err
	}

	res, err := clientOrUnconfigured(a.Client).IssueBadge(ctx, badgeapi.IssueRequest{
		Name:    recipientName(user),
		Email:   user.Email,
		BadgeID: badgeID,
	})
	if err != nil {
		lg.Warn().Err(err).Msg("automatic badge issuance failed")
		return AutoIssueResult{Status: StatusFailed, BadgeID: badgeID, Error: err.Error()}, nil
	}

	rec := &domain.Issue{
		UserID:         ev.UserID,
		CourseID:       repo.CourseRef(ev.CourseID),
		BadgeID:        badgeID,
		IssueID:        res.IssueID,
		PublicURL:      res.PublicURL,
		IdempotencyKey: res.IdempotencyKey,
	}
	if err := repo.CreateAutoIssue(ctx, a.DB, rec); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Another process recorded the same grant first.
			lg.Warn().Str("issue_id", res.IssueID).Msg("automatic grant already recorded elsewhere")
			return AutoIssueResult{Status: StatusAlreadyIssued, BadgeID: badgeID}, nil
		}
		return AutoIssueResult{}, err
	}

	publish(ctx, a.Events, rec, events.SourceAuto)
	lg.Debug().Str("issue_id", res.IssueID).Msg("badge issued automatically")
	return AutoIssueResult{
		Status:    StatusIssued,
		BadgeID:   badgeID,
		IssueID:   res.IssueID,
		PublicURL: res.PublicURL,
	}, nil
}

func (a *AutoIssuer) logger() *zerolog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return &log.Logger
}
