// Package services – IssuanceService
//
// IssuanceService grants a badge on behalf of an acting user. It validates the
// request, resolves the recipient from the host user directory, calls the
// external service and, only when the grant is confirmed, records it and
// publishes BadgeIssued.
//
// Manual issuance has no duplicate guard: issuing the same badge twice yields
// two grants and two records.

package services

import (
	"context"
	"errors"
	"regexp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
	"github.com/issuebadge/issuebadge-service/internal/domain"
	"github.com/issuebadge/issuebadge-service/internal/events"
	"github.com/issuebadge/issuebadge-service/internal/repo"
)

// badgeIDPattern accepts letters, digits, underscore and hyphen.
var badgeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ManualIssueRequest is one manual grant. CourseID 0 means site level.
type ManualIssueRequest struct {
	ActorID  int64
	UserID   int64
	BadgeID  string
	CourseID int64
}

// Validate checks the request shape.
func (r ManualIssueRequest) Validate() error {
	if r.UserID <= 0 {
		return ErrInvalidUser
	}
	if !badgeIDPattern.MatchString(r.BadgeID) {
		return ErrInvalidBadge
	}
	if r.CourseID < 0 {
		return ErrInvalidCourse
	}
	return nil
}

// IssueOutcome is the result of a manual grant. When the external service
// rejects or cannot be reached, Success is false and Error holds the message.
type IssueOutcome struct {
	Success   bool   `json:"success"`
	IssueID   string `json:"issueid"`
	PublicURL string `json:"publicurl"`
	Error     string `json:"error,omitempty"`
}

// IssuanceService performs manual badge grants.
type IssuanceService struct {
	DB     *gorm.DB
	Client BadgeClient
	Events events.Publisher
}

// Issue grants req.BadgeID to req.UserID.
//
// Returned errors: validation errors, ErrUserNotFound, or a persistence error.
// External service failures are not errors; they produce an unsuccessful
// outcome and nothing is recorded.
func (s *IssuanceService) Issue(ctx context.Context, req ManualIssueRequest) (*IssueOutcome, error) {
	ctx, span := otel.Tracer("services/IssuanceService").Start(ctx, "Issue",
		trace.WithAttributes(
			attribute.Int64("user.id", req.UserID),
			attribute.Int64("actor.id", req.ActorID),
			attribute.Int64("course.id", req.CourseID),
			attribute.String("badge.id", req.BadgeID),
		),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := lookupUser(ctx, s.DB, req.UserID)
	if err != nil {
		return nil, err
	}

	res, err := clientOrUnconfigured(s.Client).IssueBadge(ctx, badgeapi.IssueRequest{
		Name:    recipientName(user),
		Email:   user.Email,
		BadgeID: req.BadgeID,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &IssueOutcome{Success: false, Error: err.Error()}, nil
	}

	rec := &domain.Issue{
		UserID:         req.UserID,
		CourseID:       repo.CourseRef(req.CourseID),
		BadgeID:        req.BadgeID,
		IssueID:        res.IssueID,
		PublicURL:      res.PublicURL,
		IssuedByUserID: req.ActorID,
		IdempotencyKey: res.IdempotencyKey,
	}
	if err := repo.CreateIssue(ctx, s.DB, rec); err != nil {
		span.RecordError(err)
		return nil, err
	}

	publish(ctx, s.Events, rec, events.SourceManual)
	return &IssueOutcome{Success: true, IssueID: res.IssueID, PublicURL: res.PublicURL}, nil
}

// lookupUser maps a missing directory row to ErrUserNotFound.
func lookupUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, db, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// recipientName is the display name sent to the service, in NFC so that
// decomposed accents from the host directory render as one glyph.
func recipientName(u *domain.User) string {
	return norm.NFC.String(u.FullName())
}

func publish(ctx context.Context, p events.Publisher, rec *domain.Issue, src events.Source) {
	if p == nil {
		return
	}
	var course int64
	if rec.CourseID != nil {
		course = *rec.CourseID
	}
	p.Publish(ctx, events.BadgeIssued{
		RecordID:    rec.ID,
		RecipientID: rec.UserID,
		IssueID:     rec.IssueID,
		BadgeID:     rec.BadgeID,
		CourseID:    course,
		IssuedBy:    rec.IssuedByUserID,
		Source:      src,
		OccurredAt:  rec.CreatedAt,
	})
}
