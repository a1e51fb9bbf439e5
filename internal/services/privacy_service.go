// Package services – PrivacyService
//
// PrivacyService answers data-subject requests over the issuance log. Records
// are attributed to a context: the course they were issued in, or the system
// context for site-level grants (course_id NULL or 0).
//
// Name and email are never stored locally; they are sent to the external
// badge service at issuance time, which Metadata reports as an external
// location.

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/repo"
)

// ContextLevel is the scope a record belongs to.
type ContextLevel string

const (
	LevelSystem ContextLevel = "system"
	LevelCourse ContextLevel = "course"
)

// Context identifies a privacy scope. InstanceID is the course id for
// LevelCourse and 0 for LevelSystem.
type Context struct {
	Level      ContextLevel `json:"level"`
	InstanceID int64        `json:"instance_id"`
}

// SystemContext is the site-level scope.
var SystemContext = Context{Level: LevelSystem}

// CourseContext returns the scope of course id.
func CourseContext(id int64) Context { return Context{Level: LevelCourse, InstanceID: id} }

// String renders "system" or "course:<id>".
func (c Context) String() string {
	if c.Level == LevelCourse {
		return string(LevelCourse) + ":" + strconv.FormatInt(c.InstanceID, 10)
	}
	return string(LevelSystem)
}

// ParseContext reads the textual form produced by Context.String.
func ParseContext(s string) (Context, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == string(LevelSystem) {
		return SystemContext, nil
	}
	rest, found := strings.CutPrefix(s, string(LevelCourse)+":")
	if !found {
		return Context{}, fmt.Errorf("%w: %q", ErrInvalidContext, s)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return Context{}, fmt.Errorf("%w: %q", ErrInvalidContext, s)
	}
	return CourseContext(id), nil
}

// filter scopes an issue query to c, optionally for some users.
func (c Context) filter(userIDs ...int64) repo.IssueFilter {
	course := c.InstanceID
	if c.Level != LevelCourse {
		course = 0
	}
	return repo.IssueFilter{UserIDs: userIDs, CourseID: repo.CourseRef(course)}
}

// ExportRecord is one exported grant.
type ExportRecord struct {
	BadgeID   string    `json:"badge_id"`
	IssueID   string    `json:"issue_id"`
	PublicURL string    `json:"public_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ContextExport groups a user's grants in one context.
type ContextExport struct {
	Context string         `json:"context"`
	Badges  []ExportRecord `json:"badges"`
}

// MetadataItem describes one stored or transmitted field.
type MetadataItem struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// MetadataLocation is a place personal data is kept or sent.
type MetadataLocation struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"` // "database_table" or "external_location"
	Description string         `json:"description"`
	Fields      []MetadataItem `json:"fields"`
}

// PrivacyService implements data export and erasure for issuance records.
type PrivacyService struct {
	DB *gorm.DB
}

func (s *PrivacyService) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("services/PrivacyService").Start(ctx, name, trace.WithAttributes(attrs...))
}

// ContextsForUser lists every context holding records of userID: one per
// course, plus the system context when site-level grants exist.
func (s *PrivacyService) ContextsForUser(ctx context.Context, userID int64) ([]Context, error) {
	ctx, span := s.span(ctx, "ContextsForUser", attribute.Int64("user.id", userID))
	defer span.End()

	courses, site, err := repo.IssueCourseIDs(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Context, 0, len(courses)+1)
	for _, id := range courses {
		out = append(out, CourseContext(id))
	}
	if site {
		out = append(out, SystemContext)
	}
	return out, nil
}

// UsersInContext lists the distinct users with records in c.
func (s *PrivacyService) UsersInContext(ctx context.Context, c Context) ([]int64, error) {
	ctx, span := s.span(ctx, "UsersInContext", attribute.String("context", c.String()))
	defer span.End()

	ids, err := repo.IssueUserIDs(ctx, s.DB, c.filter())
	if ids == nil && err == nil {
		ids = []int64{}
	}
	return ids, err
}

// ExportUserData returns userID's grants grouped by context. Contexts without
// records are omitted.
func (s *PrivacyService) ExportUserData(ctx context.Context, userID int64, contexts []Context) ([]ContextExport, error) {
	ctx, span := s.span(ctx, "ExportUserData", attribute.Int64("user.id", userID))
	defer span.End()

	out := []ContextExport{}
	for _, c := range contexts {
		issues, err := repo.ListIssues(ctx, s.DB, c.filter(userID))
		if err != nil {
			return nil, err
		}
		if len(issues) == 0 {
			continue
		}
		recs := make([]ExportRecord, 0, len(issues))
		for _, is := range issues {
			recs = append(recs, ExportRecord{
				BadgeID:   is.BadgeID,
				IssueID:   is.IssueID,
				PublicURL: is.PublicURL,
				CreatedAt: is.CreatedAt,
			})
		}
		out = append(out, ContextExport{Context: c.String(), Badges: recs})
	}
	return out, nil
}

// DeleteForUser erases userID's records in each of contexts and returns the
// number of rows removed. An empty list removes nothing.
func (s *PrivacyService) DeleteForUser(ctx context.Context, userID int64, contexts []Context) (int64, error) {
	ctx, span := s.span(ctx, "DeleteForUser", attribute.Int64("user.id", userID))
	defer span.End()

	var total int64
	for _, c := range contexts {
		n, err := repo.DeleteIssues(ctx, s.DB, c.filter(userID))
		if err != nil {
			return total, err
		}
		total += n
	}
	span.SetAttributes(attribute.Int64("deleted", total))
	return total, nil
}

// DeleteAllInContext erases every record in c.
func (s *PrivacyService) DeleteAllInContext(ctx context.Context, c Context) (int64, error) {
	ctx, span := s.span(ctx, "DeleteAllInContext", attribute.String("context", c.String()))
	defer span.End()

	return repo.DeleteIssues(ctx, s.DB, c.filter())
}

// DeleteForUsers erases the records of userIDs in c. An empty list removes
// nothing.
func (s *PrivacyService) DeleteForUsers(ctx context.Context, c Context, userIDs []int64) (int64, error) {
	ctx, span := s.span(ctx, "DeleteForUsers",
		attribute.String("context", c.String()),
		attribute.Int("users", len(userIDs)),
	)
	defer span.End()

	if len(userIDs) == 0 {
		return 0, nil
	}
	return repo.DeleteIssues(ctx, s.DB, c.filter(userIDs...))
}

// Metadata describes the personal data this service stores and transmits.
func (s *PrivacyService) Metadata() []MetadataLocation {
	return []MetadataLocation{
		{
			Name:        "badge_issues",
			Kind:        "database_table",
			Description: "Information about badges issued to users through IssueBadge",
			Fields: []MetadataItem{
				{Field: "user_id", Description: "The ID of the user who received the badge"},
				{Field: "badge_id", Description: "The IssueBadge badge ID"},
				{Field: "issue_id", Description: "The unique issue ID from IssueBadge"},
				{Field: "public_url", Description: "The public URL to view the badge"},
				{Field: "course_id", Description: "The course where the badge was issued"},
				{Field: "created_at", Description: "The time when the badge was issued"},
			},
		},
		{
			Name:        "issuebadge_api",
			Kind:        "external_location",
			Description: "User data is sent to the IssueBadge API to issue badges",
			Fields: []MetadataItem{
				{Field: "name", Description: "The full name of the user"},
				{Field: "email", Description: "The email address of the user"},
			},
		},
	}
}
