// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Issue model,
// the durable log of confirmed badge grants.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Error semantics:
//   - A second automatic grant for the same (user, course, badge) trips the
//     partial unique index ux_auto_issue and is returned as ErrDuplicate.
//   - DeleteIssues refuses an empty filter with ErrEmptyFilter.
//   - On other DB errors, the raw gorm error is propagated.
//
// Functions:
//
//   - IssueExists(ctx, db, userID, courseID, badgeID) -> (bool, error)
//   - CreateIssue(ctx, db, issue) -> error
//   - CreateAutoIssue(ctx, db, issue) -> error (ErrDuplicate on the auto triple)
//   - CountIssues(ctx, db, filter) -> (int64, error)
//   - ListIssuesPage(ctx, db, filter, offset, limit) -> ([]domain.Issue, error)
//   - ListIssueRowsPage(ctx, db, filter, offset, limit) -> ([]IssueRow, error)
//   - ListIssues(ctx, db, filter) -> ([]domain.Issue, error)
//   - DeleteIssues(ctx, db, filter) -> (int64, error)
//   - IssueCourseIDs(ctx, db, userID) -> ([]int64, bool, error)
//   - IssueUserIDs(ctx, db, filter) -> ([]int64, error)
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an automatic grant already exists for the
// given (user_id, course_id, badge_id) triple.
var ErrDuplicate = errors.New("duplicate")

// ErrEmptyFilter is returned by DeleteIssues when the filter selects every row.
var ErrEmptyFilter = errors.New("refusing to delete without a filter")

// IssueFilter narrows issue queries.
//
//   - UserIDs: restrict to these recipients; empty means any user.
//   - CourseID: nil means any course; a pointer to 0 selects site-level
//     grants (course_id IS NULL OR course_id = 0); any other value selects
//     that course.
type IssueFilter struct {
	UserIDs  []int64
	CourseID *int64
}

// ForUser returns a filter selecting a single recipient.
func ForUser(userID int64) IssueFilter { return IssueFilter{UserIDs: []int64{userID}} }

// CourseRef returns a pointer suitable for IssueFilter.CourseID.
func CourseRef(courseID int64) *int64 { return &courseID }

// Empty reports whether the filter selects every row.
func (f IssueFilter) Empty() bool { return len(f.UserIDs) == 0 && f.CourseID == nil }

// apply adds the filter's predicates to q. prefix qualifies column names
// when the query joins other tables (e.g. "i.").
func (f IssueFilter) apply(q *gorm.DB, prefix string) *gorm.DB {
	switch len(f.UserIDs) {
	case 0:
	case 1:
		q = q.Where(prefix+"user_id = ?", f.UserIDs[0])
	default:
		q = q.Where(prefix+"user_id IN ?", f.UserIDs)
	}
	if f.CourseID != nil {
		if *f.CourseID == 0 {
			q = q.Where("(" + prefix + "course_id IS NULL OR " + prefix + "course_id = 0)")
		} else {
			q = q.Where(prefix+"course_id = ?", *f.CourseID)
		}
	}
	return q
}

// IssueRow is an Issue joined with display data from the host tables.
// Missing users or courses yield empty strings.
type IssueRow struct {
	domain.Issue
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	CourseName string `json:"course_name"`
}

// IssueExists reports whether any grant exists for (userID, courseID, badgeID).
// A courseID of 0 matches site-level grants.
func IssueExists(ctx context.Context, db *gorm.DB, userID, courseID int64, badgeID string) (bool, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.Issue{})
	q = IssueFilter{UserIDs: []int64{userID}, CourseID: &courseID}.apply(q, "")
	err := q.Where("badge_id = ?", badgeID).Count(&n).Error
	return n > 0, err
}

// CreateIssue inserts a grant. The ID is assigned by the database and both
// timestamps are set to the current UTC time. A CourseID pointing at 0 is
// stored as NULL.
func CreateIssue(ctx context.Context, db *gorm.DB, issue *domain.Issue) error {
	now := time.Now().UTC()
	issue.ID = 0
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.CourseID != nil && *issue.CourseID == 0 {
		issue.CourseID = nil
	}
	return db.WithContext(ctx).Create(issue).Error
}

// CreateAutoIssue inserts a system-issued grant. If the auto triple already
// exists it returns ErrDuplicate and leaves the table unchanged.
func CreateAutoIssue(ctx context.Context, db *gorm.DB, issue *domain.Issue) error {
	issue.IssuedByUserID = domain.SystemIssuer
	if err := CreateIssue(ctx, db, issue); err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// CountIssues returns the number of grants matching filter.
func CountIssues(ctx context.Context, db *gorm.DB, filter IssueFilter) (int64, error) {
	var total int64
	q := filter.apply(db.WithContext(ctx).Model(&domain.Issue{}), "")
	err := q.Count(&total).Error
	return total, err
}

// ListIssuesPage returns a page of grants matching filter, newest first.
// Use CountIssues to obtain the total for pagination metadata.
func ListIssuesPage(ctx context.Context, db *gorm.DB, filter IssueFilter, offset, limit int) ([]domain.Issue, error) {
	var out []domain.Issue
	q := filter.apply(db.WithContext(ctx).Model(&domain.Issue{}), "")
	err := q.Order("created_at desc").Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListIssues returns every grant matching filter, newest first.
func ListIssues(ctx context.Context, db *gorm.DB, filter IssueFilter) ([]domain.Issue, error) {
	var out []domain.Issue
	q := filter.apply(db.WithContext(ctx).Model(&domain.Issue{}), "")
	err := q.Order("created_at desc").Order("id desc").Find(&out).Error
	return out, err
}

// ListIssueRowsPage is ListIssuesPage joined with recipient and course names.
func ListIssueRowsPage(ctx context.Context, db *gorm.DB, filter IssueFilter, offset, limit int) ([]IssueRow, error) {
	var out []IssueRow
	q := db.WithContext(ctx).
		Table(domain.Issue{}.TableName() + " AS i").
		Select(`i.*,
			COALESCE(u.first_name, '') AS first_name,
			COALESCE(u.last_name, '') AS last_name,
			COALESCE(u.email, '') AS email,
			COALESCE(c.full_name, '') AS course_name`).
		Joins("LEFT JOIN " + domain.User{}.TableName() + " u ON u.id = i.user_id").
		Joins("LEFT JOIN " + domain.Course{}.TableName() + " c ON c.id = i.course_id")
	q = filter.apply(q, "i.")
	err := q.Order("i.created_at desc").Order("i.id desc").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// DeleteIssues removes every grant matching filter and returns the number of
// rows deleted.
func DeleteIssues(ctx context.Context, db *gorm.DB, filter IssueFilter) (int64, error) {
	if filter.Empty() {
		return 0, ErrEmptyFilter
	}
	q := filter.apply(db.WithContext(ctx), "")
	res := q.Delete(&domain.Issue{})
	return res.RowsAffected, res.Error
}

// IssueCourseIDs returns the distinct courses in which userID holds grants,
// and whether the user also holds site-level grants.
func IssueCourseIDs(ctx context.Context, db *gorm.DB, userID int64) (courseIDs []int64, site bool, err error) {
	err = db.WithContext(ctx).Model(&domain.Issue{}).
		Where("user_id = ? AND course_id IS NOT NULL AND course_id <> 0", userID).
		Distinct().
		Order("course_id").
		Pluck("course_id", &courseIDs).Error
	if err != nil {
		return nil, false, err
	}
	var n int64
	err = IssueFilter{UserIDs: []int64{userID}, CourseID: CourseRef(0)}.
		apply(db.WithContext(ctx).Model(&domain.Issue{}), "").
		Count(&n).Error
	return courseIDs, n > 0, err
}

// IssueUserIDs returns the distinct recipients of grants matching filter.
func IssueUserIDs(ctx context.Context, db *gorm.DB, filter IssueFilter) ([]int64, error) {
	var ids []int64
	q := filter.apply(db.WithContext(ctx).Model(&domain.Issue{}), "")
	err := q.Distinct().Order("user_id").Pluck("user_id", &ids).Error
	return ids, err
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
