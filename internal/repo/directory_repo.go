// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to the host platform tables
// (users, courses, course badge settings). The service never writes to them
// outside of development seeding.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/issuebadge/issuebadge-service/internal/domain"
)

// GetUser fetches a user by ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetCourse fetches a course by ID, or ErrNotFound if missing.
func GetCourse(ctx context.Context, db *gorm.DB, id int64) (*domain.Course, error) {
	var c domain.Course
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCourseBadge returns the enabled auto-issuance setting for courseID, or
// ErrNotFound when the course has none or it is disabled.
func GetCourseBadge(ctx context.Context, db *gorm.DB, courseID int64) (*domain.CourseBadge, error) {
	var cb domain.CourseBadge
	err := db.WithContext(ctx).
		Where("course_id = ? AND enabled = ?", courseID, true).
		First(&cb).Error
	if err != nil {
		return nil, err
	}
	return &cb, nil
}

// UpsertCourseBadge writes the auto-issuance setting for a course. Used by
// the CLI to seed development databases.
func UpsertCourseBadge(ctx context.Context, db *gorm.DB, courseID int64, badgeID string, enabled bool) error {
	now := time.Now().UTC()
	cb := &domain.CourseBadge{
		CourseID:  courseID,
		BadgeID:   badgeID,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"badge_id", "enabled", "updated_at"}),
	}).Create(cb).Error
}

// UpsertUser writes a directory row. Used by the CLI to seed development
// databases.
func UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email"}),
	}).Create(u).Error
}
