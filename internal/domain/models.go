// Package domain defines the persistence models for badge issuance records
// and the host platform tables the service reads. These types are mapped with
// GORM and form the core data layer of the badge issuance service.
package domain

import "time"

// SystemIssuer is the IssuedByUserID value recorded for automatic
// (course-completion) issuance.
const SystemIssuer int64 = 0

// Issue represents one successful badge grant confirmed by the external
// IssueBadge service.
//
// Fields:
//   - ID: autoincrement primary key, monotonic.
//   - UserID: recipient (host user id); indexed for history lookups.
//   - CourseID: optional course; nil (or 0 in legacy rows) means site level.
//   - BadgeID: badge identifier from the external catalog.
//   - IssueID: identifier returned by the service for this grant.
//   - PublicURL: service-hosted verification URL.
//   - IssuedByUserID: acting user; SystemIssuer marks auto issuance.
//   - IdempotencyKey: the key sent with the grant request.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// The partial unique index ux_auto_issue enforces at most one automatic
// grant per (user, course, badge). Manual grants are not constrained.
type Issue struct {
	ID             int64     `json:"id"                gorm:"primaryKey;autoIncrement"`
	UserID         int64     `json:"user_id"           gorm:"not null;index:idx_issue_user;uniqueIndex:ux_auto_issue,priority:1,where:issued_by_user_id = 0"`
	CourseID       *int64    `json:"course_id"         gorm:"index:idx_issue_course;uniqueIndex:ux_auto_issue,priority:2,where:issued_by_user_id = 0"`
	BadgeID        string    `json:"badge_id"          gorm:"type:varchar(255);not null;uniqueIndex:ux_auto_issue,priority:3,where:issued_by_user_id = 0"`
	IssueID        string    `json:"issue_id"          gorm:"type:varchar(255);not null"`
	PublicURL      string    `json:"public_url"        gorm:"type:text;not null"`
	IssuedByUserID int64     `json:"issued_by_user_id" gorm:"not null;default:0"`
	IdempotencyKey string    `json:"-"                 gorm:"type:char(36)"`
	CreatedAt      time.Time `json:"created_at"        gorm:"index:idx_issue_created"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Issue.
func (Issue) TableName() string { return "badge_issues" }

// IsAuto reports whether the grant was issued by the system.
func (i Issue) IsAuto() bool { return i.IssuedByUserID == SystemIssuer }

// User is a row of the host platform's user directory. The service only
// reads it to resolve recipient names and emails.
type User struct {
	ID        int64  `json:"id"         gorm:"primaryKey"`
	FirstName string `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string `json:"last_name"  gorm:"type:varchar(100)"`
	Email     string `json:"email"      gorm:"type:varchar(255)"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// FullName joins first and last name the way the host displays them.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Course is a row of the host platform's course catalog.
type Course struct {
	ID       int64  `json:"id"        gorm:"primaryKey"`
	FullName string `json:"full_name" gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Course.
func (Course) TableName() string { return "courses" }

// CourseBadge is the course-level auto-issuance setting owned by the host
// settings UI. One row per course.
type CourseBadge struct {
	CourseID  int64     `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	BadgeID   string    `json:"badge_id"  gorm:"type:varchar(255)"`
	Enabled   bool      `json:"enabled"   gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for CourseBadge.
func (CourseBadge) TableName() string { return "course_badges" }

// Configured reports whether the course is set up for automatic issuance.
func (c CourseBadge) Configured() bool { return c.Enabled && c.BadgeID != "" }
