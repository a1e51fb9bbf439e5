// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/domain"
)

// IssuesStats returns aggregate metadata for the grants matching filter: the
// total number of rows and the maximum UpdatedAt timestamp among those rows.
//
// When nothing matches, the returned count is 0 and maxUpdatedAt is nil.
func IssuesStats(ctx context.Context, db *gorm.DB, filter IssueFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	base := func() *gorm.DB {
		return filter.apply(db.WithContext(ctx).Model(&domain.Issue{}), "")
	}

	if err = base().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = base().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
