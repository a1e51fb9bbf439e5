package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/repo"
)

// HistoryQuery selects issued badges. Zero values mean "any"; CourseID
// points at 0 to select site-level grants.
type HistoryQuery struct {
	UserID   int64
	CourseID *int64
}

func (q HistoryQuery) filter() repo.IssueFilter {
	f := repo.IssueFilter{CourseID: q.CourseID}
	if q.UserID > 0 {
		f.UserIDs = []int64{q.UserID}
	}
	return f
}

// HistoryService lists recorded grants with recipient and course names.
type HistoryService struct {
	DB *gorm.DB
}

// ListPage returns a page of grants, newest first, and the total count.
func (s *HistoryService) ListPage(ctx context.Context, q HistoryQuery, page, pageSize int) ([]repo.IssueRow, int64, error) {
	ctx, span := otel.Tracer("services/HistoryService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int64("user.id", q.UserID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountIssues(ctx, s.DB, q.filter())
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []repo.IssueRow{}, 0, nil
	}

	items, err := repo.ListIssueRowsPage(ctx, s.DB, q.filter(), offset, pageSize)
	return items, total, err
}

// Stats reports the row count and latest update for q, for cache validators.
func (s *HistoryService) Stats(ctx context.Context, q HistoryQuery) (int64, *time.Time, error) {
	return repo.IssuesStats(ctx, s.DB, q.filter())
}
