package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuebadge/issuebadge-service/internal/domain"
	"github.com/issuebadge/issuebadge-service/internal/repo"
)

func seedHistory(t *testing.T) *HistoryService {
	t.Helper()
	db := newSvcDB(t)
	seedUser(t, db, 1, "Ada", "Lovelace", "ada@example.com")
	seedUser(t, db, 2, "Alan", "Turing", "alan@example.com")
	require.NoError(t, db.Create(&domain.Course{ID: 10, FullName: "Engines"}).Error)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seed := []domain.Issue{
		{UserID: 1, CourseID: repo.CourseRef(10), BadgeID: "A", IssueID: "a", PublicURL: "u", IssuedByUserID: 9, CreatedAt: base, UpdatedAt: base},
		{UserID: 2, CourseID: repo.CourseRef(10), BadgeID: "A", IssueID: "b", PublicURL: "u", IssuedByUserID: 9, CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)},
		{UserID: 1, BadgeID: "S", IssueID: "c", PublicURL: "u", IssuedByUserID: 9, CreatedAt: base.Add(2 * time.Minute), UpdatedAt: base.Add(2 * time.Minute)},
	}
	require.NoError(t, db.Create(&seed).Error)
	return &HistoryService{DB: db}
}

func TestHistoryService_ListPage_NewestFirstWithNames(t *testing.T) {
	s := seedHistory(t)

	items, total, err := s.ListPage(context.Background(), HistoryQuery{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].IssueID)
	assert.Equal(t, "b", items[1].IssueID)
	assert.Equal(t, "Alan", items[1].FirstName)
	assert.Equal(t, "Engines", items[1].CourseName)
	assert.Equal(t, "", items[0].CourseName)
}

func TestHistoryService_ListPage_FiltersAndPaging(t *testing.T) {
	s := seedHistory(t)
	ctx := context.Background()

	items, total, err := s.ListPage(ctx, HistoryQuery{UserID: 1}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].IssueID)

	items, _, err = s.ListPage(ctx, HistoryQuery{UserID: 1}, 2, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].IssueID)

	items, total, err = s.ListPage(ctx, HistoryQuery{CourseID: repo.CourseRef(10)}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	items, total, err = s.ListPage(ctx, HistoryQuery{UserID: 99}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, items)
	assert.Len(t, items, 0)
}

func TestHistoryService_Stats(t *testing.T) {
	s := seedHistory(t)
	n, maxAt, err := s.Stats(context.Background(), HistoryQuery{UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NotNil(t, maxAt)
	assert.True(t, maxAt.Equal(time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC)))
}
