package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
	"github.com/issuebadge/issuebadge-service/internal/domain"
	"github.com/issuebadge/issuebadge-service/internal/events"
	"github.com/issuebadge/issuebadge-service/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db, true); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id int64, first, last, email string) {
	t.Helper()
	if err := repo.UpsertUser(context.Background(), db, &domain.User{ID: id, FirstName: first, LastName: last, Email: email}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func countIssues(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	n, err := repo.CountIssues(context.Background(), db, repo.IssueFilter{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// fakeClient records calls and returns canned results.
type fakeClient struct {
	calls atomic.Int32

	mu       sync.Mutex
	requests []badgeapi.IssueRequest

	badges  []badgeapi.Badge
	listErr error

	issueErr error
	delay    time.Duration
	// onIssue runs inside IssueBadge before it returns.
	onIssue func()
	// honorCtx fails the call when ctx is done by the time it returns.
	honorCtx bool
}

func (f *fakeClient) ListBadges(context.Context) ([]badgeapi.Badge, error) {
	f.calls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.badges, nil
}

func (f *fakeClient) IssueBadge(ctx context.Context, req badgeapi.IssueRequest) (*badgeapi.IssueResult, error) {
	n := f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.onIssue != nil {
		f.onIssue()
	}
	if f.honorCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &badgeapi.IssueResult{
		IssueID:        fmt.Sprintf("ISS-%d", n),
		PublicURL:      fmt.Sprintf("https://issuebadge.example/v/ISS-%d", n),
		IdempotencyKey: uuid.NewString(),
	}, nil
}

func (f *fakeClient) lastRequest() badgeapi.IssueRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return badgeapi.IssueRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// apiFailure builds a client error the way the real client reports
// service-side failures.
func apiFailure(t *testing.T, msg string) error {
	t.Helper()
	return &badgeapi.Error{Kind: badgeapi.ErrAPI, Message: msg}
}

// recorder collects published events.
type recorder struct {
	mu  sync.Mutex
	evs []events.BadgeIssued
}

func (r *recorder) Publish(_ context.Context, ev events.BadgeIssued) {
	r.mu.Lock()
	r.evs = append(r.evs, ev)
	r.mu.Unlock()
}

func (r *recorder) events() []events.BadgeIssued {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.BadgeIssued(nil), r.evs...)
}
