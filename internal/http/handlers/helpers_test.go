package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
	"github.com/issuebadge/issuebadge-service/internal/domain"
	"github.com/issuebadge/issuebadge-service/internal/events"
	"github.com/issuebadge/issuebadge-service/internal/http/middleware"
	"github.com/issuebadge/issuebadge-service/internal/repo"
	"github.com/issuebadge/issuebadge-service/internal/services"
)

// ---------- test DB ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db, true); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id int64, first, last string) {
	t.Helper()
	u := &domain.User{ID: id, FirstName: first, LastName: last, Email: fmt.Sprintf("u%d@example.com", id)}
	if err := repo.UpsertUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedIssue(t *testing.T, db *gorm.DB, userID, courseID int64, badgeID string) {
	t.Helper()
	rec := &domain.Issue{
		UserID:         userID,
		CourseID:       repo.CourseRef(courseID),
		BadgeID:        badgeID,
		IssueID:        "seed-" + uuid.NewString(),
		PublicURL:      "https://issuebadge.example/v/seed",
		IssuedByUserID: 1,
	}
	if err := repo.CreateIssue(context.Background(), db, rec); err != nil {
		t.Fatalf("seed issue: %v", err)
	}
}

// ---------- stub badge client ----------

type stubClient struct {
	calls    atomic.Int32
	badges   []badgeapi.Badge
	listErr  error
	issueErr error
}

func (s *stubClient) ListBadges(context.Context) ([]badgeapi.Badge, error) {
	s.calls.Add(1)
	return s.badges, s.listErr
}

func (s *stubClient) IssueBadge(context.Context, badgeapi.IssueRequest) (*badgeapi.IssueResult, error) {
	n := s.calls.Add(1)
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return &badgeapi.IssueResult{
		IssueID:        fmt.Sprintf("ISS-%d", n),
		PublicURL:      fmt.Sprintf("https://issuebadge.example/v/ISS-%d", n),
		IdempotencyKey: uuid.NewString(),
	}, nil
}

// ---------- router ----------

type testEnv struct {
	db     *gorm.DB
	client *stubClient
	r      *gin.Engine
}

// newEnv mounts every handler behind dev-mode authentication, mirroring the
// production route table.
func newEnv(t *testing.T, autoIssue bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	client := &stubClient{}
	bus := events.NewBus()

	h := New(
		&services.BadgeService{Client: client},
		&services.IssuanceService{DB: db, Client: client, Events: bus},
		&services.AutoIssuer{DB: db, Client: client, Events: bus, Enabled: autoIssue},
		&services.HistoryService{DB: db},
		&services.PrivacyService{DB: db},
	)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(middleware.AuthOptions{}))
	r.GET("/badges", middleware.Require(middleware.CapView, nil), h.ListBadges)
	r.POST("/issues", h.IssueBadge)
	r.GET("/issues", h.ListIssues)
	r.POST("/events/course-completed", middleware.Require(middleware.CapNotify, nil), h.CourseCompleted)

	p := r.Group("/privacy", middleware.Require(middleware.CapPrivacy, nil))
	p.GET("/metadata", h.PrivacyMetadata)
	p.GET("/users/:id/contexts", h.UserContexts)
	p.GET("/users/:id/export", h.ExportUser)
	p.DELETE("/users/:id", h.DeleteUser)
	p.GET("/contexts/:context/users", h.ContextUsers)
	p.DELETE("/contexts/:context", h.DeleteContext)
	p.POST("/contexts/:context/delete-users", h.DeleteContextUsers)

	return &testEnv{db: db, client: client, r: r}
}

// do sends a request as user 1 holding caps (see middleware.Authenticate).
func (e *testEnv) do(t *testing.T, method, path, caps string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "1")
	req.Header.Set(middleware.HeaderCapabilities, caps)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (%s)", v, err, w.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, want, w.Body.String())
	}
}
