// Service contracts and shared helpers for the HTTP handlers.
//
// Handlers are transport-thin: they bind and validate input, check the
// caller's capability, call a service and translate the result into an HTTP
// response. Every contract below is satisfied by the concrete type of the
// same role in package services.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/issuebadge/issuebadge-service/internal/http/middleware"
	"github.com/issuebadge/issuebadge-service/internal/repo"
	"github.com/issuebadge/issuebadge-service/internal/services"
	"github.com/issuebadge/issuebadge-service/internal/utils"
)

//
// Service contracts (context-aware)
//

// BadgeCatalog lists the external badge catalog.
type BadgeCatalog interface {
	List(ctx context.Context) services.BadgesOutcome
}

// Issuer performs manual grants.
type Issuer interface {
	Issue(ctx context.Context, req services.ManualIssueRequest) (*services.IssueOutcome, error)
}

// CompletionHandler runs automatic issuance for a completed course.
type CompletionHandler interface {
	HandleCourseCompleted(ctx context.Context, ev services.CourseCompleted) (services.AutoIssueResult, error)
}

// History reads the issuance log.
type History interface {
	ListPage(ctx context.Context, q services.HistoryQuery, page, pageSize int) ([]repo.IssueRow, int64, error)
	Stats(ctx context.Context, q services.HistoryQuery) (int64, *time.Time, error)
}

// Privacy answers data-subject requests.
type Privacy interface {
	ContextsForUser(ctx context.Context, userID int64) ([]services.Context, error)
	UsersInContext(ctx context.Context, c services.Context) ([]int64, error)
	ExportUserData(ctx context.Context, userID int64, contexts []services.Context) ([]services.ContextExport, error)
	DeleteForUser(ctx context.Context, userID int64, contexts []services.Context) (int64, error)
	DeleteAllInContext(ctx context.Context, c services.Context) (int64, error)
	DeleteForUsers(ctx context.Context, c services.Context, userIDs []int64) (int64, error)
	Metadata() []services.MetadataLocation
}

//
// Handler wiring
//

// Handlers groups the API endpoints.
type Handlers struct {
	badges     BadgeCatalog
	issuer     Issuer
	completion CompletionHandler
	history    History
	privacy    Privacy
}

// New constructs a Handlers bound to the given services.
func New(badges BadgeCatalog, issuer Issuer, completion CompletionHandler, history History, privacy Privacy) *Handlers {
	return &Handlers{
		badges:     badges,
		issuer:     issuer,
		completion: completion,
		history:    history,
		privacy:    privacy,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// authorize fails with 403 unless the caller holds capability in courseID
// (0 = site level).
func authorize(c *gin.Context, capability middleware.Capability, courseID int64) bool {
	p, _ := middleware.PrincipalFrom(c)
	if !p.Can(capability, courseID) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "missing capability "+string(capability))
		return false
	}
	return true
}

// pathUserID parses the :id path parameter as a positive user id.
func pathUserID(c *gin.Context) (int64, bool) {
	id, err := utils.ParseID(c.Param("id"), false)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a positive integer")
		return 0, false
	}
	return id, true
}

// pathContext parses the :context path parameter ("system" or "course:<id>").
func pathContext(c *gin.Context) (services.Context, bool) {
	ctx, err := services.ParseContext(c.Param("context"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return services.Context{}, false
	}
	return ctx, true
}

// queryContexts reads repeated or comma-separated ?context= values. It
// reports false after failing the request on a malformed value.
func queryContexts(c *gin.Context) ([]services.Context, bool) {
	var out []services.Context
	for _, raw := range c.QueryArray("context") {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			ctx, err := services.ParseContext(part)
			if err != nil {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
				return nil, false
			}
			out = append(out, ctx)
		}
	}
	return out, true
}

// queryID parses an optional non-negative integer query param. present is
// false when the param is absent.
func queryID(c *gin.Context, name string) (id int64, present, valid bool) {
	raw, found := c.GetQuery(name)
	if !found || strings.TrimSpace(raw) == "" {
		return 0, false, true
	}
	id, err := utils.ParseID(raw, true)
	if err != nil {
		return 0, true, false
	}
	return id, true, true
}
