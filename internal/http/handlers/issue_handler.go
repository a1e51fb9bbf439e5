// Issuance HTTP handlers.
//
//   - POST /issues   grant a badge on behalf of the caller
//   - GET  /issues   issued-badge history (paginated, weak ETag)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/issuebadge/issuebadge-service/internal/http/middleware"
	"github.com/issuebadge/issuebadge-service/internal/repo"
	"github.com/issuebadge/issuebadge-service/internal/services"
)

// IssueBadgeRequest is the JSON payload for a manual grant.
type IssueBadgeRequest struct {
	// UserID is the recipient.
	UserID int64 `json:"user_id" binding:"required,gt=0" example:"42"`
	// BadgeID is an id from the badge catalog.
	BadgeID string `json:"badge_id" binding:"required" example:"a1b2-c3"`
	// CourseID scopes the grant; 0 or omitted means site level.
	CourseID int64 `json:"course_id" binding:"gte=0" example:"10"`
}

// ListIssuesResponse wraps a page of issued badges.
type ListIssuesResponse struct {
	Issues     []repo.IssueRow `json:"issues"`
	Pagination Pagination      `json:"pagination"`
}

// IssueBadge godoc
// @ID          issueBadge
// @Summary     Issue a badge
// @Description Grants a badge to a user. The caller needs issuebadge:issue in the course (or site-wide). A rejection by the IssueBadge service is reported with success=false and nothing is recorded.
// @Tags        Issues
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.IssueBadgeRequest  true  "Grant"
// @Success     200   {object}  services.IssueOutcome
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403   {object}  handlers.ErrorResponse  "Missing issuebadge:issue"
// @Failure     404   {object}  handlers.ErrorResponse  "User not found"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /issues [post]
func (h *Handlers) IssueBadge(c *gin.Context) {
	var req IssueBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and badge_id are required")
		return
	}
	if !authorize(c, middleware.CapIssue, req.CourseID) {
		return
	}
	p, _ := middleware.PrincipalFrom(c)

	out, err := h.issuer.Issue(c.Request.Context(), services.ManualIssueRequest{
		ActorID:  p.UserID,
		UserID:   req.UserID,
		BadgeID:  req.BadgeID,
		CourseID: req.CourseID,
	})
	switch {
	case err == nil:
		ok(c, http.StatusOK, out)
	case errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, services.ErrInvalidBadge),
		errors.Is(err, services.ErrInvalidCourse):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	default:
		failInternal(c, ErrCodeIssueFailed, "badge issued but could not be recorded", err)
	}
}

// ListIssues godoc
// @ID          listIssues
// @Summary     List issued badges (paginated)
// @Description Returns recorded grants newest first, with recipient and course names. Filter by user_id and course_id (0 selects site-level grants). Requires issuebadge:manage in the course, or site-wide when no course is given. Supports weak ETag via If-None-Match.
// @Tags        Issues
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       user_id        query   int     false  "Recipient filter"  minimum(1)
// @Param       course_id      query   int     false  "Course filter"     minimum(0)
// @Param       page           query   int     false  "Page number"       minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"    minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListIssuesResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Missing issuebadge:manage"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /issues [get]
func (h *Handlers) ListIssues(c *gin.Context) {
	ctx := c.Request.Context()

	userID, _, valid := queryID(c, "user_id")
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be a positive integer")
		return
	}
	courseID, hasCourse, valid := queryID(c, "course_id")
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "course_id must be a non-negative integer")
		return
	}
	if !authorize(c, middleware.CapManage, courseID) {
		return
	}

	q := services.HistoryQuery{UserID: userID}
	courseTag := "*"
	if hasCourse {
		q.CourseID = repo.CourseRef(courseID)
		courseTag = fmt.Sprint(courseID)
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.history.Stats(ctx, q); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"issues:%d:%s:%d:%d:%d:%d"`, userID, courseTag, page, pageSize, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.history.ListPage(ctx, q, page, pageSize)
	if err != nil {
		failInternal(c, ErrCodeListFailed, "could not list issued badges", err)
		return
	}
	ok(c, http.StatusOK, ListIssuesResponse{
		Issues:     items,
		Pagination: newPagination(page, pageSize, total),
	})
}
