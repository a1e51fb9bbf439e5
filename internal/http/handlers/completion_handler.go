package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/issuebadge/issuebadge-service/internal/services"
)

// CourseCompleted godoc
// @ID          courseCompleted
// @Summary     Report a course completion
// @Description Called by the host platform when a user completes a course. Issues the course badge once when automatic issuance is enabled and configured. External service failures are reported as status=failed, never as an HTTP error.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      services.CourseCompleted  true  "Completion"
// @Success     200   {object}  services.AutoIssueResult
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403   {object}  handlers.ErrorResponse  "Missing issuebadge:notify"
// @Failure     404   {object}  handlers.ErrorResponse  "User not found"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /events/course-completed [post]
func (h *Handlers) CourseCompleted(c *gin.Context) {
	var ev services.CourseCompleted
	if err := c.ShouldBindJSON(&ev); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and course_id must be positive integers")
		return
	}

	res, err := h.completion.HandleCourseCompleted(c.Request.Context(), ev)
	switch {
	case err == nil:
		ok(c, http.StatusOK, res)
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	default:
		failInternal(c, ErrCodeIssueFailed, "completion could not be processed", err)
	}
}
