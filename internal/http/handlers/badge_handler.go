package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListBadges godoc
// @ID          listBadges
// @Summary     List the badge catalog
// @Description Fetches the badges available on the IssueBadge service. Service failures are reported in the body with success=false.
// @Tags        Badges
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.BadgesOutcome
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Missing issuebadge:view"
// @Router      /badges [get]
func (h *Handlers) ListBadges(c *gin.Context) {
	ok(c, http.StatusOK, h.badges.List(c.Request.Context()))
}
