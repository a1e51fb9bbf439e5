// Privacy HTTP handlers.
//
// These endpoints let the host platform's privacy subsystem discover, export
// and erase the issuance records of a user. Contexts use the textual form
// "system" or "course:<id>". All routes require issuebadge:privacy.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/issuebadge/issuebadge-service/internal/services"
)

// UserContextsResponse lists the contexts that hold a user's records.
type UserContextsResponse struct {
	UserID   int64    `json:"user_id"  example:"42"`
	Contexts []string `json:"contexts" example:"course:10,system"`
}

// UserExportResponse carries a user's exported records.
type UserExportResponse struct {
	UserID   int64                    `json:"user_id" example:"42"`
	Contexts []services.ContextExport `json:"contexts"`
}

// ContextUsersResponse lists the users with records in a context.
type ContextUsersResponse struct {
	Context string  `json:"context"  example:"course:10"`
	UserIDs []int64 `json:"user_ids"`
}

// DeleteUsersRequest selects the users to erase in a context.
type DeleteUsersRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"dive,gt=0"`
}

// DeletedResponse reports how many records were erased.
type DeletedResponse struct {
	Deleted int64 `json:"deleted" example:"3"`
}

// MetadataResponse describes stored and transmitted personal data.
type MetadataResponse struct {
	Items []services.MetadataLocation `json:"items"`
}

func contextStrings(cs []services.Context) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

// userContexts resolves ?context= or, when absent, every context holding the
// user's records.
func (h *Handlers) userContexts(c *gin.Context, userID int64) ([]services.Context, bool) {
	cs, valid := queryContexts(c)
	if !valid {
		return nil, false
	}
	if len(cs) > 0 {
		return cs, true
	}
	cs, err := h.privacy.ContextsForUser(c.Request.Context(), userID)
	if err != nil {
		failInternal(c, ErrCodeListFailed, "could not resolve contexts", err)
		return nil, false
	}
	return cs, true
}

// PrivacyMetadata godoc
// @ID          privacyMetadata
// @Summary     Describe personal data
// @Description Lists the tables and external locations that hold or receive personal data.
// @Tags        Privacy
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.MetadataResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Missing issuebadge:privacy"
// @Router      /privacy/metadata [get]
func (h *Handlers) PrivacyMetadata(c *gin.Context) {
	ok(c, http.StatusOK, MetadataResponse{Items: h.privacy.Metadata()})
}

// UserContexts godoc
// @ID          privacyUserContexts
// @Summary     Contexts holding a user's data
// @Tags        Privacy
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "User ID"
// @Success     200  {object}  handlers.UserContextsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /privacy/users/{id}/contexts [get]
func (h *Handlers) UserContexts(c *gin.Context) {
	uid, valid := pathUserID(c)
	if !valid {
		return
	}
	cs, err := h.privacy.ContextsForUser(c.Request.Context(), uid)
	if err != nil {
		failInternal(c, ErrCodeListFailed, "could not resolve contexts", err)
		return
	}
	ok(c, http.StatusOK, UserContextsResponse{UserID: uid, Contexts: contextStrings(cs)})
}

// ExportUser godoc
// @ID          privacyExportUser
// @Summary     Export a user's data
// @Description Exports the user's issued badges grouped by context. Without ?context= every context holding data is exported.
// @Tags        Privacy
// @Produce     json
// @Security    BearerAuth
// @Param       id       path      int     true   "User ID"
// @Param       context  query     string  false  "Context filter, repeatable"  example(course:10)
// @Success     200  {object}  handlers.UserExportResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /privacy/users/{id}/export [get]
func (h *Handlers) ExportUser(c *gin.Context) {
	uid, valid := pathUserID(c)
	if !valid {
		return
	}
	cs, valid := h.userContexts(c, uid)
	if !valid {
		return
	}
	out, err := h.privacy.ExportUserData(c.Request.Context(), uid, cs)
	if err != nil {
		failInternal(c, ErrCodeExportFailed, "could not export user data", err)
		return
	}
	ok(c, http.StatusOK, UserExportResponse{UserID: uid, Contexts: out})
}

// DeleteUser godoc
// @ID          privacyDeleteUser
// @Summary     Erase a user's data
// @Description Deletes the user's records in the given contexts, or in every context when ?context= is absent.
// @Tags        Privacy
// @Produce     json
// @Security    BearerAuth
// @Param       id       path      int     true   "User ID"
// @Param       context  query     string  false  "Context filter, repeatable"  example(course:10)
// @Success     200  {object}  handlers.DeletedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /privacy/users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	uid, valid := pathUserID(c)
	if !valid {
		return
	}
	cs, valid := h.userContexts(c, uid)
	if !valid {
		return
	}
	n, err := h.privacy.DeleteForUser(c.Request.Context(), uid, cs)
	if err != nil {
		failInternal(c, ErrCodeDeleteFailed, "could not delete user data", err)
		return
	}
	ok(c, http.StatusOK, DeletedResponse{Deleted: n})
}

// ContextUsers godoc
// @ID          privacyContextUsers
// @Summary     Users with data in a context
// @Tags        Privacy
// @Produce     json
// @Security    BearerAuth
// @Param       context  path      string  true  "Context"  example(course:10)
// @Success     200  {object}  handlers.ContextUsersResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /privacy/contexts/{context}/users [get]
func (h *Handlers) ContextUsers(c *gin.Context) {
	pc, valid := pathContext(c)
	if !valid {
		return
	}
	ids, err := h.privacy.UsersInContext(c.Request.Context(), pc)
	if err != nil {
		failInternal(c, ErrCodeListFailed, "could not list users", err)
		return
	}
	ok(c, http.StatusOK, ContextUsersResponse{Context: pc.String(), UserIDs: ids})
}

// DeleteContext godoc
// @ID          privacyDeleteContext
// @Summary     Erase all data in a context
// @Tags        Privacy
// @Produce     json
// @Security    BearerAuth
// @Param       context  path      string  true  "Context"  example(course:10)
// @Success     200  {object}  handlers.DeletedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /privacy/contexts/{context} [delete]
func (h *Handlers) DeleteContext(c *gin.Context) {
	pc, valid := pathContext(c)
	if !valid {
		return
	}
	n, err := h.privacy.DeleteAllInContext(c.Request.Context(), pc)
	if err != nil {
		failInternal(c, ErrCodeDeleteFailed, "could not delete context data", err)
		return
	}
	ok(c, http.StatusOK, DeletedResponse{Deleted: n})
}

// DeleteContextUsers godoc
// @ID          privacyDeleteContextUsers
// @Summary     Erase a set of users in a context
// @Description An empty user_ids list deletes nothing.
// @Tags        Privacy
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       context  path      string                       true  "Context"  example(course:10)
// @Param       body     body      handlers.DeleteUsersRequest  true  "Users"
// @Success     200  {object}  handlers.DeletedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /privacy/contexts/{context}/delete-users [post]
func (h *Handlers) DeleteContextUsers(c *gin.Context) {
	pc, valid := pathContext(c)
	if !valid {
		return
	}
	var req DeleteUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_ids must be a list of positive integers")
		return
	}
	n, err := h.privacy.DeleteForUsers(c.Request.Context(), pc, req.UserIDs)
	if err != nil {
		failInternal(c, ErrCodeDeleteFailed, "could not delete users", err)
		return
	}
	ok(c, http.StatusOK, DeletedResponse{Deleted: n})
}
