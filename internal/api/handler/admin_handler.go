package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/view"
)

// AdminHandler applies verification decisions from the admin tabs.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// VerifyUser handles POST /dashboard/admin/users/:id/verify and POST /v1/admin/users/:id/verify.
//
// @Summary      Approve or reject a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "User id"
// @Param        body  body      verifyRequest  true  "Decision"
// @Success      200   {object}  verifyResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/admin/users/{id}/verify [post]
func (h *AdminHandler) VerifyUser(c echo.Context) error {
	return h.verify(c, h.admin.VerifyUser, view.TabPendingUsers)
}

// VerifyProposal handles POST /dashboard/admin/proposals/:id/verify and POST /v1/admin/proposals/:id/verify.
//
// @Summary      Approve or reject a proposal
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Proposal id"
// @Param        body  body      verifyRequest  true  "Decision"
// @Success      200   {object}  verifyResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/admin/proposals/{id}/verify [post]
func (h *AdminHandler) VerifyProposal(c echo.Context) error {
	return h.verify(c, h.admin.VerifyProposal, view.TabPendingProposals)
}

type verifyFunc func(ctx context.Context, sess ports.Session, id string, approve bool) error

func (h *AdminHandler) verify(c echo.Context, fn verifyFunc, tab string) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	req, err := bindVerify(c)
	if err != nil {
		return err
	}

	if err := fn(c.Request().Context(), sess, req.ID, *req.Approve); err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, verifyResponse{ID: req.ID, Approved: *req.Approve, Reload: true})
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard?tab="+tab)
}

// bindVerify reads the decision from a JSON body or from the admin card form.
func bindVerify(c echo.Context) (verifyRequest, error) {
	var req verifyRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := c.Bind(&req); err != nil {
			return req, &ValidationError{Message: "invalid payload"}
		}
	} else {
		req.ID = c.Param("id")
		if v := c.FormValue("approve"); v != "" {
			approve, err := strconv.ParseBool(v)
			if err != nil {
				return req, &ValidationError{Message: "approve must be true or false"}
			}
			req.Approve = &approve
		}
	}
	return req, c.Validate(&req)
}
