package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/view"
)

// DashboardHandler serves the role dashboard as HTML and JSON.
type DashboardHandler struct {
	dashboard  ports.DashboardService
	notes      ports.NotificationService
	assetsHost string
	log        zerolog.Logger
}

// NewDashboardHandler builds the handler. assetsHost overrides where the
// chart page loads echarts from; empty keeps the go-echarts default.
func NewDashboardHandler(dashboard ports.DashboardService, notes ports.NotificationService, assetsHost string, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, notes: notes, assetsHost: assetsHost, log: log}
}

// Page handles GET /dashboard?tab=.
func (h *DashboardHandler) Page(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	requested := c.QueryParam("tab")
	d, err := h.build(c.Request().Context(), sess, requested)
	if err != nil {
		return err
	}
	if _, ok, _ := view.ResolveTab(sess.Role(), requested); !ok {
		d.Flash = &view.Alert{Kind: view.AlertInfo, Message: fmt.Sprintf("Unknown tab %q, showing %s instead.", requested, d.Active)}
	}

	return c.Render(http.StatusOK, view.TemplatePage, d.WithCSRF(csrfToken(c)))
}

// Tab handles GET /dashboard/tabs/:tab and renders one tab panel.
func (h *DashboardHandler) Tab(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	requested := c.Param("tab")
	if _, ok, err := view.ResolveTab(sess.Role(), requested); err != nil {
		return err
	} else if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "tab not found")
	}

	d, err := h.build(c.Request().Context(), sess, requested)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.TemplateTab, d.WithCSRF(csrfToken(c)).ActivePanel())
}

// FundingChart handles GET /dashboard/charts/funding.
func (h *DashboardHandler) FundingChart(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	proposals, err := h.dashboard.FundingSeries(c.Request().Context(), sess)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return view.FundingChart(c.Response(), proposals, h.assetsHost)
}

// Get handles GET /v1/dashboard.
//
// @Summary      Load the viewer's dashboard section
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	sec, err := h.dashboard.Load(ctx, sess)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		User:    sess.User,
		Role:    sess.Role(),
		Section: sec,
		Unread:  h.unread(ctx, sess),
	})
}

func (h *DashboardHandler) build(ctx context.Context, sess ports.Session, tab string) (*view.Dashboard, error) {
	sec, err := h.dashboard.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return view.NewDashboard(sess, sec, tab, h.unread(ctx, sess))
}

// unread feeds the bell badge. A failed read hides the badge.
func (h *DashboardHandler) unread(ctx context.Context, sess ports.Session) int {
	feed, err := h.notes.Feed(ctx, sess.UserID())
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", sess.UserID()).Msg("notification badge unavailable")
		return 0
	}
	return feed.Unread
}
