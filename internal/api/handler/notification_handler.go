package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/view"
)

const notificationsPanel = "/dashboard/notifications"

// NotificationHandler serves the bell panel and its read actions.
type NotificationHandler struct {
	notes ports.NotificationService
}

func NewNotificationHandler(notes ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

// Panel handles GET /dashboard/notifications.
func (h *NotificationHandler) Panel(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	feed, err := h.notes.Feed(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	panel := view.NewNotificationPanel(feed)
	panel.CSRF = csrfToken(c)
	return c.Render(http.StatusOK, view.TemplateNotifications, panel)
}

// Open handles GET /dashboard/notifications/:id/open. It follows the
// notification link when it has one and returns to the panel otherwise.
func (h *NotificationHandler) Open(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	p := idParam{ID: c.Param("id")}
	if err := c.Validate(&p); err != nil {
		return err
	}

	n, err := h.notes.Open(c.Request().Context(), sess.UserID(), p.ID)
	if err != nil {
		return err
	}
	if n.Navigable() {
		return c.Redirect(http.StatusSeeOther, n.Link)
	}
	return c.Redirect(http.StatusSeeOther, notificationsPanel)
}

// ReadAll handles POST /dashboard/notifications/read-all and POST /v1/notifications/read-all.
//
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  markAllReadResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/notifications/read-all [post]
func (h *NotificationHandler) ReadAll(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	n, err := h.notes.MarkAllRead(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, markAllReadResponse{Updated: n})
	}
	return c.Redirect(http.StatusSeeOther, notificationsPanel)
}

// List handles GET /v1/notifications.
//
// @Summary      List recent notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.NotificationFeed
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	feed, err := h.notes.Feed(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feed)
}

// Read handles POST /v1/notifications/:id/read.
//
// @Summary      Mark one notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  domain.Notification
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) Read(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	p := idParam{ID: c.Param("id")}
	if err := c.Validate(&p); err != nil {
		return err
	}
	n, err := h.notes.Open(c.Request().Context(), sess.UserID(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}
