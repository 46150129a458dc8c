package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/microsharks/dealroom/internal/api/middleware"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// sessionFrom returns the session stored by middleware.LoadSession. Its
// absence means the route was registered without the session middleware.
func sessionFrom(c echo.Context) (ports.Session, error) {
	sess, _ := c.Get(middleware.ContextKeySession).(*ports.Session)
	if sess == nil {
		return ports.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return *sess, nil
}

// csrfToken is the token the CSRF middleware issued for this request, or "".
func csrfToken(c echo.Context) string {
	tok, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return tok
}

// wantsJSON reports whether the caller talks to the JSON API.
func wantsJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Path(), "/v1/") ||
		strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
