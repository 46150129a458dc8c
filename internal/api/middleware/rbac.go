package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// ContextKeySession holds the *ports.Session built by LoadSession.
const ContextKeySession = "session"

// SessionOpener resolves a user id into a session.
type SessionOpener interface {
	Open(ctx context.Context, userID string) (*ports.Session, error)
}

// LoadSession turns the authenticated user id into a session with the
// viewer's profile. A missing profile surfaces as domain.ErrProfileNotFound.
func LoadSession(opener SessionOpener) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get(ContextKeyUserID).(string)
			if uid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			sess, err := opener.Open(c.Request().Context(), uid)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			c.Set(ContextKeySession, sess)
			return next(c)
		}
	}
}

// RBAC lets the request through only when the session role is allowed.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, _ := c.Get(ContextKeySession).(*ports.Session)
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			if _, ok := allowed[sess.Role()]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
