package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextKeyUserID holds the token subject once Auth has run.
const ContextKeyUserID = "user_id"

// AuthOptions configures Auth.
type AuthOptions struct {
	Secret string
	// Cookie is checked before the Authorization header. Empty means bearer only.
	Cookie string
	// LoginURL, when set, turns a missing or invalid token into a redirect
	// instead of a 401. Used for the HTML routes.
	LoginURL string
}

// Auth verifies the session token issued by the identity provider and puts
// its subject in the context. Tokens must be HS256 and carry a sub claim.
func Auth(opts AuthOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c, opts.Cookie)
			if raw == "" {
				return unauthenticated(c, opts.LoginURL, "missing session token")
			}

			claims := jwt.RegisteredClaims{}
			tkn, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
				return []byte(opts.Secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !tkn.Valid || claims.Subject == "" {
				return unauthenticated(c, opts.LoginURL, "invalid session token")
			}

			c.Set(ContextKeyUserID, claims.Subject)
			return next(c)
		}
	}
}

func tokenFrom(c echo.Context, cookie string) string {
	if cookie != "" {
		if ck, err := c.Cookie(cookie); err == nil && ck.Value != "" {
			return ck.Value
		}
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func unauthenticated(c echo.Context, loginURL, msg string) error {
	if loginURL != "" {
		return c.Redirect(http.StatusSeeOther, loginURL)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
