package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const secret = "secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// claims builds registered claims; a zero ttl leaves out the expiry.
func claims(sub string, ttl time.Duration) jwt.RegisteredClaims {
	c := jwt.RegisteredClaims{Subject: sub}
	if ttl != 0 {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return c
}

func validToken(t *testing.T, sub string) string {
	return sign(t, jwt.SigningMethodHS256, []byte(secret), claims(sub, time.Hour))
}

func runAuth(t *testing.T, opts AuthOptions, prepare func(*http.Request)) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	prepare(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var uid string
	called := false
	h := Auth(opts)(func(c echo.Context) error {
		called = true
		uid, _ = c.Get(ContextKeyUserID).(string)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, uid, called
}

func TestAuth_BearerToken(t *testing.T) {
	tok := validToken(t, "ent-1")
	rec, uid, called := runAuth(t, AuthOptions{Secret: secret}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})
	if !called || uid != "ent-1" || rec.Code != http.StatusOK {
		t.Fatalf("called=%v uid=%q code=%d", called, uid, rec.Code)
	}
}

func TestAuth_CookieWinsOverHeader(t *testing.T) {
	cookieTok := validToken(t, "from-cookie")
	headerTok := validToken(t, "from-header")
	_, uid, _ := runAuth(t, AuthOptions{Secret: secret, Cookie: "sb-access-token"}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: cookieTok})
		r.Header.Set("Authorization", "Bearer "+headerTok)
	})
	if uid != "from-cookie" {
		t.Fatalf("uid = %q, want from-cookie", uid)
	}
}

func TestAuth_MissingTokenJSON(t *testing.T) {
	rec, _, called := runAuth(t, AuthOptions{Secret: secret}, func(*http.Request) {})
	if called {
		t.Fatal("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_MissingTokenHTMLRedirects(t *testing.T) {
	rec, _, called := runAuth(t, AuthOptions{Secret: secret, LoginURL: "/login"}, func(*http.Request) {})
	if called {
		t.Fatal("should not reach next")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), claims("ent-1", time.Hour)),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(secret), claims("ent-1", -time.Minute)),
		"no expiry":    sign(t, jwt.SigningMethodHS256, []byte(secret), claims("ent-1", 0)),
		"no subject":   sign(t, jwt.SigningMethodHS256, []byte(secret), claims("", time.Hour)),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(secret), claims("ent-1", time.Hour)),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runAuth(t, AuthOptions{Secret: secret}, func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+tok)
			})
			if called || rec.Code != http.StatusUnauthorized {
				t.Fatalf("called=%v code=%d", called, rec.Code)
			}
		})
	}
}

func TestAuth_InvalidHeaderFormat(t *testing.T) {
	rec, _, called := runAuth(t, AuthOptions{Secret: secret}, func(r *http.Request) {
		r.Header.Set("Authorization", "Token abc")
	})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("called=%v code=%d", called, rec.Code)
	}
}
