package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/handler"
	"github.com/microsharks/dealroom/internal/api/middleware"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

const testSecret = "router-secret"

// ---------------------------------------------------------------------------
// In-memory stub services
// ---------------------------------------------------------------------------

type stubDashboard struct {
	users map[string]domain.User
}

func (s stubDashboard) Open(ctx context.Context, userID string) (*ports.Session, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &ports.Session{User: u, Now: time.Now()}, nil
}

func (s stubDashboard) Load(ctx context.Context, sess ports.Session) (ports.Section, error) {
	return domain.SwitchRole(sess.Role(),
		func() (ports.Section, error) { return &ports.EntrepreneurSection{}, nil },
		func() (ports.Section, error) { return &ports.InvestorSection{}, nil },
		func() (ports.Section, error) { return &ports.AdminSection{}, nil },
	)
}

func (s stubDashboard) FundingSeries(ctx context.Context, sess ports.Session) ([]domain.Proposal, error) {
	return nil, nil
}

type stubOffers struct {
	accepted []string
}

func (s *stubOffers) Accept(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
	s.accepted = append(s.accepted, offerID)
	return &ports.OfferDecision{OfferID: offerID, Status: domain.OfferAccepted, DealID: "deal-1"}, nil
}

func (s *stubOffers) Reject(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
	return &ports.OfferDecision{OfferID: offerID, Status: domain.OfferRejected}, nil
}

type stubNotes struct{}

func (stubNotes) Feed(ctx context.Context, userID string) (*ports.NotificationFeed, error) {
	return &ports.NotificationFeed{}, nil
}

func (stubNotes) Open(ctx context.Context, userID, id string) (*domain.Notification, error) {
	return nil, domain.ErrNotificationNotFound
}

func (stubNotes) MarkAllRead(ctx context.Context, userID string) (int64, error) { return 0, nil }

type stubAdmin struct{}

func (stubAdmin) VerifyUser(ctx context.Context, sess ports.Session, id string, approve bool) error {
	return nil
}

func (stubAdmin) VerifyProposal(ctx context.Context, sess ports.Session, id string, approve bool) error {
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestRouter(t *testing.T) (http.Handler, *stubOffers) {
	t.Helper()
	offers := &stubOffers{}
	e, err := NewRouter(Deps{
		Dashboard: stubDashboard{users: map[string]domain.User{
			"ent-1":   {ID: "ent-1", FullName: "Asha Rao", Role: domain.RoleEntrepreneur},
			"inv-1":   {ID: "inv-1", FullName: "Vik Shah", Role: domain.RoleInvestor},
			"admin-1": {ID: "admin-1", FullName: "Ops", Role: domain.RoleAdmin},
		}},
		Offers:        offers,
		Notifications: stubNotes{},
		Admin:         stubAdmin{},
		Health:        map[string]handler.Pinger{"store": okPinger{}},
		Auth:          middleware.AuthOptions{Secret: testSecret, Cookie: "sb-access-token", LoginURL: "/login"},
		Metrics:       prometheus.NewRegistry(),
		Log:           zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return e, offers
}

func tokenFor(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func serve(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t)

	if rec := serve(r, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("readiness: expected 200, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestRouter_UnauthenticatedHTMLRedirectsToLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_UnauthenticatedJSONIs401(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/v1/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
		t.Errorf("expected error envelope, got %q", rec.Body.String())
	}
}

func TestRouter_DashboardPage(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/dashboard?tab=marketplace", tokenFor(t, "inv-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Welcome, Vik") {
		t.Error("expected investor greeting")
	}
}

func TestRouter_MissingProfileRendersErrorPage(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := serve(r, http.MethodGet, "/dashboard", tokenFor(t, "ghost"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "profile not found") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_OfferRoutesRequireEntrepreneur(t *testing.T) {
	r, offers := newTestRouter(t)

	rec := serve(r, http.MethodPost, "/v1/offers/off-1/accept", tokenFor(t, "inv-1"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(offers.accepted) != 0 {
		t.Fatal("investor must not reach the offer service")
	}

	rec = serve(r, http.MethodPost, "/v1/offers/off-1/accept", tokenFor(t, "ent-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(offers.accepted) != 1 || offers.accepted[0] != "off-1" {
		t.Fatalf("unexpected accepts: %v", offers.accepted)
	}
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users/usr-1/verify", strings.NewReader(`{"approve":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "ent-1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_HTMLFormPostNeedsCSRF(t *testing.T) {
	r, offers := newTestRouter(t)

	rec := serve(r, http.MethodPost, "/dashboard/offers/off-1/accept", tokenFor(t, "ent-1"))
	if rec.Code == http.StatusSeeOther {
		t.Fatal("a form post without a csrf token must be refused")
	}
	if len(offers.accepted) != 0 {
		t.Fatal("offer service must not run without a csrf token")
	}
}

func TestRouter_APIIgnoresSessionCookie(t *testing.T) {
	r, offers := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/offers/off-9/accept", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: tokenFor(t, "ent-1")})
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(offers.accepted) != 0 {
		t.Fatalf("cookie-only request reached the offer service: %v", offers.accepted)
	}
}
