package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/microsharks/dealroom/internal/api/middleware"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/view"
)

// ---------------------------------------------------------------------------
// In-memory stub services
// ---------------------------------------------------------------------------

type stubDashboard struct {
	loadFn    func(ctx context.Context, sess ports.Session) (ports.Section, error)
	fundingFn func(ctx context.Context, sess ports.Session) ([]domain.Proposal, error)
}

func (s *stubDashboard) Open(ctx context.Context, userID string) (*ports.Session, error) {
	return nil, domain.ErrProfileNotFound
}

func (s *stubDashboard) Load(ctx context.Context, sess ports.Session) (ports.Section, error) {
	return s.loadFn(ctx, sess)
}

func (s *stubDashboard) FundingSeries(ctx context.Context, sess ports.Session) ([]domain.Proposal, error) {
	return s.fundingFn(ctx, sess)
}

type stubOffers struct {
	acceptFn func(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error)
	rejectFn func(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error)
}

func (s *stubOffers) Accept(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
	return s.acceptFn(ctx, sess, offerID)
}

func (s *stubOffers) Reject(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
	return s.rejectFn(ctx, sess, offerID)
}

type stubNotes struct {
	feedFn    func(ctx context.Context, userID string) (*ports.NotificationFeed, error)
	openFn    func(ctx context.Context, userID, id string) (*domain.Notification, error)
	readAllFn func(ctx context.Context, userID string) (int64, error)
}

func (s *stubNotes) Feed(ctx context.Context, userID string) (*ports.NotificationFeed, error) {
	return s.feedFn(ctx, userID)
}

func (s *stubNotes) Open(ctx context.Context, userID, id string) (*domain.Notification, error) {
	return s.openFn(ctx, userID, id)
}

func (s *stubNotes) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.readAllFn(ctx, userID)
}

type stubAdmin struct {
	userFn     func(ctx context.Context, sess ports.Session, id string, approve bool) error
	proposalFn func(ctx context.Context, sess ports.Session, id string, approve bool) error
}

func (s *stubAdmin) VerifyUser(ctx context.Context, sess ports.Session, id string, approve bool) error {
	return s.userFn(ctx, sess, id, approve)
}

func (s *stubAdmin) VerifyProposal(ctx context.Context, sess ports.Session, id string, approve bool) error {
	return s.proposalFn(ctx, sess, id, approve)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.Renderer = view.MustRenderer()
	return e
}

func sessionFor(role domain.Role) *ports.Session {
	return &ports.Session{
		User: domain.User{ID: "u-1", FullName: "Asha Rao", Role: role, Verified: true},
		Now:  time.Date(2026, 5, 4, 9, 5, 7, 0, time.UTC),
	}
}

// newContext builds a request context for route with the given path params
// and, when sess is non-nil, a loaded session.
func newContext(e *echo.Echo, method, route, target, body, contentType string, sess *ports.Session, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(route)
	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if sess != nil {
		c.Set(middleware.ContextKeySession, sess)
	}
	return c, rec
}
