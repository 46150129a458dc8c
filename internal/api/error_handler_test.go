package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/handler"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/view"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("load session: %w", domain.ErrProfileNotFound), http.StatusNotFound},
		{domain.ErrOfferNotFound, http.StatusNotFound},
		{domain.ErrNotificationNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("accept: %w", domain.ErrOfferNotPending), http.StatusConflict},
		{domain.ErrOfferInProgress, http.StatusConflict},
		{&handler.ValidationError{Message: "id is required"}, http.StatusBadRequest},
		{echo.NewHTTPError(http.StatusUnauthorized, "missing authentication"), http.StatusUnauthorized},
		{domain.ErrUnknownRole, http.StatusForbidden},
		{errors.New("mongo: connection reset"), http.StatusInternalServerError},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/offers/o1/accept", nil), rec)
		h(tc.err, c)

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
			t.Errorf("%v: expected error envelope, got %q", tc.err, rec.Body.String())
		}
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("pq: password authentication failed"), c)

	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestHTTPErrorHandler_DashboardRendersAlertPage(t *testing.T) {
	e := echo.New()
	e.Renderer = view.MustRenderer()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/dashboard/offers/o1/accept", nil), rec)
	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrOfferNotPending, c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "offer is no longer pending") || !strings.Contains(body, `href="/dashboard"`) {
		t.Errorf("unexpected page: %s", body)
	}
}

func TestHTTPErrorHandler_ProfileMissingHasNoBackLink(t *testing.T) {
	e := echo.New()
	e.Renderer = view.MustRenderer()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rec)
	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrProfileNotFound, c)

	body := rec.Body.String()
	if !strings.Contains(body, "profile not found") {
		t.Fatalf("unexpected page: %s", body)
	}
	if strings.Contains(body, "Back to dashboard") {
		t.Error("the dashboard error page must not link back to itself")
	}
}
