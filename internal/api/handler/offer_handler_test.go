package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

func acceptingOffers(t *testing.T) *stubOffers {
	return &stubOffers{
		acceptFn: func(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
			if offerID != "off-1" || sess.UserID() != "u-1" {
				t.Fatalf("unexpected args: %s %s", offerID, sess.UserID())
			}
			return &ports.OfferDecision{OfferID: offerID, Status: domain.OfferAccepted, DealID: "deal-1"}, nil
		},
		rejectFn: func(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
			return &ports.OfferDecision{OfferID: offerID, Status: domain.OfferRejected}, nil
		},
	}
}

func TestOfferHandler_Accept_HTMLRedirects(t *testing.T) {
	e := newEcho()
	h := NewOfferHandler(acceptingOffers(t))

	c, rec := newContext(e, http.MethodPost, "/dashboard/offers/:id/accept", "/dashboard/offers/off-1/accept", "", "", sessionFor(domain.RoleEntrepreneur), "id", "off-1")
	if err := h.Accept(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard?tab=offers" {
		t.Errorf("Location = %q", loc)
	}
}

func TestOfferHandler_Accept_JSON(t *testing.T) {
	e := newEcho()
	h := NewOfferHandler(acceptingOffers(t))

	c, rec := newContext(e, http.MethodPost, "/v1/offers/:id/accept", "/v1/offers/off-1/accept", "", "", sessionFor(domain.RoleEntrepreneur), "id", "off-1")
	if err := h.Accept(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "accepted" || resp["deal_id"] != "deal-1" || resp["reload"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestOfferHandler_Reject_JSON(t *testing.T) {
	e := newEcho()
	h := NewOfferHandler(acceptingOffers(t))

	c, rec := newContext(e, http.MethodPost, "/v1/offers/:id/reject", "/v1/offers/off-2/reject", "", "", sessionFor(domain.RoleEntrepreneur), "id", "off-2")
	if err := h.Reject(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "rejected" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["deal_id"]; ok {
		t.Error("reject must not report a deal")
	}
}

func TestOfferHandler_FailureDoesNotRedirect(t *testing.T) {
	e := newEcho()
	offers := &stubOffers{
		acceptFn: func(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error) {
			return nil, domain.ErrOfferNotPending
		},
	}
	h := NewOfferHandler(offers)

	c, rec := newContext(e, http.MethodPost, "/dashboard/offers/:id/accept", "/dashboard/offers/off-1/accept", "", "", sessionFor(domain.RoleEntrepreneur), "id", "off-1")
	if err := h.Accept(c); !errors.Is(err, domain.ErrOfferNotPending) {
		t.Fatalf("expected ErrOfferNotPending, got %v", err)
	}
	if rec.Header().Get("Location") != "" {
		t.Error("a failed decision must not redirect")
	}
}

func TestOfferHandler_MissingID(t *testing.T) {
	e := newEcho()
	h := NewOfferHandler(acceptingOffers(t))

	c, _ := newContext(e, http.MethodPost, "/v1/offers/:id/accept", "/v1/offers//accept", "", "", sessionFor(domain.RoleEntrepreneur), "id", "")
	var ve *ValidationError
	if err := h.Accept(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
