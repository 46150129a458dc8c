package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/microsharks/dealroom/internal/core/ports"
)

// offersReload is where a decision sends the browser.
const offersReload = "/dashboard?tab=offers"

// OfferHandler runs the entrepreneur's accept and reject actions.
type OfferHandler struct {
	offers ports.OfferService
}

func NewOfferHandler(offers ports.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// Accept handles POST /dashboard/offers/:id/accept and POST /v1/offers/:id/accept.
//
// @Summary      Accept a pending offer and open the deal
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Offer id"
// @Success      200  {object}  offerDecisionResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/offers/{id}/accept [post]
func (h *OfferHandler) Accept(c echo.Context) error {
	return h.decide(c, h.offers.Accept)
}

// Reject handles POST /dashboard/offers/:id/reject and POST /v1/offers/:id/reject.
//
// @Summary      Reject a pending offer
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Offer id"
// @Success      200  {object}  offerDecisionResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/offers/{id}/reject [post]
func (h *OfferHandler) Reject(c echo.Context) error {
	return h.decide(c, h.offers.Reject)
}

type decideFunc func(ctx context.Context, sess ports.Session, offerID string) (*ports.OfferDecision, error)

func (h *OfferHandler) decide(c echo.Context, fn decideFunc) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	p := idParam{ID: c.Param("id")}
	if err := c.Validate(&p); err != nil {
		return err
	}

	decision, err := fn(c.Request().Context(), sess, p.ID)
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, offerDecisionResponse{OfferDecision: decision, Reload: true})
	}
	return c.Redirect(http.StatusSeeOther, offersReload)
}
