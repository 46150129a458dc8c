package handler

import (
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

// idParam binds the :id path segment shared by every mutation route.
type idParam struct {
	ID string `param:"id" validate:"required,max=64"`
}

// verifyRequest is the admin review decision. Approve is a pointer so an
// absent field fails validation instead of reading as false.
type verifyRequest struct {
	ID      string `json:"-" param:"id" validate:"required,max=64"`
	Approve *bool  `json:"approve" validate:"required"`
}

// --- Response types ---

type dashboardResponse struct {
	User    domain.User   `json:"user"`
	Role    domain.Role   `json:"role"`
	Section ports.Section `json:"section" swaggertype:"object"`
	Unread  int           `json:"unread_notifications"`
}

type offerDecisionResponse struct {
	*ports.OfferDecision
	// Reload tells the client to refetch the dashboard.
	Reload bool `json:"reload"`
}

type verifyResponse struct {
	ID       string `json:"id"`
	Approved bool   `json:"approved"`
	Reload   bool   `json:"reload"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}
