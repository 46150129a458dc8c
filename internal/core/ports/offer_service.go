package ports

import (
	"context"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// OfferDecision is the outcome of an accept or reject.
type OfferDecision struct {
	OfferID string             `json:"offer_id"`
	Status  domain.OfferStatus `json:"status"`
	DealID  string             `json:"deal_id,omitempty"`
	// Resumed is true when an earlier acceptance left the offer accepted
	// without a deal and this call only created the missing deal.
	Resumed bool `json:"resumed,omitempty"`
}

// OfferService runs the entrepreneur's accept/reject workflow.
type OfferService interface {
	Accept(ctx context.Context, sess Session, offerID string) (*OfferDecision, error)
	Reject(ctx context.Context, sess Session, offerID string) (*OfferDecision, error)
}
