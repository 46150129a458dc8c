package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus is the lifecycle state of an investment offer.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	// OfferCountered and OfferWithdrawn are stored and rendered but nothing
	// transitions an offer into them.
	OfferCountered OfferStatus = "countered"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// offerTransitions defines the allowed state machine transitions.
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending: {OfferAccepted, OfferRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Known reports whether s is one of the recognised offer statuses.
func (s OfferStatus) Known() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected, OfferCountered, OfferWithdrawn:
		return true
	}
	return false
}

// Offer is an investor's proposed terms against a proposal.
type Offer struct {
	ID               string              `json:"id"`
	ProposalID       string              `json:"proposal_id"`
	InvestorID       string              `json:"investor_id"`
	Amount           decimal.NullDecimal `json:"amount"`
	EquityPercentage decimal.NullDecimal `json:"equity_percentage"`
	Valuation        decimal.NullDecimal `json:"valuation"`
	Message          string              `json:"message,omitempty"`
	Status           OfferStatus         `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	AcceptedAt       *time.Time          `json:"accepted_at,omitempty"`
}

// OfferWithParties is an offer plus the joined rows a card needs.
//
// Reads scoped to an entrepreneur populate Investor. Reads scoped to an
// investor populate Proposal.Owner instead. Renderers rely on that shape.
type OfferWithParties struct {
	Offer
	Proposal *ProposalRef `json:"proposal,omitempty"`
	Investor *UserRef     `json:"investor,omitempty"`
}
