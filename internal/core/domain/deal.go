package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealStatusActive is the status every new deal starts in.
const DealStatusActive = "active"

// Deal is the record created when an offer is accepted.
type Deal struct {
	ID               string              `json:"id"`
	OfferID          string              `json:"offer_id"`
	ProposalID       string              `json:"proposal_id"`
	EntrepreneurID   string              `json:"entrepreneur_id"`
	InvestorID       string              `json:"investor_id"`
	InvestmentAmount decimal.NullDecimal `json:"investment_amount"`
	EquityPercentage decimal.NullDecimal `json:"equity_percentage"`
	Status           string              `json:"deal_status"`
	DealDate         time.Time           `json:"deal_date"`
}

// DealWithParties is a deal plus joined rows. Entrepreneur-scoped reads fill
// Investor; investor-scoped reads fill Entrepreneur.
type DealWithParties struct {
	Deal
	Proposal     *ProposalRef `json:"proposal,omitempty"`
	Investor     *UserRef     `json:"investor_profile,omitempty"`
	Entrepreneur *UserRef     `json:"entrepreneur_profile,omitempty"`
}

// NewDealFromOffer builds the deal row for an accepted offer.
func NewDealFromOffer(id string, o Offer, entrepreneurID string, at time.Time) *Deal {
	return &Deal{
		ID:               id,
		OfferID:          o.ID,
		ProposalID:       o.ProposalID,
		EntrepreneurID:   entrepreneurID,
		InvestorID:       o.InvestorID,
		InvestmentAmount: o.Amount,
		EquityPercentage: o.EquityPercentage,
		Status:           DealStatusActive,
		DealDate:         at,
	}
}
