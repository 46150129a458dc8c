package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingLog is an append-only record of capital committed to a proposal.
// The store is expected to roll these up into proposals.funding_received.
type FundingLog struct {
	ID          string              `json:"id"`
	ProposalID  string              `json:"proposal_id"`
	InvestorID  string              `json:"investor_id"`
	Amount      decimal.NullDecimal `json:"amount"`
	EquityGiven decimal.NullDecimal `json:"equity_given"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewFundingLogFromOffer builds the audit row for an accepted offer.
func NewFundingLogFromOffer(id string, o Offer, at time.Time) *FundingLog {
	return &FundingLog{
		ID:          id,
		ProposalID:  o.ProposalID,
		InvestorID:  o.InvestorID,
		Amount:      o.Amount,
		EquityGiven: o.EquityPercentage,
		CreatedAt:   at,
	}
}
