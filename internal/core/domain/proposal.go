package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposalStatus is the lifecycle state of a funding request.
type ProposalStatus string

const (
	ProposalPending ProposalStatus = "pending"
	ProposalActive  ProposalStatus = "active"
	ProposalFunded  ProposalStatus = "funded"
	ProposalClosed  ProposalStatus = "closed"
	ProposalFailed  ProposalStatus = "failed"
)

// Proposal is a funding request created by an entrepreneur.
type Proposal struct {
	ID              string              `json:"id"`
	OwnerID         string              `json:"user_id"`
	Title           string              `json:"title"`
	Tagline         string              `json:"tagline,omitempty"`
	Category        string              `json:"category,omitempty"`
	Location        string              `json:"location,omitempty"`
	AmountNeeded    decimal.NullDecimal `json:"amount_needed"`
	EquityOffered   decimal.NullDecimal `json:"equity_offered"`
	FundingReceived decimal.NullDecimal `json:"funding_received"`
	Status          ProposalStatus      `json:"status"`
	Verified        bool                `json:"verified"`
	SuccessScore    int                 `json:"success_score"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ProposalRef is the subset of a proposal embedded in joined reads. Owner is
// only populated by reads that join proposals to their owning user.
type ProposalRef struct {
	ID    string   `json:"id,omitempty"`
	Title string   `json:"title"`
	Owner *UserRef `json:"owner,omitempty"`
}

// ProposalWithOwner is a proposal joined to its owner profile.
type ProposalWithOwner struct {
	Proposal
	Owner *UserRef `json:"owner,omitempty"`
}

// VerificationStatus returns the status a proposal moves to after review.
func VerificationStatus(approve bool) ProposalStatus {
	if approve {
		return ProposalActive
	}
	return ProposalClosed
}

// OrZero returns the value of d, or zero when d is null.
func OrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
