package view

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/service"
	"github.com/microsharks/dealroom/internal/pkg/money"
)

// Perspective selects which side of a two-party row a card is rendered for.
type Perspective int

const (
	// FounderView is the entrepreneur looking at their own proposals, the
	// offers they received and the deals they closed.
	FounderView Perspective = iota
	// InvestorView is the investor looking at the marketplace, the offers
	// they made and their portfolio.
	InvestorView
)

const (
	unknownInvestor = "Unknown Investor"
	unknownFounder  = "Unknown Founder"
	unknownProposal = "Unknown Proposal"
	noTagline       = "No tagline provided."
	uncategorized   = "Uncategorized"
)

// ---- Proposal card ----

type ProposalCard struct {
	ID          string
	Title       string
	Status      string
	StatusClass string
	Tagline     string
	Location    string
	Category    string
	Score       int
	ScoreClass  string
	Target      string
	Equity      string
	FundingPct  int
	DetailURL   string
	EditURL     string
	// Invest is set for the investor view; owners get an edit link instead.
	Invest bool
}

func NewProposalCard(p domain.Proposal, as Perspective) ProposalCard {
	c := ProposalCard{
		ID:          p.ID,
		Title:       p.Title,
		Status:      string(p.Status),
		StatusClass: proposalStatusClass(p.Status),
		Tagline:     orDefault(p.Tagline, noTagline),
		Location:    p.Location,
		Category:    orDefault(p.Category, uncategorized),
		Score:       p.SuccessScore,
		ScoreClass:  ScoreClass(p.SuccessScore),
		Target:      money.NullINR(p.AmountNeeded),
		Equity:      money.Percent(p.EquityOffered),
		FundingPct:  service.FundingPercent(domain.OrZero(p.FundingReceived), domain.OrZero(p.AmountNeeded)),
		DetailURL:   expandLink(links().ProposalDetail, p.ID),
		Invest:      as == InvestorView,
	}
	if !c.Invest {
		c.EditURL = expandLink(links().ProposalEdit, p.ID)
	}
	return c
}

// ScoreClass buckets a success score into good (>= 80), mid (>= 50) or low.
func ScoreClass(score int) string {
	switch {
	case score >= 80:
		return "score-good"
	case score >= 50:
		return "score-mid"
	}
	return "score-low"
}

func proposalStatusClass(s domain.ProposalStatus) string {
	switch s {
	case domain.ProposalPending, domain.ProposalActive, domain.ProposalFunded, domain.ProposalClosed, domain.ProposalFailed:
		return "status-" + string(s)
	}
	return "status-pending"
}

// ---- Offer card ----

type OfferCard struct {
	ID             string
	Anchor         string
	Amount         string
	Status         string
	StatusClass    string
	PartnerLabel   string
	PartnerName    string
	PartnerInitial string
	ProposalTitle  string
	Equity         string
	Valuation      string
	Message        string
	Submitted      string
	DetailURL      string
	// CanDecide shows Accept/Decline; only founders see it, only on pending offers.
	CanDecide bool
}

// NewOfferCard reads the investor join for founders and the proposal owner
// join for investors.
func NewOfferCard(o domain.OfferWithParties, as Perspective) OfferCard {
	c := OfferCard{
		ID:            o.ID,
		Anchor:        "offer-" + o.ID,
		Amount:        money.NullINR(o.Amount),
		Status:        string(o.Status),
		StatusClass:   offerStatusClass(o.Status),
		ProposalTitle: unknownProposal,
		Equity:        money.Percent(o.EquityPercentage),
		Valuation:     "N/A",
		Message:       Truncate(o.Message, messagePreview),
		Submitted:     Date(o.CreatedAt),
		DetailURL:     expandLink(links().OfferDetail, o.ID),
	}
	if o.Proposal != nil && o.Proposal.Title != "" {
		c.ProposalTitle = o.Proposal.Title
	}
	if o.Valuation.Valid && !o.Valuation.Decimal.IsZero() {
		c.Valuation = money.INR(o.Valuation.Decimal)
	}

	switch as {
	case FounderView:
		c.PartnerLabel = "From"
		c.PartnerName = unknownInvestor
		if o.Investor != nil && o.Investor.FullName != "" {
			c.PartnerName = o.Investor.FullName
		}
		c.CanDecide = o.Status == domain.OfferPending
	case InvestorView:
		c.PartnerLabel = "Proposal by"
		c.PartnerName = unknownFounder
		if o.Proposal != nil && o.Proposal.Owner != nil && o.Proposal.Owner.FullName != "" {
			c.PartnerName = o.Proposal.Owner.FullName
		}
	}
	c.PartnerInitial = domain.Initial(c.PartnerName)
	return c
}

func offerStatusClass(s domain.OfferStatus) string {
	if s.Known() {
		return "status-" + string(s)
	}
	return "status-pending"
}

// ---- Deal card ----

type DealCard struct {
	ID            string
	ProposalTitle string
	PartnerName   string
	Amount        string
	Equity        string
	DealDate      string
	Reference     string
	ProposalURL   string
}

// NewDealCard reads the entrepreneur join for investors and the investor
// join for founders.
func NewDealCard(d domain.DealWithParties, as Perspective) DealCard {
	c := DealCard{
		ID:            d.ID,
		ProposalTitle: unknownProposal,
		Amount:        money.NullINR(d.InvestmentAmount),
		Equity:        money.Percent(d.EquityPercentage),
		Reference:     DealRef(d.ID),
		ProposalURL:   expandLink(links().ProposalDetail, d.ProposalID),
	}
	if !d.DealDate.IsZero() {
		c.DealDate = Date(d.DealDate)
	}
	if d.Proposal != nil && d.Proposal.Title != "" {
		c.ProposalTitle = d.Proposal.Title
	}

	switch as {
	case FounderView:
		c.PartnerName = unknownInvestor
		if d.Investor != nil && d.Investor.FullName != "" {
			c.PartnerName = d.Investor.FullName
		}
	case InvestorView:
		c.PartnerName = unknownFounder
		if d.Entrepreneur != nil && d.Entrepreneur.FullName != "" {
			c.PartnerName = d.Entrepreneur.FullName
		}
	}
	return c
}

// ---- Activity ----

// Activity is the founder overview: every pending offer first, then the
// latest proposals. Empty is set when there is nothing to show.
type Activity struct {
	Offers    []OfferCard
	Proposals []ProposalCard
	Empty     bool
}

func NewActivity(pending []domain.OfferWithParties, recent []domain.Proposal) Activity {
	a := Activity{
		Offers:    make([]OfferCard, 0, len(pending)),
		Proposals: make([]ProposalCard, 0, len(recent)),
	}
	for _, o := range pending {
		a.Offers = append(a.Offers, NewOfferCard(o, FounderView))
	}
	for _, p := range recent {
		a.Proposals = append(a.Proposals, NewProposalCard(p, FounderView))
	}
	a.Empty = len(a.Offers) == 0 && len(a.Proposals) == 0
	return a
}

// ---- Admin cards ----

type PendingUserCard struct {
	ID       string
	FullName string
	Email    string
	Role     string
	Joined   string
}

func NewPendingUserCard(u domain.User) PendingUserCard {
	return PendingUserCard{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     string(u.Role),
		Joined:   Date(u.CreatedAt),
	}
}

type PendingProposalCard struct {
	ID         string
	Title      string
	OwnerName  string
	OwnerEmail string
	Needed     string
	Category   string
}

func NewPendingProposalCard(p domain.ProposalWithOwner) PendingProposalCard {
	c := PendingProposalCard{
		ID:        p.ID,
		Title:     p.Title,
		OwnerName: "Unknown",
		Needed:    CompactINR(domain.OrZero(p.AmountNeeded)),
		Category:  orDefault(p.Category, "N/A"),
	}
	if p.Owner != nil {
		c.OwnerName = orDefault(p.Owner.FullName, c.OwnerName)
		c.OwnerEmail = p.Owner.Email
	}
	return c
}

// ---- Stats ----

type StatCard struct {
	Key   string
	Label string
	Value string
}

func count[T ~int | ~int64](v T) string { return strconv.FormatInt(int64(v), 10) }

func rupees(d decimal.Decimal) string { return CompactINR(d) }

// ---- Empty state ----

type EmptyState struct {
	Icon    string
	Title   string
	Message string
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
