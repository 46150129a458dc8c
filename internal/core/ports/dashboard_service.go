package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// EntrepreneurStats are the stat cards of the entrepreneur section.
type EntrepreneurStats struct {
	TotalProposals  int             `json:"total_proposals"`
	FundingReceived decimal.Decimal `json:"funding_received"`
	PendingOffers   int64           `json:"pending_offers"`
	SuccessRate     int             `json:"success_rate"`
}

// InvestorStats are the stat cards of the investor section.
type InvestorStats struct {
	TotalInvestments int             `json:"total_investments"`
	AmountInvested   decimal.Decimal `json:"amount_invested"`
	SuccessfulDeals  int             `json:"successful_deals"`
	PendingOffers    int64           `json:"pending_offers"`
	// AverageROI is a fixed placeholder until returns are tracked.
	AverageROI string `json:"average_roi"`
}

// AdminStats are the stat cards of the admin section.
type AdminStats struct {
	TotalUsers           int64           `json:"total_users"`
	UnverifiedUsers      int64           `json:"unverified_users"`
	UnverifiedProposals  int64           `json:"unverified_proposals"`
	PendingVerifications int64           `json:"pending_verifications"`
	TotalProposals       int64           `json:"total_proposals"`
	TotalFunding         decimal.Decimal `json:"total_funding"`
}

// Section is the role-specific part of the dashboard. The set of
// implementations is closed: EntrepreneurSection, InvestorSection and
// AdminSection.
type Section interface {
	Role() domain.Role
	// Degraded lists the widgets whose reads failed.
	Degraded() []string
	section()
}

// EntrepreneurSection holds everything the entrepreneur tabs render.
type EntrepreneurSection struct {
	Stats     EntrepreneurStats `json:"stats"`
	Proposals []domain.Proposal `json:"proposals"`
	// PendingOffers and Recent feed the recent-activity tab.
	PendingOffers []domain.OfferWithParties `json:"pending_offers"`
	Recent        []domain.Proposal         `json:"recent_proposals"`
	Offers        []domain.OfferWithParties `json:"offers"`
	Deals         []domain.DealWithParties  `json:"deals"`
	Failed        []string                  `json:"degraded,omitempty"`
}

// InvestorSection holds everything the investor tabs render.
type InvestorSection struct {
	Stats       InvestorStats             `json:"stats"`
	Marketplace []domain.Proposal         `json:"marketplace"`
	Offers      []domain.OfferWithParties `json:"offers"`
	Deals       []domain.DealWithParties  `json:"deals"`
	Failed      []string                  `json:"degraded,omitempty"`
}

// AdminSection holds everything the admin tabs render.
type AdminSection struct {
	Stats            AdminStats                 `json:"stats"`
	PendingUsers     []domain.User              `json:"pending_users"`
	PendingProposals []domain.ProposalWithOwner `json:"pending_proposals"`
	Failed           []string                   `json:"degraded,omitempty"`
}

func (EntrepreneurSection) Role() domain.Role { return domain.RoleEntrepreneur }
func (InvestorSection) Role() domain.Role     { return domain.RoleInvestor }
func (AdminSection) Role() domain.Role        { return domain.RoleAdmin }

func (s EntrepreneurSection) Degraded() []string { return s.Failed }
func (s InvestorSection) Degraded() []string     { return s.Failed }
func (s AdminSection) Degraded() []string        { return s.Failed }

func (EntrepreneurSection) section() {}
func (InvestorSection) section()     {}
func (AdminSection) section()        {}

// DashboardService resolves the viewer and loads their section.
type DashboardService interface {
	// Open loads the profile behind an authenticated user id.
	// Returns domain.ErrProfileNotFound when the id has no profile row.
	Open(ctx context.Context, userID string) (*Session, error)
	// Load fans out the section reads for the session's role.
	Load(ctx context.Context, sess Session) (Section, error)
	// FundingSeries returns the viewer's proposals for the funding chart.
	FundingSeries(ctx context.Context, sess Session) ([]domain.Proposal, error)
}
