package view

import (
	"fmt"
	"strings"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// Tab keys. The offers tab is the reload target after an offer decision.
const (
	TabOverview         = "overview"
	TabProposals        = "proposals"
	TabOffers           = "offers"
	TabDeals            = "deals"
	TabMarketplace      = "marketplace"
	TabPendingUsers     = "users"
	TabPendingProposals = "pending-proposals"
)

type Action struct {
	Label string
	URL   string
}

type Header struct {
	Welcome      string
	FullName     string
	Initial      string
	RoleBadge    string
	Verified     bool
	Verification string
	Actions      []Action
}

type Clock struct {
	Time string
	Date string
	// UnixMilli seeds the client-side ticker.
	UnixMilli int64
}

// TabPanel is one tab strip entry plus the cards it renders.
type TabPanel struct {
	Key    string
	Label  string
	Active bool
	Kind   string

	Proposals        []ProposalCard
	Offers           []OfferCard
	Deals            []DealCard
	Activity         Activity
	PendingUsers     []PendingUserCard
	PendingProposals []PendingProposalCard
	Empty            EmptyState
	ShowChart        bool
	CSRF             string
}

// IsEmpty reports whether the panel has no cards of its kind.
func (p TabPanel) IsEmpty() bool {
	switch p.Kind {
	case "activity":
		return p.Activity.Empty
	case "proposals":
		return len(p.Proposals) == 0
	case "offers":
		return len(p.Offers) == 0
	case "deals":
		return len(p.Deals) == 0
	case "users":
		return len(p.PendingUsers) == 0
	case "pending_proposals":
		return len(p.PendingProposals) == 0
	}
	return true
}

// Dashboard is the full page model.
type Dashboard struct {
	Title    string
	Role     string
	Header   Header
	Clock    Clock
	Stats    []StatCard
	Tabs     []TabPanel
	Active   string
	Unread   int
	Degraded []string
	Flash    *Alert
	CSRF     string
}

// WithCSRF stamps the form token on the page and every panel.
func (d *Dashboard) WithCSRF(token string) *Dashboard {
	d.CSRF = token
	for i := range d.Tabs {
		d.Tabs[i].CSRF = token
	}
	return d
}

// ActivePanel returns the selected tab.
func (d *Dashboard) ActivePanel() *TabPanel {
	for i := range d.Tabs {
		if d.Tabs[i].Active {
			return &d.Tabs[i]
		}
	}
	return nil
}

// NewHeader builds the greeting and the role action buttons.
func NewHeader(u domain.User) (Header, error) {
	actions, err := domain.SwitchRole(u.Role,
		func() ([]Action, error) {
			return []Action{{"Submit Proposal", "/proposals/new"}, {"My Portfolio", "/portfolio"}}, nil
		},
		func() ([]Action, error) { return []Action{{"Investor Portfolio", "/investor/portfolio"}}, nil },
		func() ([]Action, error) { return nil, nil },
	)
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Welcome:      "Welcome, " + u.FirstName(),
		FullName:     u.FullName,
		Initial:      domain.Initial(u.FullName),
		RoleBadge:    strings.ToUpper(string(u.Role)),
		Verified:     u.Verified,
		Verification: "⏳ Pending Verification",
		Actions:      actions,
	}
	if u.Verified {
		h.Verification = "✓ Verified"
	}
	return h, nil
}

// TabKeys lists the tabs of a role in display order. The first is the default.
func TabKeys(r domain.Role) ([]string, error) {
	return domain.SwitchRole(r,
		func() ([]string, error) { return []string{TabOverview, TabProposals, TabOffers, TabDeals}, nil },
		func() ([]string, error) { return []string{TabMarketplace, TabOffers, TabDeals}, nil },
		func() ([]string, error) { return []string{TabPendingUsers, TabPendingProposals}, nil },
	)
}

// ResolveTab maps a requested tab to one the role has, falling back to the
// role's first tab. ok is false when the request named an unknown tab.
func ResolveTab(r domain.Role, requested string) (tab string, ok bool, err error) {
	keys, err := TabKeys(r)
	if err != nil {
		return "", false, err
	}
	for _, k := range keys {
		if k == requested {
			return k, true, nil
		}
	}
	return keys[0], requested == "", nil
}

// NewDashboard builds the page model for the viewer's section.
func NewDashboard(sess ports.Session, sec ports.Section, tab string, unread int) (*Dashboard, error) {
	header, err := NewHeader(sess.User)
	if err != nil {
		return nil, err
	}
	active, _, err := ResolveTab(sess.Role(), tab)
	if err != nil {
		return nil, err
	}

	type body struct {
		stats []StatCard
		tabs  []TabPanel
	}
	b, err := domain.SwitchRole(sess.Role(),
		func() (body, error) {
			s, ok := sec.(*ports.EntrepreneurSection)
			if !ok {
				return body{}, fmt.Errorf("unexpected %T for %s", sec, sess.Role())
			}
			return body{entrepreneurStats(s.Stats), entrepreneurTabs(s)}, nil
		},
		func() (body, error) {
			s, ok := sec.(*ports.InvestorSection)
			if !ok {
				return body{}, fmt.Errorf("unexpected %T for %s", sec, sess.Role())
			}
			return body{investorStats(s.Stats), investorTabs(s)}, nil
		},
		func() (body, error) {
			s, ok := sec.(*ports.AdminSection)
			if !ok {
				return body{}, fmt.Errorf("unexpected %T for %s", sec, sess.Role())
			}
			return body{adminStats(s.Stats), adminTabs(s)}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	for i := range b.tabs {
		b.tabs[i].Active = b.tabs[i].Key == active
	}

	return &Dashboard{
		Title:    "Dashboard",
		Role:     string(sess.Role()),
		Header:   header,
		Clock:    Clock{Time: ClockTime(sess.Now), Date: ClockDate(sess.Now), UnixMilli: sess.Now.UnixMilli()},
		Stats:    b.stats,
		Tabs:     b.tabs,
		Active:   active,
		Unread:   unread,
		Degraded: sec.Degraded(),
	}, nil
}

func entrepreneurStats(s ports.EntrepreneurStats) []StatCard {
	return []StatCard{
		{"total_proposals", "Total Proposals", count(s.TotalProposals)},
		{"funding_received", "Funding Received", rupees(s.FundingReceived)},
		{"pending_offers", "Pending Offers", count(s.PendingOffers)},
		{"success_rate", "Success Rate", count(s.SuccessRate) + "%"},
	}
}

func investorStats(s ports.InvestorStats) []StatCard {
	return []StatCard{
		{"total_investments", "Total Investments", count(s.TotalInvestments)},
		{"amount_invested", "Amount Invested", rupees(s.AmountInvested)},
		{"successful_deals", "Successful Deals", count(s.SuccessfulDeals)},
		{"pending_offers", "Pending Offers", count(s.PendingOffers)},
		{"average_roi", "Average ROI", s.AverageROI},
	}
}

func adminStats(s ports.AdminStats) []StatCard {
	return []StatCard{
		{"total_users", "Total Users", count(s.TotalUsers)},
		{"pending_verifications", "Pending Verifications", count(s.PendingVerifications)},
		{"total_proposals", "Total Proposals", count(s.TotalProposals)},
		{"total_funding", "Total Funding", rupees(s.TotalFunding)},
	}
}

func proposalCards(ps []domain.Proposal, as Perspective) []ProposalCard {
	out := make([]ProposalCard, len(ps))
	for i, p := range ps {
		out[i] = NewProposalCard(p, as)
	}
	return out
}

func offerCards(offers []domain.OfferWithParties, as Perspective) []OfferCard {
	out := make([]OfferCard, len(offers))
	for i, o := range offers {
		out[i] = NewOfferCard(o, as)
	}
	return out
}

func dealCards(ds []domain.DealWithParties, as Perspective) []DealCard {
	out := make([]DealCard, len(ds))
	for i, d := range ds {
		out[i] = NewDealCard(d, as)
	}
	return out
}

func entrepreneurTabs(s *ports.EntrepreneurSection) []TabPanel {
	offersEmpty := EmptyState{"💼", "No Offers Yet", "No investment offers received yet. Get your proposals verified to attract investors."}
	if len(s.Proposals) == 0 {
		offersEmpty = EmptyState{"💼", "No Proposals Yet", "Submit a proposal to start receiving investment offers."}
	}
	return []TabPanel{
		{
			Key: TabOverview, Label: "Overview", Kind: "activity",
			Activity: NewActivity(s.PendingOffers, s.Recent),
			Empty:    EmptyState{"🚀", "Nothing Here Yet", "Submit your first proposal to start attracting investors."},
		},
		{
			Key: TabProposals, Label: "My Proposals", Kind: "proposals",
			Proposals: proposalCards(s.Proposals, FounderView),
			Empty:     EmptyState{"📁", "No Proposals Yet", "Submit your first proposal to get started."},
			ShowChart: len(s.Proposals) > 0,
		},
		{
			Key: TabOffers, Label: "Offer Room", Kind: "offers",
			Offers: offerCards(s.Offers, FounderView),
			Empty:  offersEmpty,
		},
		{
			Key: TabDeals, Label: "Deals", Kind: "deals",
			Deals: dealCards(s.Deals, FounderView),
			Empty: EmptyState{"🤝", "No Deals Yet", "No finalized deals yet."},
		},
	}
}

func investorTabs(s *ports.InvestorSection) []TabPanel {
	return []TabPanel{
		{
			Key: TabMarketplace, Label: "Marketplace", Kind: "proposals",
			Proposals: proposalCards(s.Marketplace, InvestorView),
			Empty:     EmptyState{"🔍", "No Proposals", "No proposals found."},
		},
		{
			Key: TabOffers, Label: "My Offers", Kind: "offers",
			Offers: offerCards(s.Offers, InvestorView),
			Empty:  EmptyState{"💰", "No Offers Yet", "You have not submitted any offers yet. Browse the Marketplace to invest."},
		},
		{
			Key: TabDeals, Label: "Portfolio", Kind: "deals",
			Deals: dealCards(s.Deals, InvestorView),
			Empty: EmptyState{"🤝", "No Deals Yet", "No finalized deals yet."},
		},
	}
}

func adminTabs(s *ports.AdminSection) []TabPanel {
	users := make([]PendingUserCard, len(s.PendingUsers))
	for i, u := range s.PendingUsers {
		users[i] = NewPendingUserCard(u)
	}
	props := make([]PendingProposalCard, len(s.PendingProposals))
	for i, p := range s.PendingProposals {
		props[i] = NewPendingProposalCard(p)
	}
	return []TabPanel{
		{
			Key: TabPendingUsers, Label: "Pending Users", Kind: "users",
			PendingUsers: users,
			Empty:        EmptyState{"✅", "All Clear", "No users pending verification."},
		},
		{
			Key: TabPendingProposals, Label: "Pending Proposals", Kind: "pending_proposals",
			PendingProposals: props,
			Empty:            EmptyState{"✅", "All Clear", "No proposals pending verification."},
		},
	}
}
