package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

var errStub = errors.New("stub failure")

// memStore keeps every table in maps. WithinTx snapshots the maps and restores
// them when fn fails, mirroring a real rollback.
type memStore struct {
	mu sync.Mutex

	users         map[string]domain.User
	proposals     map[string]domain.Proposal
	offers        map[string]domain.Offer
	deals         map[string]domain.Deal
	notifications map[string]domain.Notification
	fundingLogs   []domain.FundingLog

	// fail maps an operation name (e.g. "deals.create") to the error it returns.
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]domain.User{},
		proposals:     map[string]domain.Proposal{},
		offers:        map[string]domain.Offer{},
		deals:         map[string]domain.Deal{},
		notifications: map[string]domain.Notification{},
		fail:          map[string]error{},
	}
}

func (m *memStore) err(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fail[op]
}

func (m *memStore) Users() ports.UserRepository                 { return memUsers{m} }
func (m *memStore) Proposals() ports.ProposalRepository         { return memProposals{m} }
func (m *memStore) Offers() ports.OfferRepository               { return memOffers{m} }
func (m *memStore) Deals() ports.DealRepository                 { return memDeals{m} }
func (m *memStore) Notifications() ports.NotificationRepository { return memNotifications{m} }
func (m *memStore) FundingLogs() ports.FundingLogRepository     { return memFundingLogs{m} }
func (m *memStore) Ping(context.Context) error                  { return m.err("ping") }

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	m.mu.Lock()
	offers := cloneMap(m.offers)
	deals := cloneMap(m.deals)
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.offers, m.deals = offers, deals
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) userRef(id string) *domain.UserRef {
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	return &domain.UserRef{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

// --- users ---

type memUsers struct{ m *memStore }

func (r memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if err := r.m.err("users.find"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) ListUnverified(context.Context) ([]domain.User, error) {
	if err := r.m.err("users.unverified"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.User
	for _, u := range r.m.users {
		if !u.Verified {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memUsers) Count(_ context.Context, f ports.UserFilter) (int64, error) {
	if err := r.m.err("users.count"); err != nil {
		return 0, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, u := range r.m.users {
		if f.Verified == nil || u.Verified == *f.Verified {
			n++
		}
	}
	return n, nil
}

func (r memUsers) SetVerification(_ context.Context, id string, verified, active bool) error {
	if err := r.m.err("users.verify"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified, u.IsActive = verified, active
	r.m.users[id] = u
	return nil
}

// --- proposals ---

type memProposals struct{ m *memStore }

func (r memProposals) FindByID(_ context.Context, id string) (*domain.Proposal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return &p, nil
}

func (r memProposals) ListByOwner(_ context.Context, ownerID string) ([]domain.Proposal, error) {
	if err := r.m.err("proposals.by_owner"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Proposal
	for _, p := range r.m.proposals {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sortProposals(out)
	return out, nil
}

func (r memProposals) ListMarketplace(_ context.Context, limit int) ([]domain.Proposal, error) {
	if err := r.m.err("proposals.marketplace"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Proposal
	for _, p := range r.m.proposals {
		if p.Verified && p.Status == domain.ProposalActive {
			out = append(out, p)
		}
	}
	sortProposals(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memProposals) ListUnverified(context.Context) ([]domain.ProposalWithOwner, error) {
	if err := r.m.err("proposals.unverified"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var props []domain.Proposal
	for _, p := range r.m.proposals {
		if !p.Verified {
			props = append(props, p)
		}
	}
	sortProposals(props)
	out := make([]domain.ProposalWithOwner, len(props))
	for i, p := range props {
		out[i] = domain.ProposalWithOwner{Proposal: p, Owner: r.m.userRef(p.OwnerID)}
	}
	return out, nil
}

func (r memProposals) Count(_ context.Context, f ports.ProposalFilter) (int64, error) {
	if err := r.m.err("proposals.count"); err != nil {
		return 0, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, p := range r.m.proposals {
		if f.Verified == nil || p.Verified == *f.Verified {
			n++
		}
	}
	return n, nil
}

func (r memProposals) SetVerification(_ context.Context, id string, verified bool, status domain.ProposalStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.proposals[id]
	if !ok {
		return domain.ErrProposalNotFound
	}
	p.Verified, p.Status = verified, status
	r.m.proposals[id] = p
	return nil
}

func sortProposals(ps []domain.Proposal) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
}

// --- offers ---

type memOffers struct{ m *memStore }

func (r memOffers) FindByID(_ context.Context, id string) (*domain.Offer, error) {
	if err := r.m.err("offers.find"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.offers[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	return &o, nil
}

func (r memOffers) ListForProposals(_ context.Context, ids []string, status domain.OfferStatus) ([]domain.OfferWithParties, error) {
	if err := r.m.err("offers.for_proposals"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.OfferWithParties
	for _, o := range r.m.offers {
		if !slices.Contains(ids, o.ProposalID) || (status != "" && o.Status != status) {
			continue
		}
		w := domain.OfferWithParties{Offer: o, Investor: r.m.userRef(o.InvestorID)}
		if p, ok := r.m.proposals[o.ProposalID]; ok {
			w.Proposal = &domain.ProposalRef{ID: p.ID, Title: p.Title}
		}
		out = append(out, w)
	}
	sortOffers(out)
	return out, nil
}

func (r memOffers) ListByInvestor(_ context.Context, investorID string) ([]domain.OfferWithParties, error) {
	if err := r.m.err("offers.by_investor"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.OfferWithParties
	for _, o := range r.m.offers {
		if o.InvestorID != investorID {
			continue
		}
		w := domain.OfferWithParties{Offer: o}
		if p, ok := r.m.proposals[o.ProposalID]; ok {
			w.Proposal = &domain.ProposalRef{ID: p.ID, Title: p.Title, Owner: r.m.userRef(p.OwnerID)}
		}
		out = append(out, w)
	}
	sortOffers(out)
	return out, nil
}

func (r memOffers) CountForProposals(_ context.Context, ids []string, status domain.OfferStatus) (int64, error) {
	if err := r.m.err("offers.count"); err != nil {
		return 0, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, o := range r.m.offers {
		if slices.Contains(ids, o.ProposalID) && (status == "" || o.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r memOffers) CountByInvestor(_ context.Context, investorID string, status domain.OfferStatus) (int64, error) {
	if err := r.m.err("offers.count"); err != nil {
		return 0, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, o := range r.m.offers {
		if o.InvestorID == investorID && (status == "" || o.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r memOffers) Transition(_ context.Context, id string, from, to domain.OfferStatus, at time.Time) error {
	if err := r.m.err("offers.transition"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.offers[id]
	if !ok || o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	if to == domain.OfferAccepted {
		o.AcceptedAt = &at
	}
	r.m.offers[id] = o
	return nil
}

func sortOffers(offers []domain.OfferWithParties) {
	sort.Slice(offers, func(i, j int) bool { return offers[i].CreatedAt.After(offers[j].CreatedAt) })
}

// --- deals ---

type memDeals struct{ m *memStore }

func (r memDeals) Create(_ context.Context, d *domain.Deal) error {
	if err := r.m.err("deals.create"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.deals[d.ID] = *d
	return nil
}

func (r memDeals) FindByOffer(_ context.Context, offerID string) (*domain.Deal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range r.m.deals {
		if d.OfferID == offerID {
			return &d, nil
		}
	}
	return nil, domain.ErrDealNotFound
}

func (r memDeals) list(match func(domain.Deal) bool, join func(*domain.DealWithParties)) []domain.DealWithParties {
	var out []domain.DealWithParties
	for _, d := range r.m.deals {
		if !match(d) {
			continue
		}
		w := domain.DealWithParties{Deal: d}
		if p, ok := r.m.proposals[d.ProposalID]; ok {
			w.Proposal = &domain.ProposalRef{ID: p.ID, Title: p.Title}
		}
		join(&w)
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DealDate.After(out[j].DealDate) })
	return out
}

func (r memDeals) ListByEntrepreneur(_ context.Context, id string) ([]domain.DealWithParties, error) {
	if err := r.m.err("deals.list"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.list(
		func(d domain.Deal) bool { return d.EntrepreneurID == id },
		func(w *domain.DealWithParties) { w.Investor = r.m.userRef(w.InvestorID) },
	), nil
}

func (r memDeals) ListByInvestor(_ context.Context, id string) ([]domain.DealWithParties, error) {
	if err := r.m.err("deals.list"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.list(
		func(d domain.Deal) bool { return d.InvestorID == id },
		func(w *domain.DealWithParties) { w.Entrepreneur = r.m.userRef(w.EntrepreneurID) },
	), nil
}

func matchDeal(f ports.DealFilter, d domain.Deal) bool {
	return (f.EntrepreneurID == "" || d.EntrepreneurID == f.EntrepreneurID) &&
		(f.InvestorID == "" || d.InvestorID == f.InvestorID)
}

func (r memDeals) Count(_ context.Context, f ports.DealFilter) (int64, error) {
	if err := r.m.err("deals.count"); err != nil {
		return 0, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, d := range r.m.deals {
		if matchDeal(f, d) {
			n++
		}
	}
	return n, nil
}

func (r memDeals) Amounts(_ context.Context, f ports.DealFilter) ([]decimal.NullDecimal, error) {
	if err := r.m.err("deals.amounts"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []decimal.NullDecimal
	for _, d := range r.m.deals {
		if matchDeal(f, d) {
			out = append(out, d.InvestmentAmount)
		}
	}
	return out, nil
}

func (m *memStore) dealCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deals)
}

// --- notifications ---

type memNotifications struct{ m *memStore }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) error {
	if err := r.m.err("notifications.create"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.notifications[n.ID] = *n
	return nil
}

func (r memNotifications) ListRecent(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	if err := r.m.err("notifications.list"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, userID, id string) (*domain.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, domain.ErrNotificationNotFound
	}
	n.Read = true
	r.m.notifications[id] = n
	return &n, nil
}

func (r memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var updated int64
	for id, n := range r.m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			r.m.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

func (m *memStore) notificationsFor(userID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// --- funding logs ---

type memFundingLogs struct{ m *memStore }

func (r memFundingLogs) Create(_ context.Context, l *domain.FundingLog) error {
	if err := r.m.err("funding_logs.create"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.fundingLogs = append(r.m.fundingLogs, *l)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var baseTime = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func amount(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

// seed builds a small marketplace: one entrepreneur with two proposals, one
// investor with a pending offer on the first proposal, and one admin.
func seed() *memStore {
	m := newMemStore()
	m.users["ent-1"] = domain.User{ID: "ent-1", FullName: "Asha Rao", Role: domain.RoleEntrepreneur, Verified: true, CreatedAt: baseTime}
	m.users["inv-1"] = domain.User{ID: "inv-1", FullName: "Vikram Shah", Role: domain.RoleInvestor, Verified: true, CreatedAt: baseTime.Add(time.Hour)}
	m.users["adm-1"] = domain.User{ID: "adm-1", FullName: "Root Admin", Role: domain.RoleAdmin, Verified: true, CreatedAt: baseTime}
	m.users["new-1"] = domain.User{ID: "new-1", FullName: "New Person", Role: domain.RoleInvestor, CreatedAt: baseTime.Add(2 * time.Hour)}

	m.proposals["prop-1"] = domain.Proposal{
		ID: "prop-1", OwnerID: "ent-1", Title: "Solar Carts",
		AmountNeeded: amount(100000), FundingReceived: amount(25000),
		Status: domain.ProposalActive, Verified: true, CreatedAt: baseTime,
	}
	m.proposals["prop-2"] = domain.Proposal{
		ID: "prop-2", OwnerID: "ent-1", Title: "Millet Bars",
		AmountNeeded: amount(50000), Status: domain.ProposalPending, CreatedAt: baseTime.Add(time.Hour),
	}

	m.offers["off-1"] = domain.Offer{
		ID: "off-1", ProposalID: "prop-1", InvestorID: "inv-1",
		Amount: amount(40000), EquityPercentage: amount(10),
		Status: domain.OfferPending, CreatedAt: baseTime.Add(3 * time.Hour),
	}
	return m
}

func session(m *memStore, userID string) ports.Session {
	return ports.Session{User: m.users[userID], Now: baseTime}
}
