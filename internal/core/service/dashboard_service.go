package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/metrics"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// AverageROIPlaceholder is shown until returns are tracked.
const AverageROIPlaceholder = "0.0%"

const (
	defaultMarketplaceLimit = 12
	defaultRecentProposals  = 3
)

// DashboardOptions tunes the section loaders.
type DashboardOptions struct {
	MarketplaceLimit int
	RecentProposals  int
}

type dashboardService struct {
	store ports.Store
	opts  DashboardOptions
	now   func() time.Time
	log   zerolog.Logger
}

// NewDashboardService returns a DashboardService reading from store.
// Non-positive options fall back to the defaults.
func NewDashboardService(store ports.Store, opts DashboardOptions, log zerolog.Logger) ports.DashboardService {
	if opts.MarketplaceLimit <= 0 {
		opts.MarketplaceLimit = defaultMarketplaceLimit
	}
	if opts.RecentProposals <= 0 {
		opts.RecentProposals = defaultRecentProposals
	}
	return &dashboardService{
		store: store,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

// Open resolves the profile behind an authenticated user id.
func (s *dashboardService) Open(ctx context.Context, userID string) (*ports.Session, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("open dashboard: %w", domain.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open dashboard: %w", err)
	}
	return &ports.Session{User: *user, Now: s.now()}, nil
}

// Load branches on the viewer's role into exactly one section loader.
func (s *dashboardService) Load(ctx context.Context, sess ports.Session) (ports.Section, error) {
	start := time.Now()

	section, err := domain.SwitchRole(sess.Role(),
		func() (ports.Section, error) { return s.loadEntrepreneur(ctx, sess), nil },
		func() (ports.Section, error) { return s.loadInvestor(ctx, sess), nil },
		func() (ports.Section, error) { return s.loadAdmin(ctx), nil },
	)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", sess.UserID()).Msg("cannot load dashboard section")
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	metrics.SectionLoadDuration.WithLabelValues(string(sess.Role())).Observe(time.Since(start).Seconds())
	s.log.Debug().
		Str("user_id", sess.UserID()).
		Str("role", string(sess.Role())).
		Strs("degraded", section.Degraded()).
		Dur("took", time.Since(start)).
		Msg("section loaded")
	return section, nil
}

// FundingSeries returns the proposals plotted on the funding chart. Only
// entrepreneurs own proposals; other roles get an empty series.
func (s *dashboardService) FundingSeries(ctx context.Context, sess ports.Session) ([]domain.Proposal, error) {
	return domain.SwitchRole(sess.Role(),
		func() ([]domain.Proposal, error) {
			props, err := s.store.Proposals().ListByOwner(ctx, sess.UserID())
			if err != nil {
				return nil, fmt.Errorf("funding series: %w", err)
			}
			return props, nil
		},
		func() ([]domain.Proposal, error) { return nil, nil },
		func() ([]domain.Proposal, error) { return nil, nil },
	)
}

func (s *dashboardService) loadEntrepreneur(ctx context.Context, sess ports.Session) *ports.EntrepreneurSection {
	uid := sess.UserID()
	sec := &ports.EntrepreneurSection{}

	// Own proposals feed four widgets; read them once.
	ownProposals := sync.OnceValues(func() ([]domain.Proposal, error) {
		return s.store.Proposals().ListByOwner(ctx, uid)
	})
	proposalIDs := func() ([]string, error) {
		props, err := ownProposals()
		if err != nil {
			return nil, fmt.Errorf("own proposals: %w", err)
		}
		ids := make([]string, len(props))
		for i, p := range props {
			ids[i] = p.ID
		}
		return ids, nil
	}

	g := newWidgetGroup(domain.RoleEntrepreneur, s.log)

	// A failed count shows as 0; the figures that did load are kept.
	g.Go("stats", func() error {
		var errs []error
		props, err := ownProposals()
		if err != nil {
			errs = append(errs, fmt.Errorf("own proposals: %w", err))
		}
		var pending int64
		if err == nil {
			ids, _ := proposalIDs()
			if pending, err = s.countPendingOn(ctx, ids); err != nil {
				errs = append(errs, err)
			}
		}
		deals, err := s.store.Deals().Count(ctx, ports.DealFilter{EntrepreneurID: uid})
		if err != nil {
			errs = append(errs, fmt.Errorf("count deals: %w", err))
		}
		sec.Stats = ports.EntrepreneurStats{
			TotalProposals:  len(props),
			FundingReceived: SumFundingReceived(props),
			PendingOffers:   pending,
			SuccessRate:     SuccessRate(deals, int64(len(props))),
		}
		return errors.Join(errs...)
	})

	g.Go("proposals", func() error {
		props, err := ownProposals()
		if err != nil {
			return err
		}
		sec.Proposals = props
		return nil
	})

	g.Go("activity", func() error {
		props, err := ownProposals()
		if err != nil {
			return err
		}
		ids, _ := proposalIDs()
		pending, err := s.offersOn(ctx, ids, domain.OfferPending)
		if err != nil {
			return err
		}
		sec.PendingOffers = pending
		sec.Recent = props[:min(len(props), s.opts.RecentProposals)]
		return nil
	})

	g.Go("offers", func() error {
		ids, err := proposalIDs()
		if err != nil {
			return err
		}
		offers, err := s.offersOn(ctx, ids, "")
		if err != nil {
			return err
		}
		sec.Offers = offers
		return nil
	})

	g.Go("deals", func() error {
		deals, err := s.store.Deals().ListByEntrepreneur(ctx, uid)
		if err != nil {
			return fmt.Errorf("list deals: %w", err)
		}
		sec.Deals = deals
		return nil
	})

	sec.Failed = g.Wait()
	return sec
}

func (s *dashboardService) loadInvestor(ctx context.Context, sess ports.Session) *ports.InvestorSection {
	uid := sess.UserID()
	sec := &ports.InvestorSection{}
	g := newWidgetGroup(domain.RoleInvestor, s.log)

	g.Go("stats", func() error {
		var errs []error
		amounts, err := s.store.Deals().Amounts(ctx, ports.DealFilter{InvestorID: uid})
		if err != nil {
			errs = append(errs, fmt.Errorf("deal amounts: %w", err))
		}
		pending, err := s.store.Offers().CountByInvestor(ctx, uid, domain.OfferPending)
		if err != nil {
			errs = append(errs, fmt.Errorf("count pending offers: %w", err))
		}
		sec.Stats = ports.InvestorStats{
			TotalInvestments: len(amounts),
			AmountInvested:   SumAmounts(amounts),
			SuccessfulDeals:  len(amounts),
			PendingOffers:    pending,
			AverageROI:       AverageROIPlaceholder,
		}
		return errors.Join(errs...)
	})

	g.Go("marketplace", func() error {
		props, err := s.store.Proposals().ListMarketplace(ctx, s.opts.MarketplaceLimit)
		if err != nil {
			return fmt.Errorf("list marketplace: %w", err)
		}
		sec.Marketplace = props
		return nil
	})

	// Every offer the investor made, accepted and rejected included.
	g.Go("offers", func() error {
		offers, err := s.store.Offers().ListByInvestor(ctx, uid)
		if err != nil {
			return fmt.Errorf("list investor offers: %w", err)
		}
		sec.Offers = offers
		return nil
	})

	g.Go("deals", func() error {
		deals, err := s.store.Deals().ListByInvestor(ctx, uid)
		if err != nil {
			return fmt.Errorf("list investor deals: %w", err)
		}
		sec.Deals = deals
		return nil
	})

	sec.Failed = g.Wait()
	return sec
}

func (s *dashboardService) loadAdmin(ctx context.Context) *ports.AdminSection {
	sec := &ports.AdminSection{}
	g := newWidgetGroup(domain.RoleAdmin, s.log)
	unverified := false

	// Each stat is its own widget so one failed count leaves the others intact.
	g.Go("stats.total_users", func() (err error) {
		sec.Stats.TotalUsers, err = s.store.Users().Count(ctx, ports.UserFilter{})
		return err
	})
	g.Go("stats.unverified_users", func() (err error) {
		sec.Stats.UnverifiedUsers, err = s.store.Users().Count(ctx, ports.UserFilter{Verified: &unverified})
		return err
	})
	g.Go("stats.unverified_proposals", func() (err error) {
		sec.Stats.UnverifiedProposals, err = s.store.Proposals().Count(ctx, ports.ProposalFilter{Verified: &unverified})
		return err
	})
	g.Go("stats.total_proposals", func() (err error) {
		sec.Stats.TotalProposals, err = s.store.Proposals().Count(ctx, ports.ProposalFilter{})
		return err
	})
	g.Go("stats.total_funding", func() error {
		amounts, err := s.store.Deals().Amounts(ctx, ports.DealFilter{})
		if err != nil {
			return err
		}
		sec.Stats.TotalFunding = SumAmounts(amounts)
		return nil
	})

	g.Go("pending_users", func() error {
		users, err := s.store.Users().ListUnverified(ctx)
		if err != nil {
			return fmt.Errorf("list unverified users: %w", err)
		}
		sec.PendingUsers = users
		return nil
	})
	g.Go("pending_proposals", func() error {
		props, err := s.store.Proposals().ListUnverified(ctx)
		if err != nil {
			return fmt.Errorf("list unverified proposals: %w", err)
		}
		sec.PendingProposals = props
		return nil
	})

	sec.Failed = g.Wait()
	sec.Stats.PendingVerifications = sec.Stats.UnverifiedUsers + sec.Stats.UnverifiedProposals
	return sec
}

// countPendingOn skips the query when the entrepreneur has no proposals.
func (s *dashboardService) countPendingOn(ctx context.Context, proposalIDs []string) (int64, error) {
	if len(proposalIDs) == 0 {
		return 0, nil
	}
	n, err := s.store.Offers().CountForProposals(ctx, proposalIDs, domain.OfferPending)
	if err != nil {
		return 0, fmt.Errorf("count pending offers: %w", err)
	}
	return n, nil
}

func (s *dashboardService) offersOn(ctx context.Context, proposalIDs []string, status domain.OfferStatus) ([]domain.OfferWithParties, error) {
	if len(proposalIDs) == 0 {
		return nil, nil
	}
	offers, err := s.store.Offers().ListForProposals(ctx, proposalIDs, status)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}
