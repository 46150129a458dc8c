package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/metrics"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/pkg/money"
)

// OfferGuard abstracts the in-progress marker store (Redis).
type OfferGuard interface {
	// Acquire reports false when another decision on the offer holds the
	// marker. The token identifies this holder to Release.
	Acquire(ctx context.Context, offerID string) (token string, ok bool, err error)
	Release(ctx context.Context, offerID, token string) error
}

type offerService struct {
	store  ports.Store
	guard  OfferGuard
	notify ports.NotificationSender
	newID  func() string
	now    func() time.Time
	log    zerolog.Logger
}

// NewOfferService returns an OfferService. guard may be nil, in which case
// concurrent decisions are only serialised by the store transaction.
func NewOfferService(
	store ports.Store,
	guard OfferGuard,
	notify ports.NotificationSender,
	log zerolog.Logger,
) ports.OfferService {
	return &offerService{
		store:  store,
		guard:  guard,
		notify: notify,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Accept marks a pending offer accepted and creates its deal in one
// transaction. An offer left accepted without a deal gets the missing deal.
func (s *offerService) Accept(ctx context.Context, sess ports.Session, offerID string) (dec *ports.OfferDecision, err error) {
	defer func() { countDecision("accept", dec, err) }()

	release, err := s.hold(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("accept offer: %w", err)
	}
	defer release()

	offer, err := s.ownedOffer(ctx, sess, offerID)
	if err != nil {
		return nil, fmt.Errorf("accept offer: %w", err)
	}

	now := s.now()
	var deal *domain.Deal
	resumed := false

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		current, err := tx.Offers().FindByID(ctx, offerID)
		if err != nil {
			return err
		}

		switch current.Status {
		case domain.OfferPending:
			err := tx.Offers().Transition(ctx, offerID, domain.OfferPending, domain.OfferAccepted, now)
			if errors.Is(err, domain.ErrInvalidTransition) {
				return domain.ErrOfferNotPending
			}
			if err != nil {
				return fmt.Errorf("mark accepted: %w", err)
			}
		case domain.OfferAccepted:
			_, err := tx.Deals().FindByOffer(ctx, offerID)
			if err == nil {
				return domain.ErrOfferNotPending
			}
			if !errors.Is(err, domain.ErrDealNotFound) {
				return fmt.Errorf("find deal: %w", err)
			}
			resumed = true
		default:
			return domain.ErrOfferNotPending
		}

		deal = domain.NewDealFromOffer(s.newID(), *current, sess.UserID(), now)
		if err := tx.Deals().Create(ctx, deal); err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrOfferNotPending) {
			s.log.Error().Err(err).Str("offer_id", offerID).Msg("offer acceptance rolled back")
		}
		return nil, fmt.Errorf("accept offer: %w", err)
	}

	// The earlier partial acceptance already wrote the funding log.
	if !resumed {
		fl := domain.NewFundingLogFromOffer(s.newID(), *offer, now)
		if err := s.store.FundingLogs().Create(ctx, fl); err != nil {
			metrics.SideEffectFailuresTotal.WithLabelValues("funding_log").Inc()
			s.log.Warn().Err(err).Str("offer_id", offerID).Msg("failed to insert funding log")
		}
	}

	s.sendDecision(ctx, offer, domain.OfferAccepted, now)

	s.log.Info().
		Str("offer_id", offerID).
		Str("deal_id", deal.ID).
		Str("entrepreneur_id", sess.UserID()).
		Bool("resumed", resumed).
		Msg("offer accepted")

	return &ports.OfferDecision{
		OfferID: offerID,
		Status:  domain.OfferAccepted,
		DealID:  deal.ID,
		Resumed: resumed,
	}, nil
}

// Reject marks a pending offer rejected. It never creates a deal.
func (s *offerService) Reject(ctx context.Context, sess ports.Session, offerID string) (dec *ports.OfferDecision, err error) {
	defer func() { countDecision("reject", dec, err) }()

	release, err := s.hold(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("reject offer: %w", err)
	}
	defer release()

	offer, err := s.ownedOffer(ctx, sess, offerID)
	if err != nil {
		return nil, fmt.Errorf("reject offer: %w", err)
	}

	now := s.now()
	err = s.store.Offers().Transition(ctx, offerID, domain.OfferPending, domain.OfferRejected, now)
	if errors.Is(err, domain.ErrInvalidTransition) {
		return nil, fmt.Errorf("reject offer: %w", domain.ErrOfferNotPending)
	}
	if err != nil {
		s.log.Error().Err(err).Str("offer_id", offerID).Msg("failed to reject offer")
		return nil, fmt.Errorf("reject offer: %w", err)
	}

	s.sendDecision(ctx, offer, domain.OfferRejected, now)

	s.log.Info().Str("offer_id", offerID).Str("entrepreneur_id", sess.UserID()).Msg("offer rejected")

	return &ports.OfferDecision{OfferID: offerID, Status: domain.OfferRejected}, nil
}

// hold takes the in-progress marker. The returned release func is always safe
// to call. An unreachable marker store does not block the decision.
func (s *offerService) hold(ctx context.Context, offerID string) (func(), error) {
	noop := func() {}
	if s.guard == nil {
		return noop, nil
	}

	token, ok, err := s.guard.Acquire(ctx, offerID)
	if err != nil {
		s.log.Warn().Err(err).Str("offer_id", offerID).Msg("offer guard unavailable, continuing")
		return noop, nil
	}
	if !ok {
		return nil, domain.ErrOfferInProgress
	}

	return func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), offerID, token); err != nil {
			metrics.SideEffectFailuresTotal.WithLabelValues("lock_release").Inc()
			s.log.Warn().Err(err).Str("offer_id", offerID).Msg("failed to release offer guard")
		}
	}, nil
}

// ownedOffer re-fetches the offer and checks the entrepreneur owns its proposal.
func (s *offerService) ownedOffer(ctx context.Context, sess ports.Session, offerID string) (*domain.Offer, error) {
	if sess.Role() != domain.RoleEntrepreneur {
		return nil, domain.ErrForbidden
	}

	offer, err := s.store.Offers().FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.store.Proposals().FindByID(ctx, offer.ProposalID)
	if errors.Is(err, domain.ErrProposalNotFound) {
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	if proposal.OwnerID != sess.UserID() {
		return nil, domain.ErrForbidden
	}
	return offer, nil
}

// sendDecision notifies the investor. Failure is logged and swallowed.
func (s *offerService) sendDecision(ctx context.Context, offer *domain.Offer, status domain.OfferStatus, at time.Time) {
	n := decisionNotification(s.newID(), offer, status, at)
	if err := s.notify.Send(ctx, n); err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues("notification").Inc()
		s.log.Warn().Err(err).
			Str("offer_id", offer.ID).
			Str("investor_id", offer.InvestorID).
			Msg("failed to notify investor")
	}
}

// OfferLink is the dashboard anchor of an offer card.
func OfferLink(offerID string) string {
	return "/dashboard?tab=offers#offer-" + offerID
}

func decisionNotification(id string, offer *domain.Offer, status domain.OfferStatus, at time.Time) *domain.Notification {
	terms := fmt.Sprintf("Your offer of %s for %s equity", money.NullINR(offer.Amount), money.Percent(offer.EquityPercentage))

	n := &domain.Notification{
		ID:        id,
		UserID:    offer.InvestorID,
		Type:      domain.NotificationTypeOffer,
		Link:      OfferLink(offer.ID),
		CreatedAt: at,
	}
	if status == domain.OfferAccepted {
		n.Title = "🎉 Your Offer Was Accepted!"
		n.Message = terms + " has been accepted. A deal has been created."
	} else {
		n.Title = "❌ Offer Declined"
		n.Message = terms + " was declined by the founder."
	}
	return n
}

func countDecision(decision string, dec *ports.OfferDecision, err error) {
	result := "ok"
	switch {
	case err == nil && dec != nil && dec.Resumed:
		result = "resumed"
	case err == nil:
	case errors.Is(err, domain.ErrOfferNotPending):
		result = "not_pending"
	case errors.Is(err, domain.ErrOfferInProgress):
		result = "in_progress"
	case errors.Is(err, domain.ErrForbidden):
		result = "forbidden"
	default:
		result = "error"
	}
	metrics.OfferDecisionsTotal.WithLabelValues(decision, result).Inc()
}
