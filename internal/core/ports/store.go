package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// Store groups the repositories backed by one external database.
type Store interface {
	Users() UserRepository
	Proposals() ProposalRepository
	Offers() OfferRepository
	Deals() DealRepository
	Notifications() NotificationRepository
	FundingLogs() FundingLogRepository

	// WithinTx runs fn against a store whose writes commit together or not at
	// all. Repositories obtained from tx must be used with the ctx passed to fn.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
}

// UserFilter narrows user counts. A nil field means "any".
type UserFilter struct {
	Verified *bool
}

// ProposalFilter narrows proposal counts. A nil field means "any".
type ProposalFilter struct {
	Verified *bool
}

// DealFilter narrows deal reads. Empty fields are ignored.
type DealFilter struct {
	EntrepreneurID string
	InvestorID     string
}

// UserRepository reads and verifies user profiles.
type UserRepository interface {
	// FindByID returns domain.ErrUserNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// ListUnverified returns unverified users, newest first.
	ListUnverified(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	SetVerification(ctx context.Context, id string, verified, active bool) error
}

// ProposalRepository reads and verifies proposals.
type ProposalRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Proposal, error)
	// ListByOwner returns the owner's proposals, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Proposal, error)
	// ListMarketplace returns verified, active proposals, newest first.
	ListMarketplace(ctx context.Context, limit int) ([]domain.Proposal, error)
	// ListUnverified returns unverified proposals joined to their owner.
	ListUnverified(ctx context.Context) ([]domain.ProposalWithOwner, error)
	Count(ctx context.Context, filter ProposalFilter) (int64, error)
	SetVerification(ctx context.Context, id string, verified bool, status domain.ProposalStatus) error
}

// OfferRepository reads offers in the two join shapes and applies decisions.
type OfferRepository interface {
	// FindByID returns domain.ErrOfferNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.Offer, error)
	// ListForProposals returns offers on the given proposals joined to the
	// proposal title and the investor profile. An empty status means any.
	ListForProposals(ctx context.Context, proposalIDs []string, status domain.OfferStatus) ([]domain.OfferWithParties, error)
	// ListByInvestor returns every offer the investor made joined to the
	// proposal title and the proposal owner profile.
	ListByInvestor(ctx context.Context, investorID string) ([]domain.OfferWithParties, error)
	CountForProposals(ctx context.Context, proposalIDs []string, status domain.OfferStatus) (int64, error)
	CountByInvestor(ctx context.Context, investorID string, status domain.OfferStatus) (int64, error)
	// Transition moves an offer from one status to another only if it is
	// currently in from. accepted_at is stamped with at when to is accepted.
	// Returns domain.ErrInvalidTransition when the offer is not in from.
	Transition(ctx context.Context, id string, from, to domain.OfferStatus, at time.Time) error
}

// DealRepository persists and reads deals.
type DealRepository interface {
	Create(ctx context.Context, d *domain.Deal) error
	// FindByOffer returns domain.ErrDealNotFound when the offer has no deal.
	FindByOffer(ctx context.Context, offerID string) (*domain.Deal, error)
	// ListByEntrepreneur joins proposal title and investor profile.
	ListByEntrepreneur(ctx context.Context, entrepreneurID string) ([]domain.DealWithParties, error)
	// ListByInvestor joins proposal title and entrepreneur profile.
	ListByInvestor(ctx context.Context, investorID string) ([]domain.DealWithParties, error)
	Count(ctx context.Context, filter DealFilter) (int64, error)
	// Amounts returns investment_amount for every matching deal.
	Amounts(ctx context.Context, filter DealFilter) ([]decimal.NullDecimal, error)
}

// NotificationRepository persists and reads notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	// ListRecent returns at most limit notifications for the user, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	// MarkRead flags one of the user's notifications read and returns it.
	MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error)
	// MarkAllRead flags every unread notification of the user in one update.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// FundingLogRepository appends funding audit rows.
type FundingLogRepository interface {
	Create(ctx context.Context, l *domain.FundingLog) error
}
