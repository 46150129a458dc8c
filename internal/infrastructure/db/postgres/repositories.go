package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

const newestFirst = "created_at DESC"

// ── Users ─────────────────────────────────────────────────────────────────────

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &row, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	u := row.toDomain()
	return &u, nil
}

func (r *UserRepository) ListUnverified(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := r.db.WithContext(ctx).Where("verified = ?", false).Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list unverified users: %w", err)
	}
	out := make([]domain.User, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context, filter ports.UserFilter) (int64, error) {
	q := r.db.WithContext(ctx).Model(&userRow{})
	if filter.Verified != nil {
		q = q.Where("verified = ?", *filter.Verified)
	}
	var n int64
	return n, q.Count(&n).Error
}

func (r *UserRepository) SetVerification(ctx context.Context, id string, verified, active bool) error {
	res := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).
		Updates(map[string]any{"verified": verified, "is_active": active})
	if res.Error != nil {
		return fmt.Errorf("verify user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ── Proposals ─────────────────────────────────────────────────────────────────

type ProposalRepository struct {
	db *gorm.DB
}

func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*domain.Proposal, error) {
	var row proposalRow
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &row, domain.ErrProposalNotFound); err != nil {
		return nil, err
	}
	p := row.toDomain()
	return &p, nil
}

func (r *ProposalRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Proposal, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", ownerID))
}

func (r *ProposalRepository) ListMarketplace(ctx context.Context, limit int) ([]domain.Proposal, error) {
	q := r.db.WithContext(ctx).Where("verified = ? AND status = ?", true, string(domain.ProposalActive))
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.list(q)
}

func (r *ProposalRepository) ListUnverified(ctx context.Context) ([]domain.ProposalWithOwner, error) {
	var rows []proposalRow
	err := r.db.WithContext(ctx).Preload("Owner").Where("verified = ?", false).Order(newestFirst).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list unverified proposals: %w", err)
	}
	out := make([]domain.ProposalWithOwner, len(rows))
	for i, row := range rows {
		out[i] = domain.ProposalWithOwner{Proposal: row.toDomain(), Owner: userRef(row.Owner)}
	}
	return out, nil
}

func (r *ProposalRepository) Count(ctx context.Context, filter ports.ProposalFilter) (int64, error) {
	q := r.db.WithContext(ctx).Model(&proposalRow{})
	if filter.Verified != nil {
		q = q.Where("verified = ?", *filter.Verified)
	}
	var n int64
	return n, q.Count(&n).Error
}

func (r *ProposalRepository) SetVerification(ctx context.Context, id string, verified bool, status domain.ProposalStatus) error {
	res := r.db.WithContext(ctx).Model(&proposalRow{}).Where("id = ?", id).
		Updates(map[string]any{"verified": verified, "status": string(status)})
	if res.Error != nil {
		return fmt.Errorf("verify proposal %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (r *ProposalRepository) list(q *gorm.DB) ([]domain.Proposal, error) {
	var rows []proposalRow
	if err := q.Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	out := make([]domain.Proposal, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// ── Offers ────────────────────────────────────────────────────────────────────

type OfferRepository struct {
	db *gorm.DB
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	var row offerRow
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &row, domain.ErrOfferNotFound); err != nil {
		return nil, err
	}
	o := row.toDomain()
	return &o, nil
}

func (r *OfferRepository) ListForProposals(ctx context.Context, proposalIDs []string, status domain.OfferStatus) ([]domain.OfferWithParties, error) {
	if len(proposalIDs) == 0 {
		return []domain.OfferWithParties{}, nil
	}
	q := r.forProposals(ctx, proposalIDs, status).Preload("Proposal").Preload("Investor")
	return r.list(q)
}

func (r *OfferRepository) ListByInvestor(ctx context.Context, investorID string) ([]domain.OfferWithParties, error) {
	q := r.db.WithContext(ctx).Preload("Proposal.Owner").Where("investor_id = ?", investorID)
	return r.list(q)
}

func (r *OfferRepository) CountForProposals(ctx context.Context, proposalIDs []string, status domain.OfferStatus) (int64, error) {
	if len(proposalIDs) == 0 {
		return 0, nil
	}
	var n int64
	return n, r.forProposals(ctx, proposalIDs, status).Model(&offerRow{}).Count(&n).Error
}

func (r *OfferRepository) CountByInvestor(ctx context.Context, investorID string, status domain.OfferStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&offerRow{}).Where("investor_id = ?", investorID)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var n int64
	return n, q.Count(&n).Error
}

func (r *OfferRepository) Transition(ctx context.Context, id string, from, to domain.OfferStatus, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, from, to)
	}
	set := map[string]any{"status": string(to)}
	if to == domain.OfferAccepted {
		set["accepted_at"] = at
	}

	res := r.db.WithContext(ctx).Model(&offerRow{}).Where("id = ? AND status = ?", id, string(from)).Updates(set)
	if res.Error != nil {
		return fmt.Errorf("transition offer %s: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&offerRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("transition offer %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrOfferNotFound
	}
	return fmt.Errorf("%w: offer %s is not %s", domain.ErrInvalidTransition, id, from)
}

func (r *OfferRepository) forProposals(ctx context.Context, ids []string, status domain.OfferStatus) *gorm.DB {
	q := r.db.WithContext(ctx).Where("proposal_id IN ?", ids)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return q
}

func (r *OfferRepository) list(q *gorm.DB) ([]domain.OfferWithParties, error) {
	var rows []offerRow
	if err := q.Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	out := make([]domain.OfferWithParties, len(rows))
	for i, row := range rows {
		out[i] = row.withParties()
	}
	return out, nil
}

// ── Deals ─────────────────────────────────────────────────────────────────────

type DealRepository struct {
	db *gorm.DB
}

func (r *DealRepository) Create(ctx context.Context, d *domain.Deal) error {
	if err := r.db.WithContext(ctx).Create(newDealRow(d)).Error; err != nil {
		return fmt.Errorf("create deal: %w", err)
	}
	return nil
}

func (r *DealRepository) FindByOffer(ctx context.Context, offerID string) (*domain.Deal, error) {
	var row dealRow
	if err := first(r.db.WithContext(ctx).Where("offer_id = ?", offerID), &row, domain.ErrDealNotFound); err != nil {
		return nil, err
	}
	d := row.toDomain()
	return &d, nil
}

func (r *DealRepository) ListByEntrepreneur(ctx context.Context, entrepreneurID string) ([]domain.DealWithParties, error) {
	q := r.db.WithContext(ctx).Preload("Proposal").Preload("Investor").Where("entrepreneur_id = ?", entrepreneurID)
	return r.list(q)
}

func (r *DealRepository) ListByInvestor(ctx context.Context, investorID string) ([]domain.DealWithParties, error) {
	q := r.db.WithContext(ctx).Preload("Proposal").Preload("Entrepreneur").Where("investor_id = ?", investorID)
	return r.list(q)
}

func (r *DealRepository) Count(ctx context.Context, filter ports.DealFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, filter).Model(&dealRow{}).Count(&n).Error
}

func (r *DealRepository) Amounts(ctx context.Context, filter ports.DealFilter) ([]decimal.NullDecimal, error) {
	var out []decimal.NullDecimal
	if err := r.filtered(ctx, filter).Model(&dealRow{}).Pluck("investment_amount", &out).Error; err != nil {
		return nil, fmt.Errorf("deal amounts: %w", err)
	}
	return out, nil
}

func (r *DealRepository) filtered(ctx context.Context, f ports.DealFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if f.EntrepreneurID != "" {
		q = q.Where("entrepreneur_id = ?", f.EntrepreneurID)
	}
	if f.InvestorID != "" {
		q = q.Where("investor_id = ?", f.InvestorID)
	}
	return q
}

func (r *DealRepository) list(q *gorm.DB) ([]domain.DealWithParties, error) {
	var rows []dealRow
	if err := q.Order("deal_date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	out := make([]domain.DealWithParties, len(rows))
	for i, row := range rows {
		out[i] = row.withParties()
	}
	return out, nil
}

// ── Notifications ─────────────────────────────────────────────────────────────

type NotificationRepository struct {
	db *gorm.DB
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(newNotificationRow(n)).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(newestFirst)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []notificationRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	var row notificationRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx.Where("id = ? AND user_id = ?", id, userID), &row, domain.ErrNotificationNotFound); err != nil {
			return err
		}
		row.Read = true
		return tx.Model(&notificationRow{}).Where("id = ?", id).Update("read", true).Error
	})
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n := row.toDomain()
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationRow{}).Where("user_id = ? AND read = ?", userID, false).Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ── Funding logs ──────────────────────────────────────────────────────────────

type FundingLogRepository struct {
	db *gorm.DB
}

func (r *FundingLogRepository) Create(ctx context.Context, l *domain.FundingLog) error {
	row := &fundingLogRow{
		ID:          l.ID,
		ProposalID:  l.ProposalID,
		InvestorID:  l.InvestorID,
		Amount:      l.Amount,
		EquityGiven: l.EquityGiven,
		CreatedAt:   l.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create funding log: %w", err)
	}
	return nil
}
