package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/microsharks/dealroom/internal/core/domain"
)

type OfferRepository struct {
	col  *mongo.Collection
	join *joiner
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	var d offerDoc
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &d, domain.ErrOfferNotFound); err != nil {
		return nil, err
	}
	o := d.toDomain()
	return &o, nil
}

func (r *OfferRepository) ListForProposals(ctx context.Context, proposalIDs []string, status domain.OfferStatus) ([]domain.OfferWithParties, error) {
	if len(proposalIDs) == 0 {
		return []domain.OfferWithParties{}, nil
	}
	docs, err := findAll[offerDoc](ctx, r.col, forProposals(proposalIDs, status), newestFirst())
	if err != nil {
		return nil, fmt.Errorf("list offers for proposals: %w", err)
	}

	propIDs := make([]string, len(docs))
	investorIDs := make([]string, len(docs))
	for i, d := range docs {
		propIDs[i] = d.ProposalID
		investorIDs[i] = d.InvestorID
	}
	props, investors, err := r.join.proposalsAndUsers(ctx, propIDs, investorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OfferWithParties, len(docs))
	for i, d := range docs {
		out[i] = domain.OfferWithParties{Offer: d.toDomain(), Proposal: props[d.ProposalID], Investor: investors[d.InvestorID]}
	}
	return out, nil
}

func (r *OfferRepository) ListByInvestor(ctx context.Context, investorID string) ([]domain.OfferWithParties, error) {
	docs, err := findAll[offerDoc](ctx, r.col, bson.M{"investor_id": investorID}, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("list offers by investor: %w", err)
	}
	propIDs := make([]string, len(docs))
	for i, d := range docs {
		propIDs[i] = d.ProposalID
	}
	props, err := r.join.proposalRefs(ctx, unique(propIDs), true)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OfferWithParties, len(docs))
	for i, d := range docs {
		out[i] = domain.OfferWithParties{Offer: d.toDomain(), Proposal: props[d.ProposalID]}
	}
	return out, nil
}

func (r *OfferRepository) CountForProposals(ctx context.Context, proposalIDs []string, status domain.OfferStatus) (int64, error) {
	if len(proposalIDs) == 0 {
		return 0, nil
	}
	return count(ctx, r.col, forProposals(proposalIDs, status))
}

func (r *OfferRepository) CountByInvestor(ctx context.Context, investorID string, status domain.OfferStatus) (int64, error) {
	f := bson.M{"investor_id": investorID}
	if status != "" {
		f["status"] = string(status)
	}
	return count(ctx, r.col, f)
}

// Transition is a compare-and-set on status. A miss is told apart from a
// stale status with a second lookup.
func (r *OfferRepository) Transition(ctx context.Context, id string, from, to domain.OfferStatus, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, from, to)
	}

	set := bson.M{"status": string(to)}
	if to == domain.OfferAccepted {
		set["accepted_at"] = at
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	res, err := r.col.UpdateOne(opCtx, bson.M{"_id": id, "status": string(from)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("transition offer %s: %w", id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := count(ctx, r.col, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("transition offer %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrOfferNotFound
	}
	return fmt.Errorf("%w: offer %s is not %s", domain.ErrInvalidTransition, id, from)
}

func forProposals(ids []string, status domain.OfferStatus) bson.M {
	f := bson.M{"proposal_id": bson.M{"$in": ids}}
	if status != "" {
		f["status"] = string(status)
	}
	return f
}
