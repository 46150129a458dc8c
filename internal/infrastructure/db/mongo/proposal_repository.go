package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

type ProposalRepository struct {
	col  *mongo.Collection
	join *joiner
}

func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*domain.Proposal, error) {
	var d proposalDoc
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &d, domain.ErrProposalNotFound); err != nil {
		return nil, err
	}
	p := d.toDomain()
	return &p, nil
}

func (r *ProposalRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Proposal, error) {
	return r.list(ctx, bson.M{"user_id": ownerID}, newestFirst())
}

func (r *ProposalRepository) ListMarketplace(ctx context.Context, limit int) ([]domain.Proposal, error) {
	opts := newestFirst()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.list(ctx, bson.M{"verified": true, "status": string(domain.ProposalActive)}, opts)
}

func (r *ProposalRepository) ListUnverified(ctx context.Context) ([]domain.ProposalWithOwner, error) {
	docs, err := findAll[proposalDoc](ctx, r.col, bson.M{"verified": false}, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("list unverified proposals: %w", err)
	}
	ownerIDs := make([]string, len(docs))
	for i, d := range docs {
		ownerIDs[i] = d.UserID
	}
	owners, err := r.join.usersByID(ctx, unique(ownerIDs))
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProposalWithOwner, len(docs))
	for i, d := range docs {
		out[i] = domain.ProposalWithOwner{Proposal: d.toDomain(), Owner: owners[d.UserID]}
	}
	return out, nil
}

func (r *ProposalRepository) Count(ctx context.Context, filter ports.ProposalFilter) (int64, error) {
	f := bson.M{}
	if filter.Verified != nil {
		f["verified"] = *filter.Verified
	}
	return count(ctx, r.col, f)
}

func (r *ProposalRepository) SetVerification(ctx context.Context, id string, verified bool, status domain.ProposalStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": verified, "status": string(status)}})
	if err != nil {
		return fmt.Errorf("verify proposal %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (r *ProposalRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Proposal, error) {
	docs, err := findAll[proposalDoc](ctx, r.col, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	out := make([]domain.Proposal, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
