package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

// ErrDuplicateDeal is returned when an offer already has a deal.
var ErrDuplicateDeal = errors.New("deal already exists for offer")

type DealRepository struct {
	col  *mongo.Collection
	join *joiner
}

func (r *DealRepository) Create(ctx context.Context, d *domain.Deal) error {
	doc, err := newDealDoc(d)
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateDeal, d.OfferID)
		}
		return fmt.Errorf("create deal: %w", err)
	}
	return nil
}

func (r *DealRepository) FindByOffer(ctx context.Context, offerID string) (*domain.Deal, error) {
	var d dealDoc
	if err := findOne(ctx, r.col, bson.M{"offer_id": offerID}, &d, domain.ErrDealNotFound); err != nil {
		return nil, err
	}
	deal := d.toDomain()
	return &deal, nil
}

func (r *DealRepository) ListByEntrepreneur(ctx context.Context, entrepreneurID string) ([]domain.DealWithParties, error) {
	docs, err := findAll[dealDoc](ctx, r.col, bson.M{"entrepreneur_id": entrepreneurID}, newestDealFirst())
	if err != nil {
		return nil, fmt.Errorf("list deals by entrepreneur: %w", err)
	}
	propIDs, investorIDs := dealKeys(docs, func(d dealDoc) string { return d.InvestorID })
	props, investors, err := r.join.proposalsAndUsers(ctx, propIDs, investorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DealWithParties, len(docs))
	for i, d := range docs {
		out[i] = domain.DealWithParties{Deal: d.toDomain(), Proposal: props[d.ProposalID], Investor: investors[d.InvestorID]}
	}
	return out, nil
}

func (r *DealRepository) ListByInvestor(ctx context.Context, investorID string) ([]domain.DealWithParties, error) {
	docs, err := findAll[dealDoc](ctx, r.col, bson.M{"investor_id": investorID}, newestDealFirst())
	if err != nil {
		return nil, fmt.Errorf("list deals by investor: %w", err)
	}
	propIDs, founderIDs := dealKeys(docs, func(d dealDoc) string { return d.EntrepreneurID })
	props, founders, err := r.join.proposalsAndUsers(ctx, propIDs, founderIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DealWithParties, len(docs))
	for i, d := range docs {
		out[i] = domain.DealWithParties{Deal: d.toDomain(), Proposal: props[d.ProposalID], Entrepreneur: founders[d.EntrepreneurID]}
	}
	return out, nil
}

func (r *DealRepository) Count(ctx context.Context, filter ports.DealFilter) (int64, error) {
	return count(ctx, r.col, dealFilter(filter))
}

func (r *DealRepository) Amounts(ctx context.Context, filter ports.DealFilter) ([]decimal.NullDecimal, error) {
	opts := options.Find().SetProjection(bson.M{"investment_amount": 1})
	docs, err := findAll[dealDoc](ctx, r.col, dealFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("deal amounts: %w", err)
	}
	out := make([]decimal.NullDecimal, len(docs))
	for i, d := range docs {
		out[i] = fromDecimal128(d.InvestmentAmount)
	}
	return out, nil
}

func dealFilter(f ports.DealFilter) bson.M {
	m := bson.M{}
	if f.EntrepreneurID != "" {
		m["entrepreneur_id"] = f.EntrepreneurID
	}
	if f.InvestorID != "" {
		m["investor_id"] = f.InvestorID
	}
	return m
}

func dealKeys(docs []dealDoc, party func(dealDoc) string) (proposalIDs, partyIDs []string) {
	proposalIDs = make([]string, len(docs))
	partyIDs = make([]string, len(docs))
	for i, d := range docs {
		proposalIDs[i] = d.ProposalID
		partyIDs[i] = party(d)
	}
	return proposalIDs, partyIDs
}

func newestDealFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "deal_date", Value: -1}})
}
