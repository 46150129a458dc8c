package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// joiner resolves the foreign keys of list reads with one $in query per
// referenced collection. Missing rows leave the join nil.
type joiner struct {
	users     *mongo.Collection
	proposals *mongo.Collection
}

func newJoiner(db *mongo.Database) *joiner {
	return &joiner{users: db.Collection(collectionUsers), proposals: db.Collection(collectionProposals)}
}

func (j *joiner) usersByID(ctx context.Context, ids []string) (map[string]*domain.UserRef, error) {
	out := make(map[string]*domain.UserRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := findAll[userDoc](ctx, j.users, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("join users: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.ref()
	}
	return out, nil
}

func (j *joiner) proposalsByID(ctx context.Context, ids []string) (map[string]proposalDoc, error) {
	out := make(map[string]proposalDoc, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := findAll[proposalDoc](ctx, j.proposals, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("join proposals: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d
	}
	return out, nil
}

// proposalRefs joins proposal titles and, when withOwner is set, the owner
// profile of each proposal.
func (j *joiner) proposalRefs(ctx context.Context, ids []string, withOwner bool) (map[string]*domain.ProposalRef, error) {
	props, err := j.proposalsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	var owners map[string]*domain.UserRef
	if withOwner {
		ownerIDs := make([]string, 0, len(props))
		for _, p := range props {
			ownerIDs = append(ownerIDs, p.UserID)
		}
		if owners, err = j.usersByID(ctx, unique(ownerIDs)); err != nil {
			return nil, err
		}
	}

	out := make(map[string]*domain.ProposalRef, len(props))
	for id, p := range props {
		out[id] = &domain.ProposalRef{ID: p.ID, Title: p.Title, Owner: owners[p.UserID]}
	}
	return out, nil
}

// proposalsAndUsers runs the two joins of a list read concurrently. Never
// call it with a transaction context: a session does not allow concurrent
// operations.
func (j *joiner) proposalsAndUsers(ctx context.Context, proposalIDs, userIDs []string) (map[string]*domain.ProposalRef, map[string]*domain.UserRef, error) {
	var (
		props map[string]*domain.ProposalRef
		users map[string]*domain.UserRef
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		props, err = j.proposalRefs(gctx, unique(proposalIDs), false)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = j.usersByID(gctx, unique(userIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return props, users, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
