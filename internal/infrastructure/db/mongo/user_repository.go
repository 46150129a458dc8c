package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

type UserRepository struct {
	col *mongo.Collection
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var d userDoc
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &d, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	u := d.toDomain()
	return &u, nil
}

func (r *UserRepository) ListUnverified(ctx context.Context) ([]domain.User, error) {
	docs, err := findAll[userDoc](ctx, r.col, bson.M{"verified": false}, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("list unverified users: %w", err)
	}
	out := make([]domain.User, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context, filter ports.UserFilter) (int64, error) {
	f := bson.M{}
	if filter.Verified != nil {
		f["verified"] = *filter.Verified
	}
	return count(ctx, r.col, f)
}

func (r *UserRepository) SetVerification(ctx context.Context, id string, verified, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": verified, "is_active": active}})
	if err != nil {
		return fmt.Errorf("verify user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
