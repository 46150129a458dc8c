// Package mongo implements the dealroom store on MongoDB. Documents use the
// row ids of the external schema as string _id values.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/microsharks/dealroom/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store is the ports.Store backed by one database. Transactions need a
// replica set or sharded cluster.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users         *UserRepository
	proposals     *ProposalRepository
	offers        *OfferRepository
	deals         *DealRepository
	notifications *NotificationRepository
	fundingLogs   *FundingLogRepository
}

var _ ports.Store = (*Store)(nil)

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	j := newJoiner(db)
	return &Store{
		client:        client,
		db:            db,
		users:         &UserRepository{col: db.Collection(collectionUsers)},
		proposals:     &ProposalRepository{col: db.Collection(collectionProposals), join: j},
		offers:        &OfferRepository{col: db.Collection(collectionOffers), join: j},
		deals:         &DealRepository{col: db.Collection(collectionDeals), join: j},
		notifications: &NotificationRepository{col: db.Collection(collectionNotifications)},
		fundingLogs:   &FundingLogRepository{col: db.Collection(collectionFundingLogs)},
	}
}

func (s *Store) Users() ports.UserRepository                 { return s.users }
func (s *Store) Proposals() ports.ProposalRepository         { return s.proposals }
func (s *Store) Offers() ports.OfferRepository               { return s.offers }
func (s *Store) Deals() ports.DealRepository                 { return s.deals }
func (s *Store) Notifications() ports.NotificationRepository { return s.notifications }
func (s *Store) FundingLogs() ports.FundingLogRepository     { return s.fundingLogs }

// WithinTx runs fn in a session transaction. The session travels in the ctx
// handed to fn, so the same repositories serve as the transactional store.
// The driver may call fn more than once on transient errors.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes the dashboard queries rely on. The unique
// index on deals.offer_id backs the one-deal-per-offer rule.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionProposals: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "verified", Value: 1}, {Key: "status", Value: 1}}},
		},
		collectionOffers: {
			{Keys: bson.D{{Key: "proposal_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "investor_id", Value: 1}}},
		},
		collectionDeals: {
			{Keys: bson.D{{Key: "offer_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "entrepreneur_id", Value: 1}}},
			{Keys: bson.D{{Key: "investor_id", Value: 1}}},
		},
		collectionNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// findOne decodes the first match into out and maps a miss to notFound.
func findOne(ctx context.Context, col *mongo.Collection, filter bson.M, out any, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := col.FindOne(ctx, filter).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound
		}
		return err
	}
	return nil
}

// findAll decodes every match into a slice of T.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func count(ctx context.Context, col *mongo.Collection, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return col.CountDocuments(ctx, filter)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}
