// Package postgres implements the dealroom store on a relational database
// through gorm. Join shapes are loaded with Preload.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/microsharks/dealroom/internal/core/ports"
)

// Open connects to Postgres with dsn.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the tables for local development. Production schemas
// are owned by the external backend.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Store is the ports.Store backed by a gorm handle. Inside WithinTx the handle
// is the transaction.
type Store struct {
	db *gorm.DB
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() ports.UserRepository                 { return &UserRepository{db: s.db} }
func (s *Store) Proposals() ports.ProposalRepository         { return &ProposalRepository{db: s.db} }
func (s *Store) Offers() ports.OfferRepository               { return &OfferRepository{db: s.db} }
func (s *Store) Deals() ports.DealRepository                 { return &DealRepository{db: s.db} }
func (s *Store) Notifications() ports.NotificationRepository { return &NotificationRepository{db: s.db} }
func (s *Store) FundingLogs() ports.FundingLogRepository     { return &FundingLogRepository{db: s.db} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// first loads one row and maps gorm's miss to notFound.
func first(q *gorm.DB, out any, notFound error) error {
	if err := q.First(out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return err
	}
	return nil
}
