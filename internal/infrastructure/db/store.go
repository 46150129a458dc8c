// Package db opens the ports.Store selected by STORE_DRIVER.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/infrastructure/config"
	"github.com/microsharks/dealroom/internal/infrastructure/db/mongo"
	"github.com/microsharks/dealroom/internal/infrastructure/db/postgres"
)

// Open connects the configured backend. The returned func releases it.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		gdb, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := postgres.AutoMigrate(gdb); err != nil {
				return nil, nil, err
			}
		}
		closer := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return postgres.NewStore(gdb), closer, nil

	case config.DriverMongo:
		client, mdb, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		store := mongo.NewStore(client, mdb)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo indexes not ensured")
		}
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return store, closer, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
