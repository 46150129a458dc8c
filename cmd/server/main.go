// @title        Deal Room API
// @version      1.0
// @description  Role-based marketplace dashboard: sections, offer decisions, notifications and admin verification.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api"
	"github.com/microsharks/dealroom/internal/api/handler"
	"github.com/microsharks/dealroom/internal/api/middleware"
	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/core/service"
	"github.com/microsharks/dealroom/internal/infrastructure/config"
	"github.com/microsharks/dealroom/internal/infrastructure/db"
	"github.com/microsharks/dealroom/internal/infrastructure/db/redis"
	"github.com/microsharks/dealroom/internal/infrastructure/queue"
	"github.com/microsharks/dealroom/internal/view"
	"github.com/microsharks/dealroom/pkg/logger"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		logger.Init(logger.Options{Service: "dealroom"})
		fatal := logger.Get()
		fatal.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dealroom",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, closeStore, err := db.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer closeStore()

	health := map[string]handler.Pinger{"store": store}

	// The offer marker is best effort: without Redis, decisions still run
	// but concurrent clicks are only caught by the store's compare-and-set.
	var guard service.OfferGuard
	rdb, err := redis.Connect(ctx, redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, offer marker disabled")
	} else {
		defer rdb.Close()
		lock := redis.NewOfferLock(rdb, cfg.Redis.OfferLockTTL)
		guard = lock
		health["redis"] = lock
	}

	var sender ports.NotificationSender = service.NewStoreSender(store.Notifications())
	if cfg.Notify.Async {
		dispatcher := queue.NewDispatcher(cfg.Notify.Workers, sender, logger.Component("dispatcher"))
		dispatcher.Start(context.WithoutCancel(ctx))
		defer dispatcher.Close()
		sender = dispatcher
	}

	dashboard := service.NewDashboardService(store, service.DashboardOptions{
		MarketplaceLimit: cfg.Limits.Marketplace,
		RecentProposals:  cfg.Limits.RecentProposals,
	}, logger.Component("dashboard"))

	view.SetPageLinks(view.PageLinks{
		ProposalDetail: cfg.Pages.ProposalDetail,
		ProposalEdit:   cfg.Pages.ProposalEdit,
		OfferDetail:    cfg.Pages.OfferDetail,
	})

	e, err := api.NewRouter(api.Deps{
		Dashboard:     dashboard,
		Offers:        service.NewOfferService(store, guard, sender, logger.Component("offers")),
		Notifications: service.NewNotificationService(store.Notifications(), cfg.Limits.Notifications, logger.Component("notifications")),
		Admin:         service.NewAdminService(store, logger.Component("admin")),
		Health:        health,
		Auth: middleware.AuthOptions{
			Secret:   cfg.Session.JWTSecret,
			Cookie:   cfg.Session.CookieName,
			LoginURL: cfg.Session.LoginURL,
		},
		SecureCookies: cfg.IsProduction(),
		Log:           logger.Component("http"),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("dealroom listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
