package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/microsharks/dealroom/internal/core/ports"
	"github.com/microsharks/dealroom/internal/core/service"
	"github.com/microsharks/dealroom/internal/infrastructure/config"
	"github.com/microsharks/dealroom/internal/infrastructure/db"
	"github.com/microsharks/dealroom/pkg/logger"
)

type cli struct {
	Stats          statsCmd  `cmd:"" help:"Print the stat cards of a user's dashboard section as JSON."`
	VerifyUser     verifyCmd `cmd:"" name:"verify-user" help:"Approve or reject a pending user."`
	VerifyProposal verifyCmd `cmd:"" name:"verify-proposal" help:"Approve or reject a pending proposal."`
	Token          tokenCmd  `cmd:"" help:"Sign a development session token."`
	LogLevel       string    `default:"warn" help:"Log level for store diagnostics."`
}

type statsCmd struct {
	User string `arg:"" help:"Profile id whose section to load."`
}

type verifyCmd struct {
	ID     string `arg:"" help:"Id of the user or proposal under review."`
	As     string `required:"" help:"Admin profile id the decision is recorded as."`
	Reject bool   `help:"Reject instead of approve."`
}

type tokenCmd struct {
	Sub    string        `required:"" help:"Profile id written to the sub claim."`
	TTL    time.Duration `default:"24h" help:"Token lifetime."`
	Secret string        `env:"JWT_SECRET" required:"" help:"HMAC secret shared with the server."`
}

// services is opened once per command from the server configuration.
type services struct {
	dashboard ports.DashboardService
	admin     ports.AdminService
	close     func()
}

func main() {
	_ = godotenv.Load()

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("dealctl"),
		kong.Description("Operator utility for the deal room dashboard."),
		kong.UsageOnError(),
	)
	logger.Init(logger.Options{Level: c.LogLevel, Pretty: true, Service: "dealctl", Output: os.Stderr})

	err := kctx.Run(context.Background())
	kctx.FatalIfErrorf(err)
}

func openServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := db.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		return nil, fmt.Errorf("dealctl: open store: %w", err)
	}
	return &services{
		dashboard: service.NewDashboardService(store, service.DashboardOptions{
			MarketplaceLimit: cfg.Limits.Marketplace,
			RecentProposals:  cfg.Limits.RecentProposals,
		}, logger.Component("dashboard")),
		admin: service.NewAdminService(store, logger.Component("admin")),
		close: closeStore,
	}, nil
}

func (cmd *statsCmd) Run(ctx context.Context) error {
	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer svc.close()
	return printStats(ctx, os.Stdout, svc.dashboard, cmd.User)
}

// printStats writes the role and stats of userID's section. Widgets that
// failed to load are listed under "degraded".
func printStats(ctx context.Context, w io.Writer, dashboard ports.DashboardService, userID string) error {
	sess, err := dashboard.Open(ctx, userID)
	if err != nil {
		return fmt.Errorf("dealctl: open session: %w", err)
	}
	sec, err := dashboard.Load(ctx, *sess)
	if err != nil {
		return fmt.Errorf("dealctl: load section: %w", err)
	}

	var stats any
	switch s := sec.(type) {
	case *ports.EntrepreneurSection:
		stats = s.Stats
	case *ports.InvestorSection:
		stats = s.Stats
	case *ports.AdminSection:
		stats = s.Stats
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"user":     sess.User.FullName,
		"role":     sess.Role(),
		"stats":    stats,
		"degraded": sec.Degraded(),
	})
}

func (cmd *verifyCmd) Run(kctx *kong.Context, ctx context.Context) error {
	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	verify := svc.admin.VerifyUser
	if kctx.Selected().Name == "verify-proposal" {
		verify = svc.admin.VerifyProposal
	}
	return applyVerification(ctx, os.Stdout, svc.dashboard, verify, cmd.As, cmd.ID, !cmd.Reject)
}

type verifyFunc func(ctx context.Context, sess ports.Session, id string, approve bool) error

func applyVerification(ctx context.Context, w io.Writer, dashboard ports.DashboardService, verify verifyFunc, adminID, id string, approve bool) error {
	sess, err := dashboard.Open(ctx, adminID)
	if err != nil {
		return fmt.Errorf("dealctl: open admin session: %w", err)
	}
	if err := verify(ctx, *sess, id, approve); err != nil {
		return fmt.Errorf("dealctl: verify %s: %w", id, err)
	}
	decision := "approved"
	if !approve {
		decision = "rejected"
	}
	fmt.Fprintf(w, "✓ %s %s\n", id, decision)
	return nil
}

func (cmd *tokenCmd) Run() error {
	tok, err := signToken([]byte(cmd.Secret), cmd.Sub, cmd.TTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, tok)
	return nil
}

// signToken issues an HS256 token the server's Auth middleware accepts.
func signToken(secret []byte, sub string, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("dealctl: ttl must be positive, got %s", ttl)
	}
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("dealctl: sign token: %w", err)
	}
	return tok, nil
}
