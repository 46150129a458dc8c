package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Notify   NotifyConfig
	Limits   LimitsConfig
	Pages    PagesConfig
}

type SessionConfig struct {
	JWTSecret  string `env:"JWT_SECRET"`
	LoginURL   string `env:"LOGIN_URL,      default=/login"`
	CookieName string `env:"SESSION_COOKIE, default=sb-access-token"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dealroom"`
}

type PostgresConfig struct {
	DSN         string `env:"POSTGRES_DSN"`
	AutoMigrate bool   `env:"POSTGRES_AUTO_MIGRATE, default=false"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,     default=localhost:6379"`
	DB           int           `env:"REDIS_DB,       default=0"`
	OfferLockTTL time.Duration `env:"OFFER_LOCK_TTL, default=30s"`
}

type NotifyConfig struct {
	Async   bool `env:"NOTIFY_ASYNC,   default=false"`
	Workers int  `env:"NOTIFY_WORKERS, default=4"`
}

type LimitsConfig struct {
	Notifications   int `env:"NOTIFICATION_LIMIT, default=20"`
	Marketplace     int `env:"MARKETPLACE_LIMIT,  default=12"`
	RecentProposals int `env:"RECENT_PROPOSALS,   default=3"`
}

// PagesConfig holds the link patterns for pages served outside this service.
// "{id}" is replaced with the record id; empty keeps the built-in default.
type PagesConfig struct {
	ProposalDetail string `env:"PROPOSAL_PAGE_URL"`
	ProposalEdit   string `env:"PROPOSAL_EDIT_URL"`
	OfferDetail    string `env:"OFFER_PAGE_URL"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.IsProduction() && c.Session.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	return nil
}

// ValidateServer adds the checks that only matter when the HTTP routes are
// served. Tokens must never be verified against an empty key.
func (c *Config) ValidateServer() error {
	if c.Session.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required to serve the dashboard")
	}
	return nil
}
