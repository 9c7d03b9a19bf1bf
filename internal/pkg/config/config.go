package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects the credential store: mongo, postgres or sqlite.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
	// DatabaseURL is the DSN used by the postgres and sqlite drivers.
	DatabaseURL string `env:"DATABASE_URL"`

	// RoleMismatchRedirect is "login" or "dashboard".
	RoleMismatchRedirect string `env:"ROLE_MISMATCH_REDIRECT, default=login"`
	AuditWorkers         int    `env:"AUDIT_WORKERS,          default=4"`

	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Admin   AdminConfig
}

type SessionConfig struct {
	SecretKey  string        `env:"SECRET_KEY"`
	TTL        time.Duration `env:"SESSION_TTL,    default=24h"`
	Issuer     string        `env:"SESSION_ISSUER, default=bellybox"`
	BcryptCost int           `env:"BCRYPT_COST,    default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bellybox"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// AdminConfig describes the operator account provisioned at startup. It is
// ignored unless both Email and Password are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Username string `env:"ADMIN_USERNAME, default=admin"`
}

// Enabled reports whether an operator account should be provisioned.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// IsDevelopment enables console logs and non-Secure cookies.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load that panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	switch c.StoreDriver {
	case StoreMongo:
	case StorePostgres, StoreSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.RoleMismatchRedirect {
	case "login", "dashboard":
	default:
		return fmt.Errorf("ROLE_MISMATCH_REDIRECT must be login or dashboard, got %q", c.RoleMismatchRedirect)
	}
	return nil
}
