package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// TokenStore selects where profile credentials persist: memory, redis or mongo.
	TokenStore        string `env:"TOKEN_STORE,        default=memory"`
	RevocationWorkers int    `env:"REVOCATION_WORKERS, default=4"`

	API     APIConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type APIConfig struct {
	BaseURL        string        `env:"API_BASE_URL,        default=http://localhost:8000/api"`
	Timeout        time.Duration `env:"API_TIMEOUT,         default=15s"`
	RefreshTimeout time.Duration `env:"API_REFRESH_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	Cookie        string        `env:"SESSION_COOKIE,         default=console_session"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE,  default=false"`
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT,   default=30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=asset_console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the console runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values envconfig cannot express in tags.
func (c *Config) Validate() error {
	var errs []error

	switch c.TokenStore {
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("TOKEN_STORE must be memory, redis or mongo, got %q", c.TokenStore))
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API_TIMEOUT must be positive"))
	}
	if c.API.RefreshTimeout <= 0 {
		errs = append(errs, errors.New("API_REFRESH_TIMEOUT must be positive"))
	}
	if c.Session.Cookie == "" {
		errs = append(errs, errors.New("SESSION_COOKIE must not be empty"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
