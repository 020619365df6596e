package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"0s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN is optional. Without it audit and idempotency records are not kept.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	BackendURL          string        `envconfig:"BACKEND_URL" default:"http://localhost:5000/api"`
	BackendTimeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"20s"`
	BackendServiceToken string        `envconfig:"BACKEND_SERVICE_TOKEN"`

	CatalogCacheTTL   time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"10m"`
	CatalogWarmupCron string        `envconfig:"CATALOG_WARMUP_CRON" default:"*/30 * * * *"`

	ActionLockTTL      time.Duration `envconfig:"ACTION_LOCK_TTL" default:"30s"`
	UploadMaxBytes     int64         `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	IdempotencyRetention time.Duration `envconfig:"IDEMPOTENCY_RETENTION" default:"72h"`
	IdempotencyCleanCron string        `envconfig:"IDEMPOTENCY_CLEANUP_CRON" default:"0 3 * * *"`
}

// LoadConfig reads configuration from environment variables, after applying
// an optional .env file from the working directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend url %q must be absolute", c.BackendURL)
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("rate limit per minute must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// PersistenceEnabled reports whether a Postgres DSN was configured.
func (c *Config) PersistenceEnabled() bool {
	return c != nil && c.PGDSN != ""
}

// QueueRedis returns the asynq connection options for RedisAddr, which may be
// a host:port pair or a redis:// URL.
func (c *Config) QueueRedis() (asynq.RedisConnOpt, error) {
	if strings.HasPrefix(c.RedisAddr, "redis://") || strings.HasPrefix(c.RedisAddr, "rediss://") {
		return asynq.ParseRedisURI(c.RedisAddr)
	}
	return asynq.RedisClientOpt{Addr: c.RedisAddr}, nil
}
