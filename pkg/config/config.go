package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string `env:"PORT" envDefault:"3000"`
	AppName string `env:"APP_NAME" envDefault:"TIP Luxury Travel"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// Backend API
	APIBaseURL      string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api/v1"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	// Session
	SessionSecret string `env:"SESSION_SECRET" envDefault:"change-me-in-production"`
	SessionIssuer string `env:"SESSION_ISSUER" envDefault:"tip-web"`
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"tip_session"`
	DeviceCookie  string `env:"DEVICE_COOKIE" envDefault:"device_id"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// AccessTokenLifetime is the lifetime the backend states for access tokens.
	AccessTokenLifetime time.Duration `env:"ACCESS_TOKEN_LIFETIME" envDefault:"30m"`
	// AccessTokenMargin is subtracted from the lifetime so a cached token never outlives the real one.
	AccessTokenMargin time.Duration `env:"ACCESS_TOKEN_MARGIN" envDefault:"1m"`
	SessionMaxAge     time.Duration `env:"SESSION_MAX_AGE" envDefault:"168h"`
	DeviceIDMaxAge    time.Duration `env:"DEVICE_ID_MAX_AGE" envDefault:"8760h"`

	// Optional audit database (empty = log-only audit)
	DatabaseURL string `env:"DATABASE_URL"`

	// Optional catalog cache (empty = no caching)
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	// Media
	S3Endpoint string `env:"S3_ENDPOINT"`

	// Frontend
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would break the session lifecycle.
func (c *Config) Validate() error {
	if c.AccessTokenLifetime <= 0 {
		return errors.New("ACCESS_TOKEN_LIFETIME must be positive")
	}
	if c.AccessTokenMargin <= 0 || c.AccessTokenMargin >= c.AccessTokenLifetime {
		return fmt.Errorf("ACCESS_TOKEN_MARGIN must be within (0, %s)", c.AccessTokenLifetime)
	}
	if c.SessionMaxAge <= c.AccessTokenLifetime {
		return errors.New("SESSION_MAX_AGE must exceed ACCESS_TOKEN_LIFETIME")
	}
	if c.BackendTimeout <= 0 {
		return errors.New("BACKEND_TIMEOUT must be positive")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.IsProduction() && c.SessionSecret == "change-me-in-production" {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}

// AccessTokenTTL is how long a freshly issued access token is treated as valid locally.
func (c *Config) AccessTokenTTL() time.Duration {
	return c.AccessTokenLifetime - c.AccessTokenMargin
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
