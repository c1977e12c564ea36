package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is loaded once at startup
// and passed by injection.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`
	RedisURL       string `env:"REDIS_URL"`

	AuthSecret       string        `env:"AUTH_SECRET"`
	SessionMaxAge    time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	SessionUpdateAge time.Duration `env:"SESSION_UPDATE_AGE" envDefault:"24h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleIssuer       string `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`

	TenantCacheSize int           `env:"TENANT_CACHE_SIZE" envDefault:"1024"`
	TenantCacheTTL  time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`

	BackfillInterval time.Duration `env:"BACKFILL_INTERVAL" envDefault:"0s"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// minProductionSecretLength is the shortest AUTH_SECRET accepted in production.
const minProductionSecretLength = 32

// Load reads configuration from environment variables, after a local .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	return cfg, nil
}

// IsDevelopment reports whether internal error details may be shown.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether production rules apply.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GoogleEnabled reports whether both Google credentials are set.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// SecureCookies reports whether session cookies carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.AuthSecret == "" {
		errs = append(errs, errors.New("AUTH_SECRET is required"))
	} else if c.IsProduction() && len(c.AuthSecret) < minProductionSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d characters in production", minProductionSecretLength))
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BASE_URL %q is not an absolute URL", c.BaseURL))
	} else if c.IsProduction() && u.Scheme != "https" {
		errs = append(errs, errors.New("BASE_URL must use https in production"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.ServerPort))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	if c.SessionUpdateAge <= 0 || c.SessionUpdateAge > c.SessionMaxAge {
		errs = append(errs, errors.New("SESSION_UPDATE_AGE must be positive and not exceed SESSION_MAX_AGE"))
	}
	if c.LoginRateLimit < 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT must not be negative"))
	}
	if c.TenantCacheSize <= 0 {
		errs = append(errs, errors.New("TENANT_CACHE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// Summary lists the effective settings with secrets masked.
func (c *Config) Summary() map[string]string {
	google := "disabled"
	if c.GoogleEnabled() {
		google = "enabled (" + mask(c.GoogleClientID) + ")"
	}
	redis := "disabled"
	if c.RedisURL != "" {
		redis = redactURL(c.RedisURL)
	}
	return map[string]string{
		"environment":        c.Environment,
		"server_port":        fmt.Sprint(c.ServerPort),
		"base_url":           c.BaseURL,
		"database_url":       redactURL(c.DatabaseURL),
		"redis":              redis,
		"auth_secret":        mask(c.AuthSecret),
		"session_max_age":    c.SessionMaxAge.String(),
		"session_update_age": c.SessionUpdateAge.String(),
		"google":             google,
		"login_rate_limit":   fmt.Sprintf("%d/%s", c.LoginRateLimit, c.LoginRateWindow),
		"backfill_interval":  c.BackfillInterval.String(),
		"migrate_on_start":   fmt.Sprint(c.MigrateOnStart),
	}
}

func mask(s string) string {
	switch {
	case s == "":
		return "(unset)"
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}

func redactURL(raw string) string {
	if raw == "" {
		return "(unset)"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}
