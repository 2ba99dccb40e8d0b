package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort    string `env:"APP_PORT"       envDefault:"3000"`
	AppBaseURL string `env:"APP_BASE_URL"   envDefault:"http://localhost:3000"`
	SecretKey  string `env:"APP_SECRET_KEY"`

	Auth0Domain       string   `env:"AUTH0_DOMAIN"`
	Auth0ClientID     string   `env:"AUTH0_CLIENT_ID"`
	Auth0ClientSecret string   `env:"AUTH0_CLIENT_SECRET"`
	Auth0Scopes       []string `env:"AUTH0_SCOPES"        envDefault:"openid,profile,email" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseDSN    string `env:"DATABASE_DSN"`

	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.AppBaseURL = strings.TrimSuffix(cfg.AppBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.SecretKey == "" {
		missing = append(missing, "APP_SECRET_KEY")
	}
	if c.Auth0Domain == "" {
		missing = append(missing, "AUTH0_DOMAIN")
	}
	if c.Auth0ClientID == "" {
		missing = append(missing, "AUTH0_CLIENT_ID")
	}
	if c.Auth0ClientSecret == "" {
		missing = append(missing, "AUTH0_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required env: %s", strings.Join(missing, ", "))
	}

	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	return nil
}

// CallbackURL is the redirect target registered with the provider.
func (c Config) CallbackURL() string {
	return c.AppBaseURL + "/callback"
}

// HomeURL is where the provider sends the browser after logout.
func (c Config) HomeURL() string {
	return c.AppBaseURL + "/"
}
