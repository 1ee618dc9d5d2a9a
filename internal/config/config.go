// Package config loads client configuration from the environment.
//
// Configuration is read from environment variables via github.com/caarlos0/env,
// with an optional .env file loaded first (development convenience). The API
// base URL follows the deployment environment unless overridden explicitly.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const apiPrefix = "/api"

// Environment base URLs. Production may be overridden with FB_API_URL.
const (
	devBaseURL  = "http://localhost:8000"
	prodBaseURL = "https://api.firmaboard.com"
)

// Config holds all client configuration.
type Config struct {
	// Env selects the deployment environment: development, production or test.
	Env string `env:"FB_ENV" envDefault:"development"`

	// APIURL overrides the environment-derived backend base URL.
	APIURL string `env:"FB_API_URL"`

	// DataDir is where the durable token area lives. Defaults to
	// <user config dir>/firmaboard when empty.
	DataDir string `env:"FB_DATA_DIR"`

	// Google sign-in configuration.
	Google GoogleConfig `envPrefix:"FB_GOOGLE_"`
}

// GoogleConfig contains the OAuth client used to obtain a Google ID token.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8484/callback"`
	IssuerURL    string `env:"ISSUER_URL"   envDefault:"https://accounts.google.com"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	switch c.Env {
	case "development", "production", "test":
	default:
		c.Env = "development"
	}
	if c.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.DataDir = filepath.Join(dir, "firmaboard")
		} else {
			c.DataDir = ".firmaboard"
		}
	}
}

// BaseURL returns the fully assembled API base URL, including the fixed
// API path prefix.
func (c Config) BaseURL() string {
	base := c.APIURL
	if base == "" {
		switch c.Env {
		case "production":
			base = prodBaseURL
		default:
			base = devBaseURL
		}
	}
	return strings.TrimRight(base, "/") + apiPrefix
}

// IsDev reports whether the client runs against a local backend.
func (c Config) IsDev() bool {
	return c.Env != "production"
}
