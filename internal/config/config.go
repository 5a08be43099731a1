// Package config loads the server configuration from environment variables.
//
// CONFIGURATION AS A STRUCT:
// All runtime settings live in one typed struct, parsed once at startup and
// passed explicitly to the components that need them. Nothing in the
// application reads os.Getenv after startup — the Google OAuth client, the
// token secret, and the database path are all injected at construction time.
//
// The env tags are handled by caarlos0/env: each field names its variable
// and an optional default. Parsing fails loudly on malformed values (e.g. a
// non-numeric PORT), so a bad deployment dies at boot instead of mid-request.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the server.
type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// DBPath is the SQLite database file. The parent directory is created
	// at startup if missing. Use ":memory:" for throwaway instances.
	DBPath string `env:"DB_PATH" envDefault:"data/legalpath.db"`

	// JWTSecret signs bearer tokens. Must be at least 16 characters;
	// generate with: openssl rand -hex 32
	JWTSecret string `env:"JWT_SECRET"`

	// Google OAuth client credentials. When empty, the Google routes are
	// not registered and only password auth is available.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	// ClientURL is the base URL of the single-page app. The Google
	// callback redirects here with ?token= on success or ?error= on
	// failure.
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then parses the environment.
//
// The .env file is a development convenience — missing is fine, real
// deployments set variables directly. Values already present in the
// environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	return nil
}

// GoogleEnabled reports whether the Google OAuth flow is configured.
// Both the client id and secret are required; the callback URL has a
// sensible localhost default filled in by DefaultGoogleCallback.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// DefaultGoogleCallback returns the callback URL, defaulting to the local
// server when GOOGLE_CALLBACK_URL is unset.
func (c Config) DefaultGoogleCallback() string {
	if c.GoogleCallbackURL != "" {
		return c.GoogleCallbackURL
	}
	return fmt.Sprintf("http://localhost:%d/api/auth/google/callback", c.Port)
}
