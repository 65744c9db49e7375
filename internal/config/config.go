// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime knob. Values come from the environment,
// optionally seeded from a .env file by the caller.
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	DBURL string `envconfig:"DB_URL"`

	// Maximum guestbook entry length, in runes.
	ContentMaxLength int `envconfig:"CONTENT_MAX_LENGTH" default:"200"`

	// Spam guard pre-check on message creation. Off unless explicitly
	// enabled; the origin allow-list only matters when the guard is on.
	GuardEnabled    bool     `envconfig:"GUARD_ENABLED" default:"false"`
	GuardOrigins    []string `envconfig:"GUARD_ORIGINS"`
	GuardMaxPerHour int      `envconfig:"GUARD_MAX_PER_HOUR" default:"10"`

	// In-process per-IP token bucket on the create route.
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Load parses the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.ContentMaxLength <= 0 {
		return Config{}, fmt.Errorf("config: CONTENT_MAX_LENGTH must be positive, got %d", cfg.ContentMaxLength)
	}
	if cfg.RateLimitRequests <= 0 {
		return Config{}, fmt.Errorf("config: RATE_LIMIT_REQUESTS must be positive, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow <= 0 {
		return Config{}, fmt.Errorf("config: RATE_LIMIT_WINDOW must be positive, got %v", cfg.RateLimitWindow)
	}
	return cfg, nil
}
