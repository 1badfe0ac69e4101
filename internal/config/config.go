// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"net/url"
	"runtime"
	"time"
)

// Bad-request policies understood by the leaderboard loader.
const (
	PolicySilent  = "silent"
	PolicySurface = "surface"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBaseURL is the speedrun.com REST root.
	APIBaseURL string `koanf:"api_base_url"`

	// UserAgent is sent with every upstream request.
	UserAgent string `koanf:"user_agent"`

	// RequestTimeoutMS bounds a single upstream request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RateLimitRPS and RateLimitBurst throttle outbound requests.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// PageSize is the number of runs per leaderboard page.
	PageSize int `koanf:"page_size"`

	// BadRequestPolicy decides what a 400 without a fallback category shows:
	// "silent" (empty leaderboard) or "surface" (error message).
	BadRequestPolicy string `koanf:"bad_request_policy"`

	// MaxSessions caps in-memory viewer sessions; the oldest is evicted.
	MaxSessions int `koanf:"max_sessions"`

	// EventQueueSize bounds the outbound event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of event dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// SearchDebounceMS is the search input quiet period.
	SearchDebounceMS int `koanf:"search_debounce_ms"`

	// CatalogPageSize and CatalogMax bound the game catalog.
	CatalogPageSize int `koanf:"catalog_page_size"`
	CatalogMax      int `koanf:"catalog_max"`

	// PopularSample is how many recent verified runs feed the popular list,
	// PopularTop how many games it keeps.
	PopularSample int `koanf:"popular_sample"`
	PopularTop    int `koanf:"popular_top"`

	// CategoryCacheTTLMS keeps per-game category lists this long; 0 disables.
	CategoryCacheTTLMS int `koanf:"category_cache_ttl_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		APIBaseURL:       "https://www.speedrun.com/api/v1",
		UserAgent:        "runboard/1.0",
		RequestTimeoutMS: 15_000,
		RateLimitRPS:     1.5,
		RateLimitBurst:   5,
		PageSize:         10,
		BadRequestPolicy: PolicySilent,
		MaxSessions:      1_000,
		EventQueueSize:   10_000,
		WorkerCount:      runtime.NumCPU(),
		SearchDebounceMS: 400,
		CatalogPageSize:  50,
		CatalogMax:       200,
		PopularSample:    200,
		PopularTop:       20,

		CategoryCacheTTLMS: 300_000,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// SearchDebounce returns SearchDebounceMS as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// CategoryCacheTTL returns CategoryCacheTTLMS as a duration.
func (c *Config) CategoryCacheTTL() time.Duration {
	return time.Duration(c.CategoryCacheTTLMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PageSize < 1:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.CatalogPageSize < 1:
		return fmt.Errorf("%w: catalog_page_size must be positive", ErrInvalidConfig)
	case c.CategoryCacheTTLMS < 0:
		return fmt.Errorf("%w: category_cache_ttl_ms must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS <= 0:
		return fmt.Errorf("%w: rate_limit_rps must be positive", ErrInvalidConfig)
	case c.BadRequestPolicy != PolicySilent && c.BadRequestPolicy != PolicySurface:
		return fmt.Errorf("%w: bad_request_policy must be %q or %q", ErrInvalidConfig, PolicySilent, PolicySurface)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_base_url must be an absolute http(s) URL", ErrInvalidConfig)
	}
	return nil
}
