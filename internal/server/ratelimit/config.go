package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/fieldsync/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // Buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultIdleTimeout is how long an unused client bucket is kept.
const DefaultIdleTimeout = time.Hour

// NewConfig converts service settings into limiter configuration.
func NewConfig(rc config.RateLimitConfig) *Config {
	if !rc.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    rc.DefaultLimit,
		DefaultWindow:   rc.DefaultWindow,
		CleanupInterval: rc.CleanupInterval,
		IdleTimeout:     DefaultIdleTimeout,
		Whitelist:       ipSet(rc.Whitelist),
		Blacklist:       ipSet(rc.Blacklist),
		EndpointConfigs: EndpointConfigs(rc),
	}
}

// EndpointConfigs returns the endpoint-specific limits.
func EndpointConfigs(rc config.RateLimitConfig) []EndpointConfig {
	return []EndpointConfig{
		// Diagnosis scans the whole catalog on every call
		{Path: "/api/diagnose", Method: http.MethodPost, Limit: rc.DiagnoseLimit, Window: rc.DiagnoseWindow, Burst: rc.DiagnoseBurst},

		// Scrapes and the root banner are never limited
		{Path: "/metrics", Method: http.MethodGet, Limit: 0},
		{Path: "/", Method: http.MethodGet, Limit: 0},
	}
}

// ipSet builds a lookup set from a list of addresses, ignoring blanks.
func ipSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		// Entries may themselves be comma-separated lists
		for _, part := range strings.Split(ip, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				result[part] = true
			}
		}
	}
	return result
}
