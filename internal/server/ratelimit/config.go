package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	if !envValue(getenv, "RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	analyzeLimit := envValue(getenv, "RATE_LIMIT_ANALYZE_PER_HOUR", 30, strconv.Atoi)
	endpoints := DefaultEndpointConfigs()
	for i := range endpoints {
		if strings.HasPrefix(endpoints[i].Path, "/analyze") {
			endpoints[i].Limit = analyzeLimit
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envValue(getenv, "RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envValue(getenv, "RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envValue(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		Whitelist:       parseIPList(getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: model calls (strictest limits)
		{Path: "/analyze", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/analyze/stream", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},

		// Tier 2: outbound probes
		{Path: "/links/verify", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Tier 3: local work (recover) - handled by default limit
		// Tier 4: health and metrics (unlimited) - handled by special case in matcher
	}
}

// envValue parses an environment variable, returning def when it is unset or invalid.
func envValue[T any](getenv func(string) string, key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
