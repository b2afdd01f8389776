package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by FromEnv.
const (
	EnvEnabled   = "URLIMPORT_RATE_LIMIT_ENABLED"
	EnvLimit     = "URLIMPORT_RATE_LIMIT_LIMIT"
	EnvWindow    = "URLIMPORT_RATE_LIMIT_WINDOW"
	EnvBurst     = "URLIMPORT_RATE_LIMIT_BURST"
	EnvWhitelist = "URLIMPORT_RATE_LIMIT_WHITELIST"
	EnvBlacklist = "URLIMPORT_RATE_LIMIT_BLACKLIST"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Limit           int           // Requests per window and client
	Window          time.Duration // Refill window
	Burst           int           // Bucket capacity (defaults to Limit if 0)
	CleanupInterval time.Duration // How often idle buckets are dropped
	IdleTTL         time.Duration // Buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Exempt          []string // Paths never limited
}

// DefaultConfig returns the limits an origin server starts with.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Limit:           600,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		Exempt:          []string{"/health"},
	}
}

// FromEnv returns a copy of base with URLIMPORT_RATE_LIMIT_* overrides applied.
// Unparseable values are ignored.
func FromEnv(base *Config) *Config {
	if base == nil {
		base = DefaultConfig()
	}
	cfg := *base
	cfg.Enabled = getEnvBool(EnvEnabled, cfg.Enabled)
	cfg.Limit = getEnvInt(EnvLimit, cfg.Limit)
	cfg.Window = getEnvDuration(EnvWindow, cfg.Window)
	cfg.Burst = getEnvInt(EnvBurst, cfg.Burst)
	if v := os.Getenv(EnvWhitelist); v != "" {
		cfg.Whitelist = parseIPList(v)
	}
	if v := os.Getenv(EnvBlacklist); v != "" {
		cfg.Blacklist = parseIPList(v)
	}
	return &cfg
}

func (c *Config) exempt(path string) bool {
	for _, p := range c.Exempt {
		if p == path {
			return true
		}
	}
	return false
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
