// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/urlimport/internal/compile"
	"github.com/jonathan/urlimport/internal/fetch"
	"github.com/jonathan/urlimport/internal/schemas"
)

// Environment variables that override file values.
const (
	EnvOrigin    = "URLIMPORT_ORIGIN"
	EnvKind      = "URLIMPORT_KIND"
	EnvTimeout   = "URLIMPORT_TIMEOUT"
	EnvUserAgent = "URLIMPORT_USER_AGENT"
	EnvLogLevel  = "URLIMPORT_LOG_LEVEL"
)

// Duration is a time.Duration written as a Go duration string in JSON, e.g. "30s".
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// RateLimitConfig configures the origin server's per-client limiter.
type RateLimitConfig struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Limit   int      `json:"limit,omitempty" validate:"gte=0"`
	Window  Duration `json:"window,omitempty" validate:"gte=0"`
}

// IsEnabled reports whether limiting is on. Unset means on.
func (r RateLimitConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ServerConfig configures `urlimport serve`.
type ServerConfig struct {
	Dir       string          `json:"dir,omitempty"` // Directory published as an origin
	Port      int             `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	RateLimit RateLimitConfig `json:"rate_limit,omitempty"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Resolution
	Origin string `json:"origin,omitempty" validate:"omitempty,url,startswith=http"`
	Kind   string `json:"kind,omitempty" validate:"omitempty,oneof=sh cue all"`

	// Transport
	Timeout    Duration          `json:"timeout,omitempty" validate:"gte=0"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	MaxBytes   int64             `json:"max_bytes,omitempty" validate:"gte=0"`
	UseBrowser bool              `json:"use_browser,omitempty"` // Render listings in a headless browser when the HTML has no links

	// Output
	Verbose  bool   `json:"verbose,omitempty"`
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	Server ServerConfig `json:"server,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Kind:      compile.KindShell,
		Timeout:   Duration(fetch.DefaultTimeout),
		UserAgent: fetch.DefaultUserAgent,
		MaxBytes:  fetch.DefaultMaxBytes,
		LogLevel:  "info",
		Server: ServerConfig{
			Dir:  ".",
			Port: 8000,
			RateLimit: RateLimitConfig{
				Limit:  600,
				Window: Duration(time.Minute),
			},
		},
	}
}

// LoadConfig loads configuration from a JSON file.
// The document is checked against the config JSON Schema before it is decoded.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := schemas.ValidateConfig(data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: the file at path (if any), then
// environment overrides, then defaults for whatever is still unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from URLIMPORT_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvOrigin)); v != "" {
		c.Origin = v
	}
	if v := strings.TrimSpace(getenv(EnvKind)); v != "" {
		c.Kind = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config error: %s: %w", EnvTimeout, err)
		}
		c.Timeout = Duration(d)
	}
	if v := getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Origin == "" {
		result.Origin = defaults.Origin
	}
	if result.Kind == "" {
		result.Kind = defaults.Kind
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.MaxBytes == 0 {
		result.MaxBytes = defaults.MaxBytes
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if len(result.Headers) == 0 && len(defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(defaults.Headers))
		for k, v := range defaults.Headers {
			result.Headers[k] = v
		}
	}

	if result.Server.Dir == "" {
		result.Server.Dir = defaults.Server.Dir
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.RateLimit.Enabled == nil {
		result.Server.RateLimit.Enabled = defaults.Server.RateLimit.Enabled
	}
	if result.Server.RateLimit.Limit == 0 {
		result.Server.RateLimit.Limit = defaults.Server.RateLimit.Limit
	}
	if result.Server.RateLimit.Window == 0 {
		result.Server.RateLimit.Window = defaults.Server.RateLimit.Window
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FetchOptions returns the transport options described by the configuration.
func (c *Config) FetchOptions() *fetch.Options {
	return &fetch.Options{
		Timeout:   time.Duration(c.Timeout),
		UserAgent: c.UserAgent,
		Headers:   c.Headers,
		MaxBytes:  c.MaxBytes,
	}
}
