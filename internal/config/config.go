// Package config provides configuration loading and validation for the CLI and the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/scintive/werkstudentjobs-sub002/internal/fetch"
	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
	"github.com/scintive/werkstudentjobs-sub002/internal/strategycache"
)

// Defaults
const (
	DefaultCacheTTL      = "168h"
	DefaultSessionTTL    = "15m"
	DefaultVerifyTimeout = "8s"
	DefaultPort          = 8080
	DefaultLogLevel      = "info"
	DefaultModelTier     = string(llm.TierStandard)
)

// Environment variables read by ApplyEnv
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvRedisURL     = "REDIS_URL"
	EnvCacheBackend = "CACHE_BACKEND"
	EnvBadgerPath   = "BADGER_PATH"
	EnvLogLevel     = "LOG_LEVEL"
)

// Config is the engine configuration. It can be loaded from a JSON or YAML file;
// missing values use defaults or come from the environment.
type Config struct {
	// Model
	APIKey          string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	ModelTier       string  `json:"model_tier,omitempty" yaml:"model_tier,omitempty"` // lite, standard or advanced
	Temperature     float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxOutputTokens int32   `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty"`
	KeywordPhrases  bool    `json:"keyword_phrases,omitempty" yaml:"keyword_phrases,omitempty"` // ask the lite model for crash-course search phrases

	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	Verify VerifyConfig `json:"verify" yaml:"verify"`

	// Server and logging
	Port      int    `json:"port,omitempty" yaml:"port,omitempty"`
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"` // json or console
}

// CacheConfig selects the persisted strategy cache
type CacheConfig struct {
	Backend     string `json:"backend,omitempty" yaml:"backend,omitempty"` // memory, postgres, redis or badger
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	BadgerPath  string `json:"badger_path,omitempty" yaml:"badger_path,omitempty"`
	TTL         string `json:"ttl,omitempty" yaml:"ttl,omitempty"`                 // Go duration, e.g. "168h"
	SessionTTL  string `json:"session_ttl,omitempty" yaml:"session_ttl,omitempty"` // Go duration, e.g. "15m"
}

// VerifyConfig controls learning-link verification
type VerifyConfig struct {
	Disabled    bool    `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Timeout     string  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Concurrency int     `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Rate        float64 `json:"rate,omitempty" yaml:"rate,omitempty"` // probes per second
}

// ValidationError reports an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		ModelTier:       DefaultModelTier,
		Temperature:     llm.DefaultTemperature,
		MaxOutputTokens: llm.DefaultMaxOutputTokens,
		Cache: CacheConfig{
			Backend:    strategycache.BackendMemory,
			TTL:        DefaultCacheTTL,
			SessionTTL: DefaultSessionTTL,
		},
		Verify: VerifyConfig{
			Timeout:     DefaultVerifyTimeout,
			Concurrency: links.DefaultConcurrency,
			Rate:        links.DefaultRate,
		},
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
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

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from the process environment. Unset or empty
// variables leave the field alone.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvAPIKey, &c.APIKey)
	set(EnvDatabaseURL, &c.Cache.DatabaseURL)
	set(EnvRedisURL, &c.Cache.RedisURL)
	set(EnvCacheBackend, &c.Cache.Backend)
	set(EnvBadgerPath, &c.Cache.BadgerPath)
	set(EnvLogLevel, &c.LogLevel)
}

// Validate checks that the configuration has valid values. Missing values are
// fine; they are filled by MergeWithDefaults.
func (c *Config) Validate() error {
	switch llm.ModelTier(c.ModelTier) {
	case "", llm.TierLite, llm.TierStandard, llm.TierAdvanced:
	default:
		return &ValidationError{Field: "model_tier", Message: fmt.Sprintf("must be lite, standard or advanced, got %q", c.ModelTier)}
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return &ValidationError{Field: "temperature", Message: "must be between 0 and 2"}
	}
	if c.MaxOutputTokens < 0 {
		return &ValidationError{Field: "max_output_tokens", Message: "must be non-negative"}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: "must be a valid TCP port"}
	}
	if c.Verify.Concurrency < 0 {
		return &ValidationError{Field: "verify.concurrency", Message: "must be non-negative"}
	}
	if c.Verify.Rate < 0 {
		return &ValidationError{Field: "verify.rate", Message: "must be non-negative"}
	}

	durations := []struct {
		field string
		value string
	}{
		{"cache.ttl", c.Cache.TTL},
		{"cache.session_ttl", c.Cache.SessionTTL},
		{"verify.timeout", c.Verify.Timeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return &ValidationError{Field: d.field, Message: fmt.Sprintf("is not a duration: %q", d.value)}
		}
		if v <= 0 {
			return &ValidationError{Field: d.field, Message: "must be positive"}
		}
	}

	switch c.Cache.Backend {
	case "", strategycache.BackendMemory:
	case strategycache.BackendPostgres:
		if c.Cache.DatabaseURL == "" {
			return &ValidationError{Field: "cache.database_url", Message: "is required for the postgres backend"}
		}
	case strategycache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return &ValidationError{Field: "cache.redis_url", Message: "is required for the redis backend"}
		}
	case strategycache.BackendBadger:
		// empty path runs badger in memory
	default:
		return &ValidationError{Field: "cache.backend", Message: fmt.Sprintf("must be memory, postgres, redis or badger, got %q", c.Cache.Backend)}
	}

	switch c.LogFormat {
	case "", "json", "console":
	default:
		return &ValidationError{Field: "log_format", Message: "must be json or console"}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bools are not merged: unset and false look the same.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	str := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	str(&result.APIKey, defaults.APIKey)
	str(&result.ModelTier, defaults.ModelTier)
	str(&result.Cache.Backend, defaults.Cache.Backend)
	str(&result.Cache.DatabaseURL, defaults.Cache.DatabaseURL)
	str(&result.Cache.RedisURL, defaults.Cache.RedisURL)
	str(&result.Cache.BadgerPath, defaults.Cache.BadgerPath)
	str(&result.Cache.TTL, defaults.Cache.TTL)
	str(&result.Cache.SessionTTL, defaults.Cache.SessionTTL)
	str(&result.Verify.Timeout, defaults.Verify.Timeout)
	str(&result.LogLevel, defaults.LogLevel)
	str(&result.LogFormat, defaults.LogFormat)

	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MaxOutputTokens == 0 {
		result.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if result.Verify.Concurrency == 0 {
		result.Verify.Concurrency = defaults.Verify.Concurrency
	}
	if result.Verify.Rate == 0 {
		result.Verify.Rate = defaults.Verify.Rate
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	return result
}

// Tier returns the model tier for the analysis call
func (c *Config) Tier() llm.ModelTier {
	if c.ModelTier == "" {
		return llm.TierStandard
	}
	return llm.ModelTier(c.ModelTier)
}

// LLMConfig returns the model configuration with the generation settings applied
func (c *Config) LLMConfig() *llm.Config {
	return llm.DefaultConfig().WithGeneration(c.Temperature, c.MaxOutputTokens)
}

// CacheTTL is the persisted cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, strategycache.DefaultTTL)
}

// SessionTTL is the in-process cache lifetime
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Cache.SessionTTL, strategycache.DefaultSessionTTL)
}

// VerifyTimeout is the per-probe timeout
func (c *Config) VerifyTimeout() time.Duration {
	return parseDuration(c.Verify.Timeout, fetch.DefaultTimeout)
}

// BackendConfig returns the strategy cache backend selection
func (c *Config) BackendConfig() strategycache.BackendConfig {
	return strategycache.BackendConfig{
		Backend:     c.Cache.Backend,
		DatabaseURL: c.Cache.DatabaseURL,
		RedisURL:    c.Cache.RedisURL,
		BadgerPath:  c.Cache.BadgerPath,
	}
}

// CacheOptions returns the two-tier cache settings
func (c *Config) CacheOptions() *strategycache.Options {
	return &strategycache.Options{
		SessionTTL: c.SessionTTL(),
		TTL:        c.CacheTTL(),
	}
}

// VerifierConfig returns the link verifier settings, or nil when verification is disabled.
func (c *Config) VerifierConfig(logger zerolog.Logger) *links.VerifierConfig {
	if c.Verify.Disabled {
		return nil
	}
	vc := links.DefaultVerifierConfig()
	vc.Probe.Timeout = c.VerifyTimeout()
	if c.Verify.Concurrency > 0 {
		vc.Concurrency = c.Verify.Concurrency
	}
	if c.Verify.Rate > 0 {
		vc.Rate = c.Verify.Rate
	}
	vc.Logger = logger
	return vc
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
