package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/scintive/werkstudentjobs-sub002/internal/config"
	"github.com/scintive/werkstudentjobs-sub002/internal/engine"
	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
	"github.com/scintive/werkstudentjobs-sub002/internal/logging"
	"github.com/scintive/werkstudentjobs-sub002/internal/metrics"
	"github.com/scintive/werkstudentjobs-sub002/internal/strategycache"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// loadConfig reads the optional config file, applies the environment and the
// --log-level flag, fills defaults and validates the result.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(config.Default())
	}
	cfg.ApplyEnv()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newLogger logs to w; --verbose or log_format "console" switch to the console writer
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	format := logging.FormatJSON
	if verbose || cfg.LogFormat == string(logging.FormatConsole) {
		format = logging.FormatConsole
	}
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: format, Writer: w})
}

// appOptions tweaks how the collaborators are built
type appOptions struct {
	NoVerify bool
	Metrics  *metrics.Metrics
}

// app holds the wired engine and everything that must be closed with it
type app struct {
	engine   *engine.Engine
	verifier links.Verifier
	cache    *strategycache.Cache
	closers  []io.Closer
}

// newApp wires the model client, the link resolver, the strategy cache and the engine.
// Without an API key the engine runs on local scoring only. An unreachable cache
// backend leaves only the in-process session tier.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts appOptions) (*app, error) {
	a := &app{}

	var client llm.Client
	if cfg.APIKey == "" {
		logger.Warn().Msg(config.EnvAPIKey + " not set, strategies use local scoring only")
	} else {
		c, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		client = c
		a.closers = append(a.closers, c)
	}

	resolverCfg := links.ResolverConfig{Logger: logger}
	if vc := cfg.VerifierConfig(logger); vc != nil && !opts.NoVerify {
		v := links.NewHTTPVerifier(vc)
		a.verifier = v
		resolverCfg.Verifier = v
	}
	if cfg.KeywordPhrases && client != nil {
		resolverCfg.Keywords = links.NewLLMKeywordSource(client)
	}

	store, err := strategycache.Open(ctx, cfg.BackendConfig())
	if err != nil {
		// session tier only; every cold request recomputes
		logger.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("strategy cache unavailable, using in-process cache only")
		store = nil
	}
	a.cache = strategycache.New(store, cfg.CacheOptions())
	a.closers = append(a.closers, a.cache)

	a.engine = engine.New(engine.Config{
		LLM:      client,
		Tier:     cfg.Tier(),
		Resolver: links.NewResolver(resolverCfg),
		Cache:    a.cache,
		CacheTTL: cfg.CacheTTL(),
		Logger:   logger,
		Metrics:  opts.Metrics,
	})
	return a, nil
}

// Close releases the model client and the cache backend
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// readJSON decodes the JSON file at path into dst
func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from %s: %w", path, err)
	}
	return nil
}

// loadJob reads and validates a job file
func loadJob(path string) (*types.Job, error) {
	var job types.Job
	if err := readJSON(path, &job); err != nil {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job %s: %w", path, err)
	}
	return &job, nil
}

// loadProfile reads a flat candidate profile, or flattens a resume record
// when resumePath is set instead.
func loadProfile(profilePath, resumePath string) (*types.CandidateProfile, error) {
	switch {
	case profilePath != "" && resumePath != "":
		return nil, fmt.Errorf("--profile and --resume are mutually exclusive")
	case resumePath != "":
		var record types.ResumeRecord
		if err := readJSON(resumePath, &record); err != nil {
			return nil, err
		}
		return record.Flatten(), nil
	case profilePath != "":
		var profile types.CandidateProfile
		if err := readJSON(profilePath, &profile); err != nil {
			return nil, err
		}
		return &profile, nil
	default:
		return nil, fmt.Errorf("one of --profile or --resume is required")
	}
}

// writeJSON writes v as indented JSON to path, creating the directory if needed
func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
