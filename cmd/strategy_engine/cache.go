package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scintive/werkstudentjobs-sub002/internal/strategycache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the strategy cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired strategies from the configured backend",
	Long:  "Expired entries are never served but stay stored until purged. Redis and Badger expire entries natively.",
	RunE:  runCachePurge,
}

var cacheKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the profile fingerprint and cache key for a job",
	RunE:  runCacheKey,
}

var (
	cacheKeyJobID   string
	cacheKeyProfile string
	cacheKeyResume  string
)

func init() {
	cacheKeyCmd.Flags().StringVar(&cacheKeyJobID, "job-id", "", "Job ID (required)")
	cacheKeyCmd.Flags().StringVarP(&cacheKeyProfile, "profile", "p", "", "Path to a CandidateProfile JSON file")
	cacheKeyCmd.Flags().StringVar(&cacheKeyResume, "resume", "", "Path to a resume record JSON file, used instead of --profile")

	if err := cacheKeyCmd.MarkFlagRequired("job-id"); err != nil {
		panic(fmt.Sprintf("failed to mark job-id flag as required: %v", err))
	}

	cacheCmd.AddCommand(cachePurgeCmd, cacheKeyCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx := cmd.Context()
	store, err := strategycache.Open(ctx, cfg.BackendConfig())
	if err != nil {
		return fmt.Errorf("failed to open strategy cache: %w", err)
	}
	cache := strategycache.New(store, cfg.CacheOptions())
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close strategy cache")
		}
	}()

	n, err := cache.Purge(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge strategy cache: %w", err)
	}
	logger.Info().Str("backend", cfg.Cache.Backend).Int("removed", n).Msg("cache purged")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired entries from the %s cache\n", n, cfg.Cache.Backend)
	return nil
}

func runCacheKey(cmd *cobra.Command, _ []string) error {
	profile, err := loadProfile(cacheKeyProfile, cacheKeyResume)
	if err != nil {
		return err
	}

	fp := strategycache.Fingerprint(profile)
	key := strategycache.Key(cacheKeyJobID, fp, strategycache.AnalysisVersion)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "fingerprint: %s\n", fp)
	_, _ = fmt.Fprintf(out, "key:         %s\n", key)
	return nil
}
