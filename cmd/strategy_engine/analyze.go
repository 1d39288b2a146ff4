package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scintive/werkstudentjobs-sub002/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Produce an application strategy for a job and a candidate",
	Long: "Runs one model call for the job's tasks, recovers whatever the model returned, scores every task " +
		"against the candidate's resume, resolves and verifies learning links and prints the strategy.",
	RunE: runAnalyze,
}

var (
	analyzeJob      string
	analyzeProfile  string
	analyzeResume   string
	analyzeOutput   string
	analyzeNoVerify bool
	analyzeJSON     bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to the job JSON file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeProfile, "profile", "p", "", "Path to a CandidateProfile JSON file")
	analyzeCmd.Flags().StringVar(&analyzeResume, "resume", "", "Path to a resume record JSON file, used instead of --profile")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to write the strategy JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoVerify, "no-verify", false, "Skip learning-link verification")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the strategy as JSON instead of a summary")

	if err := analyzeCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	job, err := loadJob(analyzeJob)
	if err != nil {
		return err
	}
	profile, err := loadProfile(analyzeProfile, analyzeResume)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger, appOptions{NoVerify: analyzeNoVerify})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release resources")
		}
	}()

	strategy, err := a.engine.Analyze(ctx, job, profile)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeOutput != "" {
		if err := writeJSON(analyzeOutput, strategy); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(strategy)
	}

	observability.NewPrinter(out).PrintStrategy(strategy)
	if analyzeOutput != "" {
		_, _ = fmt.Fprintf(out, "Strategy written to %s\n", analyzeOutput)
	}
	return nil
}
