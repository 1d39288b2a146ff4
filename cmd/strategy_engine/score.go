package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scintive/werkstudentjobs-sub002/internal/corpus"
	"github.com/scintive/werkstudentjobs-sub002/internal/observability"
	"github.com/scintive/werkstudentjobs-sub002/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score job tasks against a candidate with local matching only",
	Long:  "Computes the lexical compatibility score and evidence for every task without calling the model.",
	RunE:  runScore,
}

var (
	scoreJob     string
	scoreProfile string
	scoreResume  string
	scoreJSON    bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreJob, "job", "j", "", "Path to the job JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreProfile, "profile", "p", "", "Path to a CandidateProfile JSON file")
	scoreCmd.Flags().StringVar(&scoreResume, "resume", "", "Path to a resume record JSON file, used instead of --profile")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the scores as JSON")

	if err := scoreCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

// taskScore is one line of the score command's JSON output
type taskScore struct {
	Task string `json:"task"`
	scoring.Result
}

func runScore(cmd *cobra.Command, _ []string) error {
	job, err := loadJob(scoreJob)
	if err != nil {
		return err
	}
	profile, err := loadProfile(scoreProfile, scoreResume)
	if err != nil {
		return err
	}

	results, err := scoring.ScoreAll(cmd.Context(), job.Tasks, corpus.Build(profile), nil)
	if err != nil {
		return fmt.Errorf("failed to score tasks: %w", err)
	}

	out := cmd.OutOrStdout()
	if !scoreJSON {
		observability.NewPrinter(out).PrintTaskScores(job.Tasks, results)
		return nil
	}

	pcts := make([]int, len(results))
	scores := make([]taskScore, len(results))
	for i, r := range results {
		scores[i] = taskScore{Task: job.Tasks[i].Text, Result: r}
		pcts[i] = r.Pct
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"job_id":      job.ID,
		"match_score": scoring.MatchScore(pcts),
		"tasks":       scores,
	})
}
