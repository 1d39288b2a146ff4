// Package scoring computes per-task compatibility between a job task and a candidate's resume corpus.
package scoring

import (
	"math"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/corpus"
	"github.com/scintive/werkstudentjobs-sub002/internal/similarity"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Weights for the lexical fallback score
const (
	tokenOverlapWeight = 0.85
	skillHitWeight     = 0.15
)

// Source tells where a score came from
type Source string

// Score sources
const (
	SourceAI      Source = "ai"
	SourceLexical Source = "lexical"
	SourceNone    Source = "none"
)

// Result is the outcome of scoring one task
type Result struct {
	Pct      int      `json:"pct"`
	Evidence []string `json:"evidence"`
	Source   Source   `json:"source"`
}

// Score computes the compatibility percentage for one task.
// A present, finite aiScore wins outright; otherwise the lexical fallback is used.
func Score(task types.JobTask, c *corpus.Corpus, aiScore *float64) Result {
	taskNorm := similarity.Normalize(task.Text)
	if taskNorm == "" {
		return Result{Pct: 0, Evidence: []string{}, Source: SourceNone}
	}
	if c == nil {
		c = corpus.Build(nil)
	}

	taskTokens := similarity.Tokens(taskNorm)
	evidence := FindEvidence(taskTokens, c)

	if aiScore != nil && !math.IsNaN(*aiScore) && !math.IsInf(*aiScore, 0) {
		return Result{Pct: clampPct(*aiScore), Evidence: evidence, Source: SourceAI}
	}

	if c.Empty() {
		return Result{Pct: 0, Evidence: evidence, Source: SourceNone}
	}

	return Result{
		Pct:      LexicalScore(taskNorm, taskTokens, c),
		Evidence: evidence,
		Source:   SourceLexical,
	}
}

// LexicalScore returns round(clamp(0.85*jaccard + 0.15*skillHit, 0, 1) * 100).
func LexicalScore(taskNorm string, taskTokens []string, c *corpus.Corpus) int {
	score := tokenOverlapWeight * similarity.Jaccard(similarity.NewTokenSet(taskTokens...), c.Tokens)
	if hasSkillHit(taskNorm, c.Skills) {
		score += skillHitWeight
	}
	return int(math.Round(clamp01(score) * 100))
}

// hasSkillHit reports whether any skill appears in the task text or the task text in a skill.
// Skills of three characters or fewer ("go", "sql", "c++") must match a whole word so that
// "go" does not hit "good".
func hasSkillHit(taskNorm string, skills []corpus.Entry) bool {
	taskWords := strings.Fields(taskNorm)
	for _, s := range skills {
		candidates := []string{s.Normalized}
		if canonical := similarity.CanonicalSkill(s.Raw); canonical != s.Normalized {
			candidates = append(candidates, canonical)
		}
		for _, n := range candidates {
			if n == "" {
				continue
			}
			if len(n) <= 3 && !strings.Contains(n, " ") {
				if containsWord(taskWords, n) {
					return true
				}
				continue
			}
			if similarity.ContainsEither(taskNorm, n) {
				return true
			}
		}
	}
	return false
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if strings.TrimRight(x, ".") == w {
			return true
		}
	}
	return false
}

func clampPct(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return int(math.Round(v))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
