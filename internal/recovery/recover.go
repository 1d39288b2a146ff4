// Package recovery turns possibly truncated or malformed model completions into a
// structurally valid analysis. It never returns an error and never panics: each tier
// of the cascade either yields an analysis or hands over to the next one, and the
// last tier always succeeds.
package recovery

import (
	"fmt"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Result is the outcome of a recovery run
type Result struct {
	Analysis *types.ParsedAnalysis
	Tier     Tier
	// Failures holds one *TierError per tier that was tried and failed
	Failures []error
}

// Recoverer runs a first-success-wins cascade over its stages
type Recoverer struct {
	stages []Stage
}

// New creates a Recoverer. With no stages the default cascade is used.
func New(stages ...Stage) *Recoverer {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Recoverer{stages: stages}
}

// Recover runs the default cascade over raw model output
func Recover(raw string) Result {
	return New().Recover(raw)
}

// Recover strips code fences and leading prose, then tries each stage in order.
// Empty input goes straight to the minimal structure.
func (r *Recoverer) Recover(raw string) Result {
	text := prepare(raw)
	if text == "" {
		return Result{
			Analysis: types.EmptyParsedAnalysis(),
			Tier:     TierMinimal,
			Failures: []error{&TierError{Tier: TierStrict, Cause: ErrEmptyOutput}},
		}
	}

	var failures []error
	for _, stage := range r.stages {
		analysis, err := runStage(stage, text)
		if err == nil && analysis != nil {
			analysis.FillDefaults()
			return Result{Analysis: analysis, Tier: stage.Tier, Failures: failures}
		}
		if err == nil {
			err = fmt.Errorf("stage returned no analysis")
		}
		failures = append(failures, &TierError{Tier: stage.Tier, Cause: err})
	}

	return Result{Analysis: types.EmptyParsedAnalysis(), Tier: TierMinimal, Failures: failures}
}

// runStage isolates a stage so that a panicking parser counts as a failed tier
func runStage(stage Stage, text string) (analysis *types.ParsedAnalysis, err error) {
	defer func() {
		if p := recover(); p != nil {
			analysis, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return stage.Parse(text)
}

// prepare removes markdown fences and any prose before the first JSON container
func prepare(raw string) string {
	text := llm.CleanJSONBlock(raw)
	if i := strings.IndexAny(text, "{["); i > 0 {
		text = text[i:]
	}
	return strings.TrimSpace(text)
}
