package scoring

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/scintive/werkstudentjobs-sub002/internal/corpus"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// ScoreAll scores every task concurrently. Results keep the input order.
// aiScores may be shorter than tasks; missing entries mean no model score.
// The only error is the context's.
func ScoreAll(ctx context.Context, tasks []types.JobTask, c *corpus.Corpus, aiScores []*float64) ([]Result, error) {
	results := make([]Result, len(tasks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range tasks {
		var ai *float64
		if i < len(aiScores) {
			ai = aiScores[i]
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// each goroutine owns results[i]; the corpus is read-only
			results[i] = Score(tasks[i], c, ai)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MatchScore is the rounded mean of the task percentages, 0 for no tasks.
func MatchScore(pcts []int) int {
	if len(pcts) == 0 {
		return 0
	}
	sum := 0
	for _, p := range pcts {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(pcts))))
}
