package engine

import (
	"github.com/scintive/werkstudentjobs-sub002/internal/similarity"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// alignEntries pairs each job task with at most one model entry. An entry at
// the same index is taken when its task text agrees with the job task (or is
// empty); remaining tasks take the best-overlapping unused entry. Tasks with
// no partner get nil and are scored lexically. Blank tasks never take an entry.
func alignEntries(tasks []types.JobTask, entries []types.RawTaskAnalysis) []*types.RawTaskAnalysis {
	out := make([]*types.RawTaskAnalysis, len(tasks))
	used := make([]bool, len(entries))

	blank := make([]bool, len(tasks))
	for i, t := range tasks {
		blank[i] = similarity.Normalize(t.Text) == ""
	}

	for i, t := range tasks {
		if blank[i] {
			continue
		}
		if i < len(entries) && sameTask(t.Text, entries[i].Task) {
			out[i] = &entries[i]
			used[i] = true
		}
	}

	for i, t := range tasks {
		if out[i] != nil || blank[i] {
			continue
		}
		var texts []string
		var idx []int
		for j, e := range entries {
			if !used[j] {
				texts = append(texts, e.Task)
				idx = append(idx, j)
			}
		}
		if k := similarity.BestMatchIndex(t.Text, texts); k >= 0 {
			j := idx[k]
			out[i] = &entries[j]
			used[j] = true
		}
	}
	return out
}

func sameTask(jobText, modelText string) bool {
	m := similarity.Normalize(modelText)
	if m == "" {
		return true
	}
	return similarity.ContainsEither(similarity.Normalize(jobText), m)
}
