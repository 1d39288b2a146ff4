// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/recovery"
	"github.com/scintive/werkstudentjobs-sub002/internal/scoring"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// scoreBar renders a 0-100 score as a ten-cell bar
func scoreBar(pct int) string {
	filled := max(0, min(pct, 100)) / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// PrintStrategy outputs a human-readable summary of an application strategy.
func (p *Printer) PrintStrategy(s *types.Strategy) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:      %s\n", s.JobID))
	sb.WriteString(fmt.Sprintf("Match:    %d%% %s\n", s.MatchScore, scoreBar(s.MatchScore)))
	sb.WriteString(fmt.Sprintf("Parsed:   %s", s.Recovery))
	if s.Cached {
		sb.WriteString(" (cached)")
	}
	sb.WriteString("\n\n")

	count := min(len(s.Tasks), maxItemsToShow)
	for i := 0; i < count; i++ {
		t := s.Tasks[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, truncate(t.Task, 45)))
		sb.WriteString(fmt.Sprintf("    %3d%% %s", t.CompatibilityScore, scoreBar(t.CompatibilityScore)))
		if !t.Verified {
			sb.WriteString(" (links unverified)")
		}
		sb.WriteString("\n")
		if t.Evidence != "" {
			sb.WriteString(fmt.Sprintf("    Evidence: %s\n", truncate(t.Evidence, 40)))
		}
		if n := len(t.LearningPaths.All()); n > 0 {
			sb.WriteString(fmt.Sprintf("    Links: %d\n", n))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(s.Tasks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more tasks", len(s.Tasks)-maxItemsToShow))
	}

	p.printBox("APPLICATION STRATEGY", strings.TrimSuffix(sb.String(), "\n"))

	if len(s.ATSKeywords) > 0 {
		p.printKeywords(s.ATSKeywords)
	}
}

func (p *Printer) printKeywords(keywords []string) {
	var sb strings.Builder
	line := ""
	for _, kw := range keywords {
		next := kw
		if line != "" {
			next = line + ", " + kw
		}
		if len([]rune(next)) > boxWidth-4 && line != "" {
			sb.WriteString(line + ",\n")
			next = kw
		}
		line = next
	}
	sb.WriteString(line)

	p.printBox(fmt.Sprintf("ATS KEYWORDS (%d)", len(keywords)), sb.String())
}

// PrintTaskScores outputs local scores for each task, as produced without the model.
func (p *Printer) PrintTaskScores(tasks []types.JobTask, results []scoring.Result) {
	if len(tasks) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scored %d tasks:\n\n", len(tasks)))

	for i, t := range tasks {
		if i >= len(results) {
			break
		}
		r := results[i]
		sb.WriteString(fmt.Sprintf("• %s\n", truncate(t.Text, 50)))
		sb.WriteString(fmt.Sprintf("  %3d%% %s [%s]\n", r.Pct, scoreBar(r.Pct), r.Source))
		for _, ev := range r.Evidence {
			sb.WriteString(fmt.Sprintf("  ↳ %s\n", truncate(ev, 48)))
		}
		if i < len(tasks)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("LOCAL TASK SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecovery outputs which parse tier won and why earlier tiers failed.
func (p *Printer) PrintRecovery(res recovery.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tier:   %s\n", res.Tier))
	if res.Analysis != nil {
		sb.WriteString(fmt.Sprintf("Tasks:  %d\n", len(res.Analysis.JobTaskAnalysis)))
		sb.WriteString(fmt.Sprintf("ATS:    %d keywords\n", len(res.Analysis.ATSKeywords)))
	}

	if len(res.Failures) > 0 {
		sb.WriteString("\nFailed tiers:\n")
		for _, f := range res.Failures {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", f))
		}
	}

	p.printBox("OUTPUT RECOVERY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerifications outputs link verification verdicts in URL order.
func (p *Printer) PrintVerifications(results map[string]links.Verification) {
	if len(results) == 0 {
		return
	}

	urls := make([]string, 0, len(results))
	ok := 0
	for u, v := range results {
		urls = append(urls, u)
		if v.OK {
			ok++
		}
	}
	sort.Strings(urls)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d of %d reachable\n\n", ok, len(results)))
	for _, u := range urls {
		mark := "✗"
		if results[u].OK {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, truncate(u, boxWidth-6)))
	}

	p.printBox("LINK VERIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}
