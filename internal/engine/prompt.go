package engine

import (
	"fmt"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/prompts"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// BuildPrompt renders the task-analysis prompt for a job and profile
func BuildPrompt(job *types.Job, profile *types.CandidateProfile) (string, error) {
	tmpl, err := prompts.Get(prompts.StrategyFile, prompts.KeyTaskAnalysis)
	if err != nil {
		return "", err
	}

	note := ""
	if job.IsGerman() {
		if note, err = prompts.Get(prompts.StrategyFile, prompts.KeyGermanNote); err != nil {
			return "", err
		}
	}

	return prompts.Render(tmpl, map[string]string{
		"JobTitle":     orUnknown(job.Title),
		"Company":      orUnknown(job.Company),
		"Location":     orUnknown(job.Location),
		"Tasks":        formatTasks(job.Tasks),
		"Profile":      formatProfile(profile),
		"LanguageNote": note,
	})
}

func formatTasks(tasks []types.JobTask) string {
	var sb strings.Builder
	for i, t := range tasks {
		fmt.Fprintf(&sb, "%d. %s", i+1, strings.TrimSpace(t.Text))
		if len(t.RequiredSkills) > 0 {
			fmt.Fprintf(&sb, " (skills: %s)", strings.Join(t.RequiredSkills, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func formatProfile(p *types.CandidateProfile) string {
	var sb strings.Builder
	section := func(title string, items []string) {
		fmt.Fprintf(&sb, "%s:\n", title)
		if len(items) == 0 {
			sb.WriteString("- none listed\n")
			return
		}
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				fmt.Fprintf(&sb, "- %s\n", it)
			}
		}
	}

	section("Skills", p.Skills)
	section("Experience", p.ExperienceBullets)
	section("Projects", p.ProjectDescriptions)
	section("Certifications", p.Certifications)
	section("Coursework", p.Coursework)
	fmt.Fprintf(&sb, "Weekly availability: %s", orUnknown(p.WeeklyAvailability))
	return sb.String()
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "not specified"
	}
	return s
}
