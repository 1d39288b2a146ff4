// Package types provides type definitions for structured data used throughout the strategy engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobTask is one responsibility line extracted from a job posting
type JobTask struct {
	Text           string   `json:"text"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// Job is the inbound job envelope for an analysis request. Blank task lines and an
// empty task list are valid input; they score 0.
type Job struct {
	ID               string    `json:"id" validate:"required"`
	Title            string    `json:"title,omitempty"`
	Company          string    `json:"company,omitempty"`
	Location         string    `json:"location,omitempty"`
	LanguageRequired string    `json:"language_required,omitempty"` // e.g. "DE", "EN", "DE,EN"
	Tasks            []JobTask `json:"tasks"`
}

// Validate validates the Job using the validator.
func (j *Job) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// TaskTexts returns the task lines in order
func (j *Job) TaskTexts() []string {
	texts := make([]string, len(j.Tasks))
	for i, t := range j.Tasks {
		texts[i] = t.Text
	}
	return texts
}

// IsGerman reports whether the job is located in Germany or requires German.
func (j *Job) IsGerman() bool {
	loc := strings.ToLower(j.Location)
	if strings.Contains(loc, "germany") || strings.Contains(loc, "deutschland") {
		return true
	}
	return strings.Contains(strings.ToUpper(j.LanguageRequired), "DE")
}
