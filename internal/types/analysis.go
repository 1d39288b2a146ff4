package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// LearningLink is a labelled learning resource
type LearningLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// UnmarshalJSON accepts either an object or a bare keyword string.
// A bare string becomes a link with an empty URL that the resolver fills in.
func (l *LearningLink) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.Label = strings.TrimSpace(s)
		l.URL = ""
		return nil
	}
	type plain LearningLink
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = LearningLink(p)
	return nil
}

// LearningPaths groups links by how the candidate should use them
type LearningPaths struct {
	QuickWins      []LearningLink `json:"quick_wins"`
	Certifications []LearningLink `json:"certifications"`
	Deepening      []LearningLink `json:"deepening"`
}

// All returns every link in bucket order
func (lp *LearningPaths) All() []LearningLink {
	out := make([]LearningLink, 0, len(lp.QuickWins)+len(lp.Certifications)+len(lp.Deepening))
	out = append(out, lp.QuickWins...)
	out = append(out, lp.Certifications...)
	out = append(out, lp.Deepening...)
	return out
}

// Len returns the total number of links
func (lp *LearningPaths) Len() int {
	return len(lp.QuickWins) + len(lp.Certifications) + len(lp.Deepening)
}

// TaskAnalysis is the per-task output unit. Its JSON form is consumed by the UI layer.
type TaskAnalysis struct {
	Task               string        `json:"task"`
	Explainer          string        `json:"task_explainer,omitempty"`
	CompatibilityScore int           `json:"compatibility_score"`
	UserAlignment      string        `json:"user_alignment,omitempty"`
	Evidence           string        `json:"user_evidence,omitempty"`
	LearningPaths      LearningPaths `json:"learning_paths"`
	Verified           bool          `json:"links_verified"`
}

// OptionalScore is a model-provided score. The model sometimes emits it as a string
// ("80" or "80%") or as prose ("high"); anything non-numeric is treated as absent
// rather than failing the whole document.
type OptionalScore struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts numbers and numeric strings and never fails
func (o *OptionalScore) UnmarshalJSON(data []byte) error {
	*o = OptionalScore{}
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*o = OptionalScore{Value: n, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*o = OptionalScore{Value: n, Valid: true}
	}
	return nil
}

// MarshalJSON writes the number, or null when absent
func (o OptionalScore) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// CertificationRecommendation is a single suggested certification
type CertificationRecommendation struct {
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	URL      string `json:"url,omitempty"`
}

// UnmarshalJSON accepts either an object or the certification name alone
func (c *CertificationRecommendation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CertificationRecommendation{Name: strings.TrimSpace(s)}
		return nil
	}
	type plain CertificationRecommendation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CertificationRecommendation(p)
	return nil
}

// RawTaskAnalysis is one entry of the model's job_task_analysis array
type RawTaskAnalysis struct {
	Task                        string                       `json:"task"`
	Explainer                   FlexText                     `json:"task_explainer,omitempty"`
	CompatibilityScore          OptionalScore                `json:"compatibility_score"`
	UserAlignment               FlexText                     `json:"user_alignment,omitempty"`
	UserEvidence                FlexText                     `json:"user_evidence,omitempty"`
	SkillGap                    FlexText                     `json:"skill_gap,omitempty"`
	InterviewTalkingPoint       FlexText                     `json:"interview_talking_point,omitempty"`
	LearningPaths               *LearningPaths               `json:"learning_paths,omitempty"`
	CertificationRecommendation *CertificationRecommendation `json:"certification_recommendation,omitempty"`
}

// AIScore returns the model score, or nil when the model gave none
func (r *RawTaskAnalysis) AIScore() *float64 {
	if r == nil || !r.CompatibilityScore.Valid {
		return nil
	}
	v := r.CompatibilityScore.Value
	return &v
}

// SkillsAnalysis is the model's skill-level summary
type SkillsAnalysis struct {
	MatchedSkills  StringList `json:"matched_skills"`
	SkillGaps      StringList `json:"skill_gaps"`
	SkillsToAdd    StringList `json:"skills_to_add"`
	SkillsToRemove StringList `json:"skills_to_remove"`
}

// ParsedAnalysis is the full completion shape requested from the model
type ParsedAnalysis struct {
	JobTaskAnalysis    []RawTaskAnalysis `json:"job_task_analysis"`
	UserProfileSummary FlexText          `json:"user_profile_summary"`
	SkillsAnalysis     SkillsAnalysis    `json:"skills_analysis"`
	WinStrategy        FlexText          `json:"win_strategy"`
	ATSKeywords        StringList        `json:"ats_keywords"`
	GermanKeywords     StringList        `json:"german_keywords"`
}

// EmptyParsedAnalysis returns a well-typed analysis with every slice non-nil
func EmptyParsedAnalysis() *ParsedAnalysis {
	return &ParsedAnalysis{
		JobTaskAnalysis: []RawTaskAnalysis{},
		SkillsAnalysis: SkillsAnalysis{
			MatchedSkills:  []string{},
			SkillGaps:      []string{},
			SkillsToAdd:    []string{},
			SkillsToRemove: []string{},
		},
		ATSKeywords:    []string{},
		GermanKeywords: []string{},
	}
}

// FillDefaults replaces nil slices with empty ones so callers never branch on nil
func (p *ParsedAnalysis) FillDefaults() {
	if p.JobTaskAnalysis == nil {
		p.JobTaskAnalysis = []RawTaskAnalysis{}
	}
	if p.SkillsAnalysis.MatchedSkills == nil {
		p.SkillsAnalysis.MatchedSkills = []string{}
	}
	if p.SkillsAnalysis.SkillGaps == nil {
		p.SkillsAnalysis.SkillGaps = []string{}
	}
	if p.SkillsAnalysis.SkillsToAdd == nil {
		p.SkillsAnalysis.SkillsToAdd = []string{}
	}
	if p.SkillsAnalysis.SkillsToRemove == nil {
		p.SkillsAnalysis.SkillsToRemove = []string{}
	}
	if p.ATSKeywords == nil {
		p.ATSKeywords = []string{}
	}
	if p.GermanKeywords == nil {
		p.GermanKeywords = []string{}
	}
}

// Strategy is the engine's complete answer for one job and profile
type Strategy struct {
	JobID          string         `json:"job_id"`
	Tasks          []TaskAnalysis `json:"job_task_analysis"`
	MatchScore     int            `json:"match_score"`
	ProfileSummary string         `json:"user_profile_summary,omitempty"`
	WinStrategy    string         `json:"win_strategy,omitempty"`
	SkillsAnalysis SkillsAnalysis `json:"skills_analysis"`
	ATSKeywords    []string       `json:"ats_keywords"`
	GermanKeywords []string       `json:"german_keywords,omitempty"`
	Recovery       string         `json:"recovery_tier"`
	Cached         bool           `json:"cached"`
	GeneratedAt    time.Time      `json:"generated_at"`
}
