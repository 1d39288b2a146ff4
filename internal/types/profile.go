package types

import (
	"sort"
	"strings"
)

// CandidateProfile is the flattened view of a resume used for scoring.
// Coursework and WeeklyAvailability only feed the cache fingerprint.
type CandidateProfile struct {
	Skills              []string `json:"skills"`
	ExperienceBullets   []string `json:"experience_bullets"`
	ProjectDescriptions []string `json:"project_descriptions"`
	Certifications      []string `json:"certifications"`
	Coursework          []string `json:"coursework,omitempty"`
	WeeklyAvailability  string   `json:"weekly_availability,omitempty"`
}

// IsEmpty reports whether the profile has nothing to score against
func (p *CandidateProfile) IsEmpty() bool {
	return len(p.Skills) == 0 && len(p.ExperienceBullets) == 0 &&
		len(p.ProjectDescriptions) == 0 && len(p.Certifications) == 0
}

// ResumeRecord is the richer resume shape owned by the resume service.
type ResumeRecord struct {
	Skills         map[string][]string `json:"skills,omitempty"` // category -> skills
	Experience     []ExperienceEntry   `json:"experience,omitempty"`
	Projects       []ProjectEntry      `json:"projects,omitempty"`
	Certifications []CertificationItem `json:"certifications,omitempty"`
	Education      []EducationEntry    `json:"education,omitempty"`
	Availability   string              `json:"weekly_availability,omitempty"`
}

// ExperienceEntry is one position with its achievement bullets
type ExperienceEntry struct {
	Position     string   `json:"position,omitempty"`
	Company      string   `json:"company,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// ProjectEntry is an academic or personal project
type ProjectEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CertificationItem is a certification with its issuer
type CertificationItem struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
}

// EducationEntry carries the coursework relevant to a degree
type EducationEntry struct {
	Degree             string   `json:"degree,omitempty"`
	Institution        string   `json:"institution,omitempty"`
	RelevantCoursework []string `json:"relevant_coursework,omitempty"`
}

// Flatten converts the resume record into a CandidateProfile.
// Skill categories are visited in sorted order so the result is deterministic.
func (r *ResumeRecord) Flatten() *CandidateProfile {
	p := &CandidateProfile{WeeklyAvailability: r.Availability}

	for _, category := range sortedKeys(r.Skills) {
		for _, s := range r.Skills[category] {
			if s = strings.TrimSpace(s); s != "" {
				p.Skills = append(p.Skills, s)
			}
		}
	}

	for _, exp := range r.Experience {
		for _, a := range exp.Achievements {
			if a = strings.TrimSpace(a); a != "" {
				p.ExperienceBullets = append(p.ExperienceBullets, a)
			}
		}
	}

	for _, proj := range r.Projects {
		text := strings.TrimSpace(strings.Join([]string{proj.Name, proj.Description}, " "))
		if text != "" {
			p.ProjectDescriptions = append(p.ProjectDescriptions, text)
		}
	}

	for _, cert := range r.Certifications {
		text := strings.TrimSpace(strings.Join([]string{cert.Name, cert.Issuer}, " "))
		if text != "" {
			p.Certifications = append(p.Certifications, text)
		}
	}

	for _, edu := range r.Education {
		p.Coursework = append(p.Coursework, edu.RelevantCoursework...)
	}

	return p
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
