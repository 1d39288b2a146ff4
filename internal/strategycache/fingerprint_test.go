package strategycache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

func baseProfile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Skills:              []string{"Go", "SQL", "Docker"},
		ExperienceBullets:   []string{"Built REST APIs in Go"},
		ProjectDescriptions: []string{"Thesis: stream processing"},
		Certifications:      []string{"AWS Cloud Practitioner"},
		Coursework:          []string{"Databases", "Distributed Systems"},
		WeeklyAvailability:  "20 hours",
	}
}

func TestFingerprint_Stability(t *testing.T) {
	base := Fingerprint(baseProfile())

	tests := []struct {
		name   string
		mutate func(p *types.CandidateProfile)
		same   bool
	}{
		{"experience change", func(p *types.CandidateProfile) { p.ExperienceBullets = []string{"Other"} }, true},
		{"certification change", func(p *types.CandidateProfile) { p.Certifications = nil }, true},
		{"skill order", func(p *types.CandidateProfile) { p.Skills = []string{"Docker", "Go", "SQL"} }, true},
		{"skill case and spacing", func(p *types.CandidateProfile) { p.Skills = []string{" go", "sql ", "DOCKER"} }, true},
		{"blank skill ignored", func(p *types.CandidateProfile) { p.Skills = append(p.Skills, "  ") }, true},
		{"skill added", func(p *types.CandidateProfile) { p.Skills = append(p.Skills, "Python") }, false},
		{"coursework change", func(p *types.CandidateProfile) { p.Coursework = []string{"Compilers"} }, false},
		{"project change", func(p *types.CandidateProfile) { p.ProjectDescriptions = nil }, false},
		{"availability change", func(p *types.CandidateProfile) { p.WeeklyAvailability = "15 hours" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			tt.mutate(p)
			if tt.same {
				assert.Equal(t, base, Fingerprint(p))
			} else {
				assert.NotEqual(t, base, Fingerprint(p))
			}
		})
	}
}

func TestFingerprint_NilAndEmpty(t *testing.T) {
	assert.Equal(t, Fingerprint(nil), Fingerprint(&types.CandidateProfile{}))
	assert.Len(t, Fingerprint(nil), 64)
}

func TestKey(t *testing.T) {
	k := Key("job-1", "fp", AnalysisVersion)

	assert.True(t, strings.HasPrefix(k, KeyPrefix))
	assert.Len(t, k, len(KeyPrefix)+64)
	assert.Equal(t, k, Key("job-1", "fp", AnalysisVersion))
	assert.NotEqual(t, k, Key("job-2", "fp", AnalysisVersion))
	assert.NotEqual(t, k, Key("job-1", "fp2", AnalysisVersion))
	assert.NotEqual(t, k, Key("job-1", "fp", "student_v4"))
}
