package strategycache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// AnalysisVersion is mixed into every key. Bump it when the prompt or output
// shape changes so old entries stop matching.
const AnalysisVersion = "student_v3"

// KeyPrefix starts every strategy cache key
const KeyPrefix = "strategy:"

type fingerprintInput struct {
	Skills       []string `json:"skills"`
	Coursework   []string `json:"coursework"`
	Projects     []string `json:"projects"`
	Availability string   `json:"availability"`
}

// Fingerprint hashes the profile fields that change an analysis: skills,
// coursework, project descriptions and weekly availability. Experience
// bullets and certifications do not participate.
func Fingerprint(profile *types.CandidateProfile) string {
	in := fingerprintInput{Skills: []string{}, Coursework: []string{}, Projects: []string{}}
	if profile != nil {
		in.Skills = normalizedSorted(profile.Skills)
		in.Coursework = normalizedSorted(profile.Coursework)
		in.Projects = normalizedSorted(profile.ProjectDescriptions)
		in.Availability = normalizeField(profile.WeeklyAvailability)
	}

	// struct fields marshal in declaration order, so the encoding is canonical
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key derives the cache key for a job, profile fingerprint and analysis version
func Key(jobID, fingerprint, version string) string {
	sum := sha256.Sum256([]byte(version + "|" + jobID + "|" + fingerprint))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

func normalizedSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalizeField(v); n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeField(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
