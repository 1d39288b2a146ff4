package scoring

import (
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/corpus"
)

// maxEvidenceLen is the number of characters kept from an evidence entry
const maxEvidenceLen = 90

var evidenceLabels = map[corpus.Category]string{
	corpus.CategoryExperience:    "Experience",
	corpus.CategoryProject:       "Project",
	corpus.CategoryCertification: "Cert",
}

// KeyToken returns the task's highest-weight token: the longest one, first occurrence on ties.
func KeyToken(taskTokens []string) string {
	key := ""
	for _, t := range taskTokens {
		if len(t) > len(key) {
			key = t
		}
	}
	return key
}

// FindEvidence returns at most one labelled excerpt per category, scanning experience,
// then projects, then certifications for the first entry containing the key token.
func FindEvidence(taskTokens []string, c *corpus.Corpus) []string {
	evidence := []string{}
	key := KeyToken(taskTokens)
	if key == "" {
		return evidence
	}

	for _, entries := range c.EvidenceSources() {
		for _, e := range entries {
			if strings.Contains(e.Normalized, key) {
				evidence = append(evidence, evidenceLabels[e.Category]+": "+truncate(e.Raw, maxEvidenceLen))
				break
			}
		}
	}
	return evidence
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
