// Package corpus flattens a candidate profile into the searchable text universe used for scoring.
package corpus

import (
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/similarity"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Category identifies where a corpus entry came from
type Category string

// Corpus categories in evidence-priority order (skills carry no evidence)
const (
	CategorySkill         Category = "skill"
	CategoryExperience    Category = "experience"
	CategoryProject       Category = "project"
	CategoryCertification Category = "certification"
)

// Entry is one raw corpus string with its normalized form
type Entry struct {
	Category   Category
	Raw        string
	Normalized string
}

// Corpus is the flattened, normalized view of a candidate profile.
// Raw and Normalized are parallel slices.
type Corpus struct {
	Raw        []string
	Normalized []string

	Skills         []Entry
	Experience     []Entry
	Projects       []Entry
	Certifications []Entry

	// Tokens is the union of tokens over every normalized entry
	Tokens similarity.TokenSet
}

// Build flattens a profile into a corpus. A nil profile yields an empty corpus.
func Build(profile *types.CandidateProfile) *Corpus {
	c := &Corpus{Tokens: similarity.TokenSet{}}
	if profile == nil {
		return c
	}

	c.Skills = c.addAll(CategorySkill, profile.Skills)
	c.Experience = c.addAll(CategoryExperience, profile.ExperienceBullets)
	c.Projects = c.addAll(CategoryProject, profile.ProjectDescriptions)
	c.Certifications = c.addAll(CategoryCertification, profile.Certifications)

	return c
}

func (c *Corpus) addAll(category Category, values []string) []Entry {
	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		raw := strings.TrimSpace(v)
		if raw == "" {
			continue
		}
		norm := similarity.Normalize(raw)
		entries = append(entries, Entry{Category: category, Raw: raw, Normalized: norm})
		c.Raw = append(c.Raw, raw)
		c.Normalized = append(c.Normalized, norm)
		c.Tokens.Add(similarity.Tokenize(norm))
	}
	return entries
}

// Empty reports whether the corpus holds no entries
func (c *Corpus) Empty() bool {
	return len(c.Raw) == 0
}

// EvidenceSources returns the evidence categories in priority order
func (c *Corpus) EvidenceSources() [][]Entry {
	return [][]Entry{c.Experience, c.Projects, c.Certifications}
}
