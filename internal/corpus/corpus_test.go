package corpus

import (
	"testing"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_FlattensInCategoryOrder(t *testing.T) {
	profile := &types.CandidateProfile{
		Skills:              []string{"Node.js", "Express"},
		ExperienceBullets:   []string{"Built REST APIs with Node.js"},
		ProjectDescriptions: []string{"Campus Bot: Slack bot for course schedules"},
		Certifications:      []string{"AWS Cloud Practitioner Amazon"},
	}

	c := Build(profile)

	require.Len(t, c.Raw, 5)
	require.Len(t, c.Normalized, 5)
	assert.Equal(t, "Node.js", c.Raw[0])
	assert.Equal(t, "node.js", c.Normalized[0])
	assert.Equal(t, "Built REST APIs with Node.js", c.Raw[2])
	assert.Equal(t, "campus bot slack bot for course schedules", c.Normalized[3])

	assert.Len(t, c.Skills, 2)
	assert.Len(t, c.Experience, 1)
	assert.Len(t, c.Projects, 1)
	assert.Len(t, c.Certifications, 1)
	assert.Equal(t, CategoryProject, c.Projects[0].Category)
}

func TestBuild_Tokens(t *testing.T) {
	c := Build(&types.CandidateProfile{
		Skills:            []string{"Node.js", "Go"},
		ExperienceBullets: []string{"Built REST APIs"},
	})

	assert.True(t, c.Tokens.Has("node.js"))
	assert.True(t, c.Tokens.Has("built"))
	assert.True(t, c.Tokens.Has("apis"))
	assert.False(t, c.Tokens.Has("go"), "short tokens are dropped")
}

func TestBuild_SkipsBlankEntries(t *testing.T) {
	c := Build(&types.CandidateProfile{Skills: []string{"", "  ", "SQL"}})
	assert.Equal(t, []string{"SQL"}, c.Raw)
}

func TestBuild_NilProfile(t *testing.T) {
	c := Build(nil)
	assert.True(t, c.Empty())
	assert.NotNil(t, c.Tokens)
}

func TestEvidenceSources_PriorityOrder(t *testing.T) {
	c := Build(&types.CandidateProfile{
		ExperienceBullets:   []string{"exp"},
		ProjectDescriptions: []string{"proj"},
		Certifications:      []string{"cert"},
	})

	sources := c.EvidenceSources()
	require.Len(t, sources, 3)
	assert.Equal(t, CategoryExperience, sources[0][0].Category)
	assert.Equal(t, CategoryProject, sources[1][0].Category)
	assert.Equal(t, CategoryCertification, sources[2][0].Category)
}
