package links

import (
	"regexp"
	"strings"
	"testing"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Match(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name      string
		task      string
		skills    []string
		wantFirst string
		wantLen   int
	}{
		{"frontend", "Build React components for the frontend", nil, "freeCodeCamp JavaScript", 2},
		{"sql", "Maintain the SQL database", nil, "freeCodeCamp SQL", 2},
		{"skills count", "Support the team", []string{"Docker"}, "Docker Get Started", 2},
		{"capped at three", "Analyse marketing data in SQL", nil, "Kaggle Learn", 3},
		{"ui needs a whole word", "Build internal tools", nil, CrashCourseLabel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Match(tt.task, tt.skills...)
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got[0].Label)
		})
	}
}

func TestCatalog_NoMatchIsCrashCourse(t *testing.T) {
	got := DefaultCatalog().Match("Organise the trade fair stand")

	require.Len(t, got, 1)
	assert.True(t, IsCrashCourse(got[0]))
	assert.True(t, IsFallbackURL(got[0].URL))
	assert.Contains(t, got[0].URL, "trade+fair")
}

func TestNewCatalog_CustomRules(t *testing.T) {
	c := NewCatalog([]Rule{{
		Pattern: regexp.MustCompile(`\bexcel\b`),
		Links:   []types.LearningLink{{Label: "Excel", URL: "https://support.microsoft.com/excel"}},
	}}, 0)

	got := c.Match("Maintain Excel reports")
	require.Len(t, got, 1)
	assert.Equal(t, "Excel", got[0].Label)
}

func TestTemplates(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/results?search_query=sql+joins+crash+course", CrashCourse("sql joins").URL)
	assert.Equal(t, "https://www.google.com/search?q=power+bi", GoogleSearch(" power bi "))
	assert.True(t, IsFallbackURL("HTTPS://WWW.YOUTUBE.COM/results?search_query=x"))
	assert.False(t, IsFallbackURL("https://www.youtube.com/watch?v=abc"))

	web := WebSearch("Power BI")
	assert.True(t, IsFallbackURL(web.URL))
	assert.False(t, IsCrashCourse(web))
	assert.True(t, IsCrashCourse(types.LearningLink{Label: "SQL Crash Course", URL: "https://example.org"}))
	assert.True(t, strings.HasPrefix(web.Label, "Guides: "))
}
