package recovery

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_Strict(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"A","compatibility_score":80}],"ats_keywords":["Go"]}`

	res := Recover(raw)

	assert.Equal(t, TierStrict, res.Tier)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Analysis.JobTaskAnalysis, 1)
	assert.Equal(t, "A", res.Analysis.JobTaskAnalysis[0].Task)
	require.NotNil(t, res.Analysis.JobTaskAnalysis[0].AIScore())
	assert.Equal(t, 80.0, *res.Analysis.JobTaskAnalysis[0].AIScore())
	assert.Equal(t, []string{"Go"}, []string(res.Analysis.ATSKeywords))
	assert.NotNil(t, res.Analysis.SkillsAnalysis.MatchedSkills)
}

func TestRecover_StripsFencesAndProse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n{\"job_task_analysis\":[{\"task\":\"A\"}]}\n```"},
		{"bare fence", "```\n{\"job_task_analysis\":[{\"task\":\"A\"}]}\n```"},
		{"leading prose", "Here is the analysis:\n{\"job_task_analysis\":[{\"task\":\"A\"}]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Recover(tt.raw)
			assert.Equal(t, TierStrict, res.Tier)
			require.Len(t, res.Analysis.JobTaskAnalysis, 1)
		})
	}
}

func TestRecover_TopLevelArray(t *testing.T) {
	res := Recover(`[{"task":"A"},{"task":"B"}]`)
	assert.Equal(t, TierStrict, res.Tier)
	assert.Len(t, res.Analysis.JobTaskAnalysis, 2)
}

func TestRecover_TruncatedMidObjectDropsDanglingTask(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"A","compatibility_score":80},{"task":"B","compat`

	res := Recover(raw)

	assert.Equal(t, TierTruncated, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 1)
	assert.Equal(t, "A", res.Analysis.JobTaskAnalysis[0].Task)
	require.Len(t, res.Failures, 1)

	var tierErr *TierError
	require.ErrorAs(t, res.Failures[0], &tierErr)
	assert.Equal(t, TierStrict, tierErr.Tier)
}

func TestRecover_TruncatedInsideNestedListDropsWholeTask(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "inside quick wins",
			raw:  `{"job_task_analysis":[{"task":"A","compatibility_score":80},{"task":"B","learning_paths":{"quick_wins":[{"label":"x","url":"https://x.example"},{"label":"y","url":"https://y.exa`,
		},
		{
			name: "after a complete nested link",
			raw:  `{"job_task_analysis":[{"task":"A","compatibility_score":80},{"task":"B","learning_paths":{"quick_wins":[{"label":"x","url":"https://x.example"},{"label":"y"}],"certifications":[`,
		},
		{
			name: "top level array",
			raw:  `[{"task":"A","compatibility_score":80},{"task":"B","learning_paths":{"quick_wins":[{"label":"x"},{"lab`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Recover(tt.raw)

			assert.Equal(t, TierTruncated, res.Tier)
			require.Len(t, res.Analysis.JobTaskAnalysis, 1)
			assert.Equal(t, "A", res.Analysis.JobTaskAnalysis[0].Task)
			require.NotNil(t, res.Analysis.JobTaskAnalysis[0].AIScore())
			assert.Equal(t, 80.0, *res.Analysis.JobTaskAnalysis[0].AIScore())
		})
	}
}

func TestLastObjectBoundary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"no boundary", `{"job_task_analysis":[{"task":"A"`, -1},
		{"task boundary", `{"job_task_analysis":[{"a":1},{"b":`, len(`{"job_task_analysis":[{"a":1}`)},
		{"nested boundary ignored", `{"job_task_analysis":[{"a":[{"x":1},{"y":`, -1},
		{"no task list falls back to any depth", `{"other":[{"x":1},{"y":`, len(`{"other":[{"x":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lastObjectBoundary(tt.in))
		})
	}
}

func TestRecover_TruncatedAfterCompleteTasksKeepsThem(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"A"},{"task":"B"}],"ats_keywords":["go","sq`

	res := Recover(raw)

	assert.Equal(t, TierTruncated, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 2)
	assert.Equal(t, []string{"go", "sq"}, []string(res.Analysis.ATSKeywords))
}

func TestRecover_TruncatedIgnoresBoundaryInsideString(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"say \"},{\" loud","compatibility_score":50},{"task":"B`

	res := Recover(raw)

	assert.Equal(t, TierTruncated, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 1)
	assert.Equal(t, `say "},{" loud`, res.Analysis.JobTaskAnalysis[0].Task)
}

func TestRecover_TruncatedInsideEscape(t *testing.T) {
	res := Recover(`{"job_task_analysis":[{"task":"A \`)

	assert.Equal(t, TierTruncated, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 1)
	assert.Equal(t, "A ", res.Analysis.JobTaskAnalysis[0].Task)
}

func TestRecover_TruncatedDanglingKey(t *testing.T) {
	res := Recover(`{"job_task_analysis":[{"task":"A","compatibility_score":`)

	assert.Equal(t, TierTruncated, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 1)
	assert.Nil(t, res.Analysis.JobTaskAnalysis[0].AIScore())
}

func TestRecover_PartialExtract(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"A"},{"task":"B"}], "skills_analysis": {"matched_skills": [oops]}}`

	res := Recover(raw)

	assert.Equal(t, TierPartialExtract, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 2)
	assert.Equal(t, "B", res.Analysis.JobTaskAnalysis[1].Task)
	assert.Empty(t, res.Analysis.ATSKeywords)
	assert.Len(t, res.Failures, 2)
}

func TestRecover_Minimal(t *testing.T) {
	res := Recover("not json at all }")

	assert.Equal(t, TierMinimal, res.Tier)
	assert.NotNil(t, res.Analysis.JobTaskAnalysis)
	assert.Empty(t, res.Analysis.JobTaskAnalysis)
	assert.Len(t, res.Failures, 3)
}

func TestRecover_EmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   \n", "```json\n```"} {
		res := Recover(raw)
		assert.Equal(t, TierMinimal, res.Tier)
		require.Len(t, res.Failures, 1)
		assert.True(t, errors.Is(res.Failures[0], ErrEmptyOutput))
	}
}

func TestRecover_LenientScores(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"A","compatibility_score":"75%"},{"task":"B","compatibility_score":"high"},{"task":"C","compatibility_score":null}]}`

	res := Recover(raw)

	assert.Equal(t, TierStrict, res.Tier)
	require.Len(t, res.Analysis.JobTaskAnalysis, 3)
	require.NotNil(t, res.Analysis.JobTaskAnalysis[0].AIScore())
	assert.Equal(t, 75.0, *res.Analysis.JobTaskAnalysis[0].AIScore())
	assert.Nil(t, res.Analysis.JobTaskAnalysis[1].AIScore())
	assert.Nil(t, res.Analysis.JobTaskAnalysis[2].AIScore())
}

func TestRecover_NeverPanicsOnAnyTruncation(t *testing.T) {
	doc := types.ParsedAnalysis{
		JobTaskAnalysis: []types.RawTaskAnalysis{
			{Task: "Build REST APIs in Node.js", CompatibilityScore: types.OptionalScore{Value: 72, Valid: true},
				LearningPaths: &types.LearningPaths{
					QuickWins: []types.LearningLink{{Label: "Node.js Guides", URL: "https://nodejs.org/en/learn"}},
				}},
			{Task: "Write \"clean\" SQL {queries}", UserEvidence: types.FlexText("Experience: built reports")},
			{Task: "Coordinate sprint planning", CompatibilityScore: types.OptionalScore{Value: 40, Valid: true}},
		},
		UserProfileSummary: "Student with backend focus",
		ATSKeywords:        []string{"Node.js", "SQL"},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	full := string(data)

	for i := len(full) / 2; i <= len(full); i++ {
		var res Result
		require.NotPanics(t, func() { res = Recover(full[:i]) }, "offset %d", i)
		require.NotNil(t, res.Analysis, "offset %d", i)
		assert.NotNil(t, res.Analysis.JobTaskAnalysis, "offset %d", i)
		assert.LessOrEqual(t, len(res.Analysis.JobTaskAnalysis), 3, "offset %d", i)
	}

	res := Recover(full)
	assert.Equal(t, TierStrict, res.Tier)
	assert.Len(t, res.Analysis.JobTaskAnalysis, 3)
}

func TestRecoverer_CustomStagesAndPanics(t *testing.T) {
	boom := Stage{Tier: "BOOM", Parse: func(string) (*types.ParsedAnalysis, error) { panic("boom") }}
	r := New(boom, Stage{Tier: TierMinimal, Parse: ParseMinimal})

	res := r.Recover(`{"job_task_analysis":[]}`)

	assert.Equal(t, TierMinimal, res.Tier)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Error(), "panic")
}

func TestParseTruncated_NotApplicable(t *testing.T) {
	_, err := ParseTruncated(`{"job_task_analysis":[oops]}`)
	assert.ErrorIs(t, err, errNotTruncated)
}
