package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
	"github.com/scintive/werkstudentjobs-sub002/internal/metrics"
	"github.com/scintive/werkstudentjobs-sub002/internal/recovery"
	"github.com/scintive/werkstudentjobs-sub002/internal/schemas"
	"github.com/scintive/werkstudentjobs-sub002/internal/strategycache"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// MockLLMClient is a mock implementation of llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "", errors.New("not implemented")
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeVerifier reports every URL as reachable unless listed in dead
type fakeVerifier struct {
	mu    sync.Mutex
	calls int
	dead  map[string]bool
	err   error
}

func (f *fakeVerifier) VerifyLinks(_ context.Context, urls []string) (map[string]links.Verification, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]links.Verification, len(urls))
	for _, u := range urls {
		out[u] = links.Verification{URL: u, OK: !f.dead[u], Status: 200}
	}
	return out, nil
}

func (f *fakeVerifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testJob() *types.Job {
	return &types.Job{
		ID:       "job-42",
		Title:    "Werkstudent Backend",
		Company:  "Example GmbH",
		Location: "Remote",
		Tasks: []types.JobTask{
			{Text: "Build REST APIs in Node.js", RequiredSkills: []string{"Node.js"}},
			{Text: "Write SQL queries for reporting"},
		},
	}
}

func testProfile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Skills:             []string{"Node.js", "Express"},
		ExperienceBullets:  []string{"Built REST APIs with Node.js and Express"},
		Coursework:         []string{"Databases"},
		WeeklyAvailability: "20 hours",
	}
}

func modelOutput(t *testing.T) string {
	t.Helper()
	doc := types.ParsedAnalysis{
		JobTaskAnalysis: []types.RawTaskAnalysis{
			{
				Task:               "Build REST APIs in Node.js",
				Explainer:          "Design and ship HTTP endpoints.",
				CompatibilityScore: types.OptionalScore{Value: 78, Valid: true},
				UserAlignment:      "Direct match with the internship.",
				UserEvidence:       "Built REST APIs with Node.js and Express",
				LearningPaths: &types.LearningPaths{
					QuickWins: []types.LearningLink{{Label: "Node.js Learn", URL: "https://nodejs.org/en/learn"}},
					Deepening: []types.LearningLink{{Label: "Express guide", URL: "https://expressjs.com/en/guide/routing.html"}},
				},
			},
			{
				Task: "Write SQL queries for reporting",
			},
		},
		UserProfileSummary: "Backend-focused student.",
		SkillsAnalysis: types.SkillsAnalysis{
			MatchedSkills: []string{"Node.js"},
			SkillGaps:     []string{"SQL"},
		},
		WinStrategy: "Lead with the API internship.",
		ATSKeywords: []string{"Node.js", "REST", "SQL"},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

func newTestEngine(client llm.Client, verifier links.Verifier, cache *strategycache.Cache) *Engine {
	return New(Config{
		LLM:      client,
		Resolver: links.NewResolver(links.ResolverConfig{Verifier: verifier, Logger: zerolog.Nop()}),
		Cache:    cache,
		Logger:   zerolog.Nop(),
	})
}

func TestAnalyze_Preconditions(t *testing.T) {
	client := &MockLLMClient{}
	e := newTestEngine(client, nil, nil)

	tests := []struct {
		name    string
		job     *types.Job
		profile *types.CandidateProfile
	}{
		{"nil profile", testJob(), nil},
		{"nil job", nil, testProfile()},
		{"missing id", &types.Job{Tasks: []types.JobTask{{Text: "A"}}}, testProfile()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := e.Analyze(context.Background(), tt.job, tt.profile)
			assert.Nil(t, s)
			var pre *PreconditionError
			assert.ErrorAs(t, err, &pre)
		})
	}
	assert.Zero(t, client.Calls())
}

func TestAnalyze_FullRun(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, tier llm.ModelTier) (string, error) {
			assert.Equal(t, llm.TierStandard, tier)
			return modelOutput(t), nil
		},
	}
	verifier := &fakeVerifier{}
	e := newTestEngine(client, verifier, nil)

	s, err := e.Analyze(context.Background(), testJob(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, 1, client.Calls())
	assert.Equal(t, 1, verifier.Calls())
	assert.Equal(t, "job-42", s.JobID)
	assert.Equal(t, string(recovery.TierStrict), s.Recovery)
	assert.False(t, s.Cached)
	require.Len(t, s.Tasks, 2)

	first := s.Tasks[0]
	assert.Equal(t, "Build REST APIs in Node.js", first.Task)
	assert.Equal(t, 78, first.CompatibilityScore)
	assert.Equal(t, "Built REST APIs with Node.js and Express", first.Evidence)
	assert.Equal(t, "Design and ship HTTP endpoints.", first.Explainer)
	assert.True(t, first.Verified)
	assert.Equal(t, "https://nodejs.org/en/learn", first.LearningPaths.QuickWins[0].URL)

	second := s.Tasks[1]
	assert.Equal(t, "Write SQL queries for reporting", second.Task)
	assert.GreaterOrEqual(t, second.CompatibilityScore, 0)
	assert.LessOrEqual(t, second.CompatibilityScore, 100)
	assert.NotZero(t, second.LearningPaths.Len())

	assert.Equal(t, (first.CompatibilityScore+second.CompatibilityScore+1)/2, s.MatchScore)
	assert.Equal(t, []string{"Node.js", "REST", "SQL"}, s.ATSKeywords)
	assert.Equal(t, "Backend-focused student.", s.ProfileSummary)
	assert.Equal(t, []string{"SQL"}, []string(s.SkillsAnalysis.SkillGaps))
	assert.NoError(t, schemas.ValidateStrategy(s))
}

func TestAnalyze_BlankAndEmptyTasks(t *testing.T) {
	tests := []struct {
		name       string
		tasks      []types.JobTask
		wantScores []int
	}{
		{
			name:       "blank task line scores zero",
			tasks:      []types.JobTask{{Text: "Build REST APIs in Node.js"}, {Text: ""}},
			wantScores: []int{78, 0},
		},
		{
			name:       "empty task list",
			tasks:      []types.JobTask{},
			wantScores: []int{},
		},
		{
			name:       "missing task list",
			tasks:      nil,
			wantScores: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockLLMClient{
				GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
					return `{"job_task_analysis":[{"task":"Build REST APIs in Node.js","compatibility_score":78},` +
						`{"task":"Plan the offsite","compatibility_score":90,"user_evidence":"Organized events"}]}`, nil
				},
			}
			e := newTestEngine(client, nil, nil)

			s, err := e.Analyze(context.Background(), &types.Job{ID: "job-1", Tasks: tt.tasks}, testProfile())
			require.NoError(t, err)
			require.NotNil(t, s.Tasks)
			require.Len(t, s.Tasks, len(tt.wantScores))

			for i, want := range tt.wantScores {
				assert.Equal(t, want, s.Tasks[i].CompatibilityScore, "task %d", i)
			}
			if len(tt.wantScores) == 2 {
				assert.Empty(t, s.Tasks[1].Evidence)
				assert.Equal(t, 39, s.MatchScore)
			} else {
				assert.Zero(t, s.MatchScore)
			}
		})
	}
}

func TestAnalyze_LexicalFallbackWithLocalEvidence(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return `{"job_task_analysis":[{"task":"Build REST APIs in Node.js"}]}`, nil
		},
	}
	e := newTestEngine(client, nil, nil)
	job := &types.Job{ID: "job-1", Tasks: []types.JobTask{{Text: "Build REST APIs in Node.js"}}}

	s, err := e.Analyze(context.Background(), job, testProfile())
	require.NoError(t, err)

	require.Len(t, s.Tasks, 1)
	assert.Equal(t, 51, s.Tasks[0].CompatibilityScore)
	assert.Equal(t, "Experience: Built REST APIs with Node.js and Express", s.Tasks[0].Evidence)
	assert.False(t, s.Tasks[0].Verified)
	assert.Equal(t, 51, s.MatchScore)
}

func TestAnalyze_CacheHitSkipsCollaborators(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelOutput(t), nil
		},
	}
	verifier := &fakeVerifier{}
	cache := strategycache.New(strategycache.NewMemoryStore(), nil)
	e := newTestEngine(client, verifier, cache)
	ctx := context.Background()

	first, err := e.Analyze(ctx, testJob(), testProfile())
	require.NoError(t, err)
	require.Equal(t, 1, client.Calls())
	require.Equal(t, 1, verifier.Calls())

	// experience bullets are outside the fingerprint
	profile := testProfile()
	profile.ExperienceBullets = append(profile.ExperienceBullets, "Tutored statistics")

	second, err := e.Analyze(ctx, testJob(), profile)
	require.NoError(t, err)

	assert.Equal(t, 1, client.Calls(), "no second model call")
	assert.Equal(t, 1, verifier.Calls(), "no second verification batch")
	assert.True(t, second.Cached)

	second.Cached = false
	assert.Equal(t, first, second)
}

func TestAnalyze_ProfileChangeMissesCache(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelOutput(t), nil
		},
	}
	cache := strategycache.New(nil, nil)
	e := newTestEngine(client, nil, cache)
	ctx := context.Background()

	_, err := e.Analyze(ctx, testJob(), testProfile())
	require.NoError(t, err)

	profile := testProfile()
	profile.Skills = append(profile.Skills, "PostgreSQL")
	_, err = e.Analyze(ctx, testJob(), profile)
	require.NoError(t, err)

	assert.Equal(t, 2, client.Calls())
}

func TestAnalyze_TruncatedOutput(t *testing.T) {
	raw := `{"job_task_analysis":[{"task":"Build REST APIs in Node.js","compatibility_score":80,"user_evidence":"Node.js internship"},{"task":"Write SQL queries for reporting","compat`
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) { return raw, nil },
	}
	e := newTestEngine(client, nil, nil)

	var degraded []Kind
	s, err := e.AnalyzeWithProgress(context.Background(), testJob(), testProfile(), func(ev ProgressEvent) {
		if d, ok := ev.Content.(Degradation); ok {
			degraded = append(degraded, d.Kind)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, string(recovery.TierTruncated), s.Recovery)
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, 80, s.Tasks[0].CompatibilityScore)
	assert.Equal(t, "Node.js internship", s.Tasks[0].Evidence)
	assert.Empty(t, s.Tasks[1].Explainer)
	assert.NotZero(t, s.Tasks[1].LearningPaths.Len())
	assert.Contains(t, degraded, KindMalformedOutput)
}

func TestAnalyze_ModelFailureDegradesToMinimal(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, string, llm.ModelTier) (string, error)
	}{
		{"error", func(context.Context, string, llm.ModelTier) (string, error) {
			return "", &llm.APICallError{Message: "quota exceeded"}
		}},
		{"empty", func(context.Context, string, llm.ModelTier) (string, error) { return "  ", nil }},
		{"garbage", func(context.Context, string, llm.ModelTier) (string, error) { return "I cannot help with that", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&MockLLMClient{GenerateJSONFunc: tt.fn}, nil, nil)

			var kinds []Kind
			s, err := e.AnalyzeWithProgress(context.Background(), testJob(), testProfile(), func(ev ProgressEvent) {
				if d, ok := ev.Content.(Degradation); ok {
					kinds = append(kinds, d.Kind)
				}
			})
			require.NoError(t, err)

			assert.Equal(t, string(recovery.TierMinimal), s.Recovery)
			require.Len(t, s.Tasks, 2)
			for _, task := range s.Tasks {
				assert.NotZero(t, task.LearningPaths.Len())
			}
			assert.NotEmpty(t, kinds)
			assert.NoError(t, schemas.ValidateStrategy(s))
		})
	}
}

func TestAnalyze_NoClient(t *testing.T) {
	e := New(Config{Logger: zerolog.Nop()})

	s, err := e.Analyze(context.Background(), testJob(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, string(recovery.TierMinimal), s.Recovery)
}

func TestAnalyze_CanceledContextSkipsCacheWrite(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return modelOutput(t), nil
		},
	}
	cache := strategycache.New(strategycache.NewMemoryStore(), nil)
	e := newTestEngine(client, &fakeVerifier{}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := e.Analyze(ctx, testJob(), testProfile())
	require.NoError(t, err)
	require.Len(t, s.Tasks, 2)

	_, err = e.Analyze(context.Background(), testJob(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, 2, client.Calls(), "canceled run was not cached")
}

func TestAnalyze_VerifierOutage(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelOutput(t), nil
		},
	}
	e := newTestEngine(client, &fakeVerifier{err: errors.New("probe pool exhausted")}, nil)

	var kinds []Kind
	s, err := e.AnalyzeWithProgress(context.Background(), testJob(), testProfile(), func(ev ProgressEvent) {
		if d, ok := ev.Content.(Degradation); ok {
			kinds = append(kinds, d.Kind)
		}
	})
	require.NoError(t, err)

	for _, task := range s.Tasks {
		assert.False(t, task.Verified)
	}
	assert.Contains(t, kinds, KindVerificationOffline)
}

func TestAnalyze_DeadLinksAreReplaced(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelOutput(t), nil
		},
	}
	verifier := &fakeVerifier{dead: map[string]bool{"https://expressjs.com/en/guide/routing.html": true}}
	e := newTestEngine(client, verifier, nil)

	var kinds []Kind
	s, err := e.AnalyzeWithProgress(context.Background(), testJob(), testProfile(), func(ev ProgressEvent) {
		if d, ok := ev.Content.(Degradation); ok {
			kinds = append(kinds, d.Kind)
		}
	})
	require.NoError(t, err)

	for _, l := range s.Tasks[0].LearningPaths.All() {
		assert.NotEqual(t, "https://expressjs.com/en/guide/routing.html", l.URL)
	}
	assert.Contains(t, kinds, KindLinkUnreachable)
}

func counterValue(t *testing.T, m *metrics.Metrics, name, label, value string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAnalyze_LinkMetricsCountFinalList(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return `{"job_task_analysis":[{"task":"Coordinate trade fair logistics","learning_paths":{` +
				`"quick_wins":[{"label":"Trade fair handbook","url":"https://dead.example/handbook"}],` +
				`"deepening":[{"label":"Logistics notes","url":"https://dead.example/notes"}]}}]}`, nil
		},
	}
	verifier := &fakeVerifier{dead: map[string]bool{
		"https://dead.example/handbook": true,
		"https://dead.example/notes":    true,
	}}
	m := metrics.New()
	e := New(Config{
		LLM:      client,
		Resolver: links.NewResolver(links.ResolverConfig{Verifier: verifier, Logger: zerolog.Nop()}),
		Logger:   zerolog.Nop(),
		Metrics:  m,
	})
	job := &types.Job{ID: "job-1", Tasks: []types.JobTask{{Text: "Coordinate trade fair logistics"}}}

	s, err := e.Analyze(context.Background(), job, testProfile())
	require.NoError(t, err)
	require.Len(t, s.Tasks, 1)

	total := len(s.Tasks[0].LearningPaths.All())
	kept := counterValue(t, m, "werkstudent_strategy_links_total", "result", "kept")
	substituted := counterValue(t, m, "werkstudent_strategy_links_total", "result", "substituted")

	assert.Equal(t, 1.0, substituted, "both dead links collapse into one fallback")
	assert.Equal(t, float64(total), kept+substituted)
	assert.Equal(t, 1.0, counterValue(t, m, "werkstudent_strategy_degradations_total", "kind", string(KindLinkUnreachable)))
}

func TestAnalyze_GermanJob(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return `{"job_task_analysis":[],"ats_keywords":["werkstudent","SQL"],"german_keywords":["Datenbanken"]}`, nil
		},
	}
	e := newTestEngine(client, nil, nil)
	job := testJob()
	job.Location = "Berlin, Deutschland"

	s, err := e.Analyze(context.Background(), job, testProfile())
	require.NoError(t, err)

	assert.Equal(t, []string{"werkstudent", "SQL", "Werkstudent/in", "Working Student", "Immatrikulation", "Einschreibung"}, s.ATSKeywords)
	assert.NotContains(t, s.ATSKeywords, "Pflichtpraktikum")
	require.NotEmpty(t, s.GermanKeywords)
	assert.Equal(t, "Datenbanken", s.GermanKeywords[0])
	assert.Contains(t, s.GermanKeywords, "Pflichtpraktikum")
	assert.Len(t, s.GermanKeywords, 1+len(GermanKeywords))
	assert.NoError(t, schemas.ValidateStrategy(s))

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "german_keywords with the German terms")
}

func TestAnalyze_ProgressOrder(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelOutput(t), nil
		},
	}
	e := newTestEngine(client, &fakeVerifier{}, nil)

	var steps []string
	_, err := e.AnalyzeWithProgress(context.Background(), testJob(), testProfile(), func(ev ProgressEvent) {
		assert.Equal(t, "job-42", ev.JobID)
		steps = append(steps, ev.Step)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StepGenerate, StepRecover, StepScore, StepLinks, StepComplete}, steps)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(testJob(), testProfile())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Title: Werkstudent Backend")
	assert.Contains(t, prompt, "1. Build REST APIs in Node.js (skills: Node.js)")
	assert.Contains(t, prompt, "2. Write SQL queries for reporting")
	assert.Contains(t, prompt, "- Built REST APIs with Node.js and Express")
	assert.Contains(t, prompt, "Projects:\n- none listed")
	assert.Contains(t, prompt, "Weekly availability: 20 hours")
	assert.NotContains(t, prompt, "{{.")
	assert.NotContains(t, prompt, "german_keywords with the German terms")
}

func TestPreconditionError(t *testing.T) {
	cause := errors.New("Key: 'Job.ID' Error:Field validation for 'ID' failed on the 'required' tag")
	err := &PreconditionError{Message: "invalid job", Cause: cause}

	assert.True(t, strings.HasPrefix(err.Error(), "precondition failed: invalid job: "))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "precondition failed: job is required", (&PreconditionError{Message: "job is required"}).Error())
}
