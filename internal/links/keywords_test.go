package links

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	calls            int
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.calls++
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return `{"items": []}`, nil
}

func (m *MockLLMClient) GetModel(llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func TestLLMKeywordSource_Keywords(t *testing.T) {
	var gotPrompt string
	var gotTier llm.ModelTier
	client := &MockLLMClient{GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
		gotPrompt, gotTier = prompt, tier
		return "```json\n{\"items\": [\" Power BI dashboards \", \"\", \"SQL joins\", \"extra\"]}\n```", nil
	}}

	got, err := NewLLMKeywordSource(client).Keywords(context.Background(), []string{
		"Build dashboards in Power BI", "Support the team", "Write SQL queries",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Power BI dashboards", "", "SQL joins"}, got)
	assert.Equal(t, llm.TierLite, gotTier)
	assert.Contains(t, gotPrompt, "1. Build dashboards in Power BI\n2. Support the team\n3. Write SQL queries")
}

func TestLLMKeywordSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, string, llm.ModelTier) (string, error)
	}{
		{"model error", func(context.Context, string, llm.ModelTier) (string, error) { return "", errors.New("quota") }},
		{"bad json", func(context.Context, string, llm.ModelTier) (string, error) { return "items: sql", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLLMKeywordSource(&MockLLMClient{GenerateJSONFunc: tt.fn}).Keywords(context.Background(), []string{"A", "B"})
			require.Error(t, err)

			var kerr *KeywordError
			assert.ErrorAs(t, err, &kerr)
			assert.Equal(t, []string{"", ""}, got)
		})
	}
}

func TestLLMKeywordSource_NoTasks(t *testing.T) {
	client := &MockLLMClient{}
	got, err := NewLLMKeywordSource(client).Keywords(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, client.calls)
}
