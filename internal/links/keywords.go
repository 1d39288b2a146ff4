package links

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/llm"
)

// KeywordSource produces one short search phrase per task, index-aligned.
// Missing phrases are returned as empty strings.
type KeywordSource interface {
	Keywords(ctx context.Context, tasks []string) ([]string, error)
}

// LLMKeywordSource asks the model for crash-course search phrases in a single call.
type LLMKeywordSource struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMKeywordSource uses the lite tier; phrases are cheap and short.
func NewLLMKeywordSource(client llm.Client) *LLMKeywordSource {
	return &LLMKeywordSource{client: client, tier: llm.TierLite}
}

type keywordResponse struct {
	Items []string `json:"items"`
}

// Keywords implements KeywordSource.
func (s *LLMKeywordSource) Keywords(ctx context.Context, tasks []string) ([]string, error) {
	out := make([]string, len(tasks))
	if len(tasks) == 0 {
		return out, nil
	}

	var sb strings.Builder
	sb.WriteString("TASKS (one per line):\n")
	for i, t := range tasks {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(t))
	}
	prompt := llm.BuildExtractionPrompt(llm.KeywordPhraseSchema(), strings.TrimSuffix(sb.String(), "\n"))

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return out, &KeywordError{Message: "model call failed", Cause: err}
	}

	var resp keywordResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		return out, &KeywordError{Message: "invalid JSON", Cause: err}
	}
	for i, kw := range resp.Items {
		if i >= len(out) {
			break
		}
		out[i] = strings.TrimSpace(kw)
	}
	return out, nil
}
