package llm

import "strings"

const fence = "```"

// CleanJSONBlock removes markdown code fences around a JSON completion.
// Models wrap JSON in ```json ... ``` even when asked not to. A missing closing
// fence (truncated output) is tolerated: everything after the opening line is kept.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	text = strings.TrimPrefix(text, fence)
	// skip a language tag such as "json" on the opening line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		tag := strings.TrimSpace(text[:idx])
		if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
			text = text[idx+1:]
		}
	} else {
		text = strings.TrimPrefix(text, "json")
	}

	if idx := strings.LastIndex(text, fence); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
