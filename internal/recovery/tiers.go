package recovery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Tier names one stage of the recovery cascade
type Tier string

// Cascade tiers in the order they are attempted
const (
	TierStrict         Tier = "STRICT"
	TierTruncated      Tier = "TRUNCATED"
	TierPartialExtract Tier = "PARTIAL_EXTRACT"
	TierMinimal        Tier = "MINIMAL"
)

// ParseFunc turns raw model text into an analysis or reports why it could not
type ParseFunc func(raw string) (*types.ParsedAnalysis, error)

// Stage pairs a tier name with its parser
type Stage struct {
	Tier  Tier
	Parse ParseFunc
}

// DefaultStages is the standard four-tier cascade
func DefaultStages() []Stage {
	return []Stage{
		{Tier: TierStrict, Parse: ParseStrict},
		{Tier: TierTruncated, Parse: ParseTruncated},
		{Tier: TierPartialExtract, Parse: ParsePartialExtract},
		{Tier: TierMinimal, Parse: ParseMinimal},
	}
}

// ParseStrict parses the text as-is. A top-level array is accepted as the task list.
func ParseStrict(raw string) (*types.ParsedAnalysis, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "[") {
		var tasks []types.RawTaskAnalysis
		if err := json.Unmarshal([]byte(text), &tasks); err != nil {
			return nil, err
		}
		analysis := types.EmptyParsedAnalysis()
		analysis.JobTaskAnalysis = tasks
		analysis.FillDefaults()
		return analysis, nil
	}

	var analysis types.ParsedAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, err
	}
	analysis.FillDefaults()
	return &analysis, nil
}

// ParseTruncated repairs a completion that was cut off mid-document: it drops the
// dangling object after the last "},{" boundary, closes an open string literal,
// trims half-written keys and literals, appends the missing closers and reparses.
func ParseTruncated(raw string) (*types.ParsedAnalysis, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrEmptyOutput
	}
	if strings.HasSuffix(text, "}") {
		return nil, errNotTruncated
	}

	return ParseStrict(repairTruncated(text))
}

func repairTruncated(text string) string {
	if cut := lastObjectBoundary(text); cut > 0 && !objectCloses(text, cut) {
		text = text[:cut]
	}

	st := scan(text)
	if st.inString {
		if st.escaped {
			text = text[:len(text)-1]
		}
		text += `"`
	}

	text = trimDangling(text)
	return text + scan(text).closers()
}

// objectCloses reports whether the object that follows the boundary at cut is complete
func objectCloses(s string, cut int) bool {
	start := strings.IndexByte(s[cut:], '{')
	if start < 0 {
		return false
	}
	depth := 0
	inString, escaped := false, false
	for i := cut + start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

var taskArrayStart = regexp.MustCompile(`"job_task_analysis"\s*:\s*\[`)

// ParsePartialExtract salvages only the job_task_analysis array. An unterminated array
// keeps its complete elements; elements that fail to decode are skipped.
func ParsePartialExtract(raw string) (*types.ParsedAnalysis, error) {
	loc := taskArrayStart.FindStringIndex(raw)
	if loc == nil {
		return nil, fmt.Errorf("job_task_analysis array not found")
	}

	body := arrayBody(raw, loc[1])
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte("["+body+"]"), &elements); err != nil {
		return nil, fmt.Errorf("failed to parse extracted task array: %w", err)
	}

	analysis := types.EmptyParsedAnalysis()
	for _, el := range elements {
		var task types.RawTaskAnalysis
		if err := json.Unmarshal(el, &task); err != nil {
			continue
		}
		analysis.JobTaskAnalysis = append(analysis.JobTaskAnalysis, task)
	}
	return analysis, nil
}

// arrayBody returns the text between the array's opening bracket (ending at start)
// and its matching close. For an unterminated array it returns everything up to the
// end of the last complete element.
func arrayBody(s string, start int) string {
	depth := 0
	lastComplete := start
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				if depth == 0 {
					lastComplete = i + 1
				}
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			if depth == 0 {
				// closing bracket of the task array itself
				return s[start:i]
			}
			depth--
			if depth == 0 {
				lastComplete = i + 1
			}
		}
	}
	return strings.TrimRight(strings.TrimSpace(s[start:lastComplete]), ",")
}

// ParseMinimal always succeeds with an empty, well-typed analysis
func ParseMinimal(string) (*types.ParsedAnalysis, error) {
	return types.EmptyParsedAnalysis(), nil
}
