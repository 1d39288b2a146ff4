package recovery

import (
	"regexp"
	"strings"
)

// scanState is the lexical state at the end of a JSON prefix
type scanState struct {
	stack    []byte // open containers, '{' or '['
	inString bool
	escaped  bool // last byte was a backslash inside a string
}

// scan walks s and reports which containers and strings are still open at its end.
// Brackets inside string literals are ignored.
func scan(s string) scanState {
	var st scanState
	for i := 0; i < len(s); i++ {
		c := s[i]
		if st.inString {
			switch {
			case st.escaped:
				st.escaped = false
			case c == '\\':
				st.escaped = true
			case c == '"':
				st.inString = false
			}
			continue
		}
		switch c {
		case '"':
			st.inString = true
		case '{', '[':
			st.stack = append(st.stack, c)
		case '}', ']':
			if len(st.stack) > 0 {
				st.stack = st.stack[:len(st.stack)-1]
			}
		}
	}
	return st
}

// closers returns the brackets needed to close every open container, innermost first
func (st scanState) closers() string {
	var sb strings.Builder
	for i := len(st.stack) - 1; i >= 0; i-- {
		if st.stack[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// lastObjectBoundary returns the index just past the '}' of the last "},{" boundary
// between elements of the task list, or -1. The task list is the job_task_analysis
// array or a top-level array; when neither is present any object boundary counts.
// Boundaries inside string literals are ignored and whitespace around the comma is allowed.
func lastObjectBoundary(s string) int {
	taskOpen := -1
	if loc := taskArrayStart.FindStringIndex(s); loc != nil {
		taskOpen = loc[1] - 1
	}

	lastTask, lastAny := -1, -1
	taskDepth := -1
	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
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
		case '[':
			if taskDepth < 0 && (i == taskOpen || len(stack) == 0) {
				taskDepth = len(stack) + 1
			}
			stack = append(stack, c)
		case '{':
			stack = append(stack, c)
		case ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if !followedByObject(s, i+1) {
				continue
			}
			lastAny = i + 1
			if taskDepth > 0 && len(stack) == taskDepth && stack[len(stack)-1] == '[' {
				lastTask = i + 1
			}
		}
	}
	if taskDepth > 0 {
		return lastTask
	}
	return lastAny
}

// followedByObject reports whether s continues with ",{" from i, ignoring whitespace
func followedByObject(s string, i int) bool {
	j := skipSpace(s, i)
	if j >= len(s) || s[j] != ',' {
		return false
	}
	k := skipSpace(s, j+1)
	return k < len(s) && s[k] == '{'
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\n' || s[i] == '\r' || s[i] == '\t') {
		i++
	}
	return i
}

var (
	partialLiteral = regexp.MustCompile(`[A-Za-z]+$`)
	partialNumber  = regexp.MustCompile(`[-+.eE]+$`)
)

// trimDangling removes a trailing comma, colon, object key without value or
// half-written literal so that the prefix can be closed into valid JSON.
func trimDangling(s string) string {
	for {
		s = strings.TrimRight(s, " \n\r\t")
		switch {
		case s == "":
			return s
		case strings.HasSuffix(s, ","):
			s = s[:len(s)-1]
		case strings.HasSuffix(s, ":"):
			s = s[:len(s)-1]
			s = strings.TrimRight(s, " \n\r\t")
			if start := openingQuote(s); start >= 0 {
				s = s[:start]
			}
		case strings.HasSuffix(s, `"`):
			start := openingQuote(s)
			if start < 0 || !isKeyPosition(s[:start]) {
				return s
			}
			s = s[:start]
		default:
			if lit := partialLiteral.FindString(s); lit != "" {
				if lit == "true" || lit == "false" || lit == "null" {
					return s
				}
				s = s[:len(s)-len(lit)]
				continue
			}
			if num := partialNumber.FindString(s); num != "" {
				s = s[:len(s)-len(num)]
				continue
			}
			return s
		}
	}
}

// openingQuote returns the index of the quote that opens the string literal
// ending at the last byte of s, or -1 if s does not end in a closed string.
func openingQuote(s string) int {
	if !strings.HasSuffix(s, `"`) {
		return -1
	}
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] != '"' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return i
		}
	}
	return -1
}

// isKeyPosition reports whether a string starting right after prefix would be an object key
func isKeyPosition(prefix string) bool {
	trimmed := strings.TrimRight(prefix, " \n\r\t")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '{':
		return true
	case ',':
		st := scan(trimmed)
		return len(st.stack) > 0 && st.stack[len(st.stack)-1] == '{'
	}
	return false
}
