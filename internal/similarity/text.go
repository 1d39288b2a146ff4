// Package similarity provides the lexical primitives used to compare job tasks with resume text.
// Everything here is pure: no I/O, no shared state.
package similarity

import (
	"regexp"
	"strings"
)

// minTokenLen is the shortest token kept by Tokenize; shorter words are mostly stop-words.
const minTokenLen = 4

var punctuation = regexp.MustCompile(`[^\w\s+#.-]`)

// TokenSet is a set of normalized tokens
type TokenSet map[string]struct{}

// NewTokenSet builds a set from the given tokens
func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether the token is in the set
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Add inserts every token of other into s
func (s TokenSet) Add(other TokenSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Normalize lowercases text, replaces punctuation other than + # . - with spaces
// and collapses runs of whitespace.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	stripped := punctuation.ReplaceAllString(lower, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

// Tokens returns the distinct tokens of text in first-occurrence order.
// Sentence-final dots are trimmed so "react." and "react" compare equal;
// inner dots ("node.js") are kept.
func Tokens(text string) []string {
	fields := strings.Fields(Normalize(text))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		if len(f) < minTokenLen {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Tokenize returns the token set of text
func Tokenize(text string) TokenSet {
	return NewTokenSet(Tokens(text)...)
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if large.Has(t) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// OverlapRatio returns the share of the candidate's tokens that also appear in text.
func OverlapRatio(text, candidate string) float64 {
	return overlap(Tokenize(text), Tokenize(candidate))
}

func overlap(textTokens, candTokens TokenSet) float64 {
	if len(candTokens) == 0 {
		return 0
	}
	inter := 0
	for t := range candTokens {
		if textTokens.Has(t) {
			inter++
		}
	}
	return float64(inter) / float64(len(candTokens))
}

// BestMatch returns the candidate with the highest overlap ratio against text.
// The second result is false when no candidate shares a token with text.
// Ties go to the earliest candidate.
func BestMatch(text string, candidates []string) (string, bool) {
	textTokens := Tokenize(text)
	if len(textTokens) == 0 {
		return "", false
	}

	best, bestScore := "", 0.0
	for _, c := range candidates {
		if score := overlap(textTokens, Tokenize(c)); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return best, true
}

// BestMatchIndex is BestMatch returning the candidate index, or -1.
func BestMatchIndex(text string, candidates []string) int {
	textTokens := Tokenize(text)
	if len(textTokens) == 0 {
		return -1
	}

	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if score := overlap(textTokens, Tokenize(c)); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
