package similarity

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// skillAliases maps common skill spellings to one canonical lowercase form
var skillAliases = map[string]string{
	"golang":              "go",
	"go lang":             "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"react.js":            "react",
	"reactjs":             "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"nodejs":              "node.js",
	"node":                "node.js",
	"postgres":            "postgresql",
	"ms excel":            "excel",
	"powerbi":             "power bi",
	"gcp":                 "google cloud",
	"amazon web services": "aws",
}

// CanonicalSkill returns the normalized, alias-resolved form of a skill name.
func CanonicalSkill(name string) string {
	n := Normalize(name)
	if canonical, ok := skillAliases[n]; ok {
		return canonical
	}
	return n
}

// ContainsEither reports whether a contains b or b contains a, after normalization.
// Empty strings never match.
func ContainsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// DefaultFuzzyThreshold is the Jaro-Winkler similarity above which two tokens are
// considered the same word with a typo ("kubernets" vs "kubernetes").
const DefaultFuzzyThreshold = 0.92

// FuzzyEqual reports whether two tokens are near-identical under Jaro-Winkler.
func FuzzyEqual(a, b string, threshold float32) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return edlib.JaroWinklerSimilarity(a, b) >= threshold
}

// FuzzyContains reports whether any token of text fuzzily equals keyword.
// Multi-word keywords fall back to a plain substring check.
func FuzzyContains(text, keyword string, threshold float32) bool {
	keyword = Normalize(keyword)
	if keyword == "" {
		return false
	}
	normText := Normalize(text)
	if strings.Contains(normText, keyword) {
		return true
	}
	if strings.Contains(keyword, " ") {
		return false
	}
	for _, tok := range strings.Fields(normText) {
		if len(tok) < minTokenLen {
			continue
		}
		if FuzzyEqual(tok, keyword, threshold) {
			return true
		}
	}
	return false
}
