package links

import (
	"net/url"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Search URL prefixes. These never rot, so they are used as the safe fallback.
const (
	VideoSearchPrefix = "https://www.youtube.com/results?search_query="
	WebSearchPrefix   = "https://www.google.com/search?q="
)

// CrashCourseLabel is the label of the video search fallback
const CrashCourseLabel = "Crash course"

// YouTubeSearch returns a video search URL for query
func YouTubeSearch(query string) string {
	return VideoSearchPrefix + url.QueryEscape(strings.TrimSpace(query))
}

// GoogleSearch returns a web search URL for query
func GoogleSearch(query string) string {
	return WebSearchPrefix + url.QueryEscape(strings.TrimSpace(query))
}

// IsFallbackURL reports whether u is one of the search templates
func IsFallbackURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "youtube.com/results?search_query=") ||
		strings.Contains(lower, "google.com/search?q=")
}

// IsVideoSearch reports whether u is a video search URL
func IsVideoSearch(u string) bool {
	return strings.Contains(strings.ToLower(u), "youtube.com/results")
}

// IsCrashCourse reports whether a link is a crash-course style entry
func IsCrashCourse(l types.LearningLink) bool {
	return strings.Contains(strings.ToLower(l.Label), "crash course") || IsVideoSearch(l.URL)
}

// CrashCourse is the video search fallback for a topic
func CrashCourse(topic string) types.LearningLink {
	return types.LearningLink{Label: CrashCourseLabel, URL: YouTubeSearch(topic + " crash course")}
}

// WebSearch is the generic web search fallback for a topic
func WebSearch(topic string) types.LearningLink {
	topic = strings.TrimSpace(topic)
	return types.LearningLink{Label: "Guides: " + topic, URL: GoogleSearch(topic + " guide")}
}
