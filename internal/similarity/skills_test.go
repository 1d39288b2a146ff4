package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSkill(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Golang", "go"},
		{"NodeJS", "node.js"},
		{"k8s", "kubernetes"},
		{"  React.js ", "react"},
		{"Python", "python"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalSkill(tt.input))
		})
	}
}

func TestContainsEither(t *testing.T) {
	assert.True(t, ContainsEither("build rest apis in node.js", "node.js"))
	assert.True(t, ContainsEither("node.js", "build rest apis in node.js"))
	assert.False(t, ContainsEither("python", "java"))
	assert.False(t, ContainsEither("", "java"))
}

func TestFuzzyEqual(t *testing.T) {
	assert.True(t, FuzzyEqual("kubernetes", "kubernetes", DefaultFuzzyThreshold))
	assert.True(t, FuzzyEqual("kubernets", "kubernetes", DefaultFuzzyThreshold))
	assert.False(t, FuzzyEqual("docker", "tableau", DefaultFuzzyThreshold))
	assert.False(t, FuzzyEqual("", "docker", DefaultFuzzyThreshold))
}

func TestFuzzyContains(t *testing.T) {
	assert.True(t, FuzzyContains("Deploy services on Kubernets clusters", "kubernetes", DefaultFuzzyThreshold))
	assert.True(t, FuzzyContains("Build dashboards in Power BI", "power bi", DefaultFuzzyThreshold))
	assert.False(t, FuzzyContains("Write newsletters", "kubernetes", DefaultFuzzyThreshold))
	assert.False(t, FuzzyContains("anything", "", DefaultFuzzyThreshold))
}
