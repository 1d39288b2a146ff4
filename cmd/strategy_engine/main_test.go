package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/scintive/werkstudentjobs-sub002/internal/config"
)

const testJob = `{
  "id": "job-42",
  "title": "Werkstudent Data Analytics",
  "location": "München, Germany",
  "tasks": [
    {"text": "Build SQL dashboards for the sales team", "required_skills": ["SQL"]},
    {"text": "Organize team events and offsites"}
  ]
}`

const testProfile = `{
  "skills": ["SQL", "Python", "Tableau"],
  "experience_bullets": ["Built SQL dashboards for weekly sales reporting"],
  "project_descriptions": ["Churn prediction in Python"],
  "certifications": []
}`

const testResume = `{
  "skills": {"data": ["SQL", "Tableau"], "languages": ["Python"]},
  "experience": [{"position": "Intern", "achievements": ["Built SQL dashboards for weekly sales reporting"]}],
  "projects": [{"name": "Churn", "description": "prediction in Python"}]
}`

// resetFlags restores every flag to its default so commands can run repeatedly in one process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout and stderr
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// offlineEnv clears the variables that would reach the model or a remote cache
func offlineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvAPIKey, config.EnvDatabaseURL, config.EnvRedisURL,
		config.EnvCacheBackend, config.EnvBadgerPath, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
