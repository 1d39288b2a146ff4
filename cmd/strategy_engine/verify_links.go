package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/observability"
)

var verifyLinksCmd = &cobra.Command{
	Use:   "verify-links",
	Short: "Check learning-resource URLs for reachability",
	Long: "Probes every URL once with HEAD (falling back to GET), follows redirects and checks " +
		"YouTube video pages for availability. Blank lines and lines starting with # in --file are skipped.",
	RunE: runVerifyLinks,
}

var (
	verifyURLs []string
	verifyFile string
	verifyJSON bool
)

func init() {
	verifyLinksCmd.Flags().StringArrayVarP(&verifyURLs, "url", "u", nil, "URL to verify (repeatable)")
	verifyLinksCmd.Flags().StringVarP(&verifyFile, "file", "f", "", "Path to a file with one URL per line")
	verifyLinksCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the verdicts as JSON")

	rootCmd.AddCommand(verifyLinksCmd)
}

// readURLFile returns the non-blank, non-comment lines of path
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file %s: %w", path, err)
	}
	return urls, nil
}

func runVerifyLinks(cmd *cobra.Command, _ []string) error {
	urls := append([]string(nil), verifyURLs...)
	if verifyFile != "" {
		fromFile, err := readURLFile(verifyFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("at least one --url or a --file is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	// an explicit request verifies even when analysis-time verification is off
	vc := cfg.VerifierConfig(logger)
	if vc == nil {
		vc = links.DefaultVerifierConfig()
		vc.Logger = logger
	}

	results, err := links.NewHTTPVerifier(vc).VerifyLinks(cmd.Context(), urls)
	if err != nil {
		return fmt.Errorf("link verification failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if verifyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	observability.NewPrinter(out).PrintVerifications(results)
	return nil
}
