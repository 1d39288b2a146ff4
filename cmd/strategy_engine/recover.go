package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scintive/werkstudentjobs-sub002/internal/observability"
	"github.com/scintive/werkstudentjobs-sub002/internal/recovery"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Parse a raw model completion with the recovery cascade",
	Long: "Runs the strict, truncation-repair, partial-extraction and minimal parsers in order over a raw " +
		"completion and reports which tier succeeded. Reads stdin when --in is \"-\".",
	RunE: runRecover,
}

var (
	recoverInput  string
	recoverOutput string
)

func init() {
	recoverCmd.Flags().StringVarP(&recoverInput, "in", "i", "", "Path to the raw completion text, or - for stdin (required)")
	recoverCmd.Flags().StringVarP(&recoverOutput, "out", "o", "", "Path to write the recovered analysis JSON")

	if err := recoverCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, _ []string) error {
	var raw []byte
	var err error
	if recoverInput == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(recoverInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read completion %s: %w", recoverInput, err)
	}

	res := recovery.Recover(string(raw))

	if recoverOutput != "" {
		if err := writeJSON(recoverOutput, res.Analysis); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintRecovery(res)
	if recoverOutput != "" {
		_, _ = fmt.Fprintf(out, "Recovered analysis written to %s\n", recoverOutput)
	}
	return nil
}
