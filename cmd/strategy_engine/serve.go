package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scintive/werkstudentjobs-sub002/internal/metrics"
	"github.com/scintive/werkstudentjobs-sub002/internal/server"
)

var (
	servePort        int
	serveCORSOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the strategy engine, link verification and output recovery over REST.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable; default any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	m := metrics.New()

	a, err := newApp(cmd.Context(), cfg, logger, appOptions{Metrics: m})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Analyzer:    a.engine,
		Verifier:    a.verifier,
		Metrics:     m,
		Logger:      logger,
		CORSOrigins: serveCORSOrigins,
		Closers:     []io.Closer{a},
	})
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
