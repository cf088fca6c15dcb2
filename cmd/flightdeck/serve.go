package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/flightdeck"
	"github.com/jpalmerr/flightdeck/config"
)

// shutdownTimeout bounds how long serve waits for Start to return after a
// signal.
const shutdownTimeout = 10 * time.Second

// serveCmd starts the FlightDeck server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flight status board",
	Long: `Start the FlightDeck server.

The server will:
  - Load configuration from the specified YAML file
  - Load seed flights (demo data and/or a seed file)
  - Re-check flight statuses every scan interval
  - Serve the dashboard UI and REST API on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  flightdeck serve -c config.yaml
  flightdeck serve --config /etc/flightdeck/config.yaml --env-file /etc/flightdeck/.env`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := cfg.NewLogger(os.Stderr)

	logger.Info("config loaded",
		"demo", cfg.Seed.Demo,
		"seed_file", cfg.Seed.File,
		"websocket", cfg.WebSocket.Enabled,
		"mqtt", cfg.MQTT != nil,
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"scan_interval", cfg.ScanInterval.Duration().String(),
	)

	opts, err := config.BuildOptions(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}

	fd, err := flightdeck.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create FlightDeck: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- fd.Start(ctx) }()

	// Start returns on its own only when it fails to come up
	select {
	case err := <-done:
		return finish(err, logger)
	case <-ctx.Done():
	}

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return finish(err, logger)
	case <-timer.C:
		logger.Warn("shutdown timed out, forcing exit", "timeout", shutdownTimeout.String())
		return nil
	}
}

func finish(err error, logger *slog.Logger) error {
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
