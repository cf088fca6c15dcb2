// Package main is the entry point for the flightdeck CLI.
//
// FlightDeck can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	flightdeck serve -c config.yaml    # Start the status board
//	flightdeck validate -c config.yaml # Validate configuration
//	flightdeck version                 # Show version info
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultEnvFile = ".env"

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "flightdeck",
	Short: "A real-time flight status board",
	Long: `FlightDeck is a real-time flight status board.

Flight statuses are derived from departure times and re-checked on a fixed
interval. Every change is pushed to the web UI with Server-Sent Events, and
optionally to WebSocket clients and an MQTT broker.

Quick start:
  1. Create a config file (flightdeck.yaml)
  2. Run: flightdeck serve -c flightdeck.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  scan_interval: 60s
  seed:
    demo: true`,
	PersistentPreRunE: loadEnvFile,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", defaultEnvFile, "dotenv file to load before reading config")
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads variables from the dotenv file so that ${VAR} references
// in the config resolve. Variables already set in the environment win. A
// missing default file is not an error.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this flightdeck binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flightdeck %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}
