package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/flightdeck/config"
	"github.com/jpalmerr/flightdeck/flight"
	"github.com/jpalmerr/flightdeck/internal/seed"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a FlightDeck configuration file without starting the server.

This command parses the YAML, expands environment variables, validates all
fields and loads the seed flights. It prints a summary and a preview of the
flights the server would start with. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  flightdeck validate -c config.yaml
  flightdeck validate --config /etc/flightdeck/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	now := time.Now()
	reqs, err := seedPreview(cfg, now)
	if err != nil {
		return fmt.Errorf("invalid seed flights: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Scan interval: %s\n", cfg.ScanInterval.Duration())
	fmt.Fprintf(out, "  Startup delay: %s\n", cfg.StartupDelay.Duration())
	fmt.Fprintf(out, "  WebSocket:     %s\n", enabled(cfg.WebSocket.Enabled))
	if cfg.MQTT != nil {
		fmt.Fprintf(out, "  MQTT:          %s (qos %d)\n", cfg.MQTT.Broker, cfg.MQTT.QoS)
	} else {
		fmt.Fprintf(out, "  MQTT:          disabled\n")
	}
	fmt.Fprintf(out, "  Seed flights:  %d\n", len(reqs))

	printPreview(out, reqs, now)
	return nil
}

// seedPreview loads the flights the server would be seeded with, dropping
// repeated numbers the same way the server does.
func seedPreview(cfg *config.Config, now time.Time) ([]flight.Request, error) {
	var reqs []flight.Request
	if cfg.Seed.Demo {
		reqs = append(reqs, seed.Demo(now, nil)...)
	}
	if cfg.Seed.File != "" {
		fromFile, err := seed.LoadFile(cfg.Seed.File, now)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, fromFile...)
	}

	seen := make(map[string]struct{}, len(reqs))
	unique := reqs[:0]
	for _, r := range reqs {
		key := flight.NumberKey(r.Number)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].DepartureTime.Before(unique[j].DepartureTime)
	})
	return unique, nil
}

func printPreview(w io.Writer, reqs []flight.Request, now time.Time) {
	if len(reqs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s %-20s %-6s %-10s %s\n", "FLIGHT", "DESTINATION", "GATE", "STATUS", "DEPARTS")
	for _, r := range reqs {
		fmt.Fprintf(w, "  %-10s %-20s %-6s %-10s %s\n",
			r.Number,
			r.Destination,
			r.Gate,
			flight.Classify(r.DepartureTime, now),
			humanize.RelTime(r.DepartureTime, now, "ago", "from now"),
		)
	}
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
