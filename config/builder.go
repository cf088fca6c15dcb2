package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jpalmerr/flightdeck"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The returned options can be passed straight to [flightdeck.New]. A nil
// logger is left out, so the SDK falls back to slog.Default().
func BuildOptions(cfg *Config, logger *slog.Logger) ([]flightdeck.Option, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	opts := []flightdeck.Option{
		flightdeck.WithPort(cfg.Port),
		flightdeck.WithScanInterval(cfg.ScanInterval.Duration()),
	}

	if cfg.StartupDelay != nil {
		opts = append(opts, flightdeck.WithStartupDelay(cfg.StartupDelay.Duration()))
	}
	if cfg.Title != "" {
		opts = append(opts, flightdeck.WithTitle(cfg.Title))
	}
	if logger != nil {
		opts = append(opts, flightdeck.WithLogger(logger))
	}

	if cfg.Seed.Demo {
		opts = append(opts, flightdeck.WithDemoData())
	}
	if cfg.Seed.File != "" {
		opts = append(opts, flightdeck.WithSeedFile(cfg.Seed.File, cfg.Seed.Watch))
	}

	if cfg.WebSocket.Enabled {
		opts = append(opts, flightdeck.WithWebSocket(true))
	}

	if cfg.MQTT != nil {
		// validation should have caught this, but qos must fit a byte
		if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
			return nil, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", cfg.MQTT.QoS)
		}
		opts = append(opts, flightdeck.WithMQTT(flightdeck.MQTTConfig{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         byte(cfg.MQTT.QoS),
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
		}))
	}

	return opts, nil
}

// NewLogger builds the slog logger described by LogLevel and LogFormat,
// writing to w. Unknown values fall back to info and text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
