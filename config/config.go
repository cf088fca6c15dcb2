// Package config provides YAML configuration parsing for FlightDeck.
//
// This package enables running FlightDeck as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Heathrow T5
//	port: 8080
//	scan_interval: 60s
//	startup_delay: 5s
//	log_level: info
//	log_format: json
//
//	seed:
//	  demo: false
//	  file: flights.yaml
//	  watch: true
//
//	websocket:
//	  enabled: true
//
//	mqtt:
//	  broker: ${MQTT_BROKER:-tcp://localhost:1883}
//	  topic_prefix: airport/lhr/events
//	  qos: 1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minScanInterval is the minimum allowed scan interval for production configs.
const minScanInterval = 1 * time.Second

const (
	defaultPort         = 8080
	defaultScanInterval = 60 * time.Second
	defaultStartupDelay = 5 * time.Second
)

// Config is the root configuration structure for FlightDeck.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "FlightDeck" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// ScanInterval is the time between status scans.
	// Accepts duration strings like "30s", "1m". Defaults to 60s.
	ScanInterval Duration `yaml:"scan_interval"`

	// StartupDelay is the wait before the first scan. Defaults to 5s.
	// Use "0s" to scan immediately.
	StartupDelay *Duration `yaml:"startup_delay"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// LogFormat is json or text. Defaults to text.
	LogFormat string `yaml:"log_format"`

	Seed      SeedConfig      `yaml:"seed"`
	WebSocket WebSocketConfig `yaml:"websocket"`

	// MQTT is optional; nil disables event publishing to a broker.
	MQTT *MQTTConfig `yaml:"mqtt"`
}

// SeedConfig controls the flights loaded at startup.
type SeedConfig struct {
	// Demo loads five demo flights that cycle through every status.
	Demo bool `yaml:"demo"`

	// File is a YAML seed file. Relative paths are resolved against the
	// directory of the configuration file when loaded with [Load].
	File string `yaml:"file"`

	// Watch reloads File whenever it changes.
	Watch bool `yaml:"watch"`
}

// WebSocketConfig controls the /ws event stream.
type WebSocketConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig configures publishing flight events to an MQTT broker.
type MQTTConfig struct {
	// Broker is the broker URL. Supports environment variable substitution.
	Broker string `yaml:"broker"`

	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`

	// QoS is 0, 1 or 2.
	QoS int `yaml:"qos"`

	// Username and Password support environment variable substitution.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// A relative seed file path is resolved against the directory holding the
// configuration file. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.File != "" && !filepath.IsAbs(cfg.Seed.File) {
		cfg.Seed.File = filepath.Join(filepath.Dir(path), cfg.Seed.File)
	}
	return cfg, nil
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the seed file path and the MQTT
// broker and credentials. Defaults are applied for Port (8080),
// ScanInterval (60s) and StartupDelay (5s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = Duration(defaultScanInterval)
	}
	if cfg.StartupDelay == nil {
		d := Duration(defaultStartupDelay)
		cfg.StartupDelay = &d
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
// Every problem is reported.
func (c *Config) expandAndValidate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.ScanInterval.Duration() < minScanInterval {
		errs = append(errs, fmt.Errorf("scan_interval must be at least %s, got %s", minScanInterval, c.ScanInterval.Duration()))
	}
	if c.StartupDelay.Duration() < 0 {
		errs = append(errs, fmt.Errorf("startup_delay cannot be negative, got %s", c.StartupDelay.Duration()))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}

	if c.Seed.File != "" {
		expanded, err := expandEnvVars(c.Seed.File)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed.file: %w", err))
		}
		c.Seed.File = expanded
	}
	if c.Seed.Watch && c.Seed.File == "" {
		errs = append(errs, errors.New("seed.watch requires seed.file"))
	}

	if c.MQTT != nil {
		errs = append(errs, c.MQTT.expandAndValidate()...)
	}

	return errors.Join(errs...)
}

func (m *MQTTConfig) expandAndValidate() []error {
	var errs []error

	fields := []struct {
		name  string
		value *string
	}{
		{"broker", &m.Broker},
		{"username", &m.Username},
		{"password", &m.Password},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("mqtt.%s: %w", f.name, err))
			continue
		}
		*f.value = expanded
	}

	if m.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	if m.QoS < 0 || m.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", m.QoS))
	}
	return errs
}
