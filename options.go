package flightdeck

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/flightdeck/flight"
)

// fdConfig holds mutable state during FlightDeck construction.
type fdConfig struct {
	title          string
	port           int
	scanInterval   time.Duration
	startupDelay   time.Duration
	now            func() time.Time
	logger         *slog.Logger
	eventCallbacks []func(flight.Event)
	publishers     []Publisher
	seedFlights    []flight.Request
	demoData       bool
	seedFile       string
	watchSeedFile  bool
	websocket      bool
	mqtt           *MQTTConfig
}

// Option is a function that configures a [FlightDeck] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*fdConfig) error

// Publisher receives every flight event. Implementations must be safe for
// concurrent use and must not block.
type Publisher interface {
	Publish(ev flight.Event)
}

// MQTTConfig configures publishing of flight events to an MQTT broker.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. "tcp://localhost:1883".
	Broker string

	// ClientID identifies this instance. Defaults to a random ID.
	ClientID string

	// TopicPrefix is prepended to the event type. Defaults to "flightdeck/events".
	TopicPrefix string

	// QoS is the MQTT quality of service level, 0 to 2.
	QoS byte

	Username string
	Password string
}

// WithPort sets the HTTP port for the dashboard and API server.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *fdConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithScanInterval sets how often flight statuses are recomputed.
//
// Defaults to 60 seconds. A status transition is announced at most one
// interval after it happens.
//
// Returns an error if the duration is zero or negative.
func WithScanInterval(d time.Duration) Option {
	return func(cfg *fdConfig) error {
		if d <= 0 {
			return errors.New("scan interval must be positive")
		}
		cfg.scanInterval = d
		return nil
	}
}

// WithStartupDelay sets the wait before the first status scan.
//
// Defaults to 5 seconds. Zero scans immediately on start.
//
// Returns an error if the duration is negative.
func WithStartupDelay(d time.Duration) Option {
	return func(cfg *fdConfig) error {
		if d < 0 {
			return errors.New("startup delay cannot be negative")
		}
		cfg.startupDelay = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the FlightDeck instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *fdConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock replaces the wall clock used for validation and status
// derivation. Intended for tests and simulations.
//
// Returns an error if now is nil.
func WithClock(now func() time.Time) Option {
	return func(cfg *fdConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}

// WithEventCallback registers a function to be called for every flight
// event: additions, deletions and status changes.
//
// Multiple callbacks may be registered; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. They run synchronously on the
// goroutine that produced the event, either a request handler or the status
// monitor. Panics within callbacks are recovered and logged.
//
// Example:
//
//	fd, err := flightdeck.New(
//	    flightdeck.WithEventCallback(func(ev flight.Event) {
//	        if ev.Status == flight.StatusDelayed {
//	            log.Printf("flight %s delayed", ev.FlightID)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithEventCallback(cb func(flight.Event)) Option {
	return func(cfg *fdConfig) error {
		if cb == nil {
			return nil
		}
		cfg.eventCallbacks = append(cfg.eventCallbacks, cb)
		return nil
	}
}

// WithPublisher adds a sink that receives every flight event.
//
// Unlike callbacks, publishers are not wrapped in panic recovery.
//
// Returns an error if p is nil.
func WithPublisher(p Publisher) Option {
	return func(cfg *fdConfig) error {
		if p == nil {
			return errors.New("publisher cannot be nil")
		}
		cfg.publishers = append(cfg.publishers, p)
		return nil
	}
}

// WithSeedFlights loads flights at construction time. Seed flights may
// depart in the past and publish no events. Numbers already present are
// skipped.
func WithSeedFlights(reqs ...flight.Request) Option {
	return func(cfg *fdConfig) error {
		cfg.seedFlights = append(cfg.seedFlights, reqs...)
		return nil
	}
}

// WithDemoData loads five demo flights timed so that every status
// transition happens within about a minute of startup.
func WithDemoData() Option {
	return func(cfg *fdConfig) error {
		cfg.demoData = true
		return nil
	}
}

// WithSeedFile loads flights from a YAML seed file at construction time.
// If watch is true, the file is watched while running and new flights in it
// are loaded whenever it changes.
//
// Returns an error if path is empty.
func WithSeedFile(path string, watch bool) Option {
	return func(cfg *fdConfig) error {
		if path == "" {
			return errors.New("seed file path cannot be empty")
		}
		cfg.seedFile = path
		cfg.watchSeedFile = watch
		return nil
	}
}

// WithWebSocket enables the WebSocket event stream at /ws.
func WithWebSocket(enabled bool) Option {
	return func(cfg *fdConfig) error {
		cfg.websocket = enabled
		return nil
	}
}

// WithMQTT publishes every flight event to an MQTT broker. The connection
// is made by [FlightDeck.Start].
//
// Returns an error if the broker is empty or QoS is above 2.
func WithMQTT(mc MQTTConfig) Option {
	return func(cfg *fdConfig) error {
		if mc.Broker == "" {
			return errors.New("mqtt broker cannot be empty")
		}
		if mc.QoS > 2 {
			return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", mc.QoS)
		}
		cfg.mqtt = &mc
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "FlightDeck".
func WithTitle(title string) Option {
	return func(cfg *fdConfig) error {
		cfg.title = title
		return nil
	}
}
