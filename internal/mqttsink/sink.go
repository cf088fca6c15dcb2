// Package mqttsink publishes flight events to an MQTT broker.
//
// Each event is encoded as JSON and published to "<prefix>/<event type>",
// for example "flightdeck/events/StatusChanged". Publishing never blocks the
// caller: events are queued and a single worker hands them to the client.
// When the queue is full, events are dropped and logged.
package mqttsink

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
)

const (
	// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
	DefaultTopicPrefix = "flightdeck/events"

	queueSize      = 256
	publishTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
	quiesceMillis  = 250
)

// Config describes the broker connection.
type Config struct {
	// Broker is the broker URL, e.g. "tcp://localhost:1883".
	Broker string

	// ClientID defaults to "flightdeck-<uuid>".
	ClientID string

	TopicPrefix string

	// QoS is 0, 1 or 2.
	QoS byte

	Username string
	Password string
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.Broker == "" {
		errs = append(errs, errors.New("mqtt: broker is required"))
	}
	if c.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt: qos must be 0, 1 or 2, got %d", c.QoS))
	}
	return errors.Join(errs...)
}

// Client is the subset of mqtt.Client the sink uses.
type Client interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Sink is a notify.Publisher backed by MQTT.
type Sink struct {
	client Client
	broker string
	prefix string
	qos    byte
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	running bool
	queue   chan flight.Event
	done    chan struct{}
}

// NewClient builds a paho client for cfg without connecting it. The client
// reconnects automatically once the first connection succeeds.
func NewClient(cfg Config, logger *slog.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "flightdeck-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker, "client_id", cfg.ClientID)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost, reconnecting", "broker", cfg.Broker, "error", err)
	})

	return mqtt.NewClient(opts), nil
}

// New wraps client without starting anything. Events published before
// [Sink.Connect] succeeds are queued; the publish worker starts with the
// first successful connection.
func New(client Client, cfg Config, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}

	s := &Sink{
		client: client,
		broker: cfg.Broker,
		prefix: prefix,
		qos:    cfg.QoS,
		logger: logger,
		queue:  make(chan flight.Event, queueSize),
		done:   make(chan struct{}),
	}
	return s
}

// Connect dials the broker and waits for the first connection.
func (s *Sink) Connect() error {
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt: connect to %s timed out after %s", s.broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect to %s: %w", s.broker, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && !s.running {
		s.running = true
		go s.run()
	}
	return nil
}

// Topic returns the topic an event of type t is published to.
func (s *Sink) Topic(t flight.EventType) string {
	return s.prefix + "/" + string(t)
}

// Publish queues ev for delivery. It never blocks.
func (s *Sink) Publish(ev flight.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.queue <- ev:
	default:
		s.logger.Warn("mqtt queue full, dropping event", "event", ev.Type, "flight_id", ev.FlightID)
	}
}

// Close flushes queued events and disconnects. A sink that never connected
// drops its queue. Close is safe to call more than once.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.queue)
	running := s.running
	if !running {
		close(s.done)
	}
	s.mu.Unlock()

	if running {
		<-s.done
		s.client.Disconnect(quiesceMillis)
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.send(ev); err != nil {
			s.logger.Error("mqtt publish failed", "event", ev.Type, "flight_id", ev.FlightID, "error", err)
		}
	}
}

func (s *Sink) send(ev flight.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	topic := s.Topic(ev.Type)
	token := s.client.Publish(topic, s.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}
