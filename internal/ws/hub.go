// Package ws streams flight events to WebSocket clients.
//
// A [Hub] forwards every event from an event source to all connected
// clients. Each client receives a snapshot of the current flights when it
// connects, then one message per event.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/flightdeck/flight"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// origin checks belong to the reverse proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
//
// Snapshot messages carry Flights; event messages carry Event.
type Message struct {
	Type    string        `json:"type"`
	Flights []FlightState `json:"flights,omitempty"`
	Event   *flight.Event `json:"event,omitempty"`
}

// FlightState is a flight with its status at snapshot time.
type FlightState struct {
	flight.Flight
	Status flight.Status `json:"status"`
}

// Lister returns the current flights.
type Lister interface {
	ListFlights(ctx context.Context, destination, status string) ([]flight.Flight, error)
}

// Source supplies flight events.
type Source interface {
	Subscribe() <-chan flight.Event
	Unsubscribe(ch <-chan flight.Event)
}

// Hub manages WebSocket client connections and broadcasts flight events to
// all connected clients.
type Hub struct {
	flights Lister
	events  Source
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub that snapshots from flights and forwards from events.
// A nil clock uses time.Now and a nil logger uses slog.Default().
func New(flights Lister, events Source, now func() time.Time, logger *slog.Logger) *Hub {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		flights: flights,
		events:  events,
		now:     now,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Run forwards events to connected clients. Run blocks until ctx is
// cancelled or the event source closes, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	ch := h.events.Subscribe()
	defer h.events.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev, ok := <-ch:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(ev)
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends a snapshot immediately on connect, then continues to receive
// broadcasts. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	defer h.unregister(c)

	h.logger.Debug("websocket client connected", "remote", r.RemoteAddr, "clients", h.Count())

	if data, err := h.snapshot(r.Context()); err == nil {
		h.trySend(c, data)
	} else {
		h.logger.Warn("websocket snapshot failed", "error", err)
	}

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(ev flight.Event) {
	data, err := json.Marshal(Message{Type: "event", Event: &ev})
	if err != nil {
		h.logger.Error("failed to encode websocket event", "error", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// outgoing buffer is full, disconnect the client
	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client", "remote", c.conn.RemoteAddr().String())
		h.unregister(c)
	}
}

// trySend queues data for c unless c has been removed or its buffer is
// full. Send channels are only closed under the write lock.
func (h *Hub) trySend(c *client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) snapshot(ctx context.Context) ([]byte, error) {
	flights, err := h.flights.ListFlights(ctx, "", "")
	if err != nil {
		return nil, err
	}

	now := h.now()
	states := make([]FlightState, 0, len(flights))
	for _, f := range flights {
		states = append(states, FlightState{Flight: f, Status: f.Status(now)})
	}
	return json.Marshal(Message{Type: "snapshot", Flights: states})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// channel was closed (hub is shutting down or client removed)
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection to process control messages (pong,
// close) and detect disconnects. Blocks until the connection closes.
func (c *client) readPump() {
	defer func() { _ = c.conn.Close() }()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
