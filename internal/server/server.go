package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
	"github.com/jpalmerr/flightdeck/internal/monitor"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// maxBodyBytes caps the size of a create request body.
	maxBodyBytes = 1 << 20

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "FlightDeck"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Flights is the core contract the HTTP handlers call into.
type Flights interface {
	AddFlight(ctx context.Context, req flight.Request) (flight.Flight, error)
	DeleteFlight(ctx context.Context, id uuid.UUID) error
	GetFlight(ctx context.Context, id uuid.UUID) (flight.Flight, error)
	ListFlights(ctx context.Context, destination, status string) ([]flight.Flight, error)
}

// Events is a source of notification events for streaming clients.
type Events interface {
	Subscribe() <-chan flight.Event
	Unsubscribe(ch <-chan flight.Event)
}

// Monitor reports the change monitor's state for health checks.
type Monitor interface {
	State() monitor.State
	Tracked() int
	Scans() int64
}

// Config holds the optional parts of a [Server].
type Config struct {
	// Port is the TCP port to listen on. Zero lets the OS choose.
	Port int

	// Assets contains assets/index.html. Nil disables the dashboard.
	Assets fs.FS

	// Title replaces {{.Title}} in the dashboard. Empty means "FlightDeck".
	Title string

	// Monitor feeds /healthz. Nil reports the monitor as absent.
	Monitor Monitor

	// WebSocket is mounted at /ws when non-nil.
	WebSocket http.Handler

	// Now is the clock used to derive response statuses. Nil means time.Now.
	Now func() time.Time
}

// Server handles HTTP requests for the FlightDeck dashboard and API.
//
// Server provides these endpoints:
//   - GET /: Serves the embedded dashboard HTML
//   - GET /api/flights: Lists flights, filtered by ?destination= and ?status=
//   - GET /api/flights/{id}: Returns one flight
//   - POST /api/flights: Creates a flight
//   - DELETE /api/flights/{id}: Deletes a flight
//   - GET /api/sse: Server-Sent Events stream of flight events
//   - GET /ws: WebSocket stream, when configured
//   - GET /healthz: Liveness and monitor state
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	flights    Flights
	events     Events
	cfg        Config
	httpServer *http.Server
	addr       net.Addr
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// The server is not started until [Server.Start] is called.
func NewServer(flights Flights, events Events, cfg Config, logger *slog.Logger) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		flights: flights,
		events:  events,
		cfg:     cfg,
		logger:  logger,
	}
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("GET /api/flights", s.handleList)
	mux.HandleFunc("POST /api/flights", s.handleCreate)
	mux.HandleFunc("GET /api/flights/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/flights/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/sse", s.handleSSE)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.cfg.WebSocket != nil {
		mux.Handle("GET /ws", s.cfg.WebSocket)
	}

	// serve dashboard assets
	if s.cfg.Assets != nil {
		mux.HandleFunc("GET /", s.handleDashboard)
	}

	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}
	s.addr = ln.Addr()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("http server listening", "addr", s.addr.String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// flightView is the wire form of a flight, with its status derived at
// response time.
type flightView struct {
	ID            uuid.UUID     `json:"id"`
	Number        string        `json:"flight_number"`
	Destination   string        `json:"destination"`
	DepartureTime time.Time     `json:"departure_time"`
	Gate          string        `json:"gate"`
	Status        flight.Status `json:"status"`
}

func newFlightView(f flight.Flight, now time.Time) flightView {
	return flightView{
		ID:            f.ID,
		Number:        f.Number,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		Gate:          f.Gate,
		Status:        f.Status(now),
	}
}

func (s *Server) views(flights []flight.Flight) []flightView {
	now := s.cfg.Now()
	out := make([]flightView, 0, len(flights))
	for _, f := range flights {
		out = append(out, newFlightView(f, now))
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.cfg.Assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// read index.html from embedded assets
	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.cfg.Title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	flights, err := s.flights.ListFlights(r.Context(), q.Get("destination"), q.Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.views(flights))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	f, err := s.flights.GetFlight(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newFlightView(f, s.cfg.Now()))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req flight.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body: %v", flight.ErrInvalidArgument, err))
		return
	}

	f, err := s.flights.AddFlight(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/flights/"+f.ID.String())
	s.writeJSON(w, http.StatusCreated, newFlightView(f, s.cfg.Now()))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.flights.DeleteFlight(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status         string `json:"status"`
	Monitor        string `json:"monitor"`
	TrackedFlights int    `json:"tracked_flights"`
	Scans          int64  `json:"scans"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Monitor: "absent"}
	if m := s.cfg.Monitor; m != nil {
		resp.Monitor = m.State().String()
		resp.TrackedFlights = m.Tracked()
		resp.Scans = m.Scans()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// pathID parses the {id} path segment, writing a 400 if it is not a UUID.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid flight id %q", flight.ErrInvalidArgument, r.PathValue("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the flight error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, flight.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, flight.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, flight.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleSSE streams flight events via Server-Sent Events.
//
// The stream opens with a "snapshot" event listing every flight, then sends
// one event per notification, named by its type. The handler uses write
// deadlines to prevent goroutine leaks when clients are slow or disconnected.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(event string, data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	// set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before the snapshot so nothing between the two is lost
	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	flights, err := s.flights.ListFlights(r.Context(), "", "")
	if err != nil {
		return
	}
	data, err := json.Marshal(s.views(flights))
	if err != nil {
		s.logger.Error("failed to encode sse snapshot", "error", err)
		return
	}
	if err := writeAndFlush("snapshot", data); err != nil {
		return
	}

	// stream updates
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := writeAndFlush(string(ev.Type), data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
