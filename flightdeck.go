package flightdeck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/dashboard"
	"github.com/jpalmerr/flightdeck/flight"
	"github.com/jpalmerr/flightdeck/internal/monitor"
	"github.com/jpalmerr/flightdeck/internal/mqttsink"
	"github.com/jpalmerr/flightdeck/internal/notify"
	"github.com/jpalmerr/flightdeck/internal/seed"
	"github.com/jpalmerr/flightdeck/internal/server"
	"github.com/jpalmerr/flightdeck/internal/service"
	"github.com/jpalmerr/flightdeck/internal/store"
	"github.com/jpalmerr/flightdeck/internal/ws"
)

const defaultPort = 8080

var (
	// ErrAlreadyStarted is returned by Start on an instance that has already
	// been started.
	ErrAlreadyStarted = errors.New("flightdeck: already started")

	// ErrNotRunning is returned by ScanNow when Start is not running.
	ErrNotRunning = errors.New("flightdeck: not running")

	// ErrScanInProgress is returned by ScanNow when a scan is already running.
	ErrScanInProgress = monitor.ErrScanInProgress
)

// FlightDeck is the main orchestrator for flight tracking, status
// monitoring and the dashboard.
//
// FlightDeck owns the flight store, the status monitor that announces
// time-driven transitions, and the HTTP server. It is created using [New]
// with functional options and started with [FlightDeck.Start].
//
// The typical lifecycle is:
//
//	fd, err := flightdeck.New(flightdeck.WithDemoData())
//	if err != nil {
//	    slog.Error("failed to create flightdeck", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	fd.Start(ctx) // blocks until context cancelled
//
// The flight operations ([FlightDeck.AddFlight] and friends) work before,
// during and after Start.
type FlightDeck struct {
	title         string
	port          int
	scanInterval  time.Duration
	startupDelay  time.Duration
	now           func() time.Time
	logger        *slog.Logger
	websocket     bool
	seedFile      string
	watchSeedFile bool

	store     *store.MemoryStore
	hub       *notify.Hub
	publisher notify.Publisher
	svc       *service.Service
	mqtt      *mqttsink.Sink

	mu      sync.Mutex
	started bool
	monitor *monitor.Monitor
}

// New creates a new [FlightDeck] instance with the given options.
//
// Defaults:
//   - Port: 8080
//   - Scan interval: 60 seconds
//   - Startup delay: 5 seconds
//
// Seed flights from [WithSeedFlights], [WithDemoData] and [WithSeedFile]
// are loaded before New returns.
//
// Returns an error if any option is invalid or a seed source cannot be
// loaded.
func New(opts ...Option) (*FlightDeck, error) {
	cfg := &fdConfig{
		port:         defaultPort,
		scanInterval: monitor.DefaultInterval,
		startupDelay: monitor.DefaultStartupDelay,
		now:          time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	seeds := cfg.seedFlights
	if cfg.demoData {
		seeds = append(seeds, seed.Demo(cfg.now(), nil)...)
	}
	if cfg.seedFile != "" {
		fromFile, err := seed.LoadFile(cfg.seedFile, cfg.now())
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, fromFile...)
	}

	fd := &FlightDeck{
		title:         cfg.title,
		port:          cfg.port,
		scanInterval:  cfg.scanInterval,
		startupDelay:  cfg.startupDelay,
		now:           cfg.now,
		logger:        logger,
		websocket:     cfg.websocket,
		seedFile:      cfg.seedFile,
		watchSeedFile: cfg.watchSeedFile,
		store:         store.NewMemoryStore(cfg.now),
		hub:           notify.NewHub(),
	}

	publishers := notify.Multi{fd.hub}
	if cfg.mqtt != nil {
		mc := mqttsink.Config(*cfg.mqtt)
		client, err := mqttsink.NewClient(mc, logger)
		if err != nil {
			return nil, err
		}
		fd.mqtt = mqttsink.New(client, mc, logger)
		publishers = append(publishers, fd.mqtt)
	}
	for _, p := range cfg.publishers {
		publishers = append(publishers, p)
	}
	for _, cb := range cfg.eventCallbacks {
		publishers = append(publishers, notify.NewFunc(cb, logger))
	}
	fd.publisher = publishers
	fd.svc = service.New(fd.store, fd.publisher, cfg.now, logger)

	if len(seeds) > 0 {
		n, err := fd.svc.Preload(context.Background(), seeds)
		if err != nil {
			fd.closeSinks()
			return nil, fmt.Errorf("failed to load seed flights: %w", err)
		}
		logger.Info("seed flights loaded", "loaded", n, "skipped", len(seeds)-n)
	}

	return fd, nil
}

// Start runs the status monitor and serves the dashboard and API.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The HTTP server listens on the configured port
//   - After the startup delay, flight statuses are scanned every interval
//     and each transition is published as a StatusChanged event
//   - The seed file, if configured for watching, is reloaded on change
//
// Returns nil on graceful shutdown. Returns an error if the MQTT broker or
// the HTTP port is unavailable, or if Start was already called.
func (fd *FlightDeck) Start(ctx context.Context) error {
	fd.mu.Lock()
	if fd.started {
		fd.mu.Unlock()
		return ErrAlreadyStarted
	}
	fd.started = true
	fd.mu.Unlock()

	defer fd.closeSinks()

	fd.logger.Info("flightdeck starting", "flight_count", fd.svc.Len())
	fd.logger.Info("status scans configured",
		"interval", fd.scanInterval.String(),
		"startup_delay", fd.startupDelay.String(),
	)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	if fd.mqtt != nil {
		if err := fd.mqtt.Connect(); err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	mon := monitor.New(fd.store, fd.publisher, monitor.Config{
		Interval:     fd.scanInterval,
		StartupDelay: fd.startupDelay,
		Now:          fd.now,
	}, fd.logger)

	var wsHandler http.Handler
	if fd.websocket {
		hub := ws.New(fd.svc, fd.hub, fd.now, fd.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Run(runCtx)
		}()
		wsHandler = hub
	}

	httpServer := server.NewServer(fd.svc, fd.hub, server.Config{
		Port:      fd.port,
		Assets:    dashboard.Assets,
		Title:     fd.title,
		Monitor:   mon,
		WebSocket: wsHandler,
		Now:       fd.now,
	}, fd.logger)
	if err := httpServer.Start(runCtx); err != nil {
		cancel()
		wg.Wait()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	fd.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", fd.port))

	mon.Start(runCtx)
	fd.mu.Lock()
	fd.monitor = mon
	fd.mu.Unlock()

	if fd.watchSeedFile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := seed.Watch(runCtx, fd.seedFile, fd.now, fd.reloadSeeds, fd.logger); err != nil {
				fd.logger.Error("seed file watcher stopped", "path", fd.seedFile, "error", err)
			}
		}()
	}

	<-ctx.Done()

	cancel()
	mon.Stop()
	wg.Wait()

	fd.mu.Lock()
	fd.monitor = nil
	fd.mu.Unlock()

	fd.logger.Info("flightdeck stopped")
	return nil
}

// reloadSeeds loads flights from a changed seed file. Flights already
// present are left alone.
func (fd *FlightDeck) reloadSeeds(reqs []flight.Request) {
	n, err := fd.svc.Preload(context.Background(), reqs)
	if err != nil {
		fd.logger.Error("failed to apply seed file", "path", fd.seedFile, "error", err)
		return
	}
	fd.logger.Info("seed file applied", "path", fd.seedFile, "added", n)
}

func (fd *FlightDeck) closeSinks() {
	if fd.mqtt != nil {
		fd.mqtt.Close()
	}
}

// AddFlight creates a flight and publishes an Added event.
//
// It fails with [flight.ErrInvalidArgument] for invalid fields or a
// departure time that is not in the future, and [flight.ErrConflict] if
// the flight number is taken (ignoring case).
func (fd *FlightDeck) AddFlight(ctx context.Context, req flight.Request) (flight.Flight, error) {
	return fd.svc.AddFlight(ctx, req)
}

// DeleteFlight removes a flight and publishes a Deleted event. It fails with
// [flight.ErrNotFound] if id is unknown.
func (fd *FlightDeck) DeleteFlight(ctx context.Context, id uuid.UUID) error {
	return fd.svc.DeleteFlight(ctx, id)
}

// GetFlight returns one flight or [flight.ErrNotFound].
func (fd *FlightDeck) GetFlight(ctx context.Context, id uuid.UUID) (flight.Flight, error) {
	return fd.svc.GetFlight(ctx, id)
}

// GetFlightByNumber returns the flight with the given number, ignoring case.
func (fd *FlightDeck) GetFlightByNumber(ctx context.Context, number string) (flight.Flight, error) {
	return fd.svc.GetFlightByNumber(ctx, number)
}

// ListFlights returns flights ordered by departure time, optionally filtered
// by a destination substring and a status label. Both filters ignore case
// and empty values match everything.
func (fd *FlightDeck) ListFlights(ctx context.Context, destination, status string) ([]flight.Flight, error) {
	return fd.svc.ListFlights(ctx, destination, status)
}

// ScanNow runs one status scan immediately and returns the number of
// transitions it published.
//
// It returns [ErrNotRunning] outside Start and [ErrScanInProgress] if a scan
// is already running.
func (fd *FlightDeck) ScanNow(ctx context.Context) (int, error) {
	fd.mu.Lock()
	mon := fd.monitor
	fd.mu.Unlock()
	if mon == nil {
		return 0, ErrNotRunning
	}

	res, err := mon.ScanNow(ctx)
	if errors.Is(err, monitor.ErrStopped) {
		return res.Changed, ErrNotRunning
	}
	return res.Changed, err
}

// Len returns the number of live flights.
func (fd *FlightDeck) Len() int {
	return fd.svc.Len()
}

// Port returns the configured HTTP port.
func (fd *FlightDeck) Port() int {
	return fd.port
}

// ScanInterval returns the configured interval between status scans.
func (fd *FlightDeck) ScanInterval() time.Duration {
	return fd.scanInterval
}
