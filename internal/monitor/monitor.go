package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
	"github.com/jpalmerr/flightdeck/internal/notify"
)

const (
	// DefaultInterval is the time between scans.
	DefaultInterval = 60 * time.Second

	// DefaultStartupDelay lets initial data settle before the first scan.
	DefaultStartupDelay = 5 * time.Second
)

var (
	// ErrScanInProgress is returned by ScanNow when another scan is running.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrStopped is returned by ScanNow after Stop.
	ErrStopped = errors.New("monitor stopped")
)

// Source supplies the flights to scan.
type Source interface {
	// Snapshot returns every live flight. An error aborts the current scan.
	Snapshot(ctx context.Context) ([]flight.Flight, error)
}

// State is the monitor's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config tunes a [Monitor].
type Config struct {
	// Interval is the time between scans. Zero means DefaultInterval.
	Interval time.Duration

	// StartupDelay is the wait before the first scan. Negative means none.
	StartupDelay time.Duration

	// Now supplies the clock used for classification. Nil means time.Now.
	Now func() time.Time
}

// ScanResult summarises one scan.
type ScanResult struct {
	// Observed is the number of flights classified.
	Observed int

	// Changed is the number of StatusChanged events published.
	Changed int

	// Removed is the number of flights no longer tracked.
	Removed int

	// Aborted reports that cancellation interrupted the scan.
	Aborted bool
}

// Monitor periodically recomputes every flight's status and publishes a
// StatusChanged event for each transition since the previous scan.
//
// The first time a flight is seen its status is recorded silently. Flights
// that disappear from the source are forgotten silently; deletions are
// announced by the delete operation itself.
//
// At most one scan runs at a time. The ticker loop is a single goroutine,
// ticks that queued up while a scan ran are dropped, and [Monitor.ScanNow]
// refuses to start while another scan holds the running flag.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Monitor struct {
	source       Source
	publisher    notify.Publisher
	interval     time.Duration
	startupDelay time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	running atomic.Bool
	state   atomic.Int32
	tracked atomic.Int64
	scans   atomic.Int64

	// lastKnown is only touched by the goroutine holding the running flag.
	lastKnown map[uuid.UUID]flight.Status
}

// New creates a [Monitor] reading from source and publishing to publisher.
//
// The monitor must be started with [Monitor.Start] and stopped with
// [Monitor.Stop].
func New(source Source, publisher notify.Publisher, cfg Config, logger *slog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = 0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if publisher == nil {
		publisher = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		source:       source,
		publisher:    publisher,
		interval:     cfg.Interval,
		startupDelay: cfg.StartupDelay,
		now:          cfg.Now,
		logger:       logger,
		lastKnown:    make(map[uuid.UUID]flight.Status),
	}
}

// Start begins the scan loop in a background goroutine.
//
// Start is non-blocking. The loop waits for the startup delay, scans once
// to record the baseline, then scans on every tick until [Monitor.Stop] is
// called or ctx is cancelled.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; if Stop was called before Start, Start is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started || m.stopped {
		m.mu.Unlock()
		return
	}
	m.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("flight status monitor starting",
		"interval", m.interval.String(),
		"startup_delay", m.startupDelay.String(),
	)

	go m.run(loopCtx)
}

// Stop cancels the loop and waits for it to exit. An in-progress scan
// abandons its remaining flights.
//
// Stop is idempotent and safe to call before Start. Cancelling the context
// given to Start has the same effect: the monitor ends in StateStopped and
// ScanNow returns ErrStopped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.state.Store(int32(StateStopped))
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Tracked returns the number of flights whose status is being tracked, as of
// the last completed scan.
func (m *Monitor) Tracked() int {
	return int(m.tracked.Load())
}

// Scans returns the number of scans that have run.
func (m *Monitor) Scans() int64 {
	return m.scans.Load()
}

// ScanNow runs one scan synchronously.
//
// It returns ErrScanInProgress without scanning if another scan is running,
// and ErrStopped once the monitor has been stopped.
func (m *Monitor) ScanNow(ctx context.Context) (ScanResult, error) {
	m.mu.Lock()
	stopped := m.stopped
	m.mu.Unlock()
	if stopped {
		return ScanResult{}, ErrStopped
	}

	if !m.running.CompareAndSwap(false, true) {
		return ScanResult{}, ErrScanInProgress
	}
	defer m.running.Store(false)

	m.state.CompareAndSwap(int32(StateIdle), int32(StateScanning))
	defer m.state.CompareAndSwap(int32(StateScanning), int32(StateIdle))

	m.scans.Add(1)
	return m.scan(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()
	defer m.markStopped()

	if m.startupDelay > 0 {
		timer := time.NewTimer(m.startupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("flight status monitor stopping")
			return
		case <-timer.C:
		}
	}

	m.tick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	lastEnd := time.Now()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("flight status monitor stopping")
			return
		case t := <-ticker.C:
			if ctx.Err() != nil {
				m.logger.Info("flight status monitor stopping")
				return
			}
			// a tick that fired while the previous scan was still running
			// is skipped, not queued
			if t.Before(lastEnd) {
				m.logger.Debug("skipping tick, previous scan overran", "tick", t)
				continue
			}
			m.tick(ctx)
			lastEnd = time.Now()
		}
	}
}

// markStopped moves the monitor to its terminal state once the loop exits,
// whether through Stop or through cancellation of the Start context.
func (m *Monitor) markStopped() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	m.state.Store(int32(StateStopped))
}

// tick runs one scheduled scan, recovering panics so the loop survives.
func (m *Monitor) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("flight status scan panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	res, err := m.ScanNow(ctx)
	switch {
	case errors.Is(err, ErrScanInProgress):
		m.logger.Debug("skipping tick, manual scan in progress")
	case err != nil:
		// already logged by scan
	default:
		m.logger.Debug("flight status check complete",
			"observed", res.Observed,
			"changed", res.Changed,
			"removed", res.Removed,
		)
	}
}

// scan diffs the current flights against lastKnown. Caller holds the
// running flag.
func (m *Monitor) scan(ctx context.Context) (ScanResult, error) {
	var res ScanResult

	flights, err := m.source.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			m.logger.Debug("flight status scan cancelled before snapshot", "error", err)
		} else {
			m.logger.Error("error fetching flights, scan skipped", "error", err)
		}
		return res, fmt.Errorf("snapshot flights: %w", err)
	}

	now := m.now()
	seen := make(map[uuid.UUID]struct{}, len(flights))

	for _, f := range flights {
		if ctx.Err() != nil {
			res.Aborted = true
			m.logger.Info("flight status scan abandoned", "observed", res.Observed, "remaining", len(flights)-res.Observed)
			m.tracked.Store(int64(len(m.lastKnown)))
			return res, ctx.Err()
		}

		seen[f.ID] = struct{}{}
		res.Observed++
		status := flight.Classify(f.DepartureTime, now)

		last, known := m.lastKnown[f.ID]
		if !known {
			m.lastKnown[f.ID] = status
			m.logger.Debug("tracking new flight", "flight_number", f.Number, "flight_id", f.ID, "status", status)
			continue
		}
		if last == status {
			continue
		}

		m.lastKnown[f.ID] = status
		res.Changed++
		m.logger.Info("flight status changed",
			"flight_number", f.Number,
			"flight_id", f.ID,
			"from", last,
			"to", status,
		)
		m.publisher.Publish(flight.StatusChanged(f.ID, last, status, now))
	}

	for id := range m.lastKnown {
		if _, ok := seen[id]; ok {
			continue
		}
		delete(m.lastKnown, id)
		res.Removed++
		m.logger.Debug("stopped tracking removed flight", "flight_id", id)
	}

	m.tracked.Store(int64(len(m.lastKnown)))
	return res, nil
}
