// Package service implements the FlightDeck core contract: adding, deleting
// and querying flights, and announcing mutations to a notification sink.
//
// Service is the one place where request validation, the store and the
// publisher meet. Transports (HTTP, SDK callers) translate their inputs into
// these calls and map the returned errors with errors.Is against the
// sentinels in package flight.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
	"github.com/jpalmerr/flightdeck/internal/notify"
	"github.com/jpalmerr/flightdeck/internal/store"
)

// Service coordinates flight mutations and queries.
//
// Service is safe for concurrent use; all shared state lives in the store.
type Service struct {
	store     store.Store
	publisher notify.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a [Service]. A nil publisher discards events, a nil clock uses
// time.Now and a nil logger uses slog.Default().
func New(st store.Store, publisher notify.Publisher, now func() time.Time, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = notify.Discard
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     st,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

// AddFlight validates req, stores a new flight and publishes an Added event.
//
// It fails with flight.ErrInvalidArgument for bad fields or a departure time
// that is not strictly in the future, and flight.ErrConflict when the number
// is already in use.
func (s *Service) AddFlight(ctx context.Context, req flight.Request) (flight.Flight, error) {
	if err := ctx.Err(); err != nil {
		return flight.Flight{}, err
	}

	req = req.Normalize()
	now := s.now()
	if err := req.Validate(now); err != nil {
		s.logger.Warn("flight rejected", "flight_number", req.Number, "error", err)
		return flight.Flight{}, err
	}

	added, err := s.insert(req.Flight())
	if err != nil {
		s.logger.Warn("flight rejected", "flight_number", req.Number, "error", err)
		return flight.Flight{}, err
	}

	s.logger.Info("flight added", "flight_number", added.Number, "flight_id", added.ID)
	s.publisher.Publish(flight.Added(added, now))
	return added, nil
}

// DeleteFlight removes a flight and publishes a Deleted event carrying the
// removed flight. It fails with flight.ErrNotFound if id is unknown.
func (s *Service) DeleteFlight(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removed, ok := s.store.Delete(id)
	if !ok {
		s.logger.Warn("delete flight failed: not found", "flight_id", id)
		return fmt.Errorf("flight %s: %w", id, flight.ErrNotFound)
	}

	s.logger.Info("flight deleted", "flight_number", removed.Number, "flight_id", id)
	s.publisher.Publish(flight.Deleted(removed, s.now()))
	return nil
}

// GetFlight returns the flight with the given ID.
func (s *Service) GetFlight(ctx context.Context, id uuid.UUID) (flight.Flight, error) {
	if err := ctx.Err(); err != nil {
		return flight.Flight{}, err
	}

	f, ok := s.store.Get(id)
	if !ok {
		return flight.Flight{}, fmt.Errorf("flight %s: %w", id, flight.ErrNotFound)
	}
	return f, nil
}

// GetFlightByNumber returns the flight with the given number, ignoring case.
func (s *Service) GetFlightByNumber(ctx context.Context, number string) (flight.Flight, error) {
	if err := ctx.Err(); err != nil {
		return flight.Flight{}, err
	}

	f, ok := s.store.GetByNumber(number)
	if !ok {
		return flight.Flight{}, fmt.Errorf("flight number %q: %w", number, flight.ErrNotFound)
	}
	return f, nil
}

// ListFlights returns flights ordered by departure time. destination is a
// case-insensitive substring filter and status a case-insensitive label
// filter; empty strings match everything. A label that names no status
// matches no flights.
func (s *Service) ListFlights(ctx context.Context, destination, status string) ([]flight.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flights := s.store.List(store.Filter{Destination: destination, Status: status})
	s.logger.Debug("flights listed",
		"destination", destination,
		"status", status,
		"count", len(flights),
	)
	return flights, nil
}

// Preload inserts seed flights without the future-departure rule and without
// publishing events. Flights whose number is already taken are skipped.
// It returns the number of flights inserted.
func (s *Service) Preload(ctx context.Context, reqs []flight.Request) (int, error) {
	added := 0
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		req = req.Normalize()
		if err := req.ValidateFields(); err != nil {
			return added, fmt.Errorf("seed flight %q: %w", req.Number, err)
		}

		if _, err := s.insert(req.Flight()); err != nil {
			if errors.Is(err, flight.ErrConflict) {
				s.logger.Debug("seed flight already present", "flight_number", req.Number)
				continue
			}
			return added, err
		}
		added++
	}

	if added > 0 {
		s.logStatusDistribution()
	}
	return added, nil
}

// Len returns the number of live flights.
func (s *Service) Len() int {
	return s.store.Len()
}

// insert adds f to the store and maps store errors onto the taxonomy.
func (s *Service) insert(f flight.Flight) (flight.Flight, error) {
	added, err := s.store.Add(f)
	switch {
	case err == nil:
		return added, nil
	case errors.Is(err, store.ErrDuplicateNumber):
		return flight.Flight{}, fmt.Errorf("flight number %s already exists: %w", f.Number, flight.ErrConflict)
	default:
		s.logger.Error("failed to store flight", "flight_number", f.Number, "flight_id", f.ID, "error", err)
		return flight.Flight{}, fmt.Errorf("store flight %s: %v: %w", f.Number, err, flight.ErrInternal)
	}
}

// logStatusDistribution logs how many flights are in each status.
func (s *Service) logStatusDistribution() {
	now := s.now()
	counts := make(map[flight.Status]int)
	for _, f := range s.store.List(store.Filter{}) {
		counts[f.Status(now)]++
	}

	attrs := make([]any, 0, 2*len(flight.Statuses())+2)
	attrs = append(attrs, "total", s.store.Len())
	for _, st := range flight.Statuses() {
		attrs = append(attrs, st.String(), counts[st])
	}
	s.logger.Info("flight status distribution", attrs...)
}
