package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
)

var (
	// ErrDuplicateKey is returned by Add when the flight ID is already stored.
	ErrDuplicateKey = errors.New("flight id already exists")

	// ErrDuplicateNumber is returned by Add when another live flight has the
	// same number, compared case-insensitively.
	ErrDuplicateNumber = errors.New("flight number already exists")
)

// Filter narrows the result of [Store.List]. Zero values match everything.
type Filter struct {
	// Destination matches flights whose destination contains this text,
	// ignoring case.
	Destination string

	// Status matches flights whose derived status equals this label,
	// ignoring case. The status is evaluated at the instant List runs.
	Status string
}

// Store defines keyed storage of flights.
//
// Store implementations must be safe for concurrent access without external
// locking. Add is the one compound operation: the uniqueness checks and the
// insert happen atomically.
type Store interface {
	// Add inserts f. It fails with ErrDuplicateKey or ErrDuplicateNumber.
	Add(f flight.Flight) (flight.Flight, error)

	// Get looks up a flight by ID.
	Get(id uuid.UUID) (flight.Flight, bool)

	// GetByNumber looks up a flight by number, ignoring case.
	GetByNumber(number string) (flight.Flight, bool)

	// Delete removes a flight and returns it. The bool reports whether the
	// flight was present.
	Delete(id uuid.UUID) (flight.Flight, bool)

	// List returns matching flights ordered by departure time.
	// The returned slice is a copy; modifications do not affect the store.
	List(filter Filter) []flight.Flight

	// Snapshot returns every flight, ordered by departure time.
	Snapshot(ctx context.Context) ([]flight.Flight, error)

	// Len returns the number of live flights.
	Len() int
}
