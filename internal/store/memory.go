package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
)

// MemoryStore is an in-memory implementation of [Store].
//
// Flights are keyed by ID, with a secondary index from the case-folded
// flight number to the ID. Both maps are guarded by one RWMutex, so the
// number check in Add and the insert are a single critical section.
//
// The clock is read once per List call to derive statuses for filtering.
type MemoryStore struct {
	mu       sync.RWMutex
	flights  map[uuid.UUID]flight.Flight
	byNumber map[string]uuid.UUID
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory [Store].
//
// now supplies the current time for status filtering; nil means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		flights:  make(map[uuid.UUID]flight.Flight),
		byNumber: make(map[string]uuid.UUID),
		now:      now,
	}
}

// Add stores f if neither its ID nor its number is taken.
func (m *MemoryStore) Add(f flight.Flight) (flight.Flight, error) {
	key := numberKey(f.Number)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.flights[f.ID]; exists {
		return flight.Flight{}, ErrDuplicateKey
	}
	if _, exists := m.byNumber[key]; exists {
		return flight.Flight{}, ErrDuplicateNumber
	}

	m.flights[f.ID] = f
	m.byNumber[key] = f.ID
	return f, nil
}

// Get returns the flight with the given ID.
func (m *MemoryStore) Get(id uuid.UUID) (flight.Flight, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flights[id]
	return f, ok
}

// GetByNumber returns the flight with the given number, ignoring case.
func (m *MemoryStore) GetByNumber(number string) (flight.Flight, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byNumber[numberKey(number)]
	if !ok {
		return flight.Flight{}, false
	}
	f, ok := m.flights[id]
	return f, ok
}

// Delete removes the flight with the given ID and returns it.
func (m *MemoryStore) Delete(id uuid.UUID) (flight.Flight, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flights[id]
	if !ok {
		return flight.Flight{}, false
	}
	delete(m.flights, id)
	delete(m.byNumber, numberKey(f.Number))
	return f, true
}

// List returns flights matching filter, ordered ascending by departure time.
// Ties are ordered by ID so repeated calls agree.
func (m *MemoryStore) List(filter Filter) []flight.Flight {
	destination := strings.ToLower(strings.TrimSpace(filter.Destination))
	status := strings.TrimSpace(filter.Status)
	now := m.now()

	m.mu.RLock()
	results := make([]flight.Flight, 0, len(m.flights))
	for _, f := range m.flights {
		if destination != "" && !strings.Contains(strings.ToLower(f.Destination), destination) {
			continue
		}
		if status != "" && !strings.EqualFold(string(flight.Classify(f.DepartureTime, now)), status) {
			continue
		}
		results = append(results, f)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.DepartureTime.Equal(b.DepartureTime) {
			return a.DepartureTime.Before(b.DepartureTime)
		}
		return a.ID.String() < b.ID.String()
	})
	return results
}

// Snapshot returns every flight. It fails only if ctx is already done.
func (m *MemoryStore) Snapshot(ctx context.Context) ([]flight.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.List(Filter{}), nil
}

// Len returns the number of live flights.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.flights)
}

// numberKey normalises a flight number for the uniqueness index.
func numberKey(number string) string {
	return flight.NumberKey(number)
}
