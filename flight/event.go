package flight

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a kind of notification.
type EventType string

const (
	// EventAdded is published after a flight is created.
	EventAdded EventType = "Added"

	// EventDeleted is published after a flight is removed.
	EventDeleted EventType = "Deleted"

	// EventStatusChanged is published when a scan observes a new status.
	EventStatusChanged EventType = "StatusChanged"
)

// Event is a notification about a flight.
//
// Added and Deleted events carry the full flight. StatusChanged events carry
// the flight identifier and the new and previous statuses.
type Event struct {
	Type     EventType `json:"type"`
	FlightID uuid.UUID `json:"flight_id"`
	Flight   *Flight   `json:"flight,omitempty"`

	// Status is the flight's status when the event was produced.
	Status Status `json:"status,omitempty"`

	// PreviousStatus is set for StatusChanged events only.
	PreviousStatus Status `json:"previous_status,omitempty"`

	At time.Time `json:"at"`
}

// Added builds an [EventAdded] for f observed at now.
func Added(f Flight, now time.Time) Event {
	return Event{
		Type:     EventAdded,
		FlightID: f.ID,
		Flight:   &f,
		Status:   f.Status(now),
		At:       now,
	}
}

// Deleted builds an [EventDeleted] for f observed at now.
func Deleted(f Flight, now time.Time) Event {
	return Event{
		Type:     EventDeleted,
		FlightID: f.ID,
		Flight:   &f,
		Status:   f.Status(now),
		At:       now,
	}
}

// StatusChanged builds an [EventStatusChanged].
func StatusChanged(id uuid.UUID, previous, current Status, now time.Time) Event {
	return Event{
		Type:           EventStatusChanged,
		FlightID:       id,
		Status:         current,
		PreviousStatus: previous,
		At:             now,
	}
}
