package flight

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length limits.
const (
	MaxNumberLen      = 10
	MaxDestinationLen = 100
	MaxGateLen        = 10
)

// Flight is a tracked flight.
//
// Flight values are immutable once stored: there is no update-in-place
// operation. Status is not stored; derive it with [Flight.Status].
type Flight struct {
	// ID is assigned at creation and never reassigned.
	ID uuid.UUID `json:"id"`

	// Number is unique across live flights, compared case-insensitively.
	Number string `json:"flight_number"`

	Destination string `json:"destination"`

	// DepartureTime is the scheduled departure, always in UTC.
	DepartureTime time.Time `json:"departure_time"`

	Gate string `json:"gate"`
}

// Status returns the flight's status as observed at now.
func (f Flight) Status(now time.Time) Status {
	return Classify(f.DepartureTime, now)
}

// Request is the payload for creating a flight.
type Request struct {
	Number        string    `json:"flight_number" yaml:"flight_number"`
	Destination   string    `json:"destination" yaml:"destination"`
	DepartureTime time.Time `json:"departure_time" yaml:"departure_time"`
	Gate          string    `json:"gate" yaml:"gate"`
}

// Normalize trims surrounding whitespace and converts the departure time
// to UTC.
func (r Request) Normalize() Request {
	r.Number = strings.TrimSpace(r.Number)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Gate = strings.TrimSpace(r.Gate)
	r.DepartureTime = r.DepartureTime.UTC()
	return r
}

// ValidateFields checks required fields and length limits. Every problem is
// reported; the result wraps [ErrInvalidArgument].
func (r Request) ValidateFields() error {
	var errs []error

	errs = append(errs, checkField("flight number", r.Number, MaxNumberLen))
	errs = append(errs, checkField("destination", r.Destination, MaxDestinationLen))
	errs = append(errs, checkField("gate", r.Gate, MaxGateLen))
	if r.DepartureTime.IsZero() {
		errs = append(errs, fmt.Errorf("%w: departure time is required", ErrInvalidArgument))
	}

	return errors.Join(errs...)
}

// Validate checks the fields and additionally requires the departure time
// to be strictly after now.
func (r Request) Validate(now time.Time) error {
	if err := r.ValidateFields(); err != nil {
		return err
	}
	if !r.DepartureTime.After(now) {
		return fmt.Errorf("%w: departure time must be in the future", ErrInvalidArgument)
	}
	return nil
}

// Flight builds a new flight with a fresh identifier.
func (r Request) Flight() Flight {
	return Flight{
		ID:            uuid.New(),
		Number:        r.Number,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime.UTC(),
		Gate:          r.Gate,
	}
}

// NumberKey returns the form of a flight number used for uniqueness. Two
// numbers share a key exactly when strings.EqualFold reports them equal,
// so special folds such as the Kelvin sign (U+212A) collide with "K".
func NumberKey(number string) string {
	return strings.ToLower(strings.ToUpper(strings.TrimSpace(number)))
}

func checkField(name, value string, limit int) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%w: %s cannot exceed %d characters, got %d", ErrInvalidArgument, name, limit, n)
	}
	return nil
}
