package flight

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the operational state of a flight.
//
// Status is a string type so it serialises directly to JSON and logs, while
// the defined constants keep comparisons type safe. Statuses are ordered;
// [Statuses] returns them in the order a flight moves through them.
type Status string

const (
	// StatusScheduled means departure is more than 30 minutes away.
	StatusScheduled Status = "Scheduled"

	// StatusBoarding means departure is between 10 and 30 minutes away.
	StatusBoarding Status = "Boarding"

	// StatusDeparted covers 10 minutes before to 15 minutes after departure.
	StatusDeparted Status = "Departed"

	// StatusDelayed covers 15 to 60 minutes after departure.
	StatusDelayed Status = "Delayed"

	// StatusLanded means departure was more than 60 minutes ago.
	StatusLanded Status = "Landed"
)

// Classification thresholds, in minutes until departure.
const (
	boardingThreshold = 30.0
	departedThreshold = 10.0
	delayedThreshold  = -15.0
	landedThreshold   = -60.0
)

// String returns the label of the status.
// This implements the fmt.Stringer interface.
func (s Status) String() string {
	return string(s)
}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusScheduled, StatusBoarding, StatusDeparted, StatusDelayed, StatusLanded}
}

// ParseStatus parses a status label case-insensitively.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses() {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
}

// Classify derives the status of a flight departing at departure, observed
// at now.
//
// The rules are applied in order, later rules overriding earlier ones:
//
//	d > 30          Scheduled
//	d > 10          Boarding
//	d >= -60        Departed
//	d < -15         Delayed   (overrides Departed)
//	d < -60         Landed    (overrides Delayed)
//
// where d is the signed, fractional number of minutes until departure. The
// effective table is therefore: d > 30 Scheduled, 10 < d <= 30 Boarding,
// -15 <= d <= 10 Departed, -60 <= d < -15 Delayed, d < -60 Landed.
//
// Classify is total and has no side effects.
func Classify(departure, now time.Time) Status {
	d := departure.Sub(now).Minutes()

	status := StatusScheduled
	switch {
	case d > boardingThreshold:
		status = StatusScheduled
	case d > departedThreshold:
		status = StatusBoarding
	case d >= landedThreshold:
		status = StatusDeparted
	}

	if d < delayedThreshold {
		status = StatusDelayed
	}
	if d < landedThreshold {
		status = StatusLanded
	}

	return status
}
