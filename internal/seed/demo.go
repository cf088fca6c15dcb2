// Package seed produces initial flights: a demo set timed to cross every
// status threshold shortly after startup, and flights loaded from a YAML
// seed file that can be watched for changes.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jpalmerr/flightdeck/flight"
)

var (
	airlines = []string{"BA", "AF", "LH", "AA", "DL", "UA", "EK", "SQ", "IB"}

	destinations = []string{
		"London", "Paris", "New York", "Tokyo", "Dubai", "Singapore",
		"Frankfurt", "Amsterdam", "Los Angeles", "Chicago", "Rome", "Madrid",
	}
)

// demoOffsets places each demo flight just short of a threshold, so that
// within the first minute every status transition happens at least once.
var demoOffsets = []time.Duration{
	30*time.Minute + 10*time.Second,  // Scheduled, then Boarding
	10*time.Minute + 20*time.Second,  // Boarding, then Departed
	-15*time.Minute + 30*time.Second, // Departed, then Delayed
	-60*time.Minute + 40*time.Second, // Delayed, then Landed
	10*time.Minute + 50*time.Second,  // Boarding, then Departed
}

// Demo returns the demo flights relative to now. Flight numbers are unique
// within the set; airline codes, destinations and gates are drawn from rng.
// A nil rng uses a randomly seeded source.
func Demo(now time.Time, rng *rand.Rand) []flight.Request {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	reqs := make([]flight.Request, 0, len(demoOffsets))
	for i, offset := range demoOffsets {
		reqs = append(reqs, flight.Request{
			Number:        fmt.Sprintf("%s%d", airlines[rng.IntN(len(airlines))], 1000+i),
			Destination:   destinations[rng.IntN(len(destinations))],
			DepartureTime: now.Add(offset).UTC(),
			Gate:          fmt.Sprintf("%c%d", 'A'+rng.IntN(6), 1+rng.IntN(20)),
		})
	}
	return reqs
}
