package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jpalmerr/flightdeck"
	"github.com/jpalmerr/flightdeck/flight"
)

var (
	trafficAirlines     = []string{"BA", "AF", "LH", "KL", "IB"}
	trafficDestinations = []string{"Madrid", "Rome", "Berlin", "Dublin", "Vienna", "Zurich", "Lisbon"}
)

// RunMockTraffic simulates a busy departures board: a new flight is added
// every 20-60 seconds, departing 31-40 minutes later, and landed flights are
// removed. It runs until ctx is cancelled.
func RunMockTraffic(ctx context.Context, fd *flightdeck.FlightDeck) {
	next := 2000
	for {
		wait := time.Duration(20+rand.IntN(41)) * time.Second
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		req := flight.Request{
			Number:        fmt.Sprintf("%s%d", trafficAirlines[rand.IntN(len(trafficAirlines))], next),
			Destination:   trafficDestinations[rand.IntN(len(trafficDestinations))],
			DepartureTime: time.Now().Add(time.Duration(31+rand.IntN(10)) * time.Minute),
			Gate:          fmt.Sprintf("%c%d", 'A'+rand.IntN(6), 1+rand.IntN(20)),
		}
		next++

		if _, err := fd.AddFlight(ctx, req); err != nil {
			if !errors.Is(err, flight.ErrConflict) {
				slog.Error("mock traffic: add flight failed", "flight_number", req.Number, "error", err)
			}
		}

		landed, err := fd.ListFlights(ctx, "", string(flight.StatusLanded))
		if err != nil {
			continue
		}
		for _, f := range landed {
			if err := fd.DeleteFlight(ctx, f.ID); err != nil && !errors.Is(err, flight.ErrNotFound) {
				slog.Error("mock traffic: delete flight failed", "flight_number", f.Number, "error", err)
			}
		}
	}
}
