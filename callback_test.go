package flightdeck

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/flightdeck/flight"
)

func TestWithEventCallback_InvokedOnMutations(t *testing.T) {
	var mu sync.Mutex
	var got []flight.Event

	fd, err := New(
		WithClock(testClock),
		WithEventCallback(func(ev flight.Event) {
			mu.Lock()
			got = append(got, ev)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f, err := fd.AddFlight(context.Background(), seedRequest("LH400", 45*time.Minute))
	if err != nil {
		t.Fatalf("AddFlight() error = %v", err)
	}
	if err := fd.DeleteFlight(context.Background(), f.ID); err != nil {
		t.Fatalf("DeleteFlight() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(got) != 2 {
		t.Fatalf("callback invoked %d times, want 2", len(got))
	}
	if got[0].Type != flight.EventAdded {
		t.Errorf("got[0].Type = %s, want Added", got[0].Type)
	}
	if got[1].Type != flight.EventDeleted {
		t.Errorf("got[1].Type = %s, want Deleted", got[1].Type)
	}
	for i, ev := range got {
		if ev.FlightID != f.ID {
			t.Errorf("got[%d].FlightID = %v, want %v", i, ev.FlightID, f.ID)
		}
		if ev.Status != flight.StatusScheduled {
			t.Errorf("got[%d].Status = %s, want Scheduled", i, ev.Status)
		}
		if ev.Flight == nil || ev.Flight.Number != "LH400" {
			t.Errorf("got[%d].Flight = %+v, want LH400", i, ev.Flight)
		}
	}
}

func TestWithEventCallback_NotInvokedOnFailure(t *testing.T) {
	var calls atomic.Int32

	fd, err := New(
		WithClock(testClock),
		WithSeedFlights(seedRequest("LH400", time.Hour)),
		WithEventCallback(func(flight.Event) { calls.Add(1) }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// seed flights are silent
	if calls.Load() != 0 {
		t.Errorf("callback invoked %d times for seed flights, want 0", calls.Load())
	}

	if _, err := fd.AddFlight(context.Background(), seedRequest("lh400", 2*time.Hour)); err == nil {
		t.Error("AddFlight() with duplicate number expected error, got nil")
	}
	if _, err := fd.AddFlight(context.Background(), seedRequest("LH401", -time.Minute)); err == nil {
		t.Error("AddFlight() in the past expected error, got nil")
	}
	if calls.Load() != 0 {
		t.Errorf("callback invoked %d times for failed operations, want 0", calls.Load())
	}
}

func TestWithEventCallback_PanicRecovery(t *testing.T) {
	var normalCalled atomic.Bool

	// use a logger that captures output to verify panic was logged
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	fd, err := New(
		WithClock(testClock),
		WithEventCallback(func(flight.Event) {
			panic("intentional test panic")
		}),
		WithEventCallback(func(flight.Event) {
			normalCalled.Store(true) // should still be called after panic
		}),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// should not panic
	if _, err := fd.AddFlight(context.Background(), seedRequest("AF1", time.Hour)); err != nil {
		t.Fatalf("AddFlight() error = %v", err)
	}

	if !normalCalled.Load() {
		t.Error("subsequent callbacks should still run after panic")
	}
	if !strings.Contains(logBuf.String(), "event callback panicked") {
		t.Errorf("panic should have been logged, got: %s", logBuf.String())
	}
	if fd.Len() != 1 {
		t.Errorf("Len() = %d, want 1", fd.Len())
	}
}

func TestWithEventCallback_NilIsSafe(t *testing.T) {
	fd, err := New(WithClock(testClock), WithEventCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := fd.AddFlight(context.Background(), seedRequest("AF1", time.Hour)); err != nil {
		t.Errorf("AddFlight() error = %v", err)
	}
}

func TestWithEventCallback_ExecutionOrder(t *testing.T) {
	var order []int
	var mu sync.Mutex

	record := func(n int) func(flight.Event) {
		return func(flight.Event) {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}
	}

	fd, err := New(
		WithClock(testClock),
		WithEventCallback(record(1)),
		WithEventCallback(record(2)),
		WithEventCallback(record(3)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, n := range []string{"AF1", "AF2"} {
		if _, err := fd.AddFlight(context.Background(), seedRequest(n, time.Hour)); err != nil {
			t.Fatalf("AddFlight(%s) error = %v", n, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	if len(order) != 6 {
		t.Fatalf("expected 6 callback invocations, got %d", len(order))
	}

	// verify order is always 1, 2, 3, 1, 2, 3
	for i := 0; i < len(order); i++ {
		expected := (i % 3) + 1
		if order[i] != expected {
			t.Errorf("order[%d] = %d, want %d (callbacks should execute in registration order)", i, order[i], expected)
		}
	}
}

type countingPublisher struct {
	n atomic.Int32
}

func (p *countingPublisher) Publish(flight.Event) { p.n.Add(1) }

func TestWithPublisher_ReceivesEvents(t *testing.T) {
	p := &countingPublisher{}

	fd, err := New(WithClock(testClock), WithPublisher(p))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f, err := fd.AddFlight(context.Background(), seedRequest("KL1", time.Hour))
	if err != nil {
		t.Fatalf("AddFlight() error = %v", err)
	}
	if err := fd.DeleteFlight(context.Background(), f.ID); err != nil {
		t.Fatalf("DeleteFlight() error = %v", err)
	}

	if p.n.Load() != 2 {
		t.Errorf("publisher received %d events, want 2", p.n.Load())
	}
}
