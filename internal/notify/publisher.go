package notify

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
)

// Publisher accepts notification events.
//
// Implementations must be safe for concurrent use and must not block for
// long: events are published from request handlers and from the monitor's
// scan loop.
type Publisher interface {
	Publish(ev flight.Event)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(flight.Event) {}

// Multi publishes each event to every publisher, in order.
type Multi []Publisher

// Publish implements [Publisher].
func (m Multi) Publish(ev flight.Event) {
	for _, p := range m {
		p.Publish(ev)
	}
}

// Func adapts a callback to [Publisher], recovering panics.
//
// A panicking callback is logged with a correlation ID and the full stack
// trace; the event is dropped for that callback only.
type Func struct {
	fn     func(flight.Event)
	logger *slog.Logger
}

// NewFunc wraps fn. A nil logger uses slog.Default().
func NewFunc(fn func(flight.Event), logger *slog.Logger) *Func {
	if logger == nil {
		logger = slog.Default()
	}
	return &Func{fn: fn, logger: logger}
}

// Publish implements [Publisher].
func (f *Func) Publish(ev flight.Event) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("event callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"event", ev.Type,
				"flight_id", ev.FlightID,
				"stack", string(debug.Stack()),
			)
		}
	}()
	f.fn(ev)
}
