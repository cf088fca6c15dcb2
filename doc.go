// Package flightdeck provides an embeddable flight status board that derives
// each flight's status from its departure time and pushes status changes to
// subscribers in real time.
//
// A flight's status is never stored. It is computed from the minutes until
// departure whenever it is read, and a background monitor rescans every
// flight on a fixed interval to announce transitions:
//
//	Scheduled  more than 30 minutes before departure
//	Boarding   30 to 10 minutes before
//	Departed   10 minutes before to 15 minutes after
//	Delayed    15 to 60 minutes after
//	Landed     more than 60 minutes after
//
// # Quick Start
//
//	fd, _ := flightdeck.New(flightdeck.WithDemoData())
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	fd.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// FlightDeck uses the functional options pattern for configuration:
//
//	fd, err := flightdeck.New(
//	    flightdeck.WithPort(9090),
//	    flightdeck.WithScanInterval(30 * time.Second),
//	    flightdeck.WithSeedFile("flights.yaml", true),
//	    flightdeck.WithWebSocket(true),
//	    flightdeck.WithEventCallback(func(ev flight.Event) { ... }),
//	)
//
// # Events
//
// Every mutation and transition is published as a [flight.Event]:
// Added and Deleted as soon as the operation succeeds, StatusChanged when a
// scan observes a new status. Events reach the dashboard over Server-Sent
// Events, optional WebSocket and MQTT sinks, and registered callbacks.
//
// # Architecture
//
// FlightDeck consists of several internal packages (under internal/):
//
//   - internal/store: Concurrent in-memory flight store with a unique number index
//   - internal/service: Validation and the add, delete and query operations
//   - internal/monitor: Periodic status scans and change detection
//   - internal/notify: In-process event fan-out
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/ws: WebSocket event stream
//   - internal/mqttsink: MQTT event publisher
//   - internal/seed: Demo data and YAML seed files
//   - dashboard: Embedded web UI assets
//
// The domain types live in the public flight package.
package flightdeck
