package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/flightdeck"
	"github.com/jpalmerr/flightdeck/flight"
)

func main() {
	fd, err := flightdeck.New(
		flightdeck.WithDemoData(),
		flightdeck.WithScanInterval(5*time.Second),
		flightdeck.WithStartupDelay(0),
		flightdeck.WithWebSocket(true),
		flightdeck.WithPort(8080),
		flightdeck.WithEventCallback(func(ev flight.Event) {
			if ev.Type == flight.EventStatusChanged {
				slog.Info("status change", "flight_id", ev.FlightID, "from", ev.PreviousStatus, "to", ev.Status)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create flightdeck", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   FlightDeck Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Flights:                                            ║")
	fmt.Println("  ║   • 5 demo flights, all changing within a minute      ║")
	fmt.Println("  ║   • mock traffic adds a flight every 20-60s           ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go RunMockTraffic(ctx, fd)

	if err := fd.Start(ctx); err != nil {
		slog.Error("flightdeck error", "error", err)
		os.Exit(1)
	}
}
