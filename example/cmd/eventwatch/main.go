// Standalone MQTT subscriber for watching FlightDeck events.
//
// Usage:
//
//	go run ./example/cmd/eventwatch -broker tcp://localhost:1883
//
// Then in another terminal:
//
//	go run ./cmd/flightdeck serve -c example/config.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jpalmerr/flightdeck/flight"
)

func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	prefix := flag.String("prefix", "flightdeck/events", "topic prefix configured on the server")
	flag.Parse()

	topic := *prefix + "/#"

	opts := mqtt.NewClientOptions().
		AddBroker(*broker).
		SetClientID("flightdeck-eventwatch-" + uuid.NewString()[:8]).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		// resubscribe after every reconnect
		token := c.Subscribe(topic, 1, printEvent)
		token.Wait()
		if err := token.Error(); err != nil {
			slog.Error("subscribe failed", "topic", topic, "error", err)
			return
		}
		slog.Info("subscribed", "topic", topic)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("connect failed", "broker", *broker, "error", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	fmt.Printf("Watching %s on %s\n", topic, *broker)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}

func printEvent(_ mqtt.Client, msg mqtt.Message) {
	var ev flight.Event
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		slog.Warn("undecodable event", "topic", msg.Topic(), "error", err)
		return
	}

	switch ev.Type {
	case flight.EventStatusChanged:
		fmt.Printf("%s  %-13s %s  %s -> %s\n", ev.At.Format(time.TimeOnly), ev.Type, ev.FlightID, ev.PreviousStatus, ev.Status)
	default:
		number := ""
		if ev.Flight != nil {
			number = ev.Flight.Number
		}
		fmt.Printf("%s  %-13s %s  %s (%s)\n", ev.At.Format(time.TimeOnly), ev.Type, ev.FlightID, number, ev.Status)
	}
}
