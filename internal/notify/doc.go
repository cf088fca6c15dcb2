// Package notify delivers flight events to interested parties.
//
// This package is internal to FlightDeck. The core only needs a [Publisher];
// how events leave the process is decided by what the publisher wraps:
//
//   - [Hub]: in-process fan-out feeding the SSE and WebSocket transports
//   - [Multi]: sends each event to several publishers in order
//   - [Func]: wraps user callbacks with panic recovery
//   - [Discard]: drops everything
//
// Delivery is best effort. Slow subscribers miss events rather than block
// the publisher.
package notify
