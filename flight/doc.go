// Package flight defines the FlightDeck domain: flights, their derived
// operational status, notification events and the error taxonomy shared by
// every other package.
//
// The main components are:
//
//   - [Flight]: a tracked flight record (status is never stored)
//   - [Request]: the payload used to create a flight
//   - [Status] and [Classify]: the status derivation state machine
//   - [Event]: a notification published when flights change
//
// Status is always a pure function of a flight's departure time and the
// current clock. Callers that need a status compute it at read time with
// [Classify]; nothing in this package caches it.
package flight
